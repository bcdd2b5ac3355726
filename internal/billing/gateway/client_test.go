package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "pixelpro/internal/errors"
)

func newTestClient(serverURL string) *HTTPClient {
	return NewHTTPClient(serverURL, "test-token", 2*time.Second, zap.NewNop())
}

func TestCreatePreference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req preferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "42", req.ExternalReference)
		require.Len(t, req.Items, 1)
		assert.Equal(t, "Mechanical Keyboard", req.Items[0].Title)
		assert.Equal(t, 2, req.Items[0].Quantity)
		assert.Equal(t, "PEN", req.Items[0].CurrencyID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(preferenceResponse{ID: "pref-abc"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	items := []PreferenceItem{{
		ID:         "1",
		Title:      "Mechanical Keyboard",
		Quantity:   2,
		UnitPrice:  decimal.RequireFromString("50.00"),
		CurrencyID: "PEN",
	}}

	ref, err := client.CreatePreference(context.Background(), items, "42")

	assert.NoError(t, err)
	assert.Equal(t, "pref-abc", ref)
}

func TestCreatePreference_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ref, err := client.CreatePreference(context.Background(), nil, "42")

	assert.Empty(t, ref)
	ge, ok := apperrors.IsGatewayError(err)
	assert.True(t, ok)
	assert.Contains(t, ge.Message, "500")
}

func TestCreatePreference_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)

	ref, err := client.CreatePreference(context.Background(), nil, "42")

	assert.Empty(t, ref)
	_, ok := apperrors.IsGatewayError(err)
	assert.True(t, ok)
}

func TestGetPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/pay-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Payment{
			ID:                "pay-1",
			Status:            PaymentStatusApproved,
			ExternalReference: "42",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	payment, err := client.GetPayment(context.Background(), "pay-1")

	require.NoError(t, err)
	assert.Equal(t, "pay-1", payment.ID)
	assert.Equal(t, PaymentStatusApproved, payment.Status)
	assert.Equal(t, "42", payment.ExternalReference)
}

func TestGetPayment_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	payment, err := client.GetPayment(context.Background(), "missing")

	assert.Nil(t, payment)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestGetPayment_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	payment, err := client.GetPayment(context.Background(), "pay-1")

	assert.Nil(t, payment)
	ge, ok := apperrors.IsGatewayError(err)
	assert.True(t, ok)
	assert.Contains(t, ge.Message, "502")
}
