package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	apperrors "pixelpro/internal/errors"
)

type mockNotificationService struct {
	handleNotificationFunc func(ctx context.Context, gatewayPaymentID string) error
	calls                  int
}

func (m *mockNotificationService) HandleNotification(ctx context.Context, gatewayPaymentID string) error {
	m.calls++
	return m.handleNotificationFunc(ctx, gatewayPaymentID)
}

func performWebhook(t *testing.T, service PaymentNotificationService, body string) *httptest.ResponseRecorder {
	controller := NewWebhookController(service, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/billing/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	controller.HandleNotification(recorder, req)
	return recorder
}

const notificationBody = `{
	"data": {"id": "pay-1"},
	"type": "payment",
	"action": "payment.updated",
	"date_created": "2025-03-01T10:00:00Z"
}`

func TestWebhook_Applied(t *testing.T) {
	service := &mockNotificationService{
		handleNotificationFunc: func(ctx context.Context, gatewayPaymentID string) error {
			assert.Equal(t, "pay-1", gatewayPaymentID)
			return nil
		},
	}

	recorder := performWebhook(t, service, notificationBody)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, service.calls)
}

func TestWebhook_InvalidPayload(t *testing.T) {
	service := &mockNotificationService{
		handleNotificationFunc: func(ctx context.Context, gatewayPaymentID string) error {
			t.Fatal("service must not run for an invalid payload")
			return nil
		},
	}

	recorder := performWebhook(t, service, "not json")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 0, service.calls)
}

func TestWebhook_MissingPaymentID(t *testing.T) {
	service := &mockNotificationService{
		handleNotificationFunc: func(ctx context.Context, gatewayPaymentID string) error {
			t.Fatal("service must not run without a payment id")
			return nil
		},
	}

	recorder := performWebhook(t, service, `{"type": "payment", "data": {}}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWebhook_UnknownPaymentNotRetried(t *testing.T) {
	service := &mockNotificationService{
		handleNotificationFunc: func(ctx context.Context, gatewayPaymentID string) error {
			return apperrors.NewNotFoundError("gateway payment pay-1 not found")
		},
	}

	recorder := performWebhook(t, service, notificationBody)

	// 200 so the gateway stops retrying a payment it no longer knows.
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestWebhook_InfrastructureErrorRetried(t *testing.T) {
	service := &mockNotificationService{
		handleNotificationFunc: func(ctx context.Context, gatewayPaymentID string) error {
			return apperrors.NewInternalError("failed to begin transaction", assert.AnError)
		},
	}

	recorder := performWebhook(t, service, notificationBody)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
