package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pixelpro/internal/errors"
)

// PreferenceItem is one line of a hosted payment preference: a product line
// or the shipping cost line.
type PreferenceItem struct {
	ID         string          `json:"id,omitempty"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

// Payment is the gateway's view of a resolved payment, fetched back when a
// webhook notification arrives.
type Payment struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

const (
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// PaymentGateway is the boundary to the external payment provider.
type PaymentGateway interface {
	// CreatePreference opens a hosted payment session and returns its
	// opaque reference.
	CreatePreference(ctx context.Context, items []PreferenceItem, externalRef string) (string, error)
	// GetPayment fetches the details of a gateway payment by id.
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// HTTPClient talks to the gateway's REST API with a bearer token and a
// per-request timeout.
type HTTPClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewHTTPClient(baseURL, accessToken string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type preferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
}

type preferenceResponse struct {
	ID string `json:"id"`
}

func (c *HTTPClient) CreatePreference(ctx context.Context, items []PreferenceItem, externalRef string) (string, error) {
	body, err := json.Marshal(preferenceRequest{
		Items:             items,
		ExternalReference: externalRef,
	})
	if err != nil {
		return "", errors.NewGatewayError("encoding preference request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return "", errors.NewGatewayError("building preference request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewGatewayError("payment gateway unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.NewGatewayError(
			fmt.Sprintf("payment gateway returned status %d creating preference", resp.StatusCode), nil)
	}

	var pref preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return "", errors.NewGatewayError("decoding preference response", err)
	}

	c.logger.Info("payment preference created",
		zap.String("preferenceId", pref.ID),
		zap.String("externalReference", externalRef))

	return pref.ID, nil
}

func (c *HTTPClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, errors.NewGatewayError("building payment request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewGatewayError("payment gateway unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError(fmt.Sprintf("gateway payment %s not found", paymentID))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewGatewayError(
			fmt.Sprintf("payment gateway returned status %d fetching payment", resp.StatusCode), nil)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, errors.NewGatewayError("decoding payment response", err)
	}

	return &payment, nil
}
