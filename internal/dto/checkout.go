package dto

import (
	"time"

	"pixelpro/internal/domain"
)

type CheckoutRequest struct {
	CustomerEmail string            `json:"customerEmail"`
	DeliveryType  string            `json:"deliveryType"`
	PaymentMethod string            `json:"paymentMethod"`
	AddressID     *uint             `json:"addressId,omitempty"`
	Items         []CartItemRequest `json:"items"`
}

type CartItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// CartLine is a validated cart entry handed to the checkout service.
type CartLine struct {
	ProductID uint
	Quantity  int
}

// CheckoutOrder carries the pre-validated inputs for one checkout
// transaction: resolved customer, resolved address (home delivery only) and
// the selected payment flow.
type CheckoutOrder struct {
	Customer     *domain.Customer
	DeliveryType domain.DeliveryType
	Flow         domain.PaymentFlow
	Address      *domain.Address
	Lines        []CartLine
}

type CheckoutResult struct {
	OrderID       uint
	OrderCode     string
	PreferenceRef string
}

type CheckoutResponse struct {
	TraceID       string    `json:"traceId"`
	OrderID       uint      `json:"orderId"`
	OrderCode     string    `json:"orderCode"`
	PreferenceRef string    `json:"preferenceRef,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
