package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"pixelpro/internal/domain"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID                uint                `json:"id"`
	Code              string              `json:"code"`
	Status            string              `json:"status"`
	DeliveryType      string              `json:"deliveryType"`
	CustomerID        uint                `json:"customerId"`
	ShippingAddressID *uint               `json:"shippingAddressId,omitempty"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	ShippingCost      decimal.Decimal     `json:"shippingCost"`
	Discount          decimal.Decimal     `json:"discount"`
	Total             decimal.Decimal     `json:"total"`
	Items             []OrderItemResponse `json:"items"`
	Payments          []PaymentResponse   `json:"payments"`
	Invoice           *InvoiceResponse    `json:"invoice,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type PaymentResponse struct {
	ID            uint            `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transactionId"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

type InvoiceResponse struct {
	ID           uint      `json:"id"`
	Number       string    `json:"number"`
	DocumentHash string    `json:"documentHash"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// NewOrderResponse maps a fully-populated order snapshot.
func NewOrderResponse(o *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	payments := make([]PaymentResponse, len(o.Payments))
	for i, p := range o.Payments {
		payments[i] = PaymentResponse{
			ID:            p.ID,
			Amount:        p.Amount,
			Currency:      p.Currency,
			Method:        string(p.Method),
			Status:        string(p.Status),
			TransactionID: p.TransactionID,
			PaidAt:        p.PaidAt,
		}
	}

	var invoice *InvoiceResponse
	if o.Invoice != nil {
		invoice = &InvoiceResponse{
			ID:           o.Invoice.ID,
			Number:       o.Invoice.Number,
			DocumentHash: o.Invoice.DocumentHash,
			IssuedAt:     o.Invoice.IssuedAt,
		}
	}

	return &OrderResponse{
		ID:                o.ID,
		Code:              o.Code,
		Status:            string(o.Status),
		DeliveryType:      string(o.DeliveryType),
		CustomerID:        o.CustomerID,
		ShippingAddressID: o.ShippingAddressID,
		Subtotal:          o.Subtotal,
		ShippingCost:      o.ShippingCost,
		Discount:          o.Discount,
		Total:             o.Total,
		Items:             items,
		Payments:          payments,
		Invoice:           invoice,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}
