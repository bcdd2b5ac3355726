package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DeliveryType string

const (
	DeliveryHome   DeliveryType = "HOME_DELIVERY"
	DeliveryPickup DeliveryType = "STORE_PICKUP"
)

func ParseDeliveryType(s string) (DeliveryType, bool) {
	switch DeliveryType(s) {
	case DeliveryHome, DeliveryPickup:
		return DeliveryType(s), true
	}
	return "", false
}

type Order struct {
	ID                uint
	Code              string
	Status            OrderStatus
	DeliveryType      DeliveryType
	CustomerID        uint
	ShippingAddressID *uint
	Subtotal          decimal.Decimal
	ShippingCost      decimal.Decimal
	Discount          decimal.Decimal
	Total             decimal.Decimal
	Items             []OrderItem
	Payments          []Payment
	Invoice           *Invoice
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalsConsistent reports whether total = subtotal + shippingCost - discount
// and total is non-negative.
func (o *Order) TotalsConsistent() bool {
	expected := o.Subtotal.Add(o.ShippingCost).Sub(o.Discount)
	return o.Total.Equal(expected) && !o.Total.IsNegative()
}

type OrderItem struct {
	ID          uint
	OrderID     uint
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrderCode returns a human-readable unique order code, e.g. ORD-3FA9C01B.
func NewOrderCode() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}
