package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "GATEWAY"
	PaymentMethodCash    PaymentMethod = "CASH"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodGateway, PaymentMethodCash:
		return PaymentMethod(s), true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusRejected  PaymentStatus = "REJECTED"
)

const CurrencyPEN = "PEN"

type Payment struct {
	ID            uint
	OrderID       uint
	Amount        decimal.Decimal
	Currency      string
	Method        PaymentMethod
	Status        PaymentStatus
	TransactionID string
	PaidAt        *time.Time
	CreatedAt     time.Time
}

type Invoice struct {
	ID           uint
	OrderID      uint
	Number       string
	DocumentHash string
	IssuedAt     time.Time
}
