package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	QtyStock    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
