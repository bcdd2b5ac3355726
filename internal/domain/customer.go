package domain

import "time"

type Customer struct {
	ID        uint
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

type Address struct {
	ID          uint
	CustomerID  uint
	AddressLine string
	City        string
	CreatedAt   time.Time
}
