package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pixelpro/internal/domain"
	"pixelpro/internal/errors"
)

type MySQLAddressRepository struct {
	db *sql.DB
}

func NewMySQLAddressRepository(db *sql.DB) *MySQLAddressRepository {
	return &MySQLAddressRepository{db: db}
}

func (r *MySQLAddressRepository) FindByID(ctx context.Context, id uint) (*domain.Address, error) {
	query := `
		SELECT id, customerId, addressLine, city, createdAt
		FROM Addresses
		WHERE id = ?
	`

	var a domain.Address
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.CustomerID, &a.AddressLine, &a.City, &a.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("address with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying address by id: %w", err)
	}

	return &a, nil
}
