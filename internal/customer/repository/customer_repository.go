package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pixelpro/internal/domain"
	"pixelpro/internal/errors"
)

type MySQLCustomerRepository struct {
	db *sql.DB
}

func NewMySQLCustomerRepository(db *sql.DB) *MySQLCustomerRepository {
	return &MySQLCustomerRepository{db: db}
}

func (r *MySQLCustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `
		SELECT id, email, firstName, lastName, createdAt
		FROM Customers
		WHERE email = ?
	`

	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("customer %s not found", email))
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by email: %w", err)
	}

	return &c, nil
}
