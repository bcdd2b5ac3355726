package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pixelpro/internal/domain"
)

type MySQLInvoiceRepository struct {
	db *sql.DB
}

func NewMySQLInvoiceRepository(db *sql.DB) *MySQLInvoiceRepository {
	return &MySQLInvoiceRepository{db: db}
}

func (r *MySQLInvoiceRepository) Insert(ctx context.Context, tx *sql.Tx, invoice domain.Invoice) (uint, error) {
	query := `
		INSERT INTO Invoices (orderId, number, documentHash, issuedAt)
		VALUES (?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		invoice.OrderID, invoice.Number, invoice.DocumentHash, invoice.IssuedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting invoice: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}
