package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pixelpro/internal/domain"
)

type MySQLPaymentRepository struct {
	db *sql.DB
}

func NewMySQLPaymentRepository(db *sql.DB) *MySQLPaymentRepository {
	return &MySQLPaymentRepository{db: db}
}

func (r *MySQLPaymentRepository) Insert(ctx context.Context, tx *sql.Tx, payment domain.Payment) (uint, error) {
	query := `
		INSERT INTO Payments (orderId, amount, currency, method, status, transactionId, paidAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		payment.OrderID, payment.Amount, payment.Currency, payment.Method,
		payment.Status, payment.TransactionID, payment.PaidAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting payment: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

// FindByTransactionID looks a payment up by its external transaction
// reference. It returns (nil, nil) when no payment matches; the transaction
// reference is the deduplication key for gateway notifications.
func (r *MySQLPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	query := `
		SELECT id, orderId, amount, currency, method, status, transactionId, paidAt, createdAt
		FROM Payments
		WHERE transactionId = ?
	`

	var p domain.Payment
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&p.ID, &p.OrderID, &p.Amount, &p.Currency, &p.Method, &p.Status,
		&p.TransactionID, &p.PaidAt, &p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying payment by transaction id: %w", err)
	}

	return &p, nil
}
