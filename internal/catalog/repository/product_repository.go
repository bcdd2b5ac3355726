package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pixelpro/internal/domain"
	"pixelpro/internal/errors"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, COALESCE(description, ''), price, qtyStock, createdAt, updatedAt
		FROM Products
		WHERE id = ?
	`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.QtyStock,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return &p, nil
}

// FindByIDForUpdate loads a product inside tx holding a row lock, so the
// price read here stays consistent with the stock decrement that follows.
func (r *MySQLProductRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, COALESCE(description, ''), price, qtyStock, createdAt, updatedAt
		FROM Products
		WHERE id = ?
		FOR UPDATE
	`

	var p domain.Product
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.QtyStock,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product for update: %w", err)
	}

	return &p, nil
}

// Reserve decrements available stock in a single guarded statement. The
// check and the decrement happen atomically: a concurrent reserve on the same
// product serializes on the row lock and observes the decremented quantity.
func (r *MySQLProductRepository) Reserve(ctx context.Context, tx *sql.Tx, productID uint, quantity int) error {
	query := `UPDATE Products SET qtyStock = qtyStock - ? WHERE id = ? AND qtyStock >= ?`

	result, err := tx.ExecContext(ctx, query, quantity, productID, quantity)
	if err != nil {
		return fmt.Errorf("reserving stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("insufficient stock for product %d", productID))
	}

	return nil
}

// Release is the compensating inverse of Reserve, used when a rejected
// gateway payment cancels an order whose stock was already committed.
func (r *MySQLProductRepository) Release(ctx context.Context, tx *sql.Tx, productID uint, quantity int) error {
	query := `UPDATE Products SET qtyStock = qtyStock + ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, quantity, productID)
	if err != nil {
		return fmt.Errorf("releasing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", productID))
	}

	return nil
}
