package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pixelpro/internal/domain"
	"pixelpro/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const orderColumns = `id, code, status, deliveryType, customerId, shippingAddressId,
	       subtotal, shippingCost, discount, total, createdAt, updatedAt`

func scanOrder(row *sql.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID, &o.Code, &o.Status, &o.DeliveryType, &o.CustomerID, &o.ShippingAddressID,
		&o.Subtotal, &o.ShippingCost, &o.Discount, &o.Total,
		&o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error) {
	query := `
		INSERT INTO Orders (code, status, deliveryType, customerId, shippingAddressId,
		                    subtotal, shippingCost, discount, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		order.Code, order.Status, order.DeliveryType, order.CustomerID, order.ShippingAddressID,
		order.Subtotal, order.ShippingCost, order.Discount, order.Total,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ?`

	var order domain.Order
	err := scanOrder(r.db.QueryRowContext(ctx, query, id), &order)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return &order, nil
}

// FindByIDForUpdate loads the order header inside tx holding a row lock. The
// webhook handler uses it so a concurrent status update cannot interleave.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ? FOR UPDATE`

	var order domain.Order
	err := scanOrder(tx.QueryRowContext(ctx, query, id), &order)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order for update: %w", err)
	}

	return &order, nil
}

// UpdateStatus applies current -> next with an optimistic guard on the
// current status. Zero rows affected means a concurrent writer won.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id uint, current, next domain.OrderStatus) error {
	return r.updateStatus(ctx, r.db.ExecContext, id, current, next)
}

// UpdateStatusTx is the transactional variant of UpdateStatus.
func (r *MySQLOrderRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint, current, next domain.OrderStatus) error {
	return r.updateStatus(ctx, tx.ExecContext, id, current, next)
}

type execFunc func(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

func (r *MySQLOrderRepository) updateStatus(ctx context.Context, exec execFunc, id uint, current, next domain.OrderStatus) error {
	query := `UPDATE Orders SET status = ? WHERE id = ? AND status = ?`

	result, err := exec(ctx, query, next, id, current)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("order %d status changed concurrently", id))
	}

	return nil
}

// FindByIDWithDetails returns the fully-populated order snapshot: header,
// line items, payment attempts and invoice in one read.
func (r *MySQLOrderRepository) FindByIDWithDetails(ctx context.Context, id uint) (*domain.Order, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	payments, err := r.findPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Payments = payments

	invoice, err := r.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Invoice = invoice

	return order, nil
}

// FindByCustomer lists a customer's orders, newest first, optionally
// filtered by status.
func (r *MySQLOrderRepository) FindByCustomer(ctx context.Context, customerID uint, status *domain.OrderStatus) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE customerId = ?`
	args := []interface{}{customerID}

	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY createdAt DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders by customer: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		err := rows.Scan(
			&o.ID, &o.Code, &o.Status, &o.DeliveryType, &o.CustomerID, &o.ShippingAddressID,
			&o.Subtotal, &o.ShippingCost, &o.Discount, &o.Total,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

func (r *MySQLOrderRepository) findItems(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	query := `
		SELECT oi.id, oi.orderId, oi.productId, p.name, oi.quantity, oi.unitPrice
		FROM OrderItems oi
		JOIN Products p ON p.id = oi.productId
		WHERE oi.orderId = ?
		ORDER BY oi.id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}

func (r *MySQLOrderRepository) findPayments(ctx context.Context, orderID uint) ([]domain.Payment, error) {
	query := `
		SELECT id, orderId, amount, currency, method, status, transactionId, paidAt, createdAt
		FROM Payments
		WHERE orderId = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Currency, &p.Method, &p.Status,
			&p.TransactionID, &p.PaidAt, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning payment row: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

func (r *MySQLOrderRepository) findInvoice(ctx context.Context, orderID uint) (*domain.Invoice, error) {
	query := `
		SELECT id, orderId, number, documentHash, issuedAt
		FROM Invoices
		WHERE orderId = ?
	`

	var inv domain.Invoice
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&inv.ID, &inv.OrderID, &inv.Number, &inv.DocumentHash, &inv.IssuedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying invoice: %w", err)
	}

	return &inv, nil
}
