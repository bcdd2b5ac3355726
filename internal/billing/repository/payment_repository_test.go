package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelpro/internal/domain"
	"pixelpro/internal/testutil"
)

func seedOrder(t *testing.T, db *sql.DB) uint {
	testutil.SetupTestTables(t, db)
	testutil.ResetTestTables(t, db)

	result, err := db.Exec(
		"INSERT INTO Customers (email, firstName, lastName) VALUES (?, ?, ?)",
		"ana@example.com", "Ana", "Quispe")
	require.NoError(t, err)
	customerID, err := result.LastInsertId()
	require.NoError(t, err)

	result, err = db.Exec(
		`INSERT INTO Orders (code, status, deliveryType, customerId, subtotal, shippingCost, discount, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		"ORD-PAYTESTS", "PENDING", "STORE_PICKUP", customerID, "100.00", "0.00", "0.00", "100.00")
	require.NoError(t, err)
	orderID, err := result.LastInsertId()
	require.NoError(t, err)

	return uint(orderID)
}

func TestPaymentRepository_InsertAndFindByTransactionID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	orderID := seedOrder(t, db)
	repo := NewMySQLPaymentRepository(db)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.Insert(context.Background(), tx, domain.Payment{
		OrderID:       orderID,
		Amount:        decimal.RequireFromString("100.00"),
		Currency:      domain.CurrencyPEN,
		Method:        domain.PaymentMethodGateway,
		Status:        domain.PaymentStatusConfirmed,
		TransactionID: "pay-1",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	payment, err := repo.FindByTransactionID(context.Background(), "pay-1")

	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, orderID, payment.OrderID)
	assert.Equal(t, domain.PaymentStatusConfirmed, payment.Status)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("100.00")))
}

func TestPaymentRepository_FindByTransactionID_MissingIsNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	seedOrder(t, db)
	repo := NewMySQLPaymentRepository(db)

	payment, err := repo.FindByTransactionID(context.Background(), "never-seen")

	// No row is not an error: the caller treats nil as "not applied yet".
	assert.NoError(t, err)
	assert.Nil(t, payment)
}

func TestPaymentRepository_DuplicateTransactionIDRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	orderID := seedOrder(t, db)
	repo := NewMySQLPaymentRepository(db)

	insert := func() error {
		tx, err := db.BeginTx(context.Background(), nil)
		require.NoError(t, err)
		defer tx.Rollback()

		if _, err := repo.Insert(context.Background(), tx, domain.Payment{
			OrderID:       orderID,
			Amount:        decimal.RequireFromString("100.00"),
			Currency:      domain.CurrencyPEN,
			Method:        domain.PaymentMethodGateway,
			Status:        domain.PaymentStatusConfirmed,
			TransactionID: "pay-dup",
		}); err != nil {
			return err
		}
		return tx.Commit()
	}

	require.NoError(t, insert())
	assert.Error(t, insert())
}
