package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pixelpro/internal/billing/gateway"
	billingrepo "pixelpro/internal/billing/repository"
	catalogrepo "pixelpro/internal/catalog/repository"
	"pixelpro/internal/domain"
	"pixelpro/internal/dto"
	apperrors "pixelpro/internal/errors"
	orderrepo "pixelpro/internal/order/repository"
	"pixelpro/internal/testutil"
)

type mockPaymentGateway struct {
	createPreferenceFunc func(ctx context.Context, items []gateway.PreferenceItem, externalRef string) (string, error)
	getPaymentFunc       func(ctx context.Context, paymentID string) (*gateway.Payment, error)
}

func (m *mockPaymentGateway) CreatePreference(ctx context.Context, items []gateway.PreferenceItem, externalRef string) (string, error) {
	return m.createPreferenceFunc(ctx, items, externalRef)
}

func (m *mockPaymentGateway) GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	return m.getPaymentFunc(ctx, paymentID)
}

func newCheckoutServiceForTest(db *sql.DB, gw gateway.PaymentGateway) *CheckoutService {
	return NewCheckoutService(
		db,
		catalogrepo.NewMySQLProductRepository(db),
		orderrepo.NewMySQLOrderRepository(db),
		orderrepo.NewMySQLOrderItemRepository(db),
		billingrepo.NewMySQLPaymentRepository(db),
		gw,
		zap.NewNop(),
		decimal.RequireFromString("15.00"),
		domain.CurrencyPEN,
		5*time.Second,
	)
}

func seedCheckoutFixture(t *testing.T, db *sql.DB) (customer *domain.Customer, address *domain.Address, productID uint) {
	testutil.SetupTestTables(t, db)
	testutil.ResetTestTables(t, db)

	result, err := db.Exec(
		"INSERT INTO Customers (email, firstName, lastName) VALUES (?, ?, ?)",
		"ana@example.com", "Ana", "Quispe")
	require.NoError(t, err)
	customerID, err := result.LastInsertId()
	require.NoError(t, err)

	result, err = db.Exec(
		"INSERT INTO Addresses (customerId, addressLine, city) VALUES (?, ?, ?)",
		customerID, "Av. Arequipa 123", "Lima")
	require.NoError(t, err)
	addressID, err := result.LastInsertId()
	require.NoError(t, err)

	result, err = db.Exec(
		"INSERT INTO Products (sku, name, price, qtyStock) VALUES (?, ?, ?, ?)",
		"SKU-1", "Mechanical Keyboard", "50.00", 10)
	require.NoError(t, err)
	pid, err := result.LastInsertId()
	require.NoError(t, err)

	customer = &domain.Customer{ID: uint(customerID), Email: "ana@example.com"}
	address = &domain.Address{ID: uint(addressID), CustomerID: uint(customerID)}
	return customer, address, uint(pid)
}

func TestPlaceOrder_GatewayHomeDelivery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	customer, address, productID := seedCheckoutFixture(t, db)

	var capturedRef string
	gw := &mockPaymentGateway{
		createPreferenceFunc: func(ctx context.Context, items []gateway.PreferenceItem, externalRef string) (string, error) {
			capturedRef = externalRef
			// One line per product plus the shipping line.
			require.Len(t, items, 2)
			assert.Equal(t, "Mechanical Keyboard", items[0].Title)
			assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("50.00")))
			assert.Equal(t, "Shipping cost", items[1].Title)
			return "pref-123", nil
		},
	}

	svc := newCheckoutServiceForTest(db, gw)

	flow, err := domain.SelectPaymentFlow(domain.DeliveryHome, domain.PaymentMethodGateway)
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), dto.CheckoutOrder{
		Customer:     customer,
		DeliveryType: domain.DeliveryHome,
		Flow:         flow,
		Address:      address,
		Lines:        []dto.CartLine{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-123", result.PreferenceRef)
	assert.NotEmpty(t, capturedRef)

	var status, subtotal, shippingCost, total string
	var shippingAddressID sql.NullInt64
	require.NoError(t, db.QueryRow(
		"SELECT status, subtotal, shippingCost, total, shippingAddressId FROM Orders WHERE id = ?",
		result.OrderID).Scan(&status, &subtotal, &shippingCost, &total, &shippingAddressID))
	assert.Equal(t, "PENDING", status)
	assert.Equal(t, "100.00", subtotal)
	assert.Equal(t, "15.00", shippingCost)
	assert.Equal(t, "115.00", total)
	assert.True(t, shippingAddressID.Valid)

	var qtyStock int
	require.NoError(t, db.QueryRow("SELECT qtyStock FROM Products WHERE id = ?", productID).Scan(&qtyStock))
	assert.Equal(t, 8, qtyStock)

	// Gateway checkouts leave no payment row until the notification lands.
	var paymentCount int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM Payments WHERE orderId = ?", result.OrderID).Scan(&paymentCount))
	assert.Equal(t, 0, paymentCount)
}

func TestPlaceOrder_CashOnPickup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	customer, _, productID := seedCheckoutFixture(t, db)

	gw := &mockPaymentGateway{
		createPreferenceFunc: func(ctx context.Context, items []gateway.PreferenceItem, externalRef string) (string, error) {
			t.Fatal("gateway must not be called for a cash checkout")
			return "", nil
		},
	}

	svc := newCheckoutServiceForTest(db, gw)

	flow, err := domain.SelectPaymentFlow(domain.DeliveryPickup, domain.PaymentMethodCash)
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), dto.CheckoutOrder{
		Customer:     customer,
		DeliveryType: domain.DeliveryPickup,
		Flow:         flow,
		Lines:        []dto.CartLine{{ProductID: productID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Empty(t, result.PreferenceRef)

	var status, shippingCost, total string
	require.NoError(t, db.QueryRow(
		"SELECT status, shippingCost, total FROM Orders WHERE id = ?",
		result.OrderID).Scan(&status, &shippingCost, &total))
	assert.Equal(t, "CONFIRMED", status)
	assert.Equal(t, "0.00", shippingCost)
	assert.Equal(t, "150.00", total)

	var method, paymentStatus, txID string
	require.NoError(t, db.QueryRow(
		"SELECT method, status, transactionId FROM Payments WHERE orderId = ?",
		result.OrderID).Scan(&method, &paymentStatus, &txID))
	assert.Equal(t, "CASH", method)
	assert.Equal(t, "PENDING", paymentStatus)
	assert.Equal(t, "CASH-"+result.OrderCode, txID)
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	customer, _, productID := seedCheckoutFixture(t, db)
	svc := newCheckoutServiceForTest(db, &mockPaymentGateway{})

	flow, err := domain.SelectPaymentFlow(domain.DeliveryPickup, domain.PaymentMethodCash)
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), dto.CheckoutOrder{
		Customer:     customer,
		DeliveryType: domain.DeliveryPickup,
		Flow:         flow,
		Lines:        []dto.CartLine{{ProductID: productID, Quantity: 11}},
	})

	assert.Nil(t, result)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	var qtyStock int
	require.NoError(t, db.QueryRow("SELECT qtyStock FROM Products WHERE id = ?", productID).Scan(&qtyStock))
	assert.Equal(t, 10, qtyStock)

	var orderCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Orders").Scan(&orderCount))
	assert.Equal(t, 0, orderCount)
}

func TestPlaceOrder_GatewayFailureRollsBackReservation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	customer, address, productID := seedCheckoutFixture(t, db)

	gw := &mockPaymentGateway{
		createPreferenceFunc: func(ctx context.Context, items []gateway.PreferenceItem, externalRef string) (string, error) {
			return "", apperrors.NewGatewayError("payment gateway unavailable", nil)
		},
	}

	svc := newCheckoutServiceForTest(db, gw)

	flow, err := domain.SelectPaymentFlow(domain.DeliveryHome, domain.PaymentMethodGateway)
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), dto.CheckoutOrder{
		Customer:     customer,
		DeliveryType: domain.DeliveryHome,
		Flow:         flow,
		Address:      address,
		Lines:        []dto.CartLine{{ProductID: productID, Quantity: 2}},
	})

	assert.Nil(t, result)
	_, ok := apperrors.IsGatewayError(err)
	assert.True(t, ok)

	// The whole checkout rolled back with the gateway call.
	var qtyStock int
	require.NoError(t, db.QueryRow("SELECT qtyStock FROM Products WHERE id = ?", productID).Scan(&qtyStock))
	assert.Equal(t, 10, qtyStock)

	var orderCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Orders").Scan(&orderCount))
	assert.Equal(t, 0, orderCount)
}

func TestPlaceOrder_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	customer, _, productID := seedCheckoutFixture(t, db)
	_, err := db.Exec("UPDATE Products SET qtyStock = 5 WHERE id = ?", productID)
	require.NoError(t, err)

	svc := newCheckoutServiceForTest(db, &mockPaymentGateway{})

	flow, err := domain.SelectPaymentFlow(domain.DeliveryPickup, domain.PaymentMethodCash)
	require.NoError(t, err)

	// Two checkouts each want 3 of 5; their combined demand exceeds stock,
	// so exactly one may commit.
	place := func() error {
		_, err := svc.PlaceOrder(context.Background(), dto.CheckoutOrder{
			Customer:     customer,
			DeliveryType: domain.DeliveryPickup,
			Flow:         flow,
			Lines:        []dto.CartLine{{ProductID: productID, Quantity: 3}},
		})
		return err
	}

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { results <- place() }()
	}

	var successes, conflicts int
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			successes++
			continue
		}
		_, ok := apperrors.IsConflictError(err)
		require.True(t, ok, "unexpected error: %v", err)
		conflicts++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	var qtyStock int
	require.NoError(t, db.QueryRow("SELECT qtyStock FROM Products WHERE id = ?", productID).Scan(&qtyStock))
	assert.Equal(t, 2, qtyStock)

	// Only the winner's order and reservation persist.
	var orderCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Orders").Scan(&orderCount))
	assert.Equal(t, 1, orderCount)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	customer, _, _ := seedCheckoutFixture(t, db)
	svc := newCheckoutServiceForTest(db, &mockPaymentGateway{})

	flow, err := domain.SelectPaymentFlow(domain.DeliveryPickup, domain.PaymentMethodCash)
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), dto.CheckoutOrder{
		Customer:     customer,
		DeliveryType: domain.DeliveryPickup,
		Flow:         flow,
		Lines:        []dto.CartLine{{ProductID: 9999, Quantity: 1}},
	})

	assert.Nil(t, result)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
