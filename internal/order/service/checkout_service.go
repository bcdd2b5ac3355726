package service

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pixelpro/internal/billing/gateway"
	"pixelpro/internal/domain"
	"pixelpro/internal/dto"
	apperrors "pixelpro/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Product, error)
	Reserve(ctx context.Context, tx *sql.Tx, productID uint, quantity int) error
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error)
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, payment domain.Payment) (uint, error)
}

// CheckoutService creates an order inside one database transaction: stock
// reservation, price freezing, order and line persistence and the payment
// branch all commit or roll back together. The gateway call happens before
// commit so a gateway failure undoes every reservation.
type CheckoutService struct {
	db           TransactionManager
	productRepo  ProductRepository
	orderRepo    OrderRepository
	itemRepo     OrderItemRepository
	paymentRepo  PaymentRepository
	gateway      gateway.PaymentGateway
	logger       *zap.Logger
	shippingCost decimal.Decimal
	currency     string
	txTimeout    time.Duration
}

func NewCheckoutService(
	db TransactionManager,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	paymentRepo PaymentRepository,
	gw gateway.PaymentGateway,
	logger *zap.Logger,
	shippingCost decimal.Decimal,
	currency string,
	txTimeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		db:           db,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		paymentRepo:  paymentRepo,
		gateway:      gw,
		logger:       logger,
		shippingCost: shippingCost,
		currency:     currency,
		txTimeout:    txTimeout,
	}
}

func (s *CheckoutService) PlaceOrder(ctx context.Context, checkout dto.CheckoutOrder) (*dto.CheckoutResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback on any exit path; MySQL ignores it once committed.
	defer tx.Rollback()

	// Line assembly: reserve stock and freeze the unit price per cart line,
	// in input order.
	items, subtotal, err := s.assembleLines(txCtx, tx, checkout.Lines)
	if err != nil {
		return nil, err
	}

	shippingCost := decimal.Zero
	if checkout.DeliveryType == domain.DeliveryHome {
		shippingCost = s.shippingCost
	}

	order := &domain.Order{
		Code:         domain.NewOrderCode(),
		Status:       checkout.Flow.InitialStatus,
		DeliveryType: checkout.DeliveryType,
		CustomerID:   checkout.Customer.ID,
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		Discount:     decimal.Zero,
		Total:        subtotal.Add(shippingCost),
	}
	if checkout.Address != nil {
		addressID := checkout.Address.ID
		order.ShippingAddressID = &addressID
	}

	if !order.TotalsConsistent() {
		return nil, apperrors.NewInternalError("order totals are inconsistent", nil)
	}

	orderID, err := s.orderRepo.Insert(txCtx, tx, order)
	if err != nil {
		s.logger.Error("failed to insert order", zap.Error(err))
		return nil, err
	}
	order.ID = orderID

	for i := range items {
		items[i].OrderID = orderID
		if _, err := s.itemRepo.Insert(txCtx, tx, items[i]); err != nil {
			s.logger.Error("failed to insert order item", zap.Uint("orderId", orderID), zap.Error(err))
			return nil, err
		}
	}

	result := &dto.CheckoutResult{
		OrderID:   orderID,
		OrderCode: order.Code,
	}

	switch checkout.Flow.Method {
	case domain.PaymentMethodGateway:
		preferenceRef, err := s.createGatewayPreference(txCtx, order, items)
		if err != nil {
			s.logger.Warn("gateway preference failed, rolling checkout back",
				zap.Uint("orderId", orderID), zap.Error(err))
			return nil, err
		}
		result.PreferenceRef = preferenceRef

	case domain.PaymentMethodCash:
		payment := domain.Payment{
			OrderID:       orderID,
			Amount:        order.Total,
			Currency:      s.currency,
			Method:        domain.PaymentMethodCash,
			Status:        domain.PaymentStatusPending,
			TransactionID: "CASH-" + order.Code,
		}
		if _, err := s.paymentRepo.Insert(txCtx, tx, payment); err != nil {
			s.logger.Error("failed to insert cash payment", zap.Uint("orderId", orderID), zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit checkout", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("checkout committed",
		zap.Uint("orderId", orderID),
		zap.String("orderCode", order.Code),
		zap.String("status", string(order.Status)),
		zap.String("total", order.Total.String()))

	return result, nil
}

func (s *CheckoutService) assembleLines(ctx context.Context, tx *sql.Tx, lines []dto.CartLine) ([]domain.OrderItem, decimal.Decimal, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		product, err := s.productRepo.FindByIDForUpdate(ctx, tx, line.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		if err := s.productRepo.Reserve(ctx, tx, line.ProductID, line.Quantity); err != nil {
			s.logger.Warn("stock reservation failed",
				zap.Uint("productId", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err))
			return nil, decimal.Zero, err
		}

		item := domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price, // frozen at this instant
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.LineTotal())
	}

	return items, subtotal, nil
}

func (s *CheckoutService) createGatewayPreference(ctx context.Context, order *domain.Order, items []domain.OrderItem) (string, error) {
	prefItems := make([]gateway.PreferenceItem, 0, len(items)+1)
	for _, item := range items {
		prefItems = append(prefItems, gateway.PreferenceItem{
			ID:         strconv.FormatUint(uint64(item.ProductID), 10),
			Title:      item.ProductName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			CurrencyID: s.currency,
		})
	}

	if order.ShippingCost.IsPositive() {
		prefItems = append(prefItems, gateway.PreferenceItem{
			Title:      "Shipping cost",
			Quantity:   1,
			UnitPrice:  order.ShippingCost,
			CurrencyID: s.currency,
		})
	}

	externalRef := strconv.FormatUint(uint64(order.ID), 10)
	return s.gateway.CreatePreference(ctx, prefItems, externalRef)
}
