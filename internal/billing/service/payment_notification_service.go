package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pixelpro/internal/billing/gateway"
	"pixelpro/internal/domain"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type GatewayClient interface {
	GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error)
}

type OrderRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint, current, next domain.OrderStatus) error
}

type OrderItemRepository interface {
	FindByOrderID(ctx context.Context, tx *sql.Tx, orderID uint) ([]domain.OrderItem, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, payment domain.Payment) (uint, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
}

type InvoiceRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, invoice domain.Invoice) (uint, error)
}

type ProductRepository interface {
	Release(ctx context.Context, tx *sql.Tx, productID uint, quantity int) error
}

// PaymentNotificationService resolves PENDING gateway checkouts when the
// gateway calls back. An approved payment confirms the order and issues the
// invoice; a rejected payment cancels the order and releases its stock.
// The gateway payment id is the deduplication key: replaying a notification
// that was already applied is a no-op.
type PaymentNotificationService struct {
	db          TransactionManager
	gateway     GatewayClient
	orderRepo   OrderRepository
	itemRepo    OrderItemRepository
	paymentRepo PaymentRepository
	invoiceRepo InvoiceRepository
	productRepo ProductRepository
	logger      *zap.Logger
	currency    string
	txTimeout   time.Duration
}

func NewPaymentNotificationService(
	db TransactionManager,
	gw GatewayClient,
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	paymentRepo PaymentRepository,
	invoiceRepo InvoiceRepository,
	productRepo ProductRepository,
	logger *zap.Logger,
	currency string,
	txTimeout time.Duration,
) *PaymentNotificationService {
	return &PaymentNotificationService{
		db:          db,
		gateway:     gw,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		logger:      logger,
		currency:    currency,
		txTimeout:   txTimeout,
	}
}

func (s *PaymentNotificationService) HandleNotification(ctx context.Context, gatewayPaymentID string) error {
	gp, err := s.gateway.GetPayment(ctx, gatewayPaymentID)
	if err != nil {
		return err
	}

	if gp.Status != gateway.PaymentStatusApproved && gp.Status != gateway.PaymentStatusRejected {
		s.logger.Warn("ignoring notification with unresolved payment status",
			zap.String("gatewayPaymentId", gp.ID),
			zap.String("status", gp.Status))
		return nil
	}

	orderID, err := strconv.ParseUint(gp.ExternalReference, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing external reference %q: %w", gp.ExternalReference, err)
	}

	existing, err := s.paymentRepo.FindByTransactionID(ctx, gp.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.Info("notification already applied, skipping",
			zap.String("gatewayPaymentId", gp.ID),
			zap.Uint("orderId", existing.OrderID))
		return nil
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.FindByIDForUpdate(txCtx, tx, uint(orderID))
	if err != nil {
		return err
	}

	// Re-validate under the row lock: only a PENDING order may be settled
	// by a notification.
	if order.Status != domain.OrderStatusPending {
		s.logger.Info("order already settled, ignoring notification",
			zap.Uint("orderId", order.ID),
			zap.String("status", string(order.Status)))
		return nil
	}

	switch gp.Status {
	case gateway.PaymentStatusApproved:
		err = s.confirmOrder(txCtx, tx, order, gp.ID)
	case gateway.PaymentStatusRejected:
		err = s.cancelOrder(txCtx, tx, order, gp.ID)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit payment resolution",
			zap.Uint("orderId", order.ID), zap.Error(err))
		return err
	}

	s.logger.Info("payment notification applied",
		zap.Uint("orderId", order.ID),
		zap.String("gatewayPaymentId", gp.ID),
		zap.String("outcome", gp.Status))

	return nil
}

func (s *PaymentNotificationService) confirmOrder(ctx context.Context, tx *sql.Tx, order *domain.Order, gatewayPaymentID string) error {
	paidAt := time.Now().UTC()

	payment := domain.Payment{
		OrderID:       order.ID,
		Amount:        order.Total,
		Currency:      s.currency,
		Method:        domain.PaymentMethodGateway,
		Status:        domain.PaymentStatusConfirmed,
		TransactionID: gatewayPaymentID,
		PaidAt:        &paidAt,
	}
	if _, err := s.paymentRepo.Insert(ctx, tx, payment); err != nil {
		return err
	}

	invoice := domain.Invoice{
		OrderID:      order.ID,
		Number:       "INV-" + order.Code,
		DocumentHash: invoiceHash(order.Code, order.Total.String(), paidAt),
		IssuedAt:     paidAt,
	}
	if _, err := s.invoiceRepo.Insert(ctx, tx, invoice); err != nil {
		return err
	}

	return s.orderRepo.UpdateStatusTx(ctx, tx, order.ID, domain.OrderStatusPending, domain.OrderStatusConfirmed)
}

func (s *PaymentNotificationService) cancelOrder(ctx context.Context, tx *sql.Tx, order *domain.Order, gatewayPaymentID string) error {
	payment := domain.Payment{
		OrderID:       order.ID,
		Amount:        order.Total,
		Currency:      s.currency,
		Method:        domain.PaymentMethodGateway,
		Status:        domain.PaymentStatusRejected,
		TransactionID: gatewayPaymentID,
	}
	if _, err := s.paymentRepo.Insert(ctx, tx, payment); err != nil {
		return err
	}

	if err := s.orderRepo.UpdateStatusTx(ctx, tx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled); err != nil {
		return err
	}

	// Compensate the reservation made at checkout.
	items, err := s.itemRepo.FindByOrderID(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.productRepo.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return nil
}

func invoiceHash(orderCode, total string, issuedAt time.Time) string {
	sum := sha256.Sum256([]byte(orderCode + "|" + total + "|" + issuedAt.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
