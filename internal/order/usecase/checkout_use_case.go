package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"pixelpro/internal/domain"
	"pixelpro/internal/dto"
	apperrors "pixelpro/internal/errors"
)

type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type AddressRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Address, error)
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, checkout dto.CheckoutOrder) (*dto.CheckoutResult, error)
}

// CheckoutUseCase runs the pre-transaction gates of a checkout: payment flow
// selection, customer resolution and address resolution. Everything past
// those gates happens inside the checkout service's transaction, so a failure
// there leaves no stock reserved.
type CheckoutUseCase struct {
	customerRepo     CustomerRepository
	addressRepo      AddressRepository
	checkoutSvc      CheckoutService
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewCheckoutUseCase(
	customerRepo CustomerRepository,
	addressRepo AddressRepository,
	checkoutSvc CheckoutService,
	logger *zap.Logger,
	maxRetryAttempts int,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		customerRepo:     customerRepo,
		addressRepo:      addressRepo,
		checkoutSvc:      checkoutSvc,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *CheckoutUseCase) Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResult, error) {
	uc.logger.Info("checkout started",
		zap.String("customerEmail", req.CustomerEmail),
		zap.String("deliveryType", req.DeliveryType),
		zap.String("paymentMethod", req.PaymentMethod),
		zap.Int("lineCount", len(req.Items)))

	deliveryType, ok := domain.ParseDeliveryType(req.DeliveryType)
	if !ok {
		return nil, apperrors.NewValidationError("invalid delivery type", apperrors.ValidationDetail{
			Field:   "deliveryType",
			Message: "deliveryType must be HOME_DELIVERY or STORE_PICKUP",
		})
	}

	paymentMethod, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, apperrors.NewValidationError("invalid payment method", apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: "paymentMethod must be GATEWAY or CASH",
		})
	}

	flow, err := domain.SelectPaymentFlow(deliveryType, paymentMethod)
	if err != nil {
		if errors.Is(err, domain.ErrConflictingDeliveryPayment) {
			return nil, apperrors.NewConflictError(err.Error())
		}
		return nil, err
	}

	customer, err := uc.customerRepo.FindByEmail(ctx, req.CustomerEmail)
	if err != nil {
		return nil, err
	}

	var address *domain.Address
	if flow.RequiresAddress {
		if req.AddressID == nil {
			return nil, apperrors.NewValidationError("address is required for home delivery", apperrors.ValidationDetail{
				Field:   "addressId",
				Message: "addressId is required when deliveryType is HOME_DELIVERY",
			})
		}

		address, err = uc.addressRepo.FindByID(ctx, *req.AddressID)
		if err != nil {
			return nil, err
		}

		if address.CustomerID != customer.ID {
			return nil, apperrors.NewConflictError("address does not belong to the customer")
		}
	}

	lines := make([]dto.CartLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = dto.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	checkout := dto.CheckoutOrder{
		Customer:     customer,
		DeliveryType: deliveryType,
		Flow:         flow,
		Address:      address,
		Lines:        lines,
	}

	return uc.placeOrderWithRetry(ctx, checkout)
}

func (uc *CheckoutUseCase) placeOrderWithRetry(ctx context.Context, checkout dto.CheckoutOrder) (*dto.CheckoutResult, error) {
	maxAttempts := uc.maxRetryAttempts
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := uc.checkoutSvc.PlaceOrder(ctx, checkout)
		if err == nil {
			return result, nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				backoff := backoffs[(attempt-1)%len(backoffs)]
				jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
				time.Sleep(jitter)
				uc.logger.Warn("deadlock detected, retrying checkout",
					zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts))
				continue
			}
			break
		}

		return nil, err
	}

	return nil, apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
