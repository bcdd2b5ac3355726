package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pixelpro/internal/domain"
	apperrors "pixelpro/internal/errors"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, current, next domain.OrderStatus) error
}

// UpdateStatusUseCase is the administrative mutation path for order status.
// Together with the payment notification handler it is the only writer of the
// status column, and both go through the guarded repository update.
type UpdateStatusUseCase struct {
	orderRepo OrderRepository
	logger    *zap.Logger
}

func NewUpdateStatusUseCase(orderRepo OrderRepository, logger *zap.Logger) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{orderRepo: orderRepo, logger: logger}
}

func (uc *UpdateStatusUseCase) UpdateStatus(ctx context.Context, orderID uint, newStatus string) (*domain.Order, error) {
	next, ok := domain.ParseOrderStatus(newStatus)
	if !ok {
		return nil, apperrors.NewValidationError("invalid order status", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("%q is not a valid order status", newStatus),
		})
	}

	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateTransition(order.Status, next); err != nil {
		var ite *domain.InvalidTransitionError
		if errors.As(err, &ite) {
			return nil, apperrors.NewConflictError(ite.Error())
		}
		return nil, err
	}

	// Same-status transition is a pure no-op.
	if order.Status == next {
		return uc.orderRepo.FindByIDWithDetails(ctx, orderID)
	}

	if err := uc.orderRepo.UpdateStatus(ctx, orderID, order.Status, next); err != nil {
		// The guard lost against a concurrent writer; re-read so the
		// caller sees the state that won.
		if _, ok := apperrors.IsConflictError(err); ok {
			current, readErr := uc.orderRepo.FindByID(ctx, orderID)
			if readErr == nil {
				return nil, apperrors.NewConflictError(fmt.Sprintf(
					"order %d was updated concurrently, current status is %s", orderID, current.Status))
			}
		}
		return nil, err
	}

	uc.logger.Info("order status updated",
		zap.Uint("orderId", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)))

	return uc.orderRepo.FindByIDWithDetails(ctx, orderID)
}
