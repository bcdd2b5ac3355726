package usecase

import (
	"context"

	"pixelpro/internal/domain"
	apperrors "pixelpro/internal/errors"
)

type OrderQueryRepository interface {
	FindByIDWithDetails(ctx context.Context, id uint) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID uint, status *domain.OrderStatus) ([]domain.Order, error)
}

type GetOrderUseCase struct {
	orderRepo    OrderQueryRepository
	customerRepo CustomerRepository
}

func NewGetOrderUseCase(orderRepo OrderQueryRepository, customerRepo CustomerRepository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo, customerRepo: customerRepo}
}

// GetOrder returns the full order snapshot. When requesterEmail is non-empty
// the order must belong to that customer.
func (uc *GetOrderUseCase) GetOrder(ctx context.Context, orderID uint, requesterEmail string) (*domain.Order, error) {
	order, err := uc.orderRepo.FindByIDWithDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if requesterEmail != "" {
		customer, err := uc.customerRepo.FindByEmail(ctx, requesterEmail)
		if err != nil {
			return nil, err
		}
		if order.CustomerID != customer.ID {
			// Do not leak the order's existence to other customers.
			return nil, apperrors.NewNotFoundError("order not found")
		}
	}

	return order, nil
}

// ListOrders returns a customer's orders, newest first, optionally filtered
// by status.
func (uc *GetOrderUseCase) ListOrders(ctx context.Context, email string, status string) ([]domain.Order, error) {
	customer, err := uc.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var statusFilter *domain.OrderStatus
	if status != "" {
		parsed, ok := domain.ParseOrderStatus(status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid order status", apperrors.ValidationDetail{
				Field:   "status",
				Message: "status must be one of PENDING, CONFIRMED, PREPARING, SHIPPED, DELIVERED, CANCELLED",
			})
		}
		statusFilter = &parsed
	}

	return uc.orderRepo.FindByCustomer(ctx, customer.ID, statusFilter)
}
