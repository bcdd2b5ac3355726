package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pixelpro/internal/domain"
	"pixelpro/internal/dto"
	apperrors "pixelpro/internal/errors"
)

type UpdateStatusUseCase interface {
	UpdateStatus(ctx context.Context, orderID uint, newStatus string) (*domain.Order, error)
}

type GetOrderUseCase interface {
	GetOrder(ctx context.Context, orderID uint, requesterEmail string) (*domain.Order, error)
	ListOrders(ctx context.Context, email string, status string) ([]domain.Order, error)
}

type OrderController struct {
	updateStatus UpdateStatusUseCase
	getOrder     GetOrderUseCase
	logger       *zap.Logger
}

func NewOrderController(updateStatus UpdateStatusUseCase, getOrder GetOrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		updateStatus: updateStatus,
		getOrder:     getOrder,
		logger:       logger,
	}
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, logger)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.updateStatus.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeUseCaseError(w, traceID, err, logger)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.NewOrderResponse(order))
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, logger)
	if !ok {
		return
	}

	// Empty email means an administrative read with no ownership check.
	requesterEmail := r.URL.Query().Get("email")

	order, err := c.getOrder.GetOrder(r.Context(), orderID, requesterEmail)
	if err != nil {
		writeUseCaseError(w, traceID, err, logger)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.NewOrderResponse(order))
}

func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	email := r.URL.Query().Get("email")
	if email == "" {
		writeValidationError(w, logger, "email is required", apperrors.ValidationDetail{
			Field:   "email",
			Message: "email query parameter is required",
		})
		return
	}

	orders, err := c.getOrder.ListOrders(r.Context(), email, r.URL.Query().Get("status"))
	if err != nil {
		writeUseCaseError(w, traceID, err, logger)
		return
	}

	responses := make([]*dto.OrderResponse, len(orders))
	for i := range orders {
		responses[i] = dto.NewOrderResponse(&orders[i])
	}

	writeJSON(w, logger, http.StatusOK, responses)
}

func (c *OrderController) parseOrderID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uint, bool) {
	orderIDStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil || orderID == 0 {
		logger.Warn("invalid orderId in path", zap.String("orderId", orderIDStr))
		writeValidationError(w, logger, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return uint(orderID), true
}
