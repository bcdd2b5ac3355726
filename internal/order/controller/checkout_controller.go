package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pixelpro/internal/dto"
	apperrors "pixelpro/internal/errors"
)

type CheckoutUseCase interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResult, error)
}

type CheckoutController struct {
	useCase CheckoutUseCase
	logger  *zap.Logger
}

func NewCheckoutController(useCase CheckoutUseCase, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateCheckoutRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		writeValidationError(w, logger, ve.Message, ve.Details...)
		return
	}

	result, err := c.useCase.Checkout(r.Context(), req)
	if err != nil {
		writeUseCaseError(w, traceID, err, logger)
		return
	}

	writeJSON(w, logger, http.StatusCreated, dto.CheckoutResponse{
		TraceID:       traceID,
		OrderID:       result.OrderID,
		OrderCode:     result.OrderCode,
		PreferenceRef: result.PreferenceRef,
		Timestamp:     time.Now().UTC(),
	})
}

func validateCheckoutRequest(req dto.CheckoutRequest) error {
	var details []apperrors.ValidationDetail

	if req.CustomerEmail == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customerEmail",
			Message: "customerEmail is required",
		})
	}

	if req.DeliveryType == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "deliveryType",
			Message: "deliveryType is required",
		})
	}

	if req.PaymentMethod == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: "paymentMethod is required",
		})
	}

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if len(req.Items) > 100 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items exceeds maximum of 100",
		})
	}

	productIDMap := make(map[uint]bool)

	for idx, item := range req.Items {
		if item.ProductID == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "each productId must be a positive integer",
			})
		}

		if productIDMap[item.ProductID] {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "productId must not be duplicated",
			})
		}
		productIDMap[item.ProductID] = true

		if item.Quantity < 1 || item.Quantity > 10000 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be between 1 and 10000",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}
