package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "pixelpro/internal/errors"
)

type errorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

// writeUseCaseError maps the error taxonomy to HTTP statuses: validation 400,
// not-found 404, conflict 409, gateway 502, everything else 500.
func writeUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeValidationError(w, logger, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error(), logger)
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		writeErrorResponse(w, traceID, http.StatusConflict, "CONFLICT", err.Error(), logger)
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		writeErrorResponse(w, traceID, http.StatusConflict, "DEADLOCK", err.Error(), logger)
		return
	}

	if _, ok := apperrors.IsGatewayError(err); ok {
		logger.Error("payment gateway failure", zap.Error(err))
		writeErrorResponse(w, traceID, http.StatusBadGateway, "GATEWAY_UNAVAILABLE",
			"payment gateway is unavailable, the checkout was not completed", logger)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR",
		"an unexpected error occurred", logger)
}

func writeErrorResponse(w http.ResponseWriter, traceID string, statusCode int, code, message string, logger *zap.Logger) {
	writeJSON(w, logger, statusCode, errorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func writeValidationError(w http.ResponseWriter, logger *zap.Logger, message string, details ...apperrors.ValidationDetail) {
	writeJSON(w, logger, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
