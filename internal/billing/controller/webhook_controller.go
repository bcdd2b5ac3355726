package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pixelpro/internal/dto"
	apperrors "pixelpro/internal/errors"
)

type PaymentNotificationService interface {
	HandleNotification(ctx context.Context, gatewayPaymentID string) error
}

// WebhookController is the intake for gateway payment notifications. The
// gateway retries on non-2xx responses, so only errors worth retrying
// (infrastructure, gateway fetch) return one.
type WebhookController struct {
	service PaymentNotificationService
	logger  *zap.Logger
}

func NewWebhookController(service PaymentNotificationService, logger *zap.Logger) *WebhookController {
	return &WebhookController{
		service: service,
		logger:  logger,
	}
}

func (c *WebhookController) HandleNotification(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var notification dto.WebhookNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		logger.Warn("invalid webhook payload", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if notification.Data.ID == "" {
		logger.Warn("webhook payload missing data.id")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	logger.Info("payment notification received",
		zap.String("gatewayPaymentId", notification.Data.ID),
		zap.String("type", notification.Type),
		zap.String("action", notification.Action))

	if err := c.service.HandleNotification(r.Context(), notification.Data.ID); err != nil {
		// An unknown payment id is not retryable; everything else is.
		if _, ok := apperrors.IsNotFoundError(err); ok {
			logger.Warn("notification for unknown payment", zap.Error(err))
			w.WriteHeader(http.StatusOK)
			return
		}

		logger.Error("failed to process payment notification", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
