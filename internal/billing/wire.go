package billing

import (
	"database/sql"

	"go.uber.org/zap"

	"pixelpro/internal/billing/controller"
	"pixelpro/internal/billing/gateway"
	billingrepo "pixelpro/internal/billing/repository"
	"pixelpro/internal/billing/service"
	catalogrepo "pixelpro/internal/catalog/repository"
	"pixelpro/internal/config"
	orderrepo "pixelpro/internal/order/repository"
)

type Module struct {
	Gateway *gateway.HTTPClient
	Webhook *controller.WebhookController
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Module {
	gw := gateway.NewHTTPClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.AccessToken,
		cfg.Gateway.Timeout,
		logger,
	)

	notificationSvc := service.NewPaymentNotificationService(
		db,
		gw,
		orderrepo.NewMySQLOrderRepository(db),
		orderrepo.NewMySQLOrderItemRepository(db),
		billingrepo.NewMySQLPaymentRepository(db),
		billingrepo.NewMySQLInvoiceRepository(db),
		catalogrepo.NewMySQLProductRepository(db),
		logger,
		cfg.Checkout.Currency,
		cfg.Checkout.TxTimeout,
	)

	return &Module{
		Gateway: gw,
		Webhook: controller.NewWebhookController(notificationSvc, logger),
	}
}
