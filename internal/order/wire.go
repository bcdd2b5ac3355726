package order

import (
	"database/sql"

	"go.uber.org/zap"

	"pixelpro/internal/billing/gateway"
	billingrepo "pixelpro/internal/billing/repository"
	catalogrepo "pixelpro/internal/catalog/repository"
	"pixelpro/internal/config"
	customerrepo "pixelpro/internal/customer/repository"
	"pixelpro/internal/order/controller"
	orderrepo "pixelpro/internal/order/repository"
	"pixelpro/internal/order/service"
	"pixelpro/internal/order/usecase"
)

type Module struct {
	Checkout *controller.CheckoutController
	Orders   *controller.OrderController
}

func NewModule(db *sql.DB, cfg *config.Config, gw gateway.PaymentGateway, logger *zap.Logger) *Module {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	itemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	productRepo := catalogrepo.NewMySQLProductRepository(db)
	customerRepo := customerrepo.NewMySQLCustomerRepository(db)
	addressRepo := customerrepo.NewMySQLAddressRepository(db)
	paymentRepo := billingrepo.NewMySQLPaymentRepository(db)

	checkoutSvc := service.NewCheckoutService(
		db,
		productRepo,
		orderRepo,
		itemRepo,
		paymentRepo,
		gw,
		logger,
		cfg.Checkout.ShippingCost,
		cfg.Checkout.Currency,
		cfg.Checkout.TxTimeout,
	)

	checkoutUC := usecase.NewCheckoutUseCase(
		customerRepo,
		addressRepo,
		checkoutSvc,
		logger,
		cfg.Checkout.MaxRetryAttempts,
	)

	updateStatusUC := usecase.NewUpdateStatusUseCase(orderRepo, logger)
	getOrderUC := usecase.NewGetOrderUseCase(orderRepo, customerRepo)

	return &Module{
		Checkout: controller.NewCheckoutController(checkoutUC, logger),
		Orders:   controller.NewOrderController(updateStatusUC, getOrderUC, logger),
	}
}
