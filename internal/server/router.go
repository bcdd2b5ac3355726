package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pixelpro/internal/billing"
	"pixelpro/internal/order"
)

func NewRouter(orderModule *order.Module, billingModule *billing.Module, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/store", func(r chi.Router) {
			r.Post("/checkout", orderModule.Checkout.Checkout)
			r.Get("/orders", orderModule.Orders.ListOrders)
			r.Get("/orders/{orderId}", orderModule.Orders.GetOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Patch("/orders/{orderId}/status", orderModule.Orders.UpdateStatus)
			r.Get("/orders/{orderId}", orderModule.Orders.GetOrder)
		})

		r.Post("/billing/webhook", billingModule.Webhook.HandleNotification)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
