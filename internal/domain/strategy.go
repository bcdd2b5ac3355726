package domain

import "errors"

// ErrConflictingDeliveryPayment is returned when the requested delivery type
// and payment method cannot be combined.
var ErrConflictingDeliveryPayment = errors.New(
	"cash on pickup is only available for store pickup orders; home delivery must be paid online")

// PaymentFlow is the checkout branch resolved from the delivery type and
// payment method.
type PaymentFlow struct {
	Method          PaymentMethod
	InitialStatus   OrderStatus
	RequiresAddress bool
}

// SelectPaymentFlow decides the checkout branch for a (deliveryType,
// paymentMethod) pair. Cash is forbidden for home delivery; every other
// combination is allowed. Gateway orders start PENDING awaiting external
// confirmation, cash orders start CONFIRMED with payment due at pickup.
func SelectPaymentFlow(delivery DeliveryType, method PaymentMethod) (PaymentFlow, error) {
	if delivery == DeliveryHome && method == PaymentMethodCash {
		return PaymentFlow{}, ErrConflictingDeliveryPayment
	}

	flow := PaymentFlow{
		Method:          method,
		RequiresAddress: delivery == DeliveryHome,
	}

	switch method {
	case PaymentMethodGateway:
		flow.InitialStatus = OrderStatusPending
	case PaymentMethodCash:
		flow.InitialStatus = OrderStatusConfirmed
	}

	return flow, nil
}
