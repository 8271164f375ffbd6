package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bloem-market/bloem-backend/internal/modules/order"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	// ErrPaymentProvider wraps provider call failures. The order is left in
	// its prior state, so the caller can safely retry.
	ErrPaymentProvider = errors.New("payment provider request failed")
	// ErrPaymentNotSucceeded means the provider reports the intent in any
	// state other than succeeded.
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
)

// Service is the bridge between orders and the external payment provider: it
// binds an order total to a payment intent and reconciles the provider's
// confirmation back into the order engine.
type Service interface {
	// CreateIntent opens a provider intent over the order total and records
	// the intent id on the order. The order must be RESERVED.
	CreateIntent(ctx context.Context, orderID string) (*IntentResponse, error)

	// Confirm re-verifies the intent with the provider and finalizes the
	// order. Confirming an already-completed order returns it unchanged, so
	// webhook and client redirect may both fire.
	Confirm(ctx context.Context, paymentIntentID, orderID string) (*order.Order, error)

	// CompleteOrder settles an order without provider verification, for cash
	// or in-store terminal payments. Callers gate this behind store staff.
	CompleteOrder(ctx context.Context, orderID, paymentMethod string) (*order.Order, error)
}

type service struct {
	orders   order.Service
	gateway  Gateway
	currency string
}

func NewService(orders order.Service, gateway Gateway, currency string) Service {
	return &service{orders: orders, gateway: gateway, currency: currency}
}

func (s *service) CreateIntent(ctx context.Context, orderID string) (*IntentResponse, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrInvalidRequest)
	}
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusReserved {
		return nil, fmt.Errorf("%w: expected RESERVED, got %s", order.ErrInvalidOrderState, o.Status)
	}

	intent, err := s.gateway.CreateIntent(ctx, &CreateIntentRequest{
		Amount:   MinorUnits(o.Total),
		Currency: s.currency,
		Metadata: map[string]string{
			"order_id":     o.ID.String(),
			"order_number": o.OrderNumber,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if err := s.orders.AttachPaymentIntent(ctx, orderID, intent.ID); err != nil {
		return nil, err
	}

	return &IntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

func (s *service) Confirm(ctx context.Context, paymentIntentID, orderID string) (*order.Order, error) {
	if paymentIntentID == "" {
		return nil, fmt.Errorf("%w: payment_intent_id is required", ErrInvalidRequest)
	}

	intent, err := s.gateway.GetIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	if intent.Status != IntentSucceeded {
		return nil, fmt.Errorf("%w: provider status %q", ErrPaymentNotSucceeded, intent.Status)
	}

	// Resolve the order from the explicit id, the intent's metadata, or the
	// intent reference stored on the order, in that preference.
	if orderID == "" {
		orderID = intent.Metadata["order_id"]
	}
	var o *order.Order
	if orderID != "" {
		o, err = s.orders.GetOrder(ctx, orderID)
	} else {
		o, err = s.orders.GetOrderByPaymentIntent(ctx, paymentIntentID)
	}
	if err != nil {
		return nil, err
	}
	if o.PaymentIntentID != "" && o.PaymentIntentID != paymentIntentID {
		return nil, fmt.Errorf("%w: intent does not belong to this order", ErrInvalidRequest)
	}

	if o.Status == order.StatusCompleted {
		return o, nil
	}

	return s.orders.FinalizeOrder(ctx, o.ID.String(), "card")
}

func (s *service) CompleteOrder(ctx context.Context, orderID, paymentMethod string) (*order.Order, error) {
	if paymentMethod == "" {
		return nil, fmt.Errorf("%w: payment_method is required", ErrInvalidRequest)
	}
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == order.StatusCompleted {
		return o, nil
	}
	return s.orders.FinalizeOrder(ctx, orderID, paymentMethod)
}

// MinorUnits converts a decimal currency amount to the provider's integer
// minor units (50.00 -> 5000) with exact arithmetic.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
