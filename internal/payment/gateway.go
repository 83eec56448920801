// Package payment integrates the Tranzila hosted checkout: it opens payment
// sessions and authenticates the asynchronous notifications Tranzila sends
// back.
package payment

import (
	"context"
	"errors"
	"time"

	"storefront-be/internal/apperr"
)

const (
	ProviderTranzila = "TRANZILA"
	DefaultCurrency  = "ILS"
)

var (
	ErrGatewayNotConfigured = apperr.New(apperr.ErrConfiguration, "tranzila config missing: TRANZILA_TERMINAL")
	ErrNoCheckoutURL        = apperr.New(apperr.ErrGatewayProtocol, "tranzila did not return a checkout URL")
	ErrGatewayRejected      = errors.New("tranzila rejected payment request")

	errNotObject = errors.New("payload is not a JSON object")
)

type Gateway interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentSession, error)
}

// PaymentRequest is what the gateway needs to know about an order.
type PaymentRequest struct {
	OrderID      string
	Amount       float64
	Currency     string
	TerminalName string
}

type PaymentSession struct {
	CheckoutURL   string
	TransactionID *string
}

type GatewayConfig struct {
	Terminal   string
	APIKey     string
	Sandbox    bool
	BaseURL    string
	AppBaseURL string
	Timeout    time.Duration
}
