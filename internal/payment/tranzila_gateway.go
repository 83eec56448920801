package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	tranzilaSandboxBaseURL = "https://secure5.tranzila.com"
	tranzilaProdBaseURL    = "https://secure5.tranzila.com"
	paymentRequestPath     = "/api/v2/payment-request"

	// WebhookPath is where Tranzila posts payment notifications.
	WebhookPath = "/api/webhooks/tranzila"

	defaultGatewayTimeout = 15 * time.Second
)

type tranzilaGateway struct {
	cfg        GatewayConfig
	baseURL    string
	httpClient *http.Client
}

func NewTranzilaGateway(cfg GatewayConfig) Gateway {
	if cfg.Terminal == "" {
		logger.L().Warn("Tranzila terminal is empty; checkouts will fail until TRANZILA_TERMINAL is set")
	}
	if cfg.AppBaseURL == "" {
		logger.L().Warn("APP_BASE_URL is empty; callback URLs will be relative")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	base := cfg.BaseURL
	if base == "" {
		base = tranzilaProdBaseURL
		if cfg.Sandbox {
			base = tranzilaSandboxBaseURL
		}
	}

	cfg.AppBaseURL = strings.TrimRight(cfg.AppBaseURL, "/")

	return &tranzilaGateway{
		cfg:     cfg,
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (g *tranzilaGateway) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", req.OrderID),
		zap.Float64("amount", req.Amount),
	)

	terminal := g.cfg.Terminal
	if terminal == "" {
		terminal = req.TerminalName
	}
	if terminal == "" {
		log.Error("Tranzila terminal not configured")
		return nil, ErrGatewayNotConfigured
	}

	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	body := g.buildRequestBody(terminal, currency, req)
	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Error("Failed to marshal payment request", zap.Error(err))
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+paymentRequestPath, bytes.NewReader(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	log.Info("Sending payment request to Tranzila")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("Tranzila request failed", zap.Error(err))
		return nil, fmt.Errorf("tranzila request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read tranzila response: %w", err)
	}

	parsed, parseErr := decodeResponse(bodyBytes)

	if resp.StatusCode >= http.StatusBadRequest {
		msg := fmt.Sprintf("tranzila %d", resp.StatusCode)
		if parseErr == nil {
			if m, ok := parsed.String(GatewayMessageFields); ok {
				msg = m
			}
		}
		log.Error("Tranzila returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, msg)
	}

	if parseErr != nil {
		log.Error("Failed decoding Tranzila response", zap.Error(parseErr), zap.ByteString("response", bodyBytes))
		return nil, apperr.New(apperr.ErrGatewayProtocol, "invalid tranzila response: "+parseErr.Error())
	}

	checkoutURL, ok := parsed.String(CheckoutURLFields)
	if !ok {
		log.Error("Tranzila response has no checkout URL", zap.ByteString("response", bodyBytes))
		return nil, ErrNoCheckoutURL
	}

	session := &PaymentSession{CheckoutURL: checkoutURL}
	if txn, ok := parsed.String(SessionTxnIDFields); ok {
		session.TransactionID = &txn
	}

	log.Info("Tranzila payment session created", zap.Bool("has_transaction_id", session.TransactionID != nil))
	return session, nil
}

func (g *tranzilaGateway) buildRequestBody(terminal, currency string, req PaymentRequest) map[string]any {
	orderID := url.QueryEscape(req.OrderID)

	body := map[string]any{
		"terminal_name": terminal,
		"amount":        FormatAmount(req.Amount),
		"currency":      currency,
		"orderId":       req.OrderID,
		"success_url":   g.cfg.AppBaseURL + "/checkout/success?orderId=" + orderID,
		"failure_url":   g.cfg.AppBaseURL + "/checkout/fail?orderId=" + orderID,
		"notify_url":    g.cfg.AppBaseURL + WebhookPath,
	}
	if g.cfg.APIKey != "" {
		body["api_key"] = g.cfg.APIKey
	}
	return body
}

// FormatAmount renders amount with exactly two decimal places.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func decodeResponse(body []byte) (Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Payload{}, nil
	}
	return DecodePayload(body)
}
