package payment

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Field names accepted from Tranzila, in priority order. The hosted-checkout
// API has shipped several response and notification shapes; each list holds
// every name observed for one logical field. Keep additions here so the
// third-party contract stays in one place.
var (
	CheckoutURLFields      = []string{"checkout_url", "checkoutUrl", "redirect_url", "redirectUrl", "url", "payment_url"}
	SessionTxnIDFields     = []string{"transaction_id", "transactionId", "id"}
	GatewayMessageFields   = []string{"message", "error"}
	WebhookOrderIDFields   = []string{"orderId", "order_id", "reference"}
	WebhookAmountFields    = []string{"amount", "sum", "total"}
	WebhookStatusFields    = []string{"status", "Response", "result"}
	WebhookResponseFields  = []string{"responseCode", "Response", "response_code", "code"}
	WebhookTxnIDFields     = []string{"transactionId", "transaction_id", "tranzilaTxnId", "id"}
	approvedStatusLiterals = []string{"approved", "success"}
	declinedStatusLiterals = []string{"failed", "error", "declined"}
)

// Payload is a decoded gateway JSON object. Numbers are kept as json.Number.
type Payload map[string]any

// DecodePayload decodes body as a JSON object. Anything else is an error.
func DecodePayload(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if p == nil || dec.More() {
		return nil, errNotObject
	}
	return p, nil
}

// String returns the first key whose value is a non-empty scalar, rendered
// as a string.
func (p Payload) String(keys []string) (string, bool) {
	for _, k := range keys {
		if s, ok := scalarString(p[k]); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// Number returns the first key holding a value that parses as a number.
func (p Payload) Number(keys []string) (float64, bool) {
	for _, k := range keys {
		switch v := p[k].(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// Bool reports the value of key when it is a JSON boolean.
func (p Payload) Bool(key string) (value, present bool) {
	b, ok := p[key].(bool)
	return b, ok
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Result is the payment outcome a notification reports.
type Result int

const (
	ResultUnknown Result = iota
	ResultApproved
	ResultDeclined
)

func (r Result) String() string {
	switch r {
	case ResultApproved:
		return "approved"
	case ResultDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// Notification is the reconciliation view of a verified webhook payload.
type Notification struct {
	OrderID       string
	Amount        float64
	HasAmount     bool
	Result        Result
	TransactionID *string
	ResponseCode  *string
	Raw           json.RawMessage
}

// ParseNotification resolves the logical fields of p. raw is kept verbatim
// as the payload snapshot.
func ParseNotification(p Payload, raw []byte) Notification {
	n := Notification{Raw: json.RawMessage(raw)}

	n.OrderID, _ = p.String(WebhookOrderIDFields)
	n.Amount, n.HasAmount = p.Number(WebhookAmountFields)
	n.Result = classify(p)

	if txn, ok := p.String(WebhookTxnIDFields); ok {
		n.TransactionID = &txn
	}
	if code, ok := p.String(WebhookResponseFields); ok {
		n.ResponseCode = &code
	}
	return n
}

func classify(p Payload) Result {
	status, _ := p.String(WebhookStatusFields)
	status = strings.ToLower(status)

	approved, hasApproved := p.Bool("approved")
	success, _ := p.Bool("success")

	switch {
	case contains(approvedStatusLiterals, status), hasApproved && approved, success:
		return ResultApproved
	case contains(declinedStatusLiterals, status), hasApproved && !approved:
		return ResultDeclined
	default:
		return ResultUnknown
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
