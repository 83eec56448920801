package order

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

const DefaultCurrency = "ILS"

type Order struct {
	ID        string      `json:"id"`
	Items     []Item      `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Shipping  float64     `json:"shipping"`
	Total     float64     `json:"total"`
	Currency  string      `json:"currency"`
	Status    Status      `json:"status"`
	Customer  Customer    `json:"customer"`
	Gateway   GatewayMeta `json:"gateway"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Customer is a snapshot taken at checkout time.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type GatewayMeta struct {
	TerminalName  string          `json:"terminalName"`
	TransactionID *string         `json:"transactionId"`
	ResponseCode  *string         `json:"responseCode"`
	RawResponse   json.RawMessage `json:"rawResponse"`
}

// PaymentUpdate is the single atomic write the reconciler makes. Nil fields
// keep the stored value; RawResponse always replaces it.
type PaymentUpdate struct {
	Status        *Status
	TransactionID *string
	ResponseCode  *string
	RawResponse   json.RawMessage
	// RequirePending restricts the write to orders still pending.
	RequirePending bool
}

type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}
