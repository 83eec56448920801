package order

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type orderDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Items     []itemDocument     `bson:"items"`
	Subtotal  float64            `bson:"subtotal"`
	Shipping  float64            `bson:"shipping"`
	Total     float64            `bson:"total"`
	Currency  string             `bson:"currency"`
	Status    string             `bson:"status"`
	Customer  customerDocument   `bson:"customer"`
	Tranzila  tranzilaDocument   `bson:"tranzila"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type itemDocument struct {
	ProductID string  `bson:"productId,omitempty"`
	Name      string  `bson:"name"`
	Price     float64 `bson:"price"`
	Quantity  int     `bson:"quantity"`
}

type customerDocument struct {
	Name  string `bson:"name,omitempty"`
	Email string `bson:"email,omitempty"`
	Phone string `bson:"phone,omitempty"`
}

// tranzilaDocument keeps the raw payload as its JSON text so that it reads
// back byte-for-byte.
type tranzilaDocument struct {
	TerminalName  string  `bson:"terminalName,omitempty"`
	TransactionID *string `bson:"transactionId"`
	ResponseCode  *string `bson:"responseCode"`
	RawResponse   *string `bson:"rawResponse"`
}

func toDocument(o *Order) orderDocument {
	items := make([]itemDocument, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemDocument{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	return orderDocument{
		Items:    items,
		Subtotal: o.Subtotal,
		Shipping: o.Shipping,
		Total:    o.Total,
		Currency: o.Currency,
		Status:   string(o.Status),
		Customer: customerDocument{
			Name:  o.Customer.Name,
			Email: o.Customer.Email,
			Phone: o.Customer.Phone,
		},
		Tranzila: tranzilaDocument{
			TerminalName:  o.Gateway.TerminalName,
			TransactionID: o.Gateway.TransactionID,
			ResponseCode:  o.Gateway.ResponseCode,
			RawResponse:   rawText(o.Gateway.RawResponse),
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func fromDocument(d orderDocument) *Order {
	items := make([]Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	o := &Order{
		ID:       d.ID.Hex(),
		Items:    items,
		Subtotal: d.Subtotal,
		Shipping: d.Shipping,
		Total:    d.Total,
		Currency: d.Currency,
		Status:   Status(d.Status),
		Customer: Customer{
			Name:  d.Customer.Name,
			Email: d.Customer.Email,
			Phone: d.Customer.Phone,
		},
		Gateway: GatewayMeta{
			TerminalName:  d.Tranzila.TerminalName,
			TransactionID: d.Tranzila.TransactionID,
			ResponseCode:  d.Tranzila.ResponseCode,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Tranzila.RawResponse != nil {
		o.Gateway.RawResponse = json.RawMessage(*d.Tranzila.RawResponse)
	}
	return o
}

func rawText(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}
