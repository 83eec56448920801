package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocumentRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	txn := "tx-1"
	o := &Order{
		Items:    []Item{{ProductID: "p1", Name: "Shirt", Price: 19.99, Quantity: 3}},
		Subtotal: 59.97,
		Total:    59.97,
		Currency: "ILS",
		Status:   StatusPaid,
		Customer: Customer{Name: "Dana", Phone: "050"},
		Gateway: GatewayMeta{
			TerminalName:  "shopterm",
			TransactionID: &txn,
			RawResponse:   json.RawMessage(`{"Response":"000","sum":"59.97"}`),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc := toDocument(o)
	doc.ID = primitive.NewObjectID()

	b, err := bson.Marshal(doc)
	require.NoError(t, err)

	var back orderDocument
	require.NoError(t, bson.Unmarshal(b, &back))

	got := fromDocument(back)
	assert.Equal(t, doc.ID.Hex(), got.ID)
	assert.Equal(t, o.Items, got.Items)
	assert.Equal(t, o.Customer, got.Customer)
	assert.Equal(t, "shopterm", got.Gateway.TerminalName)
	assert.Equal(t, &txn, got.Gateway.TransactionID)
	assert.Nil(t, got.Gateway.ResponseCode)
	assert.Equal(t, string(o.Gateway.RawResponse), string(got.Gateway.RawResponse))
	assert.True(t, now.Equal(got.CreatedAt))
}

func TestToDocument_NoRawResponse(t *testing.T) {
	doc := toDocument(&Order{Status: StatusPending})
	assert.Nil(t, doc.Tranzila.RawResponse)
	assert.Empty(t, doc.Items)

	o := fromDocument(doc)
	assert.Nil(t, o.Gateway.RawResponse)
	assert.Equal(t, StatusPending, o.Status)
}
