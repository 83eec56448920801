package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	t.Run("Object", func(t *testing.T) {
		p, err := DecodePayload([]byte(`{"orderId":"abc","amount":110.5}`))
		require.NoError(t, err)
		assert.Equal(t, "abc", p["orderId"])
	})

	for name, body := range map[string]string{
		"Array":    `[1,2]`,
		"Null":     `null`,
		"String":   `"hi"`,
		"Garbage":  `{not json`,
		"Trailing": `{"a":1} {"b":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePayload([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestPayloadLookups(t *testing.T) {
	p, err := DecodePayload([]byte(`{
		"order_id": "",
		"reference": "ref-1",
		"sum": "105.00",
		"code": 0,
		"approved": false,
		"nested": {"x": 1}
	}`))
	require.NoError(t, err)

	t.Run("String skips empty and missing", func(t *testing.T) {
		s, ok := p.String(WebhookOrderIDFields)
		assert.True(t, ok)
		assert.Equal(t, "ref-1", s)
	})

	t.Run("String stringifies numbers", func(t *testing.T) {
		s, ok := p.String(WebhookResponseFields)
		assert.True(t, ok)
		assert.Equal(t, "0", s)
	})

	t.Run("String ignores objects", func(t *testing.T) {
		_, ok := p.String([]string{"nested"})
		assert.False(t, ok)
	})

	t.Run("Number parses strings", func(t *testing.T) {
		n, ok := p.Number(WebhookAmountFields)
		assert.True(t, ok)
		assert.Equal(t, 105.0, n)
	})

	t.Run("Number missing", func(t *testing.T) {
		_, ok := p.Number([]string{"nope"})
		assert.False(t, ok)
	})

	t.Run("Bool", func(t *testing.T) {
		v, ok := p.Bool("approved")
		assert.True(t, ok)
		assert.False(t, v)

		_, ok = p.Bool("sum")
		assert.False(t, ok)
	})
}

func TestParseNotification(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		result Result
	}{
		{"status approved", `{"orderId":"o1","status":"APPROVED"}`, ResultApproved},
		{"status success", `{"orderId":"o1","result":"Success"}`, ResultApproved},
		{"approved flag", `{"orderId":"o1","approved":true}`, ResultApproved},
		{"success flag", `{"orderId":"o1","success":true}`, ResultApproved},
		{"status failed", `{"orderId":"o1","status":"failed"}`, ResultDeclined},
		{"status declined", `{"orderId":"o1","status":"Declined"}`, ResultDeclined},
		{"status error", `{"orderId":"o1","status":"error"}`, ResultDeclined},
		{"approved false", `{"orderId":"o1","approved":false}`, ResultDeclined},
		{"unrecognized", `{"orderId":"o1","status":"processing"}`, ResultUnknown},
		{"response code only", `{"orderId":"o1","Response":"000"}`, ResultUnknown},
		{"success false", `{"orderId":"o1","success":false}`, ResultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePayload([]byte(tt.body))
			require.NoError(t, err)

			n := ParseNotification(p, []byte(tt.body))
			assert.Equal(t, "o1", n.OrderID)
			assert.Equal(t, tt.result, n.Result)
		})
	}

	t.Run("Fields", func(t *testing.T) {
		body := `{"order_id":"o2","amount":"110.00","transaction_id":987,"response_code":"000"}`
		p, err := DecodePayload([]byte(body))
		require.NoError(t, err)

		n := ParseNotification(p, []byte(body))
		assert.Equal(t, "o2", n.OrderID)
		assert.True(t, n.HasAmount)
		assert.Equal(t, 110.0, n.Amount)
		require.NotNil(t, n.TransactionID)
		assert.Equal(t, "987", *n.TransactionID)
		require.NotNil(t, n.ResponseCode)
		assert.Equal(t, "000", *n.ResponseCode)
		assert.JSONEq(t, body, string(n.Raw))
	})

	t.Run("Absent optional fields", func(t *testing.T) {
		body := `{"orderId":"o3"}`
		p, err := DecodePayload([]byte(body))
		require.NoError(t, err)

		n := ParseNotification(p, []byte(body))
		assert.False(t, n.HasAmount)
		assert.Nil(t, n.TransactionID)
		assert.Nil(t, n.ResponseCode)
	})
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "approved", ResultApproved.String())
	assert.Equal(t, "declined", ResultDeclined.String())
	assert.Equal(t, "unknown", ResultUnknown.String())
}
