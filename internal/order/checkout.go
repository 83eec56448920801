package order

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LooseNumber decodes any JSON value. Numbers and numeric strings are Valid;
// Set reports whether the field was present and not null.
type LooseNumber struct {
	Value float64
	Valid bool
	Set   bool
}

func Number(v float64) LooseNumber {
	return LooseNumber{Value: v, Valid: true, Set: true}
}

func (n *LooseNumber) UnmarshalJSON(b []byte) error {
	*n = LooseNumber{}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return nil
	}
	n.Set = true

	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return nil
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	n.Value, n.Valid = f, true
	return nil
}

// LooseString decodes strings, numbers and booleans as text. Anything else
// is empty.
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		*s = ""
		return nil
	}

	switch t := v.(type) {
	case string:
		*s = LooseString(t)
	case json.Number:
		*s = LooseString(t.String())
	case bool:
		*s = LooseString(strconv.FormatBool(t))
	default:
		*s = ""
	}
	return nil
}

type CheckoutItem struct {
	ProductID LooseString `json:"productId"`
	Name      LooseString `json:"name"`
	Price     LooseNumber `json:"price"`
	Quantity  LooseNumber `json:"quantity"`
	Qty       LooseNumber `json:"qty"`
}

type CheckoutInput struct {
	Items    []CheckoutItem `json:"items"`
	Customer Customer       `json:"customer"`
	Shipping LooseNumber    `json:"shipping"`
}

// UnmarshalJSON tolerates a non-array items field and a non-object
// customer the way browsers tend to send them; both decode as empty.
func (in *CheckoutInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		Items    json.RawMessage `json:"items"`
		Customer json.RawMessage `json:"customer"`
		Shipping LooseNumber     `json:"shipping"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*in = CheckoutInput{Shipping: raw.Shipping}

	if len(raw.Items) > 0 {
		if err := json.Unmarshal(raw.Items, &in.Items); err != nil {
			in.Items = nil
		}
	}

	if len(raw.Customer) > 0 {
		var c struct {
			Name  LooseString `json:"name"`
			Email LooseString `json:"email"`
			Phone LooseString `json:"phone"`
		}
		if err := json.Unmarshal(raw.Customer, &c); err == nil {
			in.Customer = Customer{Name: string(c.Name), Email: string(c.Email), Phone: string(c.Phone)}
		}
	}
	return nil
}

type CheckoutResult struct {
	OrderID     string `json:"orderId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type Totals struct {
	Subtotal float64
	Shipping float64
	Total    float64
}

// normalizeItems coerces client input into stored line items: quantity is
// an integer >= 1 (default 1), price a number >= 0 (default 0).
func normalizeItems(in []CheckoutItem) ([]Item, error) {
	if len(in) == 0 {
		return nil, ErrItemsRequired
	}

	items := make([]Item, 0, len(in))
	for _, it := range in {
		name := strings.TrimSpace(string(it.Name))
		if name == "" {
			return nil, ErrItemNameRequired
		}
		items = append(items, Item{
			ProductID: string(it.ProductID),
			Name:      name,
			Price:     coercePrice(it.Price),
			Quantity:  coerceQuantity(it.Quantity, it.Qty),
		})
	}
	return items, nil
}

func coercePrice(p LooseNumber) float64 {
	if !p.Valid || p.Value < 0 {
		return 0
	}
	return p.Value
}

func coerceQuantity(quantity, qty LooseNumber) int {
	q := quantity
	if !q.Set {
		q = qty
	}
	if !q.Valid || q.Value < 1 || q.Value > math.MaxInt32 {
		return 1
	}
	return int(q.Value)
}

// ComputeTotals is the only place order amounts are derived. Every amount
// is rounded to cents; Total comes from the unrounded sum.
func ComputeTotals(items []Item, shipping LooseNumber) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}

	ship := decimal.Zero
	if shipping.Valid && shipping.Value >= 0 {
		ship = decimal.NewFromFloat(shipping.Value)
	}

	return Totals{
		Subtotal: subtotal.Round(2).InexactFloat64(),
		Shipping: ship.Round(2).InexactFloat64(),
		Total:    subtotal.Add(ship).Round(2).InexactFloat64(),
	}
}

var amountTolerance = decimal.New(1, -2)

// amountMatches reports whether a gateway-declared amount is within 0.01 of
// the stored total.
func amountMatches(declared, total float64) bool {
	diff := decimal.NewFromFloat(declared).Sub(decimal.NewFromFloat(total)).Abs()
	return !diff.GreaterThan(amountTolerance)
}
