package transport

import (
	"net/http"

	"storefront-be/internal/metrics"
	"storefront-be/internal/order"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	orders  order.Service
	metrics *metrics.Registry
}

func NewHandler(orders order.Service, reg *metrics.Registry) *Handler {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Handler{orders: orders, metrics: reg}
}

type checkoutResponse struct {
	OK          bool   `json:"ok"`
	OrderID     string `json:"orderId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type orderResponse struct {
	OK    bool         `json:"ok"`
	Order *order.Order `json:"order"`
}

// CreateCheckout handles POST /api/checkout/create.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var in order.CheckoutInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err, "")
		return
	}

	res, err := h.orders.CreateCheckout(r.Context(), in)
	if err != nil {
		h.metrics.Inc(metrics.CheckoutFailed)
		writeError(w, r, err, "Checkout failed")
		return
	}

	h.metrics.Inc(metrics.CheckoutCreated)
	writeJSON(w, http.StatusCreated, checkoutResponse{
		OK:          true,
		OrderID:     res.OrderID,
		CheckoutURL: res.CheckoutURL,
	})
}

// GetOrder handles GET /api/orders/{id}, which the storefront polls after
// the shopper returns from the hosted page.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to load order")
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{OK: true, Order: o})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "API is up"})
}
