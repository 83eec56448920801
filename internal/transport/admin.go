package transport

import (
	"net/http"
	"strconv"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	orders order.Service
	auth   *auth.Authenticator
}

func NewAdminHandler(orders order.Service, a *auth.Authenticator) *AdminHandler {
	return &AdminHandler{orders: orders, auth: a}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK       bool   `json:"ok"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

type orderPageResponse struct {
	OK bool `json:"ok"`
	*order.OrderPage
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("admin login failed", zap.String("username", req.Username))
		writeError(w, r, err, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{OK: true, Token: token, Username: req.Username})
}

// ListOrders handles GET /api/admin/orders?status=&page=&limit=.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.orders.ListOrders(r.Context(), order.ListQuery{
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err, "Failed to load orders")
		return
	}
	writeJSON(w, http.StatusOK, orderPageResponse{OK: true, OrderPage: res})
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to load order")
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{OK: true, Order: o})
}

func (h *AdminHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to cancel order")
		return
	}

	if claims, ok := middleware.AdminFrom(r.Context()); ok {
		logger.FromCtx(r.Context()).Info("order canceled by admin",
			zap.String("order_id", o.ID),
			zap.String("admin", claims.Username),
		)
	}
	writeJSON(w, http.StatusOK, orderResponse{OK: true, Order: o})
}
