// Package webhook receives Tranzila payment notifications.
package webhook

import (
	"context"
	"io"
	"net/http"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

const (
	msgInvalid = "Invalid or unverified webhook"
	msgError   = "Error"
	msgOK      = "OK"
)

// Reconciler applies a verified notification to its order.
type Reconciler interface {
	Reconcile(ctx context.Context, n payment.Notification) (order.Outcome, error)
}

type Handler struct {
	reconciler Reconciler
	verifier   *payment.WebhookVerifier
	audit      payment.WebhookLog
	metrics    *metrics.Registry
}

// NewWebhookHandler wires the notification endpoint. audit may be nil.
func NewWebhookHandler(
	reconciler Reconciler,
	verifier *payment.WebhookVerifier,
	audit payment.WebhookLog,
	reg *metrics.Registry,
) *Handler {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Handler{
		reconciler: reconciler,
		verifier:   verifier,
		audit:      audit,
		metrics:    reg,
	}
}

// ServeHTTP answers 200 for every verified notification, including ones
// the reconciler ignores, so the gateway stops retrying them.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)
	timer := metrics.StartTimer()
	h.metrics.Inc(metrics.WebhookReceived)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.reject(w, r, apperr.Wrap(apperr.ErrVerification, err))
		return
	}

	v := h.verifier.Verify(r.Header, body)
	auditID := h.record(ctx, v, body)

	if err := v.Err(); err != nil {
		h.reject(w, r, err)
		return
	}
	if !v.Signed {
		log.Warn("unsigned webhook accepted")
	}

	n := payment.ParseNotification(v.Payload, body)
	ctx = logger.WithOrderID(ctx, n.OrderID)
	log = logger.FromCtx(ctx)

	outcome, err := h.reconciler.Reconcile(ctx, n)
	if err != nil {
		h.metrics.Inc(metrics.WebhookFailed)
		log.Error("webhook processing failed", zap.Error(err))
		h.markFailed(ctx, auditID, err)
		http.Error(w, msgError, http.StatusInternalServerError)
		return
	}

	h.metrics.Inc(metrics.WebhookOutcome(string(outcome)))
	h.markProcessed(ctx, auditID, outcome)

	log.Info("webhook processed",
		zap.String("result", n.Result.String()),
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", timer.Duration()),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, msgOK)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.Inc(metrics.WebhookRejected)
	logger.FromCtx(r.Context()).Warn("webhook rejected", zap.Error(err))
	http.Error(w, msgInvalid, apperr.HTTPStatus(err))
}

// record stores the notification in the audit log. Rejected calls keep
// only the reason, never the body. Failures are logged and never change
// the response.
func (h *Handler) record(ctx context.Context, v payment.Verification, body []byte) string {
	if h.audit == nil {
		return ""
	}

	rec := payment.WebhookRecord{
		Provider:  payment.ProviderTranzila,
		Signed:    v.Signed,
		Authentic: v.Authentic,
	}
	if v.Authentic {
		rec.OrderID, _ = v.Payload.String(payment.WebhookOrderIDFields)
		rec.Payload = body
	} else {
		rec.Reject = v.Reason
	}

	id, err := h.audit.Record(ctx, rec)
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to record webhook", zap.Error(err))
		return ""
	}
	return id
}

func (h *Handler) markProcessed(ctx context.Context, id string, outcome order.Outcome) {
	if id == "" {
		return
	}
	if err := h.audit.MarkProcessed(ctx, id, string(outcome)); err != nil {
		logger.FromCtx(ctx).Warn("failed to mark webhook processed", zap.String("webhook_id", id), zap.Error(err))
	}
}

func (h *Handler) markFailed(ctx context.Context, id string, cause error) {
	if id == "" {
		return
	}
	if err := h.audit.MarkFailed(ctx, id, cause.Error()); err != nil {
		logger.FromCtx(ctx).Warn("failed to mark webhook failed", zap.String("webhook_id", id), zap.Error(err))
	}
}
