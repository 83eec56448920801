package webhook

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-be/internal/apperr"
	"storefront-be/internal/metrics"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, n payment.Notification) (order.Outcome, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(order.Outcome), args.Error(1)
}

type MockWebhookLog struct {
	mock.Mock
}

func (m *MockWebhookLog) Record(ctx context.Context, rec payment.WebhookRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockWebhookLog) MarkProcessed(ctx context.Context, id string, outcome string) error {
	args := m.Called(ctx, id, outcome)
	return args.Error(0)
}

func (m *MockWebhookLog) MarkFailed(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

const secret = "whsec-test"

func signedRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, payment.WebhookPath, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tranzila-Signature", payment.Sign(secret, []byte(body)))
	return req
}

func TestHandler_ServeHTTP(t *testing.T) {
	verifier := payment.NewWebhookVerifier(payment.VerifierConfig{Secret: secret})
	body := `{"orderId":"ord-1","status":"approved","sum":"110.00","transaction_id":"tx-1","Response":"000"}`

	t.Run("Applied", func(t *testing.T) {
		rec := new(MockReconciler)
		audit := new(MockWebhookLog)
		reg := metrics.NewRegistry()
		h := NewWebhookHandler(rec, verifier, audit, reg)

		audit.On("Record", mock.Anything, mock.MatchedBy(func(r payment.WebhookRecord) bool {
			return r.Provider == "TRANZILA" && r.OrderID == "ord-1" && r.Signed && r.Authentic && string(r.Payload) == body
		})).Return("41", nil)
		rec.On("Reconcile", mock.Anything, mock.MatchedBy(func(n payment.Notification) bool {
			return n.OrderID == "ord-1" &&
				n.Result == payment.ResultApproved &&
				n.HasAmount && n.Amount == 110 &&
				*n.TransactionID == "tx-1" &&
				*n.ResponseCode == "000" &&
				string(n.Raw) == body
		})).Return(order.OutcomeApplied, nil)
		audit.On("MarkProcessed", mock.Anything, "41", "applied").Return(nil)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, signedRequest(body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
		assert.Equal(t, uint64(1), reg.Snapshot()["webhook_applied"])
		rec.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("IgnoredOutcomeStillAcknowledged", func(t *testing.T) {
		rec := new(MockReconciler)
		h := NewWebhookHandler(rec, verifier, nil, nil)

		rec.On("Reconcile", mock.Anything, mock.Anything).Return(order.OutcomeIgnoredAmountMismatch, nil)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, signedRequest(body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})

	t.Run("BadSignature", func(t *testing.T) {
		rec := new(MockReconciler)
		audit := new(MockWebhookLog)
		reg := metrics.NewRegistry()
		h := NewWebhookHandler(rec, verifier, audit, reg)

		audit.On("Record", mock.Anything, mock.MatchedBy(func(r payment.WebhookRecord) bool {
			return !r.Authentic && !r.Signed && r.OrderID == "" &&
				r.Payload == nil && r.Reject == "signature mismatch"
		})).Return("42", nil)

		req := signedRequest(body)
		req.Header.Set("X-Tranzila-Signature", strings.Repeat("0", 64))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid or unverified webhook", strings.TrimSpace(w.Body.String()))
		assert.Equal(t, uint64(1), reg.Snapshot()["webhook_rejected"])
		rec.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
		audit.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonJSONBodyRecordedWithoutPayload", func(t *testing.T) {
		rec := new(MockReconciler)
		audit := new(MockWebhookLog)
		h := NewWebhookHandler(rec, verifier, audit, nil)

		audit.On("Record", mock.Anything, mock.MatchedBy(func(r payment.WebhookRecord) bool {
			return r.Payload == nil && r.Reject == "body is not a JSON object"
		})).Return("44", nil)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, signedRequest("orderId=ord-1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		audit.AssertExpectations(t)
		rec.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
	})

	t.Run("OversizedBody", func(t *testing.T) {
		rec := new(MockReconciler)
		audit := new(MockWebhookLog)
		reg := metrics.NewRegistry()
		h := NewWebhookHandler(rec, verifier, audit, reg)

		big := `{"orderId":"` + strings.Repeat("x", maxBodyBytes) + `"}`
		w := httptest.NewRecorder()
		h.ServeHTTP(w, signedRequest(big))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, uint64(1), reg.Snapshot()["webhook_rejected"])
		audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("UnsignedAllowed", func(t *testing.T) {
		rec := new(MockReconciler)
		weak := payment.NewWebhookVerifier(payment.VerifierConfig{AllowUnsigned: true})
		h := NewWebhookHandler(rec, weak, nil, nil)

		rec.On("Reconcile", mock.Anything, mock.Anything).Return(order.OutcomeIgnoredUnknownOrder, nil)

		req := httptest.NewRequest(http.MethodPost, payment.WebhookPath, bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ReconcileError", func(t *testing.T) {
		rec := new(MockReconciler)
		audit := new(MockWebhookLog)
		reg := metrics.NewRegistry()
		h := NewWebhookHandler(rec, verifier, audit, reg)

		audit.On("Record", mock.Anything, mock.Anything).Return("43", nil)
		rec.On("Reconcile", mock.Anything, mock.Anything).
			Return(order.Outcome(""), apperr.Wrap(apperr.ErrStorage, errors.New("db down")))
		audit.On("MarkFailed", mock.Anything, "43", "db down").Return(nil)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, signedRequest(body))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error", strings.TrimSpace(w.Body.String()))
		assert.Equal(t, uint64(1), reg.Snapshot()["webhook_failed"])
		audit.AssertExpectations(t)
	})

	t.Run("AuditFailureIgnored", func(t *testing.T) {
		rec := new(MockReconciler)
		audit := new(MockWebhookLog)
		h := NewWebhookHandler(rec, verifier, audit, nil)

		audit.On("Record", mock.Anything, mock.Anything).Return("", errors.New("insert failed"))
		rec.On("Reconcile", mock.Anything, mock.Anything).Return(order.OutcomeApplied, nil)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, signedRequest(body))

		assert.Equal(t, http.StatusOK, w.Code)
		audit.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})
}
