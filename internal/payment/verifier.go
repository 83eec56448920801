package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"storefront-be/internal/apperr"
)

// Signature headers Tranzila may use, in priority order.
var signatureHeaders = []string{"X-Tranzila-Signature", "X-Signature"}

type VerifierConfig struct {
	Secret string
	// AllowUnsigned accepts notifications that carry no signature, or any
	// notification when no secret is configured. Tranzila terminals without
	// webhook signing need it; it is off by default.
	AllowUnsigned bool
}

type Verification struct {
	Authentic bool
	// Signed is true when an HMAC signature was checked and matched.
	Signed  bool
	Reason  string
	Payload Payload
}

// Err is nil for an authentic notification and an ErrVerification
// carrying the rejection reason otherwise.
func (v Verification) Err() error {
	if v.Authentic {
		return nil
	}
	return apperr.New(apperr.ErrVerification, "webhook rejected: "+v.Reason)
}

type WebhookVerifier struct {
	cfg VerifierConfig
}

func NewWebhookVerifier(cfg VerifierConfig) *WebhookVerifier {
	return &WebhookVerifier{cfg: cfg}
}

// Verify authenticates a notification from its headers and raw body. It
// never fails with an error: every problem yields Authentic=false.
func (v *WebhookVerifier) Verify(header http.Header, body []byte) Verification {
	if len(body) == 0 {
		return Verification{Reason: "empty body"}
	}

	payload, err := DecodePayload(body)
	if err != nil {
		return Verification{Reason: "body is not a JSON object"}
	}

	signature := signatureFrom(header)

	if v.cfg.Secret != "" && signature != "" {
		got, err := hex.DecodeString(signature)
		if err != nil || !hmac.Equal(mac(v.cfg.Secret, body), got) {
			return Verification{Reason: "signature mismatch"}
		}
		return Verification{Authentic: true, Signed: true, Payload: payload}
	}

	if !v.cfg.AllowUnsigned {
		if v.cfg.Secret == "" {
			return Verification{Reason: "webhook secret not configured"}
		}
		return Verification{Reason: "signature header missing"}
	}

	return Verification{Authentic: true, Payload: payload}
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	return hex.EncodeToString(mac(secret, body))
}

func mac(secret string, body []byte) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return h.Sum(nil)
}

func signatureFrom(header http.Header) string {
	for _, h := range signatureHeaders {
		if s := strings.TrimSpace(header.Get(h)); s != "" {
			return s
		}
	}
	return ""
}
