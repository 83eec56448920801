// Package transport exposes the storefront HTTP API.
package transport

import (
	"encoding/json"
	"net/http"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with err's status. Internal failures are logged and
// replaced by fallback so driver messages never reach clients.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()

	if !apperr.Public(err) {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", apperr.Kind(err)),
			zap.Error(err),
		)
		msg = fallback
	}

	writeJSON(w, status, errorResponse{OK: false, Error: msg})
}

// decodeBody reads a JSON request body of at most maxBodyBytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperr.New(apperr.ErrValidation, "invalid JSON body")
	}
	return nil
}
