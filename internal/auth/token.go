package auth

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is set by the admin console after login.
const AccessTokenCookie = "access_token"

// ExtractAccessToken returns the admin session token. A non-empty
// access_token cookie wins over the Authorization header; the Bearer
// scheme is matched case-insensitively.
func ExtractAccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
