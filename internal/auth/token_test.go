package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAccessToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		header string
		want   string
	}{
		{
			name:   "CookieWinsOverHeader",
			cookie: &http.Cookie{Name: AccessTokenCookie, Value: "cookie-jwt"},
			header: "Bearer header-jwt",
			want:   "cookie-jwt",
		},
		{
			name:   "BearerHeader",
			header: "Bearer header-jwt",
			want:   "header-jwt",
		},
		{
			name:   "LowercaseScheme",
			header: "bearer header-jwt",
			want:   "header-jwt",
		},
		{
			name:   "EmptyCookieFallsBack",
			cookie: &http.Cookie{Name: AccessTokenCookie, Value: ""},
			header: "Bearer header-jwt",
			want:   "header-jwt",
		},
		{
			name:   "PaddedToken",
			header: "Bearer   header-jwt  ",
			want:   "header-jwt",
		},
		{
			name:   "BasicScheme",
			header: "Basic YWRtaW46cGFzcw==",
		},
		{
			name:   "SchemeOnly",
			header: "Bearer",
		},
		{
			name: "Nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			assert.Equal(t, tt.want, ExtractAccessToken(req))
		})
	}
}
