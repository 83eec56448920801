// Package auth authenticates admin console sessions.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"storefront-be/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "invalid username or password")
	ErrCredentialsMissing = apperr.New(apperr.ErrValidation, "username and password required")
	ErrInvalidToken       = apperr.New(apperr.ErrUnauthorized, "invalid token")
	ErrAdminNotConfigured = apperr.New(apperr.ErrConfiguration, "admin login not configured")
)

// AdminClaims identifies an admin session. Key-authenticated requests get
// ID "key".
type AdminClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AdminConfig struct {
	Username     string
	PasswordHash string
	JWTSecret    string
	// AdminKey enables the x-admin-key fallback when set.
	AdminKey string
	TokenTTL time.Duration
}

type Authenticator struct {
	cfg AdminConfig
	now func() time.Time
}

func NewAuthenticator(cfg AdminConfig) *Authenticator {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	return &Authenticator{cfg: cfg, now: time.Now}
}

// Login checks the configured admin credentials and issues a signed token.
func (a *Authenticator) Login(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrCredentialsMissing
	}
	if a.cfg.Username == "" || a.cfg.PasswordHash == "" || a.cfg.JWTSecret == "" {
		return "", ErrAdminNotConfigured
	}

	if subtle.ConstantTimeCompare([]byte(username), []byte(a.cfg.Username)) != 1 {
		return "", ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, a.cfg.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return a.IssueToken(username)
}

func (a *Authenticator) IssueToken(username string) (string, error) {
	if a.cfg.JWTSecret == "" {
		return "", ErrAdminNotConfigured
	}

	now := a.now()
	claims := AdminClaims{
		ID:       username,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.JWTSecret))
}

func (a *Authenticator) ParseToken(tokenStr string) (*AdminClaims, error) {
	if a.cfg.JWTSecret == "" || tokenStr == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&AdminClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(a.cfg.JWTSecret), nil
		},
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CheckAdminKey reports whether key matches the configured admin key. It is
// always false when no key is configured.
func (a *Authenticator) CheckAdminKey(key string) bool {
	if a.cfg.AdminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(a.cfg.AdminKey)) == 1
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
