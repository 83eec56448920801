package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"

	StatusPolicyOneWay    = "one-way"
	StatusPolicyOverwrite = "overwrite"
)

type Config struct {
	AppPort    string
	AppEnv     string
	AppBaseURL string
	CORSOrigin string

	StoreDriver string
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBSSLMode   string

	MongoURI      string
	MongoDatabase string

	TranzilaTerminal      string
	TranzilaAPIKey        string
	TranzilaSandbox       bool
	TranzilaBaseURL       string
	TranzilaWebhookSecret string
	GatewayTimeout        time.Duration

	WebhookAllowUnsigned bool
	OrderStatusPolicy    string

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
	AdminKey          string
	InternalSecretKey string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment without
// loading .env and without exiting on error.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		AppEnv:     getenv("APP_ENV", "development"),
		AppBaseURL: strings.TrimRight(os.Getenv("APP_BASE_URL"), "/"),
		CORSOrigin: getenv("CORS_ORIGIN", "*"),

		StoreDriver: getenv("STORE_DRIVER", StoreDriverPostgres),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBSSLMode:   getenv("DB_SSLMODE", "disable"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getenv("MONGODB_DATABASE", "storefront"),

		TranzilaTerminal:      os.Getenv("TRANZILA_TERMINAL"),
		TranzilaAPIKey:        os.Getenv("TRANZILA_API_KEY"),
		TranzilaSandbox:       getbool("TRANZILA_SANDBOX"),
		TranzilaBaseURL:       os.Getenv("TRANZILA_BASE_URL"),
		TranzilaWebhookSecret: os.Getenv("TRANZILA_WEBHOOK_SECRET"),

		WebhookAllowUnsigned: getbool("WEBHOOK_ALLOW_UNSIGNED"),
		OrderStatusPolicy:    getenv("ORDER_STATUS_POLICY", StatusPolicyOneWay),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminKey:          os.Getenv("ADMIN_KEY"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
	}

	timeout, err := time.ParseDuration(getenv("GATEWAY_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("GATEWAY_TIMEOUT must be a duration: %w", err)
	}
	cfg.GatewayTimeout = timeout

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without. A missing
// Tranzila terminal is reported per checkout, not here.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" && c.DBHost == "" {
			return fmt.Errorf("DATABASE_URL or DB_HOST is required")
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (use %q or %q)", c.StoreDriver, StoreDriverPostgres, StoreDriverMongo)
	}

	switch c.OrderStatusPolicy {
	case StatusPolicyOneWay, StatusPolicyOverwrite:
	default:
		return fmt.Errorf("unknown ORDER_STATUS_POLICY %q (use %q or %q)", c.OrderStatusPolicy, StatusPolicyOneWay, StatusPolicyOverwrite)
	}

	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
