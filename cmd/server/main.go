package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/payment/webhook"
	"storefront-be/internal/transport"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Swappable in tests.
var (
	initDBFunc    = db.NewDatabase
	initMongoFunc = db.NewMongo

	startServerFunc = func(srv *http.Server) error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

// stores is the persistence the server runs on.
type stores struct {
	orders  order.Repository
	webhook payment.WebhookLog
	close   func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, database, err := initMongoFunc(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &stores{
			orders:  order.NewMongoRepository(database),
			webhook: payment.NewMongoRepository(database),
			close:   func() { disconnectMongo(client) },
		}, nil

	default:
		database, err := initDBFunc(cfg)
		if err != nil {
			return nil, err
		}
		return postgresStores(database), nil
	}
}

func postgresStores(database *sql.DB) *stores {
	return &stores{
		orders:  order.NewRepository(database),
		webhook: payment.NewRepository(database),
		close:   func() { database.Close() },
	}
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.L().Warn("mongodb disconnect failed", zap.Error(err))
	}
}

// newServer wires services and returns the root handler together with the
// rate limiter whose cleanup loop the caller must run.
func newServer(cfg *config.Config, st *stores) (http.Handler, *middleware.RateLimiter) {
	reg := metrics.NewRegistry()

	gateway := payment.NewTranzilaGateway(payment.GatewayConfig{
		Terminal:   cfg.TranzilaTerminal,
		APIKey:     cfg.TranzilaAPIKey,
		Sandbox:    cfg.TranzilaSandbox,
		BaseURL:    cfg.TranzilaBaseURL,
		AppBaseURL: cfg.AppBaseURL,
		Timeout:    cfg.GatewayTimeout,
	})

	orderSvc := order.NewService(st.orders, gateway, order.ServiceConfig{
		TerminalName: cfg.TranzilaTerminal,
		Currency:     payment.DefaultCurrency,
		Policy:       order.TransitionPolicy(cfg.OrderStatusPolicy),
	})

	if cfg.WebhookAllowUnsigned {
		logger.L().Warn("WEBHOOK_ALLOW_UNSIGNED is on: unsigned payment notifications will be accepted")
	}
	verifier := payment.NewWebhookVerifier(payment.VerifierConfig{
		Secret:        cfg.TranzilaWebhookSecret,
		AllowUnsigned: cfg.WebhookAllowUnsigned,
	})

	authenticator := auth.NewAuthenticator(auth.AdminConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    cfg.JWTSecret,
		AdminKey:     cfg.AdminKey,
	})

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey, "/api/admin/login")

	router := transport.NewRouter(transport.RouterConfig{
		Orders:     orderSvc,
		Webhook:    webhook.NewWebhookHandler(orderSvc, verifier, st.webhook, reg),
		Auth:       authenticator,
		Metrics:    reg,
		Limiter:    limiter,
		CORSOrigin: cfg.CORSOrigin,
	})

	return router, limiter
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	handler, limiter := newServer(cfg, st)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stop()
		logger.L().Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("store", cfg.StoreDriver),
		)
		return startServerFunc(srv)
	})

	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.L().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
