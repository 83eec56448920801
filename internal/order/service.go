package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/payment"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TransitionPolicy decides whether a webhook may change an order that has
// already left pending.
type TransitionPolicy string

const (
	// PolicyOneWay only moves pending orders to paid or failed.
	PolicyOneWay TransitionPolicy = "one-way"
	// PolicyOverwrite lets every accepted webhook overwrite the status.
	PolicyOverwrite TransitionPolicy = "overwrite"
)

// Outcome is what Reconcile did with a notification. Every outcome is
// acknowledged to the gateway.
type Outcome string

const (
	OutcomeApplied               Outcome = "applied"
	OutcomeRecorded              Outcome = "recorded"
	OutcomeIgnoredNoOrderID      Outcome = "ignored_no_order_id"
	OutcomeIgnoredUnknownOrder   Outcome = "ignored_unknown_order"
	OutcomeIgnoredAmountMismatch Outcome = "ignored_amount_mismatch"
	OutcomeIgnoredFinalized      Outcome = "ignored_finalized"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type Service interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	Reconcile(ctx context.Context, n payment.Notification) (Outcome, error)
	ListOrders(ctx context.Context, q ListQuery) (*OrderPage, error)
	CancelOrder(ctx context.Context, id string) (*Order, error)
}

type ServiceConfig struct {
	TerminalName string
	Currency     string
	Policy       TransitionPolicy
}

type ListQuery struct {
	Status string
	Page   int
	Limit  int
}

type OrderPage struct {
	Items      []*Order `json:"items"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	Total      int64    `json:"total"`
	TotalPages int      `json:"totalPages"`
}

type service struct {
	repo    Repository
	gateway payment.Gateway
	cfg     ServiceConfig
}

func NewService(repo Repository, gateway payment.Gateway, cfg ServiceConfig) Service {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyOneWay
	}
	return &service{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
	}
}

func (s *service) CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	log := logger.FromCtx(ctx)

	items, err := normalizeItems(in.Items)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(items, in.Shipping)

	o := &Order{
		Items:    items,
		Subtotal: totals.Subtotal,
		Shipping: totals.Shipping,
		Total:    totals.Total,
		Currency: s.cfg.Currency,
		Status:   StatusPending,
		Customer: in.Customer,
		Gateway:  GatewayMeta{TerminalName: s.cfg.TerminalName},
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}
	log = logger.FromCtx(logger.WithOrderID(ctx, o.ID))

	session, err := s.gateway.InitiatePayment(ctx, payment.PaymentRequest{
		OrderID:      o.ID,
		Amount:       o.Total,
		Currency:     o.Currency,
		TerminalName: o.Gateway.TerminalName,
	})
	if err != nil {
		log.Error("payment session failed",
			zap.Float64("total", o.Total),
			zap.Error(err),
		)
		return nil, fmt.Errorf("initiate payment for order %s: %w", o.ID, err)
	}

	if session.TransactionID != nil {
		if err := s.repo.SetTransactionID(ctx, o.ID, *session.TransactionID); err != nil {
			log.Warn("failed to store gateway transaction id", zap.Error(err))
		}
	}

	log.Info("checkout created",
		zap.Float64("total", o.Total),
		zap.Int("items", len(o.Items)),
	)

	return &CheckoutResult{
		OrderID:     o.ID,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidOrderID
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Reconcile(ctx context.Context, n payment.Notification) (Outcome, error) {
	log := logger.FromCtx(ctx)

	if n.OrderID == "" {
		log.Info("webhook without order id")
		return OutcomeIgnoredNoOrderID, nil
	}
	log = logger.FromCtx(logger.WithOrderID(ctx, n.OrderID))

	o, err := s.repo.GetByID(ctx, n.OrderID)
	if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrInvalidOrderID) {
		log.Info("webhook for unknown order")
		return OutcomeIgnoredUnknownOrder, nil
	}
	if err != nil {
		return "", err
	}

	if n.HasAmount && n.Amount > 0 && !amountMatches(n.Amount, o.Total) {
		log.Warn("webhook amount mismatch",
			zap.Float64("declared", n.Amount),
			zap.Float64("total", o.Total),
		)
		return OutcomeIgnoredAmountMismatch, nil
	}

	oneWay := s.cfg.Policy != PolicyOverwrite
	if oneWay && o.Status != StatusPending {
		log.Info("webhook for finalized order", zap.String("status", string(o.Status)))
		return OutcomeIgnoredFinalized, nil
	}

	update := PaymentUpdate{
		Status:         targetStatus(n.Result),
		TransactionID:  n.TransactionID,
		ResponseCode:   n.ResponseCode,
		RawResponse:    n.Raw,
		RequirePending: oneWay,
	}

	matched, err := s.repo.ApplyPayment(ctx, o.ID, update)
	if err != nil {
		log.Error("failed to apply payment result", zap.Error(err))
		return "", err
	}
	if !matched {
		// Another delivery finalized the order between read and write.
		log.Info("webhook lost race to finalize order")
		return OutcomeIgnoredFinalized, nil
	}

	if update.Status == nil {
		log.Info("webhook status unrecognized, metadata recorded")
		return OutcomeRecorded, nil
	}

	log.Info("payment result applied",
		zap.String("from", string(o.Status)),
		zap.String("to", string(*update.Status)),
	)
	return OutcomeApplied, nil
}

func targetStatus(r payment.Result) *Status {
	var s Status
	switch r {
	case payment.ResultApproved:
		s = StatusPaid
	case payment.ResultDeclined:
		s = StatusFailed
	default:
		return nil
	}
	return &s
}

func (s *service) ListOrders(ctx context.Context, q ListQuery) (*OrderPage, error) {
	filter := ListFilter{}
	if q.Status != "" {
		st := Status(strings.ToLower(q.Status))
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = st
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	var (
		items []*Order
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &OrderPage{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *service) CancelOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.Cancel(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotPending
	}

	logger.FromCtx(ctx).Info("order canceled", zap.String("order_id", o.ID))
	return s.repo.GetByID(ctx, o.ID)
}
