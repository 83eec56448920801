package payment

import (
	"context"
	"database/sql"
	"strconv"
)

// WebhookRecord is one inbound notification as received, before any
// business processing.
type WebhookRecord struct {
	Provider  string
	OrderID   string
	Signed    bool
	Authentic bool
	// Payload is the raw body; left empty for rejected calls.
	Payload []byte
	// Reject is the verification failure reason, empty when authentic.
	Reject string
}

// WebhookLog is the audit trail of inbound notifications.
type WebhookLog interface {
	Record(ctx context.Context, rec WebhookRecord) (string, error)
	MarkProcessed(ctx context.Context, id string, outcome string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) WebhookLog {
	return &repository{db: db}
}

func (r *repository) Record(ctx context.Context, rec WebhookRecord) (string, error) {
	const q = `
	INSERT INTO payment_webhooks (
		provider,
		order_id,
		signature_valid,
		authentic,
		payload,
		process_error
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		rec.Provider,
		nullString(rec.OrderID),
		rec.Signed,
		rec.Authentic,
		nullString(string(rec.Payload)),
		nullString(rec.Reject),
	).Scan(&id)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(id, 10), nil
}

func (r *repository) MarkProcessed(ctx context.Context, id string, outcome string) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), outcome = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, id, outcome)
	return err
}

func (r *repository) MarkFailed(ctx context.Context, id string, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, id, reason)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
