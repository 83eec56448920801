package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/apperr"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository is the order store. Totals are written once by Create; no
// method can change them afterwards.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	SetTransactionID(ctx context.Context, id string, transactionID string) error
	// ApplyPayment performs u as one atomic update-by-id and reports whether
	// a row matched.
	ApplyPayment(ctx context.Context, id string, u PaymentUpdate) (bool, error)
	// Cancel moves a pending order to canceled and reports whether it did.
	Cancel(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f ListFilter) ([]*Order, error)
	Count(ctx context.Context, f ListFilter) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, items, subtotal, shipping, total, currency, status, customer,
	terminal_name, transaction_id, response_code, raw_response, created_at, updated_at`

func (r *repository) Create(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("encode customer: %w", err)
	}

	id := uuid.NewString()

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, items, subtotal, shipping, total,
			currency, status, customer, terminal_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`,
		id,
		string(items),
		o.Subtotal,
		o.Shipping,
		o.Total,
		o.Currency,
		string(o.Status),
		string(customer),
		o.Gateway.TerminalName,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return storageError(err)
	}

	o.ID = id
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidOrderID
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}
	return o, nil
}

func (r *repository) SetTransactionID(ctx context.Context, id string, transactionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET transaction_id = $2, updated_at = now()
		WHERE id = $1
	`, id, transactionID)
	return storageError(err)
}

func (r *repository) ApplyPayment(ctx context.Context, id string, u PaymentUpdate) (bool, error) {
	query := `
		UPDATE orders
		SET status = COALESCE($2, status),
			transaction_id = COALESCE($3, transaction_id),
			response_code = COALESCE($4, response_code),
			raw_response = $5,
			updated_at = now()
		WHERE id = $1`
	if u.RequirePending {
		query += ` AND status = 'pending'`
	}

	var status sql.NullString
	if u.Status != nil {
		status = sql.NullString{String: string(*u.Status), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query,
		id,
		status,
		nullableString(u.TransactionID),
		nullableString(u.ResponseCode),
		nullableJSON(u.RawResponse),
	)
	if err != nil {
		return false, storageError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, storageError(err)
	}
	return n > 0, nil
}

func (r *repository) Cancel(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'canceled', updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, storageError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, storageError(err)
	}
	return n > 0, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	where, args := listWhere(f)
	args = append(args, f.Limit, f.Offset)

	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, storageError(err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err)
	}
	return orders, nil
}

func (r *repository) Count(ctx context.Context, f ListFilter) (int64, error) {
	where, args := listWhere(f)

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&n); err != nil {
		return 0, storageError(err)
	}
	return n, nil
}

func listWhere(f ListFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o             Order
		items         []byte
		customer      []byte
		status        string
		transactionID sql.NullString
		responseCode  sql.NullString
		raw           []byte
	)

	err := row.Scan(
		&o.ID, &items, &o.Subtotal, &o.Shipping, &o.Total, &o.Currency, &status, &customer,
		&o.Gateway.TerminalName, &transactionID, &responseCode, &raw, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = Status(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if len(customer) > 0 {
		if err := json.Unmarshal(customer, &o.Customer); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
	}
	if transactionID.Valid {
		o.Gateway.TransactionID = &transactionID.String
	}
	if responseCode.Valid {
		o.Gateway.ResponseCode = &responseCode.String
	}
	if len(raw) > 0 {
		o.Gateway.RawResponse = json.RawMessage(raw)
	}
	return &o, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableJSON(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}

// storageError tags database failures so handlers answer 500 and callers
// can retry. A nil err stays nil.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return apperr.Wrap(apperr.ErrStorage, fmt.Errorf("postgres %s (%s): %w", pqErr.Code.Name(), pqErr.Code, err))
	}
	return apperr.Wrap(apperr.ErrStorage, err)
}
