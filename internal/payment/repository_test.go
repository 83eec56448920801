package payment

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	payload := []byte(`{"orderId":"o1"}`)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_webhooks`).
			WithArgs(ProviderTranzila, sql.NullString{String: "o1", Valid: true}, true, true,
				sql.NullString{String: string(payload), Valid: true}, sql.NullString{}).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

		id, err := repo.Record(ctx, WebhookRecord{
			Provider: ProviderTranzila, OrderID: "o1", Signed: true, Authentic: true, Payload: payload,
		})
		assert.NoError(t, err)
		assert.Equal(t, "10", id)
	})

	t.Run("RejectedWithoutPayload", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_webhooks`).
			WithArgs(ProviderTranzila, sql.NullString{}, false, false,
				sql.NullString{}, sql.NullString{String: "signature mismatch", Valid: true}).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		id, err := repo.Record(ctx, WebhookRecord{Provider: ProviderTranzila, Reject: "signature mismatch"})
		assert.NoError(t, err)
		assert.Equal(t, "11", id)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_webhooks`).
			WillReturnError(errors.New("db error"))

		_, err := repo.Record(ctx, WebhookRecord{Provider: ProviderTranzila})
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WebhookUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("MarkProcessed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_webhooks SET processed_at = now\(\), outcome = \$2 WHERE id = \$1`).
			WithArgs("1", "applied").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkProcessed(ctx, "1", "applied"))
	})

	t.Run("MarkProcessed_Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_webhooks SET processed_at`).
			WithArgs("1", "applied").
			WillReturnError(errors.New("db error"))

		assert.Error(t, repo.MarkProcessed(ctx, "1", "applied"))
	})

	t.Run("MarkFailed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_webhooks SET process_error = \$2 WHERE id = \$1`).
			WithArgs("1", "storage down").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkFailed(ctx, "1", "storage down"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
