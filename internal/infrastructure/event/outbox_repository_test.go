package event

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingEntry(tenantID uuid.UUID) *shared.OutboxEntry {
	return shared.NewOutboxEntry(tenantID, newPaymentEvent(tenantID), []byte(`{}`))
}

func outboxRows(entries ...*shared.OutboxEntry) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "event_id", "event_type", "aggregate_id", "aggregate_type",
		"payload", "status", "retry_count", "max_retries", "last_error",
		"next_retry_at", "processed_at", "created_at", "updated_at",
	})
	for _, e := range entries {
		rows.AddRow(
			e.ID, e.TenantID, e.EventID, e.EventType, e.AggregateID, e.AggregateType,
			e.Payload, e.Status, e.RetryCount, e.MaxRetries, e.LastError,
			e.NextRetryAt, e.ProcessedAt, e.CreatedAt, e.UpdatedAt,
		)
	}
	return rows
}

func TestGormOutboxRepository_Save(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	entry := pendingEntry(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(entry.CreatedAt, entry.UpdatedAt))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_Save_NoEntries(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	require.NoError(t, repo.Save(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_FindPending(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	entry := pendingEntry(uuid.New())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE status = $1 ORDER BY created_at ASC LIMIT $2`)).
		WithArgs(string(shared.OutboxStatusPending), 50).
		WillReturnRows(outboxRows(entry))

	found, err := repo.FindPending(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, entry.EventID, found[0].EventID)
	assert.Equal(t, "PaymentRegistered", found[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_FindRetryable(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	entry := pendingEntry(uuid.New())
	entry.MarkFailed("delivery refused")

	before := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE status = $1 AND next_retry_at <= $2 ORDER BY next_retry_at ASC LIMIT $3`)).
		WithArgs(string(shared.OutboxStatusFailed), sqlmock.AnyArg(), 50).
		WillReturnRows(outboxRows(entry))

	found, err := repo.FindRetryable(context.Background(), before, 50)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, shared.OutboxStatusFailed, found[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_MarkProcessing_NoIDs(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	claimed, err := repo.MarkProcessing(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_Update(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	entry := pendingEntry(uuid.New())
	entry.MarkSent()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_DeleteOlderThan(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "outbox_events" WHERE status = $1 AND processed_at < $2`)).
		WithArgs(string(shared.OutboxStatusSent), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectCommit()

	deleted, err := repo.DeleteOlderThan(context.Background(), time.Now().Add(-7*24*time.Hour))

	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_CountByStatus(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, count(*) as count FROM "outbox_events" GROUP BY "status"`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 3).
			AddRow("SENT", 40).
			AddRow("DEAD", 1))

	counts, err := repo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[shared.OutboxStatusPending])
	assert.Equal(t, int64(40), counts[shared.OutboxStatusSent])
	assert.Equal(t, int64(1), counts[shared.OutboxStatusDead])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_FindByID(t *testing.T) {
	db, mock := newPublisherMockDB(t)
	repo := NewGormOutboxRepository(db)

	entry := pendingEntry(uuid.New())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE id = $1 ORDER BY "outbox_events"."id" LIMIT $2`)).
		WithArgs(entry.ID, 1).
		WillReturnRows(outboxRows(entry))

	found, err := repo.FindByID(context.Background(), entry.ID)

	require.NoError(t, err)
	assert.Equal(t, entry.ID, found.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
