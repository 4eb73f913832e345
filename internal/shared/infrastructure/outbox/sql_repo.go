package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database"
)

const messageColumns = `id, event_id, aggregate_type, aggregate_id, event_type,
	payload, metadata, created_at, published_at, next_retry_at, retry_count,
	last_error, dead_lettered_at, dead_letter_reason`

// SQLRepository implements Repository over PostgreSQL or SQLite.
type SQLRepository struct {
	conn   database.Connection
	driver database.Driver
	now    func() time.Time
}

// NewSQLRepository creates a new outbox repository.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn, driver: conn.Driver(), now: time.Now}
}

func (r *SQLRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Save stores a new outbox message and sets its ID.
func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	return r.insert(ctx, r.exec(ctx), msg)
}

func (r *SQLRepository) insert(ctx context.Context, execer database.Executor, msg *Message) error {
	query := r.driver.Rebind(`
		INSERT INTO outbox (
			event_id, aggregate_type, aggregate_id, event_type,
			payload, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var metadata any
	if len(msg.Metadata) > 0 {
		metadata = string(msg.Metadata)
	}

	err := execer.QueryRow(ctx, query,
		msg.EventID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		string(msg.Payload),
		metadata,
		r.driver.TimeArg(msg.CreatedAt),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}
	return nil
}

// SaveBatch stores msgs in the caller's transaction, or in a new one.
func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if tx := database.TxFromContext(ctx); tx != nil {
		for _, msg := range msgs {
			if err := r.insert(ctx, tx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin outbox transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, msg := range msgs {
		if err := r.insert(ctx, tx, msg); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetUnpublished retrieves due messages ordered by insertion.
func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	query := r.driver.Rebind(`
		SELECT ` + messageColumns + `
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`)

	rows, err := r.exec(ctx).Query(ctx, query, r.driver.TimeArg(r.now()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MarkPublished marks a message as successfully published.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	query := r.driver.Rebind(`UPDATE outbox SET published_at = ?, dead_lettered_at = NULL WHERE id = ?`)
	_, err := r.exec(ctx).Exec(ctx, query, r.driver.TimeArg(r.now()), id)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	query := r.driver.Rebind(`
		UPDATE outbox
		SET retry_count = retry_count + 1,
			last_error = ?,
			next_retry_at = ?
		WHERE id = ?`)
	_, err := r.exec(ctx).Exec(ctx, query, errMsg, r.driver.TimeArg(nextRetryAt), id)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	query := r.driver.Rebind(`
		UPDATE outbox
		SET dead_lettered_at = ?,
			dead_letter_reason = ?
		WHERE id = ?`)
	_, err := r.exec(ctx).Exec(ctx, query, r.driver.TimeArg(r.now()), reason, id)
	return err
}

// DeleteOld removes published messages older than the retention period.
func (r *SQLRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := r.now().AddDate(0, 0, -olderThanDays)
	query := r.driver.Rebind(`
		DELETE FROM outbox
		WHERE published_at IS NOT NULL
		  AND published_at < ?`)
	result, err := r.exec(ctx).Exec(ctx, query, r.driver.TimeArg(cutoff))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanMessages(rows database.Rows) ([]*Message, error) {
	var messages []*Message

	for rows.Next() {
		var (
			msg                                      Message
			payload                                  string
			metadata, lastError, deadReason          sql.NullString
			createdAt                                database.Time
			publishedAt, nextRetryAt, deadLetteredAt database.Time
		)
		err := rows.Scan(
			&msg.ID,
			&msg.EventID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&payload,
			&metadata,
			&createdAt,
			&publishedAt,
			&nextRetryAt,
			&msg.RetryCount,
			&lastError,
			&deadLetteredAt,
			&deadReason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}

		msg.Payload = []byte(payload)
		if metadata.Valid {
			msg.Metadata = []byte(metadata.String)
		}
		msg.CreatedAt = createdAt.Time
		msg.PublishedAt = optionalTime(publishedAt)
		msg.NextRetryAt = optionalTime(nextRetryAt)
		msg.DeadLetteredAt = optionalTime(deadLetteredAt)
		msg.LastError = optionalString(lastError)
		msg.DeadLetterReason = optionalString(deadReason)
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func optionalTime(t database.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func optionalString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
