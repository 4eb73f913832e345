package outbox

import (
	"context"
	"time"
)

// Repository defines the interface for outbox persistence.
type Repository interface {
	// Save stores a new outbox message.
	Save(ctx context.Context, msg *Message) error

	// SaveBatch stores multiple outbox messages atomically.
	// It joins the transaction carried by ctx when there is one.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished retrieves messages due for publishing, oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	// MarkPublished marks a message as successfully published.
	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a publish failure and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error

	// MarkDead marks a message as dead-lettered.
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld removes published messages older than the retention period.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
