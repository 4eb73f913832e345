package outbox

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps the outbox in process memory.
type InMemoryRepository struct {
	mu       sync.Mutex
	messages []*Message
	nextID   int64
}

// NewInMemoryRepository creates a new in-memory outbox repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Save(ctx context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = r.nextID
	r.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *InMemoryRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *InMemoryRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*Message
	now := time.Now()
	for _, msg := range r.messages {
		if msg.PublishedAt != nil || msg.DeadLetteredAt != nil {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		result = append(result, msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *InMemoryRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.update(id, func(msg *Message) {
		now := time.Now()
		msg.PublishedAt = &now
		msg.DeadLetteredAt = nil
	})
}

func (r *InMemoryRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.update(id, func(msg *Message) {
		msg.RetryCount++
		msg.LastError = &errMsg
		msg.NextRetryAt = &nextRetryAt
	})
}

func (r *InMemoryRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.update(id, func(msg *Message) {
		now := time.Now()
		msg.DeadLetteredAt = &now
		msg.DeadLetterReason = &reason
	})
}

func (r *InMemoryRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	kept := r.messages[:0]
	var deleted int64
	for _, msg := range r.messages {
		if msg.PublishedAt != nil && msg.PublishedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	r.messages = kept
	return deleted, nil
}

// Messages returns every stored message.
func (r *InMemoryRepository) Messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Message(nil), r.messages...)
}

func (r *InMemoryRepository) update(id int64, fn func(*Message)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			fn(msg)
			return nil
		}
	}
	return nil
}
