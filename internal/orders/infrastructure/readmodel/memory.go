package readmodel

import (
	"context"
	"sort"
	"sync"

	"github.com/felixgeelhaar/shopcore/internal/orders/application"
	"github.com/google/uuid"
)

// MemoryReadModel is an in-process order read model for local mode and tests.
type MemoryReadModel struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]application.OrderDTO
}

// NewMemoryReadModel creates an empty MemoryReadModel.
func NewMemoryReadModel() *MemoryReadModel {
	return &MemoryReadModel{docs: make(map[uuid.UUID]application.OrderDTO)}
}

func (m *MemoryReadModel) Get(ctx context.Context, id uuid.UUID) (*application.OrderDTO, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	doc = cloneOrder(doc)
	return &doc, nil
}

func (m *MemoryReadModel) Create(ctx context.Context, order application.OrderDTO) error {
	return m.Update(ctx, order)
}

func (m *MemoryReadModel) Update(ctx context.Context, order application.OrderDTO) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[order.ID] = cloneOrder(order)
	return nil
}

func (m *MemoryReadModel) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *MemoryReadModel) ListByUserID(ctx context.Context, userID uuid.UUID) ([]application.OrderDTO, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]application.OrderDTO, 0)
	for _, doc := range m.docs {
		if doc.UserID == userID {
			out = append(out, cloneOrder(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneOrder(o application.OrderDTO) application.OrderDTO {
	o.Items = append([]application.OrderItemDTO(nil), o.Items...)
	return o
}
