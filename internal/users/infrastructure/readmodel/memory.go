package readmodel

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/google/uuid"
)

// MemoryReadModel is an in-process user read model for local mode and tests.
type MemoryReadModel struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]application.UserDTO
}

// NewMemoryReadModel creates an empty MemoryReadModel.
func NewMemoryReadModel() *MemoryReadModel {
	return &MemoryReadModel{docs: make(map[uuid.UUID]application.UserDTO)}
}

func (m *MemoryReadModel) Get(ctx context.Context, id uuid.UUID) (*application.UserDTO, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *MemoryReadModel) Create(ctx context.Context, user application.UserDTO) error {
	return m.Update(ctx, user)
}

func (m *MemoryReadModel) Update(ctx context.Context, user application.UserDTO) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[user.ID] = user
	return nil
}

func (m *MemoryReadModel) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

// SearchByEmail matches case-insensitively and orders by email.
func (m *MemoryReadModel) SearchByEmail(ctx context.Context, fragment string, limit int) ([]application.UserDTO, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(fragment)
	out := make([]application.UserDTO, 0)
	for _, doc := range m.docs {
		if strings.Contains(strings.ToLower(doc.Email), needle) {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
