package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memEntry struct {
	data    Data
	expires time.Time
}

// MemoryStore 单进程会话存储，仅用于本地开发与测试
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memEntry
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: map[string]memEntry{}, now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, d Data) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.items {
		if now.After(e.expires) {
			delete(s.items, k)
		}
	}
	s.items[id] = memEntry{data: d, expires: now.Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return nil, ErrNoSession
	}
	if s.now().After(e.expires) {
		delete(s.items, id)
		return nil, ErrNoSession
	}
	d := e.data
	return &d, nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}
