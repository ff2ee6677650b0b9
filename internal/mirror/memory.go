package mirror

import (
	"context"
	"sync"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

// MemoryMirror is an in-process Mirror. Tests use it to script remote
// state; the client falls back to it when no remote URL is configured so
// the sync path stays exercised end to end.
type MemoryMirror struct {
	mu          sync.Mutex
	docs        map[string]*domain.Document
	subscribers map[string]map[int]func(*domain.Document)
	nextSubID   int

	// FailPuts makes every PutDocument fail. Tests use it to simulate an
	// unreachable remote.
	FailPuts bool
}

// NewMemoryMirror creates an empty in-memory mirror.
func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{
		docs:        make(map[string]*domain.Document),
		subscribers: make(map[string]map[int]func(*domain.Document)),
	}
}

// GetDocument implements Mirror.
func (m *MemoryMirror) GetDocument(_ context.Context, key string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, errors.NotFoundf("no document for key %s", key)
	}
	return doc.Clone(), nil
}

// PutDocument implements Mirror. Subscribers of the key are notified
// synchronously, echoing the write back to its originator the way a real
// change feed would.
func (m *MemoryMirror) PutDocument(_ context.Context, key string, doc *domain.Document) error {
	m.mu.Lock()
	if m.FailPuts {
		m.mu.Unlock()
		return errors.Sync("remote unavailable", nil)
	}
	stored := doc.Clone()
	m.docs[key] = stored

	var callbacks []func(*domain.Document)
	for _, fn := range m.subscribers[key] {
		callbacks = append(callbacks, fn)
	}
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(stored.Clone())
	}
	return nil
}

// Subscribe implements Mirror.
func (m *MemoryMirror) Subscribe(_ context.Context, key string, onChange func(doc *domain.Document)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscribers[key] == nil {
		m.subscribers[key] = make(map[int]func(*domain.Document))
	}
	subID := m.nextSubID
	m.nextSubID++
	m.subscribers[key][subID] = onChange

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers[key], subID)
			m.mu.Unlock()
		})
	}
	return unsubscribe, nil
}

// Seed installs a document without notifying subscribers. Test helper.
func (m *MemoryMirror) Seed(key string, doc *domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = doc.Clone()
}
