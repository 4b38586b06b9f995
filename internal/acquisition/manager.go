package acquisition

import (
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live workflow sessions by id for the HTTP layer.
type Manager struct {
	lookups LookupProvider
	books   Committer

	mu       sync.Mutex
	sessions map[string]*Workflow
}

func NewManager(lookups LookupProvider, books Committer) *Manager {
	return &Manager{
		lookups:  lookups,
		books:    books,
		sessions: make(map[string]*Workflow),
	}
}

// Create starts a new idle session with the given shelf preselected.
func (m *Manager) Create(defaultShelfID string) (string, *Workflow) {
	id := uuid.NewString()
	w := NewWorkflow(m.lookups, m.books, defaultShelfID)
	m.mu.Lock()
	m.sessions[id] = w
	m.mu.Unlock()
	return id, w
}

func (m *Manager) Get(id string) (*Workflow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.sessions[id]
	return w, ok
}

// Remove abandons and forgets a session. Safe to call for unknown ids.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	w, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		w.Abandon()
	}
}
