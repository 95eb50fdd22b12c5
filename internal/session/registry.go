package session

import (
	"log/slog"
	"sync"

	"github.com/VATuan2710/final-project-thuc-tap/internal/cart"
	"github.com/VATuan2710/final-project-thuc-tap/internal/repository"
)

// Registry maps session ids to their cart stores, creating one lazily per
// session. Each store owns its own background writer, so removal must go
// through Remove or Close to flush pending writes.
type Registry struct {
	repo   repository.CartRepository
	logger *slog.Logger

	mu     sync.Mutex
	stores map[string]*cart.Store
}

func NewRegistry(repo repository.CartRepository, logger *slog.Logger) *Registry {
	return &Registry{
		repo:   repo,
		logger: logger,
		stores: make(map[string]*cart.Store),
	}
}

// GetOrCreate returns the session's store, creating an empty guest store
// on first use.
func (r *Registry) GetOrCreate(sessionID string) *cart.Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[sessionID]; ok {
		return s
	}
	s := cart.NewStore(r.repo, r.logger)
	r.stores[sessionID] = s
	return s
}

// Get returns the session's store if one exists.
func (r *Registry) Get(sessionID string) (*cart.Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[sessionID]
	return s, ok
}

// Remove closes and drops the session's store.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	s, ok := r.stores[sessionID]
	delete(r.stores, sessionID)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Close closes every store, flushing their pending writes.
func (r *Registry) Close() {
	r.mu.Lock()
	stores := make([]*cart.Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.stores = make(map[string]*cart.Store)
	r.mu.Unlock()

	for _, s := range stores {
		s.Close()
	}
}
