package template

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store handles template persistence with version chains. Creating a
// template under an existing name starts a new version linked to the
// previous one; superseded versions remain queryable by explicit version
// number, while lookups without a pinned version resolve to the active
// record with the highest version.
type Store interface {
	// Create persists a template. The version number and previous-version
	// link are assigned by the store.
	Create(ctx context.Context, tpl Template) (*Template, error)

	// Get returns the active, highest-version template under the name.
	Get(ctx context.Context, name string) (*Template, error)

	// GetVersion returns a specific version regardless of active flag.
	GetVersion(ctx context.Context, name string, version int) (*Template, error)

	// List returns the current (highest) version of every template chain.
	List(ctx context.Context) ([]Template, error)

	// Deactivate marks every version under the name inactive.
	Deactivate(ctx context.Context, name string) error
}

// MemoryStore is an in-memory implementation of the Store interface.
type MemoryStore struct {
	chains map[string][]Template // name -> versions ascending
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory template store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chains: make(map[string][]Template)}
}

func (s *MemoryStore) Create(ctx context.Context, tpl Template) (*Template, error) {
	if tpl.Name == "" {
		return nil, ErrMissingName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	tpl.ID = uuid.New().String()
	tpl.Active = true
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	chain := s.chains[tpl.Name]
	if len(chain) == 0 {
		tpl.Version = 1
		tpl.PreviousID = ""
	} else {
		prev := chain[len(chain)-1]
		tpl.Version = prev.Version + 1
		tpl.PreviousID = prev.ID
	}

	s.chains[tpl.Name] = append(chain, tpl)
	return &tpl, nil
}

func (s *MemoryStore) Get(ctx context.Context, name string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.chains[name]
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Active {
			tpl := chain[i]
			return &tpl, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetVersion(ctx context.Context, name string, version int) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tpl := range s.chains[name] {
		if tpl.Version == version {
			out := tpl
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context) ([]Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Template, 0, len(s.chains))
	for _, chain := range s.chains {
		if len(chain) > 0 {
			out = append(out, chain[len(chain)-1])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Deactivate(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, ok := s.chains[name]
	if !ok {
		return ErrNotFound
	}
	for i := range chain {
		chain[i].Active = false
		chain[i].UpdatedAt = time.Now()
	}
	s.chains[name] = chain
	return nil
}
