package channel

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	channels map[string]Config
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory channel store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		channels: make(map[string]Config),
	}
}

func (s *MemoryStore) Create(ctx context.Context, cfg Config) error {
	if cfg.Name == "" {
		return ErrMissingName
	}
	if !cfg.Type.Valid() {
		return ErrInvalidType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.channels[cfg.Name]; exists {
		return ErrAlreadyExists
	}

	now := time.Now()
	if cfg.Status == "" {
		cfg.Status = StatusTesting
	}
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	s.channels[cfg.Name] = cloneConfig(cfg)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, name string) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.channels[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneConfig(cfg)
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Config
	for _, cfg := range s.channels {
		if opts.Type != "" && cfg.Type != opts.Type {
			continue
		}
		if opts.Status != "" && cfg.Status != opts.Status {
			continue
		}
		out = append(out, cloneConfig(cfg))
	}
	// Stable order: oldest first, name breaks ties.
	sortConfigs(out)
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, cfg Config) error {
	if cfg.Name == "" {
		return ErrMissingName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.channels[cfg.Name]
	if !ok {
		return ErrNotFound
	}

	cfg.Stats = existing.Stats
	cfg.LastTested = existing.LastTested
	cfg.CreatedAt = existing.CreatedAt
	cfg.UpdatedAt = time.Now()
	if cfg.Status == "" {
		cfg.Status = existing.Status
	}
	s.channels[cfg.Name] = cloneConfig(cfg)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.channels[name]; !ok {
		return ErrNotFound
	}
	delete(s.channels, name)
	return nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, name string, status Status, errorMessage string) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.channels[name]
	if !ok {
		return ErrNotFound
	}
	cfg.Status = status
	cfg.ErrorMessage = errorMessage
	cfg.UpdatedAt = time.Now()
	s.channels[name] = cfg
	return nil
}

func (s *MemoryStore) SetDefault(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.channels[name]
	if !ok {
		return ErrNotFound
	}

	now := time.Now()
	for n, cfg := range s.channels {
		if n == name || cfg.Type != target.Type || !cfg.HasTag(TagDefault) {
			continue
		}
		cfg.Tags = removeTag(cfg.Tags, TagDefault)
		cfg.UpdatedAt = now
		s.channels[n] = cfg
	}

	if !target.HasTag(TagDefault) {
		target.Tags = append(append([]string(nil), target.Tags...), TagDefault)
	}
	target.UpdatedAt = now
	s.channels[name] = target
	return nil
}

func (s *MemoryStore) RecordAttempt(ctx context.Context, name string, outcome DeliveryOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.channels[name]
	if !ok {
		return ErrNotFound
	}

	now := time.Now()
	switch {
	case outcome.Queued:
		// Deferred deliveries are not attempts; stats unchanged.
		return nil
	case outcome.Success:
		cfg.Stats.Sent++
		if outcome.Delivered {
			cfg.Stats.Delivered++
		}
		cfg.Stats.LastSentAt = &now
	default:
		cfg.Stats.Failed++
	}
	cfg.UpdatedAt = now
	s.channels[name] = cfg
	return nil
}

func (s *MemoryStore) MarkTested(ctx context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.channels[name]
	if !ok {
		return ErrNotFound
	}
	cfg.LastTested = &at
	cfg.UpdatedAt = time.Now()
	s.channels[name] = cfg
	return nil
}

func cloneConfig(cfg Config) Config {
	cp := cfg
	cp.Tags = append([]string(nil), cfg.Tags...)
	if cfg.Settings != nil {
		cp.Settings = make(map[string]any, len(cfg.Settings))
		for k, v := range cfg.Settings {
			cp.Settings[k] = v
		}
	}
	return cp
}

func removeTag(tags []string, tag string) []string {
	out := tags[:0]
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

func sortConfigs(configs []Config) {
	slices.SortFunc(configs, func(a, b Config) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
