package preference

import (
	"context"
	"sync"
	"time"

	"github.com/agrovia/notifykit/pkg/notification"
)

// Store handles preference persistence. Get creates a default record on
// first access, so callers never observe a missing preference.
type Store interface {
	// Get retrieves the user's preference, creating a default record
	// when none exists.
	Get(ctx context.Context, userID string) (*Preference, error)

	// Update replaces the user's preference record.
	Update(ctx context.Context, pref Preference) error

	// Reset discards the user's preference record and recreates the
	// default, returning the fresh record.
	Reset(ctx context.Context, userID string) (*Preference, error)
}

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	prefs map[string]Preference
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory preference store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prefs: make(map[string]Preference),
	}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*Preference, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	s.mu.RLock()
	pref, ok := s.prefs[userID]
	s.mu.RUnlock()
	if ok {
		cp := clone(pref)
		return &cp, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if pref, ok = s.prefs[userID]; !ok {
		pref = Default(userID)
		s.prefs[userID] = pref
	}
	cp := clone(pref)
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, pref Preference) error {
	if pref.UserID == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.prefs[pref.UserID]; ok {
		pref.CreatedAt = existing.CreatedAt
	} else if pref.CreatedAt.IsZero() {
		pref.CreatedAt = time.Now()
	}
	pref.UpdatedAt = time.Now()
	s.prefs[pref.UserID] = clone(pref)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context, userID string) (*Preference, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pref := Default(userID)
	s.prefs[userID] = pref
	cp := clone(pref)
	return &cp, nil
}

// clone deep-copies the maps and slices so callers cannot mutate stored
// state through a returned record.
func clone(p Preference) Preference {
	cp := p
	cp.Push.Tokens = append([]PushToken(nil), p.Push.Tokens...)
	cp.Webhook.Endpoints = make([]WebhookEndpoint, len(p.Webhook.Endpoints))
	for i, ep := range p.Webhook.Endpoints {
		cp.Webhook.Endpoints[i] = ep
		cp.Webhook.Endpoints[i].Events = append([]string(nil), ep.Events...)
	}
	cp.Categories = cloneOverrides(p.Categories)
	cp.Types = cloneOverrides(p.Types)
	cp.Templates = cloneOverrides(p.Templates)
	return cp
}

func cloneOverrides(src map[string]Override) map[string]Override {
	if src == nil {
		return nil
	}
	dst := make(map[string]Override, len(src))
	for k, ov := range src {
		cp := ov
		if ov.Enabled != nil {
			v := *ov.Enabled
			cp.Enabled = &v
		}
		if ov.Channels != nil {
			cp.Channels = make(map[notification.Channel]bool, len(ov.Channels))
			for ch, allowed := range ov.Channels {
				cp.Channels[ch] = allowed
			}
		}
		dst[k] = cp
	}
	return dst
}
