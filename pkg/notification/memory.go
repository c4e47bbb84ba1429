package notification

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	notifications map[string]Notification // id -> notification
	mu            sync.RWMutex
}

// NewMemoryStore creates a new in-memory notification store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notifications: make(map[string]Notification),
	}
}

func (s *MemoryStore) Create(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		return ErrMissingID
	}
	if n.UserID == "" {
		return ErrMissingUserID
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}

	s.notifications[n.ID] = n
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to prevent external mutation of stored data.
	return &n, nil
}

func (s *MemoryStore) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if opts.Status != "" && n.Status != opts.Status {
			continue
		}
		if opts.Category != "" && n.Category != opts.Category {
			continue
		}
		if opts.Type != "" && n.Type != opts.Type {
			continue
		}
		if opts.Channel != "" && n.Channel != opts.Channel {
			continue
		}
		if opts.OnlyUnread && n.IsRead() {
			continue
		}
		filtered = append(filtered, n)
	}

	// Newest first.
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)

	start := opts.Offset
	if start > total {
		return []Notification{}, total, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > total {
		end = total
	}

	return filtered[start:end], total, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}

	if err := n.Transition(status); err != nil {
		return err
	}
	n.ErrorMessage = errorMessage

	s.notifications[id] = n
	return nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, userID string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		n, ok := s.notifications[id]
		if !ok || n.UserID != userID {
			continue
		}
		// Pending notifications cannot be read yet; skip rather than fail
		// so one stale id does not abort a bulk mark-read.
		if err := n.Transition(StatusRead); err != nil {
			continue
		}
		s.notifications[id] = n
	}
	return nil
}

func (s *MemoryStore) MarkAllRead(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, n := range s.notifications {
		if n.UserID != userID || n.IsRead() {
			continue
		}
		if err := n.Transition(StatusRead); err != nil {
			continue
		}
		s.notifications[id] = n
		count++
	}
	return count, nil
}

func (s *MemoryStore) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead() && !n.IsExpired() && n.Status != StatusArchived {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *MemoryStore) ListScheduledDue(ctx context.Context, before time.Time, limit int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []Notification
	for _, n := range s.notifications {
		if n.Status != StatusPending || n.ScheduledFor == nil {
			continue
		}
		if n.ScheduledFor.After(before) {
			continue
		}
		due = append(due, n)
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledFor.Before(*due[j].ScheduledFor)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryStore) ListExpired(ctx context.Context, before time.Time, limit int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []Notification
	for _, n := range s.notifications {
		if n.Status == StatusArchived || n.ExpiresAt == nil {
			continue
		}
		if n.ExpiresAt.After(before) {
			continue
		}
		expired = append(expired, n)
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(*expired[j].ExpiresAt)
	})

	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}
