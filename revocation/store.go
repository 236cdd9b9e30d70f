package revocation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var (
	// ErrUnavailable wraps backend failures.
	ErrUnavailable = errors.New("revocation backend unavailable")
	// ErrInvalidID is returned for blank license ids.
	ErrInvalidID = errors.New("invalid license id")
)

// Store records revoked license ids until a deadline.
type Store interface {
	// Revoke marks id as revoked until until. A deadline that already passed is a no-op.
	Revoke(ctx context.Context, id string, until time.Time) error
	// IsRevoked reports whether id is currently revoked.
	IsRevoked(ctx context.Context, id string) (bool, error)
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return nil
}

// MemoryStore is a process-local Store. Entries are evicted by the cache
// janitor once their deadline passes.
type MemoryStore struct {
	mu  sync.Mutex
	c   *gocache.Cache
	now func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		c:   gocache.New(gocache.NoExpiration, time.Minute),
		now: time.Now,
	}
}

func (s *MemoryStore) Revoke(_ context.Context, id string, until time.Time) error {
	if err := checkID(id); err != nil {
		return err
	}
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.deadline(id); ok && !until.After(cur) {
		return nil
	}
	s.c.Set(id, until, ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}

	until, ok := s.deadline(id)
	if !ok {
		return false, nil
	}
	if s.now().Before(until) {
		return true, nil
	}

	s.mu.Lock()
	if cur, ok := s.deadline(id); ok && !s.now().Before(cur) {
		s.c.Delete(id)
	}
	s.mu.Unlock()
	return false, nil
}

func (s *MemoryStore) deadline(id string) (time.Time, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		return time.Time{}, false
	}
	until, ok := v.(time.Time)
	return until, ok
}
