// Package mem provides an in-memory state.Store used by unit tests. It
// can be told to fail reads or writes to exercise degradation paths.
package mem

import (
	"context"
	"sync"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state"
)

// Store is a map-backed state.Store. The zero value is not usable; call New.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailGet / FailSet, when non-nil, are returned from the respective
	// call instead of touching the map.
	FailGet error
	FailSet error

	// SetCalls counts successful writes, letting tests assert that a
	// no-op sweep skipped its persist.
	SetCalls int
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{data: map[string][]byte{}}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailGet != nil {
		return nil, false, s.FailGet
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet != nil {
		return s.FailSet
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	s.SetCalls++
	return nil
}

func (s *Store) Close() error { return nil }

var _ state.Store = (*Store)(nil)
