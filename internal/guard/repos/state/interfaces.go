// Package state defines the persistence substrate for the guard's three
// persisted singletons. The Store is a deliberately narrow async key-value
// contract with no multi-key atomicity; every read-modify-write against a
// key must run inside the Queue so interleaved handlers cannot race a
// stale read.
package state

import "context"

// Persisted configuration keys.
const (
	KeyFortress  = "digitalFortress"
	KeySettings  = "cyberSettings"
	KeyAnalytics = "neuralAnalytics"
	KeyLastScan  = "lastQuantumScan"
)

// Store is the async key-value contract of the persistence collaborator.
// Get returns found=false (not an error) for a missing key. Both calls
// can fail; callers check and log, never assume success.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
