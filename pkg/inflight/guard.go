// Package inflight provides per-key mutual exclusion for long running work
// such as one chat exchange per session.
package inflight

import (
	"context"
	"errors"
)

// ErrHeld is returned by Acquire when another holder owns the key.
var ErrHeld = errors.New("inflight: key is held")

// Guard hands out at most one live lease per key. Leases expire after the
// guard's TTL so a crashed holder cannot block a key forever.
type Guard interface {
	// Acquire never blocks waiting for the key. The returned release func is
	// safe to call more than once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
