// Package lockout rate limits failed sign-in attempts. After MaxAttempts
// consecutive failures a key is locked for Cooldown; the counter starts over
// once the lock expires or a sign-in succeeds.
package lockout

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultCooldown    = 5 * time.Minute
)

var ErrLocked = errors.New("too many failed attempts")

// State is what a Store keeps per key.
type State struct {
	Failures    int
	LockedUntil time.Time
}

func (s State) lockedAt(now time.Time) bool {
	return !s.LockedUntil.IsZero() && now.Before(s.LockedUntil)
}

// Store persists attempt state. Incr and Lock must be atomic per key so
// concurrent failures are all counted; ttl is how long the key may live.
type Store interface {
	Load(ctx context.Context, key string) (State, error)
	// Incr adds one failure and returns the new count.
	Incr(ctx context.Context, key string, ttl time.Duration) (int, error)
	// Lock sets the lock end unless one is already set and returns the
	// lock end in force.
	Lock(ctx context.Context, key string, until time.Time, ttl time.Duration) (time.Time, error)
	Delete(ctx context.Context, key string) error
}

type Guard struct {
	store       Store
	maxAttempts int
	cooldown    time.Duration
	now         func() time.Time
}

func New(store Store, maxAttempts int, cooldown time.Duration) *Guard {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Guard{store: store, maxAttempts: maxAttempts, cooldown: cooldown, now: time.Now}
}

// LockedError carries the time left on a lock.
type LockedError struct{ Remaining time.Duration }

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s, try again in %s", ErrLocked, e.Remaining.Round(time.Second))
}

func (e *LockedError) Unwrap() error { return ErrLocked }

// Check returns a *LockedError while key is locked.
func (g *Guard) Check(ctx context.Context, key string) error {
	st, err := g.store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load attempts: %w", err)
	}
	now := g.now()
	if st.lockedAt(now) {
		return &LockedError{Remaining: st.LockedUntil.Sub(now)}
	}
	if !st.LockedUntil.IsZero() {
		// lock expired, start over
		if err := g.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear attempts: %w", err)
		}
	}
	return nil
}

// Fail records a failed attempt and returns how many are left before the
// key locks. A *LockedError is returned once the limit is reached.
func (g *Guard) Fail(ctx context.Context, key string) (int, error) {
	st, err := g.store.Load(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load attempts: %w", err)
	}
	now := g.now()
	if st.lockedAt(now) {
		return 0, &LockedError{Remaining: st.LockedUntil.Sub(now)}
	}
	if !st.LockedUntil.IsZero() {
		if err := g.store.Delete(ctx, key); err != nil {
			return 0, fmt.Errorf("clear attempts: %w", err)
		}
	}
	failures, err := g.store.Incr(ctx, key, g.cooldown)
	if err != nil {
		return 0, fmt.Errorf("count attempt: %w", err)
	}
	if failures < g.maxAttempts {
		return g.maxAttempts - failures, nil
	}
	until, err := g.store.Lock(ctx, key, now.Add(g.cooldown), g.cooldown)
	if err != nil {
		return 0, fmt.Errorf("lock attempts: %w", err)
	}
	return 0, &LockedError{Remaining: until.Sub(now)}
}

// Reset forgets key after a successful sign-in.
func (g *Guard) Reset(ctx context.Context, key string) error {
	return g.store.Delete(ctx, key)
}
