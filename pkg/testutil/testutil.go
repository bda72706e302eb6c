// Package testutil provides common testing utilities shared by service tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zenscore/zenscore/internal/app/domain/account"
	"github.com/zenscore/zenscore/internal/app/storage"
)

// Epoch is the default starting instant of a Clock.
var Epoch = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

// Clock is a manually driven time source for services that accept a clock.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewClock returns a clock frozen at start. A zero start means Epoch.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = Epoch
	}
	return &Clock{now: start}
}

// Ticking makes every Now call advance the clock by step afterwards.
func (c *Clock) Ticking(step time.Duration) *Clock {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = step
	return c
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Peek returns the current instant without ticking.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SeedAccount stores an active account with a placeholder password hash.
func SeedAccount(t testing.TB, store storage.AccountStore, name, email string) account.Account {
	t.Helper()
	acct, err := store.CreateAccount(context.Background(), account.Account{Name: name, Email: email, IsActive: true}, "hash")
	if err != nil {
		t.Fatalf("seed account %s: %v", email, err)
	}
	return acct
}
