// Package params provides the staleness policy shared by parameters and
// groups.
package params

import (
	"context"
	"log/slog"
	"time"
)

// stale is the time-based expiration policy shared by parameters and groups.
// It is evaluated on every access and never cached.
//
//   - a scope that was never fetched is stale
//   - a scope without a max age is never stale once fetched
//   - otherwise the scope is stale once maxAge has fully elapsed
func stale(lastRefresh time.Time, maxAge time.Duration, now time.Time) bool {
	if lastRefresh.IsZero() {
		return true
	}
	if maxAge == 0 {
		return false
	}
	return now.Sub(lastRefresh) >= maxAge
}

// refreshState is the per-scope cache state. A scope is a standalone
// parameter (including a multi-name batch) or a whole group: every member of
// a group shares the group's single refreshState, so staleness is a group
// property, never a per-member one.
type refreshState struct {
	store          Store
	clock          Clock
	logger         *slog.Logger
	maxAge         time.Duration
	withDecryption bool
	lastRefresh    time.Time
}

func (s *refreshState) shouldRefresh() bool {
	return stale(s.lastRefresh, s.maxAge, s.clock.Now())
}

// markRefreshed records a successful fetch at the current time.
func (s *refreshState) markRefreshed() {
	s.lastRefresh = s.clock.Now()
}

// markRefreshedKeepOldest records a successful fetch but keeps the oldest
// known fetch time. Groups populated by several hierarchical fetches expire
// based on their oldest members, not their newest.
func (s *refreshState) markRefreshedKeepOldest() {
	now := s.clock.Now()
	if !s.lastRefresh.IsZero() && s.lastRefresh.Before(now) {
		return
	}
	s.lastRefresh = now
}

// resolveStore returns the configured store, falling back to the
// process-wide default.
func (s *refreshState) resolveStore(ctx context.Context) (Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	return defaultStore(ctx)
}
