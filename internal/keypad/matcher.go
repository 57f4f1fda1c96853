// Package keypad turns raw disguise-keypad tokens into unlock decisions
// and drives the calculator the disguise shows.
package keypad

import (
	"sync"
	"time"

	"github.com/smallwat3r/stealthpad/internal/domain"
)

// Matcher watches the trailing run of keypad input for the stealth and
// duress codes. Codes may be typed in the middle of ordinary calculator use.
type Matcher struct {
	stealth domain.SecretCode
	duress  domain.SecretCode
	idle    time.Duration
	limit   int
	now     func() time.Time

	mu       sync.Mutex
	buf      []domain.Token
	lastFeed time.Time
	timer    *time.Timer
	gen      uint64
}

// MatcherOption customises a Matcher.
type MatcherOption func(*Matcher)

// WithMatcherClock replaces time.Now for the feed-time idle check.
func WithMatcherClock(now func() time.Time) MatcherOption {
	return func(m *Matcher) { m.now = now }
}

// WithBufferLimit caps the buffer; it never goes below the longest code.
func WithBufferLimit(n int) MatcherOption {
	return func(m *Matcher) { m.limit = n }
}

// NewMatcher expects codes already validated by config.NewUnlockConfig.
// An idle of zero disables the inactivity reset.
func NewMatcher(stealth, duress domain.SecretCode, idle time.Duration, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		stealth: stealth,
		duress:  duress,
		idle:    idle,
		limit:   domain.MaxInputBuffer,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if n := max(len(stealth), len(duress)); m.limit < n {
		m.limit = n
	}
	return m
}

// Feed consumes one token. Only the commit token can produce a match.
func (m *Matcher) Feed(tok domain.Token) domain.MatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.idle > 0 && !m.lastFeed.IsZero() && now.Sub(m.lastFeed) >= m.idle {
		m.resetLocked()
	}
	m.lastFeed = now
	m.armLocked()

	if !tok.Valid() {
		return domain.MatchNone
	}
	if tok == domain.TokenClear {
		m.resetLocked()
		return domain.MatchNone
	}

	m.buf = append(m.buf, tok)
	if len(m.buf) > m.limit {
		drop := len(m.buf) - m.limit
		clear(m.buf[:drop])
		m.buf = append(m.buf[:0], m.buf[drop:]...)
	}

	if tok != domain.TokenCommit {
		return domain.MatchNone
	}

	// Both checks always run so the comparison cost does not depend on
	// which code was typed.
	isStealth := m.stealth.IsSuffixOf(m.buf)
	isDuress := m.duress.IsSuffixOf(m.buf)
	switch {
	case isDuress:
		m.resetLocked()
		return domain.MatchDuress
	case isStealth:
		m.resetLocked()
		return domain.MatchStealth
	}
	return domain.MatchNone
}

// Reset drops any buffered input.
func (m *Matcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// Len reports how many tokens are buffered.
func (m *Matcher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buf)
}

// Stop cancels the inactivity timer.
func (m *Matcher) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.resetLocked()
}

// armLocked cancels the pending idle timer and starts a new one. The
// generation guards against a timer that fired but lost the race for mu.
func (m *Matcher) armLocked() {
	if m.idle <= 0 {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.timer = time.AfterFunc(m.idle, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen == gen {
			m.resetLocked()
		}
	})
}

func (m *Matcher) resetLocked() {
	clear(m.buf)
	m.buf = m.buf[:0]
}
