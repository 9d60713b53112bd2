package cache

import (
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long an unused entry stays reachable.
const DefaultTTL = 30 * 24 * time.Hour

// Option configures an Engine.
type Option func(*Engine)

// WithTTL sets the idle time after which entries expire. A non-positive
// ttl disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records cache activity in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMinAnchorLength ignores anchor patterns shorter than n bytes when
// matching by substring. Content-hash matching is unaffected.
func WithMinAnchorLength(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.minAnchor = n
	}
}

// WithJanitor evicts expired entries every interval until Close.
// A non-positive interval disables the janitor.
func WithJanitor(interval time.Duration) Option {
	return func(e *Engine) { e.janitorInterval = interval }
}
