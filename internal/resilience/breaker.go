package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrBreakerOpen is returned when a call is rejected because a source's
// breaker is open.
var ErrBreakerOpen = eris.New("source breaker is open")

// BreakerState represents the state of one source's breaker.
type BreakerState int

const (
	// BreakerClosed is the normal operating state.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects calls until the reset timeout elapses.
	BreakerOpen
	// BreakerHalfOpen allows a single probe call to test recovery.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig controls per-source breaker behavior.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before the
	// breaker opens. Default: 5.
	FailureThreshold int

	// ResetTimeout is how long a breaker stays open before allowing a
	// half-open probe. Default: 30s.
	ResetTimeout time.Duration
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
	}
}

type breaker struct {
	state       BreakerState
	failures    int
	lastFailure time.Time
}

// BreakerSet tracks one breaker per source key. A source that keeps failing
// is shed for ResetTimeout instead of burning its retry budget on every
// aggregation.
type BreakerSet struct {
	cfg BreakerConfig

	mu       sync.Mutex
	breakers map[string]*breaker

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewBreakerSet creates a breaker set with the given config.
func NewBreakerSet(cfg BreakerConfig) *BreakerSet {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &BreakerSet{
		cfg:      cfg,
		breakers: make(map[string]*breaker),
		nowFunc:  time.Now,
	}
}

// Allow reports whether a call to the keyed source may proceed. An open
// breaker past its reset timeout transitions to half-open and admits one
// probe.
func (bs *BreakerSet) Allow(key string) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	b := bs.breakers[key]
	if b == nil {
		return nil
	}

	switch b.state {
	case BreakerClosed, BreakerHalfOpen:
		return nil
	case BreakerOpen:
		if bs.nowFunc().Sub(b.lastFailure) >= bs.cfg.ResetTimeout {
			b.state = BreakerHalfOpen
			return nil
		}
		return ErrBreakerOpen
	}
	return nil
}

// Record updates the keyed breaker with a call outcome. Success closes the
// breaker and resets the failure count; failure increments it and opens the
// breaker at the threshold (a half-open probe failure re-opens immediately).
func (bs *BreakerSet) Record(key string, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	b := bs.breakers[key]
	if b == nil {
		b = &breaker{}
		bs.breakers[key] = b
	}

	if err == nil {
		b.state = BreakerClosed
		b.failures = 0
		return
	}

	b.failures++
	b.lastFailure = bs.nowFunc()
	if b.state == BreakerHalfOpen || b.failures >= bs.cfg.FailureThreshold {
		b.state = BreakerOpen
	}
}

// State returns the current state for a source key.
func (bs *BreakerSet) State(key string) BreakerState {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	b := bs.breakers[key]
	if b == nil {
		return BreakerClosed
	}
	if b.state == BreakerOpen && bs.nowFunc().Sub(b.lastFailure) >= bs.cfg.ResetTimeout {
		return BreakerHalfOpen
	}
	return b.state
}
