// v0
// internal/circuitbreaker/breaker.go
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case HalfOpen:
		return "half-open"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned while the breaker fast-fails.
var ErrOpen = errors.New("circuit breaker is open; fast-fail")

// Config holds the breaker thresholds.
type Config struct {
	MaxFailures      int           // consecutive failures before opening
	ResetTimeout     time.Duration // how long to stay open before a trial call
	SuccessesToClose int           // successes required in half-open before closing
}

// Breaker guards calls to one downstream dependency.
type Breaker struct {
	name string
	cfg  Config
	lg   *slog.Logger
	now  func() time.Time

	// OnStateChange, when set, is called with the new state after each transition.
	OnStateChange func(name string, s State)

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

func New(name string, cfg Config, lg *slog.Logger) *Breaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}
	if cfg.SuccessesToClose < 1 {
		cfg.SuccessesToClose = 1
	}
	if lg == nil {
		lg = slog.Default()
	}
	b := &Breaker{name: name, cfg: cfg, lg: lg.With("breaker", name), now: time.Now}
	b.lg.Info("breaker_created", "maxFailures", cfg.MaxFailures, "resetTimeout", cfg.ResetTimeout.String())
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs op unless the breaker is open. After ResetTimeout the breaker
// lets trial calls through in half-open state.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	if err := op(ctx); err != nil {
		b.onFailure(err)
		return err
	}
	b.onSuccess()
	return nil
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Open {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.cfg.ResetTimeout {
		return ErrOpen
	}
	b.transition(HalfOpen)
	return nil
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	if b.state != HalfOpen {
		return
	}
	b.successes++
	if b.successes >= b.cfg.SuccessesToClose {
		b.transition(Closed)
	}
}

func (b *Breaker) onFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lg.Warn("operation_failure", "failures", b.failures, "error", err)
	if b.state == HalfOpen || b.failures >= b.cfg.MaxFailures {
		b.openedAt = b.now()
		b.transition(Open)
	}
}

// transition must be called with mu held.
func (b *Breaker) transition(s State) {
	if b.state == s {
		return
	}
	b.lg.Info("breaker_state", "from", b.state.String(), "to", s.String())
	b.state = s
	b.successes = 0
	if s == Closed {
		b.failures = 0
	}
	if b.OnStateChange != nil {
		b.OnStateChange(b.name, s)
	}
}
