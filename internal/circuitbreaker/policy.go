// v0
// internal/circuitbreaker/policy.go
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Policy adds per-attempt timeouts and retry back-off on top of a Breaker.
// A nil or disabled Policy runs operations directly.
type Policy struct {
	enabled  bool
	attempts int
	timeout  time.Duration
	backoff  time.Duration
	breaker  *Breaker
}

// NewPolicyFromEnv builds a Policy from the environment:
//   - CB_ENABLED (default: false)
//   - CB_FAILURE_THRESHOLD (default: 5)
//   - CB_SUCCESS_THRESHOLD (default: 2)
//   - CB_OPEN_SECONDS (default: 30)
//   - CB_TIMEOUT_MS (default: 3000)
//   - CB_BACKOFF_MS (default: 200)
func NewPolicyFromEnv(name string, lg *slog.Logger) (*Policy, error) {
	failures, err := parseEnvInt("CB_FAILURE_THRESHOLD", 5)
	if err != nil {
		return nil, err
	}
	successes, err := parseEnvInt("CB_SUCCESS_THRESHOLD", 2)
	if err != nil {
		return nil, err
	}
	openSeconds, err := parseEnvFloat("CB_OPEN_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	timeoutMS, err := parseEnvInt("CB_TIMEOUT_MS", 3000)
	if err != nil {
		return nil, err
	}
	backoffMS, err := parseEnvInt("CB_BACKOFF_MS", 200)
	if err != nil {
		return nil, err
	}
	switch {
	case failures < 1:
		return nil, errors.New("CB_FAILURE_THRESHOLD must be >= 1")
	case successes < 1:
		return nil, errors.New("CB_SUCCESS_THRESHOLD must be >= 1")
	case openSeconds <= 0:
		return nil, errors.New("CB_OPEN_SECONDS must be > 0")
	case timeoutMS < 0 || backoffMS < 0:
		return nil, errors.New("CB_TIMEOUT_MS and CB_BACKOFF_MS must be >= 0")
	}
	cfg := Config{
		MaxFailures:      failures,
		ResetTimeout:     time.Duration(openSeconds * float64(time.Second)),
		SuccessesToClose: successes,
	}
	return NewPolicy(name, parseEnvBool("CB_ENABLED"), cfg, time.Duration(timeoutMS)*time.Millisecond, time.Duration(backoffMS)*time.Millisecond, lg), nil
}

// NewPolicy builds a Policy. Operations are attempted up to MaxFailures times.
func NewPolicy(name string, enabled bool, cfg Config, timeout, backoff time.Duration, lg *slog.Logger) *Policy {
	p := &Policy{enabled: enabled, attempts: max(cfg.MaxFailures, 1), timeout: timeout, backoff: backoff}
	if enabled {
		p.breaker = New(name, cfg, lg)
	}
	return p
}

// Enabled reports whether breaker protections are active.
func (p *Policy) Enabled() bool { return p != nil && p.enabled && p.breaker != nil }

// Breaker exposes the underlying breaker, nil when disabled.
func (p *Policy) Breaker() *Breaker {
	if p == nil {
		return nil
	}
	return p.breaker
}

// Do runs op with retries. An open breaker fails fast with ErrOpen.
func (p *Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if !p.Enabled() {
		return op(ctx)
	}
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempts++
		actx, cancel := p.attemptContext(ctx)
		err := p.breaker.Execute(actx, op)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrOpen) || attempts >= p.attempts {
			return err
		}
		if werr := p.wait(ctx); werr != nil {
			return werr
		}
	}
}

func (p *Policy) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Policy) wait(ctx context.Context) error {
	if p.backoff <= 0 {
		return nil
	}
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func parseEnvInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseEnvFloat(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
