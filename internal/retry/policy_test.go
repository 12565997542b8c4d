package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/docpostbuild/internal/config"
	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
)

func transient(msg string) error {
	return pberrors.WrapRetryable(errors.New(msg), pberrors.CategoryNetwork, pberrors.SeverityError, "backend call failed")
}

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != config.RetryBackoffLinear {
		t.Fatalf("expected linear default mode got %s", p.Mode)
	}
	if p.Initial != time.Second || p.Max != 30*time.Second || p.MaxRetries != 2 {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Mode != config.RetryBackoffFixed {
		t.Fatalf("expected fixed mode got %s", p.Mode)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected maxRetries 5 got %d", p.MaxRetries)
	}
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RetryConfig{Backoff: config.RetryBackoffExponential, Initial: 10 * time.Millisecond, Max: time.Second, MaxRetries: 4})
	if p.Mode != config.RetryBackoffExponential || p.Initial != 10*time.Millisecond || p.MaxRetries != 4 {
		t.Fatalf("unexpected policy %+v", p)
	}
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	cases := []struct {
		name    string
		policy  Policy
		attempt int
		want    time.Duration
	}{
		{"fixed", NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3), 3, 100 * time.Millisecond},
		{"linear 1", NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5), 1, 100 * time.Millisecond},
		{"linear 2", NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5), 2, 200 * time.Millisecond},
		{"linear capped", NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5), 3, 250 * time.Millisecond},
		{"exp 1", NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5), 1, 50 * time.Millisecond},
		{"exp 2", NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5), 2, 100 * time.Millisecond},
		{"exp capped", NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5), 3, 160 * time.Millisecond},
		{"exp huge attempt", NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5), 80, 160 * time.Millisecond},
		{"exp large initial", NewPolicy(config.RetryBackoffExponential, time.Hour, 1000*time.Hour, 40), 30, 1000 * time.Hour},
		{"exp shift would wrap", Policy{Mode: config.RetryBackoffExponential, Initial: 3 * time.Hour, Max: 1 << 62, MaxRetries: 60}, 30, 1 << 62},
		{"zero attempt", DefaultPolicy(), 0, 0},
		{"negative attempt", DefaultPolicy(), -1, 0},
	}
	for _, c := range cases {
		if got := c.policy.Delay(c.attempt); got != c.want {
			t.Fatalf("%s: attempt %d expected %v got %v", c.name, c.attempt, c.want, got)
		}
	}
}

// TestUnknownModeFallsBack leaves mode default when unknown string supplied.
func TestUnknownModeFallsBack(t *testing.T) {
	p := NewPolicy("weird", 250*time.Millisecond, 500*time.Millisecond, 1)
	if p.Mode != config.RetryBackoffLinear {
		t.Fatalf("unknown mode should fall back to linear got %s", p.Mode)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	calls := 0
	var retries []int
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return transient("transient")
		}
		return nil
	}, func(retry int, _ error) { retries = append(retries, retry) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls got %d", calls)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Fatalf("unexpected retry callbacks %v", retries)
	}
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	sentinel := transient("still failing")
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	}, nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 1 attempt + 2 retries got %d calls", calls)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return transient("fail")
	}, func(int, error) { cancel() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt got %d", calls)
	}
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 5)
	cases := map[string]error{
		"unclassified": errors.New("constraint failed"),
		"classified":   pberrors.Wrap(errors.New("disk full"), pberrors.CategoryFileSystem, pberrors.SeverityError, "write failed"),
	}
	for name, permanent := range cases {
		t.Run(name, func(t *testing.T) {
			calls := 0
			err := p.Do(context.Background(), func(context.Context) error {
				calls++
				return permanent
			}, func(int, error) { t.Fatal("onRetry must not be called") })
			if !errors.Is(err, permanent) {
				t.Fatalf("expected permanent error got %v", err)
			}
			if calls != 1 {
				t.Fatalf("expected a single attempt got %d", calls)
			}
		})
	}
}
