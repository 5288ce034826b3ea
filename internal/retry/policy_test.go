package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultravioletrs/cube-docs/internal/config"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, time.Second, p.Initial)
	assert.Equal(t, 30*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
}

func TestFromReporting(t *testing.T) {
	p := FromReporting(config.ReportingConfig{
		PublishRetries:      5,
		PublishBackoff:      config.RetryBackoffFixed,
		PublishInitialDelay: "5s",
		PublishMaxDelay:     "2s",
	})
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 2*time.Second, p.Initial, "initial is clamped to max")
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, 5, p.MaxRetries)

	p = FromReporting(config.ReportingConfig{})
	assert.Equal(t, 0, p.MaxRetries)
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
}

func TestDelayModes(t *testing.T) {
	tests := []struct {
		mode config.RetryBackoffMode
		want []time.Duration
	}{
		{config.RetryBackoffFixed, []time.Duration{100, 100, 100, 100}},
		{config.RetryBackoffLinear, []time.Duration{100, 200, 300, 350}},
		{config.RetryBackoffExponential, []time.Duration{100, 200, 350, 350}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			p := Policy{Mode: tt.mode, Initial: 100 * time.Millisecond, Max: 350 * time.Millisecond}
			assert.Zero(t, p.Delay(0))
			for i, want := range tt.want {
				assert.Equal(t, want*time.Millisecond, p.Delay(i+1), "retry %d", i+1)
			}
		})
	}

	p := Policy{Mode: config.RetryBackoffExponential, Initial: time.Second, Max: time.Minute}
	assert.Equal(t, time.Minute, p.Delay(64))
}

func fastPolicy(retries int) Policy {
	return Policy{Mode: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: retries}
}

func TestDoRetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := Do(t.Context(), fastPolicy(3), "publish", func(context.Context) error {
		calls++
		if calls < 3 {
			return ferrors.NetworkError("broker unavailable").Build()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	err := Do(t.Context(), fastPolicy(2), "publish", func(context.Context) error {
		calls++
		return ferrors.NetworkError("broker unavailable").Build()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(t.Context(), fastPolicy(5), "publish", func(context.Context) error {
		calls++
		return errors.New("bad payload")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	_ = Do(t.Context(), fastPolicy(5), "publish", func(context.Context) error {
		calls++
		return ferrors.ConfigError("bad subject").Build()
	})
	assert.Equal(t, 1, calls)
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	p := Policy{Mode: config.RetryBackoffFixed, Initial: time.Hour, Max: time.Hour, MaxRetries: 3}
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, p, "publish", func(context.Context) error {
			calls++
			return ferrors.NetworkError("broker unavailable").Build()
		})
	}()
	cancel()
	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Do ignored cancellation")
	}
	assert.Equal(t, 1, calls)
}
