package container

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/config"
	"github.com/dcastillo/commispipe/internal/domain/events"
)

type recordingProcessor struct {
	processFunc func(ctx context.Context, event *events.CommissionAffectingPayment, attempt ports.Attempt) error
	calls       int
}

func (p *recordingProcessor) Process(ctx context.Context, event *events.CommissionAffectingPayment, attempt ports.Attempt) error {
	p.calls++
	if p.processFunc != nil {
		return p.processFunc(ctx, event, attempt)
	}
	return nil
}

func TestMeteredProcessor_ForwardsToWrapped(t *testing.T) {
	inner := &recordingProcessor{}
	metered := &meteredProcessor{next: inner}

	err := metered.Process(context.Background(), nil, ports.Attempt{Number: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestMeteredProcessor_PropagatesError(t *testing.T) {
	inner := &recordingProcessor{
		processFunc: func(context.Context, *events.CommissionAffectingPayment, ports.Attempt) error {
			return assert.AnError
		},
	}
	metered := &meteredProcessor{next: inner}

	err := metered.Process(context.Background(), nil, ports.Attempt{Number: 2})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAttemptResult(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		attempt ports.Attempt
		want    string
	}{
		{"Success", nil, ports.Attempt{Number: 1}, "processed"},
		{"SuccessOnFinalAttempt", nil, ports.Attempt{Number: 3, Final: true}, "processed"},
		{"RetriableFailure", assert.AnError, ports.Attempt{Number: 1}, "retried"},
		{"TerminalFailure", assert.AnError, ports.Attempt{Number: 3, Final: true}, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, attemptResult(tt.err, tt.attempt))
		})
	}
}

func TestQueueConfig_MapsRetryPolicy(t *testing.T) {
	cfg := config.Test()
	cfg.Queue.Stream = "EVENTS"
	cfg.Queue.Subject = "events.test"
	cfg.Queue.Durable = "test-worker"
	cfg.Worker.MaxAttempts = 3
	cfg.Worker.Backoff = []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}
	cfg.Worker.AttemptTimeout = 120 * time.Second

	c := New(cfg)
	qc := c.queueConfig()

	assert.Equal(t, "EVENTS", qc.Stream)
	assert.Equal(t, "events.test", qc.Subject)
	assert.Equal(t, "test-worker", qc.Durable)
	assert.Equal(t, 3, qc.MaxDeliver)
	assert.Equal(t, []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}, qc.BackOff)
	assert.Equal(t, 120*time.Second, qc.AttemptTimeout)
}

func TestInitLogger_UsesConfiguredLevel(t *testing.T) {
	cfg := config.Test()
	cfg.Log.Level = "error"
	cfg.Log.Format = "json"

	c := New(cfg)
	log := c.initLogger()

	require.NotNil(t, log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, log.Enabled(context.Background(), slog.LevelError))
}
