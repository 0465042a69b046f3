package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T, cfg *Config, fn func(ctx context.Context, log *slog.Logger)) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Output = &buf

	log := New(cfg)
	fn(context.Background(), log)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_DefaultsToJSONInfo(t *testing.T) {
	entry := captureLog(t, nil, func(ctx context.Context, log *slog.Logger) {
		log.InfoContext(ctx, "hello")
	})

	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "warn"
	cfg.Output = &buf

	log := New(cfg)
	log.Info("suppressed")
	assert.Empty(t, buf.String())

	log.Warn("emitted")
	assert.Contains(t, buf.String(), "emitted")
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "text"
	cfg.Output = &buf

	log := New(cfg)
	log.Info("plain message")

	assert.Contains(t, buf.String(), "msg=\"plain message\"")
}

func TestContextHandler_AddsCorrelationAttrs(t *testing.T) {
	entry := captureLog(t, nil, func(ctx context.Context, log *slog.Logger) {
		ctx = WithCorrelationID(ctx, "corr-1")
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithEventID(ctx, "evt-1")
		ctx = WithContractID(ctx, "ctr-1")
		ctx = WithTraceID(ctx, "trace-1")
		ctx = WithSpanID(ctx, "span-1")
		log.InfoContext(ctx, "correlated")
	})

	assert.Equal(t, "corr-1", entry["correlation_id"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "evt-1", entry["event_id"])
	assert.Equal(t, "ctr-1", entry["contract_id"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "span-1", entry["span_id"])
}

func TestContextHandler_SkipsMissingAttrs(t *testing.T) {
	entry := captureLog(t, nil, func(ctx context.Context, log *slog.Logger) {
		log.InfoContext(ctx, "bare")
	})

	assert.NotContains(t, entry, "correlation_id")
	assert.NotContains(t, entry, "event_id")
	assert.NotContains(t, entry, "contract_id")
}

func TestWithEventScope(t *testing.T) {
	ctx := WithEventScope(context.Background(), "evt-7", "ctr-7")
	assert.Equal(t, "evt-7", GetEventID(ctx))
	assert.Equal(t, "ctr-7", GetContractID(ctx))

	ctx = WithEventScope(context.Background(), "", "ctr-only")
	assert.Empty(t, GetEventID(ctx))
	assert.Equal(t, "ctr-only", GetContractID(ctx))
}

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetCorrelationID(ctx))
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetEventID(ctx))
	assert.Empty(t, GetContractID(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestContextHandler_WithAttrsPreservesWrapping(t *testing.T) {
	entry := captureLog(t, nil, func(ctx context.Context, log *slog.Logger) {
		scoped := log.With(slog.String("component", "worker"))
		ctx = WithEventID(ctx, "evt-9")
		scoped.InfoContext(ctx, "scoped")
	})

	assert.Equal(t, "worker", entry["component"])
	assert.Equal(t, "evt-9", entry["event_id"])
}
