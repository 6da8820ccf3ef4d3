package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type spanKey struct{}

type span struct {
	id        string
	component string
	operation string
}

// Enabled reports whether observability has been toggled on.
func Enabled() bool {
	_, cfg := currentLogger()
	return cfg.Enabled
}

// StartSpan records a lightweight span lifecycle around an operation. The span id is
// carried in the returned context so RecordMetric calls made underneath attach to it.
func StartSpan(ctx context.Context, component, operation string) (context.Context, func(error)) {
	logger, _ := currentLogger()
	if logger == nil {
		return ctx, func(error) {}
	}

	s := span{
		id:        uuid.NewString(),
		component: component,
		operation: operation,
	}
	ctx = context.WithValue(ctx, spanKey{}, s)

	start := time.Now()
	logger.LogAttrs(ctx, slog.LevelDebug, "obs span start",
		slog.String("span_id", s.id),
		slog.String("component", component),
		slog.String("operation", operation),
	)

	return ctx, func(err error) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("span_id", s.id),
			slog.String("component", component),
			slog.String("operation", operation),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}

		logger.LogAttrs(ctx, level, "obs span end", attrs...)
	}
}

// SpanID extracts the active span id from the context, empty when no span is active.
func SpanID(ctx context.Context) string {
	if s, ok := ctx.Value(spanKey{}).(span); ok {
		return s.id
	}
	return ""
}

// RecordMetric emits a best-effort metric datapoint via the configured logger.
func RecordMetric(ctx context.Context, name string, value float64, labels map[string]string) {
	logger, _ := currentLogger()
	if logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("metric", name),
		slog.Float64("value", value),
	}
	if id := SpanID(ctx); id != "" {
		attrs = append(attrs, slog.String("span_id", id))
	}
	for k, v := range labels {
		attrs = append(attrs, slog.String(k, v))
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "obs metric", attrs...)
}
