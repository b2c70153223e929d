package logging

import (
	"context"
	"log/slog"

	"github.com/khmm12/srvchk/internal/common/tracing"
)

var _ slog.Handler = (*TraceHandler)(nil)

// TraceHandler stamps records with the trace id carried by their context.
type TraceHandler struct {
	next slog.Handler
}

func NewTraceHandler(next slog.Handler) *TraceHandler {
	return &TraceHandler{next: next}
}

func (h *TraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	traceID := tracing.GetTraceID(ctx)
	if traceID == "" {
		return h.next.Handle(ctx, r)
	}

	r = r.Clone()
	r.AddAttrs(slog.String("trace_id", traceID))

	return h.next.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewTraceHandler(h.next.WithAttrs(attrs))
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return NewTraceHandler(h.next.WithGroup(name))
}
