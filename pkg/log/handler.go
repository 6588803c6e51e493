package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// errFmtHandler decorates records that carry an error attribute: it walks the
// error chain, attaches the stacktrace captured at creation and, when the
// chain has a distinct root cause (e.g. a driver error under a QueryError),
// the root cause message.
type errFmtHandler struct {
	next slog.Handler
}

// WrapByErrFmtHandler wraps a slog handler with error-chain formatting.
func WrapByErrFmtHandler(next slog.Handler) slog.Handler {
	return &errFmtHandler{next: next}
}

func (h *errFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *errFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var found error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			found = err
		}
		return false
	})

	if found != nil {
		if trace := stacktraceOf(found); trace != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, trace))
		}
		if cause := errors.UnwrapAll(found); cause != nil && cause != found {
			r.AddAttrs(slog.String("cause", cause.Error()))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *errFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errFmtHandler{next: h.next.WithAttrs(attrs)}
}

func (h *errFmtHandler) WithGroup(g string) slog.Handler {
	return &errFmtHandler{next: h.next.WithGroup(g)}
}

// stacktraceOf returns the first captured stacktrace in the error chain.
// Errors built by pkg/errors carry one from their creation point.
func stacktraceOf(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if details := errors.GetSafeDetails(e).SafeDetails; len(details) > 0 {
			return details[0]
		}
	}
	return ""
}
