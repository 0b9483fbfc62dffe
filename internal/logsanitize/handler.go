package logsanitize

import (
	"context"
	"log/slog"
)

// Handler is an slog.Handler that sanitizes the message and every string
// attribute of a record before passing it to the wrapped handler.
type Handler struct {
	next slog.Handler
}

// NewHandler wraps next so that nothing reaches it unsanitized.
func NewHandler(next slog.Handler) *Handler {
	return &Handler{next: next}
}

// Enabled reports whether the wrapped handler handles records at level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle sanitizes r and forwards it.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, Sanitize(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs sanitizes attrs once, up front.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return &Handler{next: h.next.WithAttrs(clean)}
}

// WithGroup returns a Handler whose wrapped handler opens group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(Sanitize(name))}
}

// Value returns s sanitized as an slog string value.
func Value(s string) slog.Value {
	return slog.StringValue(Sanitize(s))
}

// Attr returns a string attribute with a sanitized value.
func Attr(key, s string) slog.Attr {
	return slog.Attr{Key: key, Value: Value(s)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Key = Sanitize(a.Key)
	a.Value = sanitizeValue(a.Value)
	return a
}

func sanitizeValue(v slog.Value) slog.Value {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return Value(v.String())
	case slog.KindGroup:
		group := v.Group()
		clean := make([]slog.Attr, len(group))
		for i, a := range group {
			clean[i] = sanitizeAttr(a)
		}
		return slog.GroupValue(clean...)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return Value(err.Error())
		}
		return v
	default:
		return v
	}
}
