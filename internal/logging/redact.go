package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// RedactHandler replaces every occurrence of the configured secrets in the
// message and attribute values before the record reaches the inner handler.
// Third-party clients log request URLs verbatim; the Telegram API puts the
// bot token into every one of them.
type RedactHandler struct {
	inner    slog.Handler
	replacer *strings.Replacer
}

// NewRedactHandler wraps h. Empty secrets are ignored; with none left h is
// returned unchanged.
func NewRedactHandler(h slog.Handler, secrets ...string) slog.Handler {
	var pairs []string
	for _, s := range secrets {
		if s != "" {
			pairs = append(pairs, s, redacted)
		}
	}
	if len(pairs) == 0 {
		return h
	}
	return &RedactHandler{inner: h, replacer: strings.NewReplacer(pairs...)}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.replacer.Replace(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.attr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.attr(a)
	}
	return &RedactHandler{inner: h.inner.WithAttrs(clean), replacer: h.replacer}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name), replacer: h.replacer}
}

func (h *RedactHandler) attr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.replacer.Replace(v.String()))
	case slog.KindGroup:
		group := v.Group()
		clean := make([]any, len(group))
		for i, ga := range group {
			clean[i] = h.attr(ga)
		}
		return slog.Group(a.Key, clean...)
	case slog.KindAny:
		var s string
		switch x := v.Any().(type) {
		case error:
			s = x.Error()
		case fmt.Stringer:
			s = x.String()
		default:
			s = fmt.Sprint(x)
		}
		if cleaned := h.replacer.Replace(s); cleaned != s {
			return slog.String(a.Key, cleaned)
		}
		return slog.Attr{Key: a.Key, Value: v}
	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}
