package logging

import (
	"context"
	"log/slog"
)

// TargetKey is the attribute naming the component a logger belongs to.
const TargetKey = "target"

// Target returns a logger whose records are filtered as target.
func Target(log *slog.Logger, name string) *slog.Logger {
	return log.With(TargetKey, name)
}

// filterHandler drops records below the level its Filter assigns to the
// current target. The target is taken from a top-level TargetKey attribute.
type filterHandler struct {
	filter  Filter
	target  string
	grouped bool
	inner   slog.Handler
}

func newFilterHandler(filter Filter, inner slog.Handler) *filterHandler {
	return &filterHandler{filter: filter, inner: inner}
}

// inline reports whether the target may still be given per record.
func (h *filterHandler) inline() bool {
	return h.target == "" && !h.grouped
}

func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.inline() {
		// decided in Handle, once the record attributes are known
		if level < h.filter.MinLevel() {
			return false
		}
	} else if !h.filter.Enabled(h.target, level) {
		return false
	}
	return h.inner.Enabled(ctx, level)
}

func (h *filterHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inline() {
		target := ""
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == TargetKey {
				target = a.Value.String()
				return false
			}
			return true
		})
		if !h.filter.Enabled(target, r.Level) {
			return nil
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	if !h.grouped {
		for _, a := range attrs {
			if a.Key == TargetKey {
				c.target = a.Value.String()
			}
		}
	}
	c.inner = h.inner.WithAttrs(attrs)
	return &c
}

func (h *filterHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.grouped = true
	c.inner = h.inner.WithGroup(name)
	return &c
}
