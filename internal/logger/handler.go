package logger

import (
	"context"
	"log/slog"
	"strings"
)

const tagKey = "tag" // slog attribute key used for tag filtering

// filteringHandler wraps a base slog.Handler and drops records whose tag
// is disabled (or absent from a non-empty enabled set).
type filteringHandler struct {
	baseHandler slog.Handler
	cfg         *Config
}

func newFilteringHandler(base slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{baseHandler: base, cfg: cfg}
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg == nil {
		return h.baseHandler.Handle(ctx, r)
	}

	var tag string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			tag = strings.ToLower(a.Value.String())
			return false
		}
		return true
	})

	if tag != "" {
		if _, found := h.cfg.disabledTagsSet[tag]; found {
			return nil
		}
		if h.cfg.enabledTagsSet != nil {
			if _, found := h.cfg.enabledTagsSet[tag]; !found {
				return nil
			}
		}
	}

	return h.baseHandler.Handle(ctx, r)
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newFilteringHandler(h.baseHandler.WithAttrs(attrs), h.cfg)
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return newFilteringHandler(h.baseHandler.WithGroup(name), h.cfg)
}
