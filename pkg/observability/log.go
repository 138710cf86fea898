package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log
// lines. Failures are logged as errors.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnCatalogLoad(_ context.Context, sources, records int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("catalog load failed", "sources", sources, "err", err)
		return
	}
	h.logger.Debug("catalog loaded", "sources", sources, "records", records, "took", d)
}

func (h *LogHooks) OnMatch(_ context.Context, id string, matched bool) {
	h.logger.Debug("match", "id", id, "matched", matched)
}

func (h *LogHooks) OnResolve(_ context.Context, id, style string, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("resolve failed", "id", id, "style", style, "err", err)
		return
	}
	h.logger.Debug("resolved", "id", id, "style", style, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "route", route, "status", status, "took", d)
}

var (
	_ ResolveHooks = (*LogHooks)(nil)
	_ CacheHooks   = (*LogHooks)(nil)
	_ HTTPHooks    = (*LogHooks)(nil)
)
