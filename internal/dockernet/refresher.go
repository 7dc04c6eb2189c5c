package dockernet

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ufwatch/ufwatch/internal/metrics"
)

// Handle holds the current registry snapshot. Refresh swaps the whole
// snapshot atomically; readers always see either the old or the new
// registry, never a partially built one.
type Handle struct {
	cur atomic.Pointer[Registry]
}

// NewHandle creates a handle seeded with the given snapshot.
func NewHandle(reg *Registry) *Handle {
	if reg == nil {
		reg = Empty()
	}
	h := &Handle{}
	h.Swap(reg)
	return h
}

// Current returns the active snapshot.
func (h *Handle) Current() *Registry { return h.cur.Load() }

// Swap replaces the active snapshot.
func (h *Handle) Swap(reg *Registry) {
	if reg == nil {
		reg = Empty()
	}
	h.cur.Store(reg)
	metrics.RegistryNetworks.Set(float64(reg.Len()))
}

// Refresher rebuilds the registry on a fixed interval. A failed rebuild
// keeps the previous snapshot; the registry never shrinks to empty
// because of a transient enumeration error.
type Refresher struct {
	handle   *Handle
	enum     Enumerator
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// StartRefresher begins periodic refresh. A non-positive interval
// disables refresh and returns nil.
func StartRefresher(ctx context.Context, handle *Handle, enum Enumerator, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Refresher{
		handle:   handle,
		enum:     enum,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.run(ctx)
	return r
}

func (r *Refresher) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	reg, err := r.enum.Enumerate(ctx)
	if err != nil {
		metrics.RegistryRefreshFailures.Inc()
		r.logger.Error("registry refresh failed, keeping previous snapshot", "err", err)
		return
	}
	r.handle.Swap(reg)
	r.logger.Info("registry refreshed", "count", reg.Len())
}

// Stop halts the refresh loop and waits for it to exit.
func (r *Refresher) Stop() {
	if r == nil {
		return
	}
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}
