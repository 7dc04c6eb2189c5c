// Package recent keeps a fixed-size in-memory ring of the latest
// enriched events for the HTTP API. Nothing is persisted.
package recent

import (
	"sync"

	"github.com/ufwatch/ufwatch/internal/model"
)

// DefaultCapacity is the default ring size.
const DefaultCapacity = 512

// Buffer is a concurrency-safe ring buffer of enriched events. It
// implements ingest.RecordSink so it can sit alongside output writers.
type Buffer struct {
	mu     sync.RWMutex
	events []*model.EnrichedEvent
	next   int
	filled bool
	total  uint64
}

// NewBuffer creates a ring holding up to capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{events: make([]*model.EnrichedEvent, capacity)}
}

func (b *Buffer) Name() string { return "recent" }

// Emit records one event, evicting the oldest when full. Never fails.
func (b *Buffer) Emit(ev *model.EnrichedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[b.next] = ev
	b.next++
	if b.next == len(b.events) {
		b.next = 0
		b.filled = true
	}
	b.total++
	return nil
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns everything buffered.
func (b *Buffer) Recent(limit int) []*model.EnrichedEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := b.next
	if b.filled {
		size = len(b.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*model.EnrichedEvent, 0, limit)
	idx := b.next - 1
	for len(out) < limit {
		if idx < 0 {
			idx = len(b.events) - 1
		}
		out = append(out, b.events[idx])
		idx--
	}
	return out
}

// Total returns the number of events ever recorded.
func (b *Buffer) Total() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}
