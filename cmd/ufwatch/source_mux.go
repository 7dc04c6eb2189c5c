package main

import (
	"context"
	"sync"

	"github.com/ufwatch/ufwatch/internal/model"
)

// DefaultMuxBuffer is the default channel buffer size for the source multiplexer.
const DefaultMuxBuffer = 50_000

// SourceMultiplexer merges multiple log sources into a single read-only stream.
// Lines from one source keep their arrival order; the single consumer on the
// output channel sees them in the order they were forwarded.
type SourceMultiplexer struct {
	ctx    context.Context
	cancel context.CancelFunc

	sources []NamedLogSource
	lines   chan model.IngestEnvelope

	startOnce sync.Once
	stopOnce  sync.Once
	closeOnce sync.Once
	errOnce   sync.Once
	srcErr    error
	wg        sync.WaitGroup
}

func NewSourceMultiplexer(parent context.Context, sources []NamedLogSource, buffer int) *SourceMultiplexer {
	if buffer <= 0 {
		buffer = DefaultMuxBuffer
	}
	ctx, cancel := context.WithCancel(parent)
	return &SourceMultiplexer{
		ctx:     ctx,
		cancel:  cancel,
		sources: sources,
		lines:   make(chan model.IngestEnvelope, buffer),
	}
}

func (m *SourceMultiplexer) Start() {
	m.startOnce.Do(func() {
		if len(m.sources) == 0 {
			m.closeOutput()
			return
		}

		for _, src := range m.sources {
			src := src
			m.wg.Add(1)
			go m.forward(src)
		}

		go func() {
			m.wg.Wait()
			m.closeOutput()
		}()
	})
}

func (m *SourceMultiplexer) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		for _, src := range m.sources {
			src.Stop()
		}
		m.wg.Wait()
		m.closeOutput()
	})
}

func (m *SourceMultiplexer) HasSources() bool {
	return len(m.sources) > 0
}

// Err returns the first terminal source error, or nil when every source
// ended cleanly. Meaningful after the output channel has closed.
func (m *SourceMultiplexer) Err() error {
	if m.srcErr != nil {
		return m.srcErr
	}
	for _, src := range m.sources {
		if err := src.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (m *SourceMultiplexer) Lines() <-chan model.IngestEnvelope {
	return m.lines
}

func (m *SourceMultiplexer) forward(src NamedLogSource) {
	defer m.wg.Done()

	sourceLines := src.Lines()
	for {
		select {
		case <-m.ctx.Done():
			return
		case line, ok := <-sourceLines:
			if !ok {
				// A source that died with an error takes the whole mux
				// down; remaining sources drain and the consumer sees a
				// closed channel plus a non-nil Err.
				if err := src.Err(); err != nil {
					m.errOnce.Do(func() {
						m.srcErr = err
						m.cancel()
					})
				}
				return
			}
			if line.Line == "" {
				continue
			}
			select {
			case m.lines <- line:
			case <-m.ctx.Done():
				return
			}
		}
	}
}

func (m *SourceMultiplexer) closeOutput() {
	m.closeOnce.Do(func() {
		close(m.lines)
	})
}
