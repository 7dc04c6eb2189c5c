package ingest

import (
	"log/slog"
	"time"

	"github.com/ufwatch/ufwatch/internal/enrich"
	"github.com/ufwatch/ufwatch/internal/metrics"
	"github.com/ufwatch/ufwatch/internal/model"
	"github.com/ufwatch/ufwatch/internal/timestamp"
	"github.com/ufwatch/ufwatch/internal/ufwparse"
)

// Processor runs the per-line pipeline: extract, enrich, strip, emit.
// It is driven by a single goroutine, so sink output preserves line
// arrival order. Parse and enrich failures are contained per line and
// never propagate past it.
type Processor struct {
	extractor  *ufwparse.Extractor
	enricher   enrich.Enricher
	denylist   enrich.Denylist
	timestamps *timestamp.Parser
	sinks      []RecordSink
	logger     *slog.Logger
}

// NewProcessor creates a processor. A nil enricher falls back to the
// no-op enricher; nil denylist selects the default technical fields.
func NewProcessor(extractor *ufwparse.Extractor, enricher enrich.Enricher, denylist enrich.Denylist, sinks []RecordSink, logger *slog.Logger) *Processor {
	if enricher == nil {
		enricher = enrich.Noop{}
	}
	if denylist == nil {
		denylist = enrich.NewDenylist(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		extractor:  extractor,
		enricher:   enricher,
		denylist:   denylist,
		timestamps: timestamp.NewParser(),
		sinks:      sinks,
		logger:     logger,
	}
}

// ProcessEnvelope processes one raw line. It returns the enriched event
// or nil when the line was skipped.
func (p *Processor) ProcessEnvelope(env model.IngestEnvelope) *model.EnrichedEvent {
	if env.Line == "" {
		return nil
	}
	metrics.LinesIngested.WithLabelValues(env.Source).Inc()

	// Diagnostic echo; enabled by running at debug level. Never touches
	// the primary output channel.
	p.logger.Debug("captured line", "source", env.Source, "line", env.Line)

	fields, ok := p.extractor.Extract(env.Line)
	if !ok {
		return nil
	}

	p.enricher.Annotate(fields)
	p.denylist.Strip(fields)

	// Prefer the time the kernel logged the event over processing time.
	ts := time.Now().UTC()
	if res := p.timestamps.ParseFromText(env.Line); res.Found {
		ts = res.Timestamp.UTC()
	}

	ev := &model.EnrichedEvent{
		Timestamp: ts,
		Source:    env.Source,
		Fields:    fields,
	}
	for _, sink := range p.sinks {
		if err := sink.Emit(ev); err != nil {
			metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
			p.logger.Error("sink write failed", "sink", sink.Name(), "err", err)
		}
	}
	metrics.EventsEmitted.Inc()
	return ev
}
