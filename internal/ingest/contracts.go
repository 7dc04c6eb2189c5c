package ingest

import "github.com/ufwatch/ufwatch/internal/model"

// RecordSink accepts enriched block events one at a time. Serialization
// must preserve all keys and string values losslessly; the format is a
// presentation choice of the implementation.
type RecordSink interface {
	Name() string
	Emit(ev *model.EnrichedEvent) error
}

// EnvelopeProcessor consumes source-tagged raw lines and emits enriched
// block events to its sinks.
type EnvelopeProcessor interface {
	ProcessEnvelope(env model.IngestEnvelope) *model.EnrichedEvent
}
