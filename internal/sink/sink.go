// Package sink writes enriched block events to the primary output
// channel. Diagnostics never go here; sinks carry data only.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/ufwatch/ufwatch/internal/ingest"
	"github.com/ufwatch/ufwatch/internal/model"
)

// Formats accepted by New.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// New creates a writer sink for the given format name.
func New(format string, w io.Writer) (ingest.RecordSink, error) {
	switch format {
	case FormatJSON, "":
		return NewJSONWriter(w), nil
	case FormatTOML:
		return NewTOMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// JSONWriter emits one JSON object per line (NDJSON). Keys and values
// are preserved losslessly.
type JSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONWriter creates a JSONWriter targeting w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w)}
}

func (s *JSONWriter) Name() string { return "json" }

func (s *JSONWriter) Emit(ev *model.EnrichedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(map[string]string(ev.Fields)); err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return nil
}

// TOMLWriter emits one TOML document per event, separated by a blank
// line.
type TOMLWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTOMLWriter creates a TOMLWriter targeting w.
func NewTOMLWriter(w io.Writer) *TOMLWriter {
	return &TOMLWriter{w: w}
}

func (s *TOMLWriter) Name() string { return "toml" }

func (s *TOMLWriter) Emit(ev *model.EnrichedEvent) error {
	data, err := toml.Marshal(map[string]string(ev.Fields))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if _, err := io.WriteString(s.w, "\n"); err != nil {
		return fmt.Errorf("write event separator: %w", err)
	}
	return nil
}
