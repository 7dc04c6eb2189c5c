package model

import "time"

// FieldSet maps normalized field names (lowercase) to raw string values
// extracted from one firewall block line. A key is present iff the field
// appeared in the source line; values may be empty ("OUT=").
type FieldSet map[string]string

// Clone returns an independent copy of the field set.
func (f FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// EnrichedEvent is the terminal artifact of the pipeline: one block event
// after enrichment and denylist stripping, ready for a sink.
type EnrichedEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Fields    FieldSet  `json:"fields"`
}

// NetworkInfo describes one registered container network.
type NetworkInfo struct {
	Name    string `json:"name" yaml:"name"`
	Project string `json:"project" yaml:"project"`
	ID      string `json:"id" yaml:"id"`
}
