package ufwparse

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/ufwatch/ufwatch/internal/metrics"
	"github.com/ufwatch/ufwatch/internal/model"
)

// kvPattern matches one KEY=VALUE pair: one or more uppercase ASCII
// letters, an equals sign, then zero or more non-whitespace characters.
var kvPattern = regexp.MustCompile(`([A-Z]+)=([^\s]*)`)

// NormalizeKey converts an extracted field name to its canonical form.
// All downstream lookups are case-sensitive, so this is the single place
// key casing is decided.
func NormalizeKey(key string) string {
	return strings.ToLower(key)
}

// Extractor parses raw log lines into field sets. Lines that do not
// contain the marker substring are rejected before the regex scan runs.
type Extractor struct {
	marker string
	logger *slog.Logger
}

// New creates an Extractor for the given marker. An empty marker falls
// back to the default block-event marker.
func New(marker string, logger *slog.Logger) *Extractor {
	if marker == "" {
		marker = model.DefaultMarker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{marker: marker, logger: logger}
}

// Extract parses one line into a FieldSet. The second return value is
// false when the line is not a block event. A marker hit that yields no
// key=value pairs is logged as an anomaly and dropped.
func (e *Extractor) Extract(line string) (model.FieldSet, bool) {
	if !strings.Contains(line, e.marker) {
		return nil, false
	}

	matches := kvPattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		metrics.ParseAnomalies.Inc()
		e.logger.Warn("block marker matched but no key=value pairs found", "line", strings.TrimSpace(line))
		return nil, false
	}

	fields := make(model.FieldSet, len(matches))
	for _, m := range matches {
		// Duplicate keys fold to the last occurrence.
		fields[NormalizeKey(m[1])] = m[2]
	}
	return fields, true
}

// Marker returns the configured marker substring.
func (e *Extractor) Marker() string { return e.marker }
