package dockernet

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/ufwatch/ufwatch/internal/model"
)

const (
	// PrefixLen is the length of the identifier prefix used as the
	// registry key. Bridge interface names carry at most this many
	// characters of the full network ID.
	PrefixLen = 12

	// composeProjectLabel marks the owning compose project in the
	// network's label string.
	composeProjectLabel = "com.docker.compose.project="
)

// Registry is an immutable snapshot mapping network ID prefixes to
// network metadata. It is shared read-only by every processing call;
// refresh replaces the whole snapshot, never mutates it.
type Registry struct {
	prefixes []string // sorted, for deterministic lookup order
	networks map[string]model.NetworkInfo
}

// Empty returns a registry with no networks. Enrichment against it
// degrades to "unknown" placeholders.
func Empty() *Registry {
	return &Registry{networks: map[string]model.NetworkInfo{}}
}

// New builds a registry from a prefix-keyed network map. Keys are
// iterated in sorted order so that Lookup is deterministic when
// prefixes overlap.
func New(networks map[string]model.NetworkInfo) *Registry {
	prefixes := make([]string, 0, len(networks))
	for p := range networks {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	copied := make(map[string]model.NetworkInfo, len(networks))
	for p, info := range networks {
		copied[p] = info
	}
	return &Registry{prefixes: prefixes, networks: copied}
}

// Lookup returns the first registered entry whose prefix is a prefix of
// the supplied identifier segment. Registry keys are fixed-length
// prefixes of potentially longer runtime identifiers, so this is
// containment matching, not equality.
func (r *Registry) Lookup(id string) (model.NetworkInfo, bool) {
	for _, p := range r.prefixes {
		if strings.HasPrefix(id, p) {
			return r.networks[p], true
		}
	}
	return model.NetworkInfo{}, false
}

// Len returns the number of registered networks.
func (r *Registry) Len() int { return len(r.networks) }

// Networks returns all registered networks in prefix order.
func (r *Registry) Networks() []model.NetworkInfo {
	out := make([]model.NetworkInfo, 0, len(r.prefixes))
	for _, p := range r.prefixes {
		out = append(out, r.networks[p])
	}
	return out
}

// listing mirrors one line of `docker network ls --format json` output.
type listing struct {
	ID     string `json:"ID"`
	Name   string `json:"Name"`
	Labels string `json:"Labels"`
}

// Parse reads newline-delimited JSON network listings and builds a
// registry. Any unparsable line fails the whole parse; the caller
// decides whether to degrade to an empty registry.
func Parse(r io.Reader, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	networks := map[string]model.NetworkInfo{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var l listing
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			return nil, fmt.Errorf("parse network listing: %w", err)
		}

		prefix := l.ID
		if len(prefix) > PrefixLen {
			prefix = prefix[:PrefixLen]
		}
		if prefix == "" {
			continue
		}
		name := l.Name
		if name == "" {
			name = model.ValueUnknown
		}
		networks[prefix] = model.NetworkInfo{
			Name:    name,
			Project: projectFromLabels(l.Labels),
			ID:      l.ID,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read network listings: %w", err)
	}

	warnOverlaps(networks, logger)
	return New(networks), nil
}

// projectFromLabels scans a comma-joined label string for the compose
// project label. Absent label means the network has no owning project.
func projectFromLabels(labels string) string {
	for _, label := range strings.Split(labels, ",") {
		if strings.HasPrefix(label, composeProjectLabel) {
			return label[len(composeProjectLabel):]
		}
	}
	return model.ValueUnknown
}

// warnOverlaps flags prefix pairs where one key is a prefix of another.
// Lookup resolves such ties by sorted order, which is deterministic but
// arbitrary; operators should not rely on it.
func warnOverlaps(networks map[string]model.NetworkInfo, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	keys := make([]string, 0, len(networks))
	for k := range networks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i := 1; i < len(keys); i++ {
		if strings.HasPrefix(keys[i], keys[i-1]) {
			logger.Warn("overlapping network ID prefixes in registry",
				"prefix", keys[i-1], "shadowed", keys[i])
		}
	}
}
