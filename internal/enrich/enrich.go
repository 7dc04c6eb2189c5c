package enrich

import (
	"strings"

	"github.com/ufwatch/ufwatch/internal/dockernet"
	"github.com/ufwatch/ufwatch/internal/model"
)

// Enricher annotates a parsed block event with correlation fields.
// Implementations must be pure with respect to external state: no I/O
// on the hot path.
type Enricher interface {
	Annotate(fields model.FieldSet)
}

// Noop is the default enricher when network correlation is disabled.
type Noop struct{}

func (Noop) Annotate(model.FieldSet) {}

// NetworkEnricher correlates bridge-style interface names with the
// container network registry.
type NetworkEnricher struct {
	handle       *dockernet.Handle
	bridgePrefix string
}

// NewNetworkEnricher creates an enricher backed by a registry handle.
// An empty bridge prefix falls back to the default.
func NewNetworkEnricher(handle *dockernet.Handle, bridgePrefix string) *NetworkEnricher {
	if bridgePrefix == "" {
		bridgePrefix = model.DefaultBridgePrefix
	}
	return &NetworkEnricher{handle: handle, bridgePrefix: bridgePrefix}
}

// Annotate adds project and network fields for bridge interfaces. The
// relevant interface is "in" when non-empty, else "out". Non-bridge
// interfaces get no fields at all; bridge interfaces that miss the
// registry get "unknown" placeholders.
func (e *NetworkEnricher) Annotate(fields model.FieldSet) {
	iface := fields["in"]
	if iface == "" {
		iface = fields["out"]
	}
	if !strings.HasPrefix(iface, e.bridgePrefix) {
		return
	}

	id := iface[len(e.bridgePrefix):]
	if info, ok := e.handle.Current().Lookup(id); ok {
		fields[model.FieldProject] = info.Project
		fields[model.FieldNetwork] = info.Name
		return
	}
	fields[model.FieldProject] = model.ValueUnknown
	fields[model.FieldNetwork] = model.ValueUnknown
}

// Denylist strips a fixed set of technical fields from every record.
type Denylist map[string]struct{}

// NewDenylist builds a denylist from field names. Nil input selects the
// default technical-field set.
func NewDenylist(keys []string) Denylist {
	if keys == nil {
		keys = model.DefaultDenyFields()
	}
	d := make(Denylist, len(keys))
	for _, k := range keys {
		d[k] = struct{}{}
	}
	return d
}

// Strip removes denylisted keys. Missing keys are a no-op, so Strip is
// idempotent.
func (d Denylist) Strip(fields model.FieldSet) {
	for k := range d {
		delete(fields, k)
	}
}
