package model

// Shared defaults used by both the pipeline and the CLI entrypoint.
const (
	// DefaultMarker identifies relevant firewall block lines. Lines without
	// this literal substring are skipped before any field extraction.
	DefaultMarker = "[UFW BLOCK]"

	// DefaultBridgePrefix recognizes container-bridge interface names.
	DefaultBridgePrefix = "br-"

	// ValueUnknown is emitted when a bridge interface matches no
	// registered network.
	ValueUnknown = "unknown"

	// FieldProject and FieldNetwork are the enrichment keys added to
	// bridge-interface events.
	FieldProject = "dockerproject"
	FieldNetwork = "dockernetwork"
)

// DefaultDenyFields are technical packet fields stripped from every
// emitted record.
func DefaultDenyFields() []string {
	return []string{"len", "tos", "prec", "id", "ttl", "window", "res", "urgp"}
}
