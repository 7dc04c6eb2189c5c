package logsource

import "github.com/ufwatch/ufwatch/internal/model"

// LogSource is a unified interface for all line inputs (journald, file,
// tcp, stdin). Sources block until a line is available; an idle source
// is normal, not an error.
type LogSource interface {
	Lines() <-chan model.IngestEnvelope // read-only channel of raw lines
	Stop()                              // graceful shutdown
	Name() string                       // "journald", "file", "tcp", "stdin"

	// Err reports the terminal error after Lines has closed. A nil
	// error means clean end of stream or a requested stop; non-nil
	// means the source failed and the process should exit non-zero.
	Err() error
}
