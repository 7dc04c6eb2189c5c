package logsource

import (
	"github.com/ufwatch/ufwatch/internal/model"
	"github.com/ufwatch/ufwatch/internal/tcpserver"
)

// TCPSource wraps a tcpserver.Server as a LogSource. A listener that is
// stopped produces no terminal error; per-connection failures are
// contained in the server.
type TCPSource struct {
	server *tcpserver.Server
}

// NewTCPSource creates a TCPSource from an already-started TCP server.
func NewTCPSource(server *tcpserver.Server) *TCPSource {
	return &TCPSource{server: server}
}

func (t *TCPSource) Lines() <-chan model.IngestEnvelope { return t.server.Lines() }
func (t *TCPSource) Stop()                              { _ = t.server.Stop() }
func (t *TCPSource) Name() string                       { return "tcp" }
func (t *TCPSource) Err() error                         { return nil }
