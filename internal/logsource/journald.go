package logsource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/ufwatch/ufwatch/internal/model"
)

// DefaultJournaldBuffer is the default channel buffer size for journald lines.
const DefaultJournaldBuffer = 50_000

// JournaldConfig holds tunable parameters for the journald source.
type JournaldConfig struct {
	Binary      string   // defaults to "journalctl"
	Args        []string // defaults to ["-f", "-n", "0"]
	BufferSize  int
	MaxLineSize int
}

// JournaldSource follows the system journal by running journalctl
// directly and streaming its stdout. No intermediate shell or grep
// process is involved; marker filtering happens in the extractor.
type JournaldSource struct {
	ch     chan model.IngestEnvelope
	cancel context.CancelFunc
	cmd    *exec.Cmd
	stdout io.Closer

	mu  sync.Mutex
	err error
}

// NewJournaldSource starts the journal follower process. Startup
// failure (missing binary, pipe error) is returned immediately; a later
// unexpected process exit is reported through Err.
func NewJournaldSource(ctx context.Context, conf JournaldConfig) (*JournaldSource, error) {
	binary := conf.Binary
	if binary == "" {
		binary = "journalctl"
	}
	args := conf.Args
	if args == nil {
		// -n 0 skips the backlog so only new entries stream in.
		args = []string{"-f", "-n", "0"}
	}
	bufferSize := conf.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultJournaldBuffer
	}
	maxLineSize := conf.MaxLineSize
	if maxLineSize <= 0 {
		maxLineSize = DefaultStdinMaxLineSize
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("journald stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	s := &JournaldSource{
		ch:     make(chan model.IngestEnvelope, bufferSize),
		cancel: cancel,
		cmd:    cmd,
		stdout: stdout,
	}
	go s.read(ctx, stdout, maxLineSize)
	return s, nil
}

func (s *JournaldSource) read(ctx context.Context, stdout io.Reader, maxLineSize int) {
	defer close(s.ch)

	scanner := bufio.NewScanner(stdout)
	buf := make([]byte, maxLineSize)
	scanner.Buffer(buf, maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		select {
		case s.ch <- model.IngestEnvelope{Source: s.Name(), Line: line}:
		case <-ctx.Done():
			_ = s.cmd.Wait()
			return
		}
	}
	scanErr := scanner.Err()

	waitErr := s.cmd.Wait()
	if ctx.Err() != nil {
		// We killed the process; a wait error here is expected.
		return
	}

	switch {
	case scanErr != nil && !errors.Is(scanErr, bufio.ErrTooLong):
		s.setErr(fmt.Errorf("journald read: %w", scanErr))
	case errors.Is(scanErr, bufio.ErrTooLong):
		s.setErr(fmt.Errorf("journald line exceeded max size (%d bytes)", maxLineSize))
	case waitErr != nil:
		s.setErr(fmt.Errorf("journal follower exited: %w", waitErr))
	default:
		// The follower is expected to run until stopped; a silent clean
		// exit still means monitoring has stopped.
		s.setErr(errors.New("journal follower exited unexpectedly"))
	}
}

func (s *JournaldSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *JournaldSource) Lines() <-chan model.IngestEnvelope { return s.ch }

// Stop kills the follower and closes the read side of its stdout pipe.
// Killing the direct child is not enough on its own: a forked grandchild
// can inherit the write end and keep the scanner blocked forever.
func (s *JournaldSource) Stop() {
	s.cancel()
	_ = s.stdout.Close()
}

func (s *JournaldSource) Name() string { return "journald" }

func (s *JournaldSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
