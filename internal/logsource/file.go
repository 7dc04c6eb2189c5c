package logsource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ufwatch/ufwatch/internal/model"
)

// DefaultFileBuffer is the default channel buffer size for file lines.
const DefaultFileBuffer = 50_000

// FileConfig holds tunable parameters for the file source.
type FileConfig struct {
	BufferSize int
}

// FileSource follows a log file from its current end, picking up
// appended lines via fsnotify. Truncation (rotation in place) rewinds
// to the start of the file; remove/rename waits for the file to be
// recreated.
type FileSource struct {
	path   string
	ch     chan model.IngestEnvelope
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// NewFileSource opens path and starts following it.
func NewFileSource(ctx context.Context, path string, conf ...FileConfig) (*FileSource, error) {
	bufferSize := DefaultFileBuffer
	if len(conf) > 0 && conf[0].BufferSize > 0 {
		bufferSize = conf[0].BufferSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek log file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("file watcher: %w", err)
	}
	// Watch the directory so recreation after rotation is observed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		f.Close()
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &FileSource{
		path:   path,
		ch:     make(chan model.IngestEnvelope, bufferSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.follow(ctx, f, watcher)
	return s, nil
}

func (s *FileSource) follow(ctx context.Context, f *os.File, watcher *fsnotify.Watcher) {
	defer close(s.done)
	defer close(s.ch)
	defer watcher.Close()
	defer func() {
		if f != nil {
			f.Close()
		}
	}()

	var pending strings.Builder

	// Poll ticker backs up fsnotify for filesystems with unreliable
	// event delivery.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Name != s.path {
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				f.Close()
				f = nil
				continue
			}
			if f == nil && ev.Has(fsnotify.Create) {
				reopened, err := os.Open(s.path)
				if err != nil {
					continue
				}
				f = reopened
				pending.Reset()
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				if !s.drain(ctx, f, &pending) {
					return
				}
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if ctx.Err() == nil {
				s.setErr(fmt.Errorf("file watcher: %w", werr))
			}
			return
		case <-ticker.C:
			if f == nil {
				if reopened, err := os.Open(s.path); err == nil {
					f = reopened
					pending.Reset()
				}
				continue
			}
			if !s.drain(ctx, f, &pending) {
				return
			}
		}
	}
}

// drain reads everything appended since the last read, emitting
// complete lines and keeping a trailing partial line for the next pass.
// It returns false when the context is done.
func (s *FileSource) drain(ctx context.Context, f *os.File, pending *strings.Builder) bool {
	if f == nil {
		return true
	}

	// Detect truncation: current offset past the new end of file.
	pos, err := f.Seek(0, io.SeekCurrent)
	if err == nil {
		if st, serr := f.Stat(); serr == nil && st.Size() < pos {
			if _, rerr := f.Seek(0, io.SeekStart); rerr == nil {
				pending.Reset()
			}
		}
	}

	reader := bufio.NewReader(f)
	for {
		chunk, err := reader.ReadString('\n')
		if chunk != "" {
			pending.WriteString(chunk)
		}
		if err != nil {
			// Partial line stays pending until more bytes arrive.
			return true
		}

		line := strings.TrimRight(pending.String(), "\r\n")
		pending.Reset()
		if line == "" {
			continue
		}
		select {
		case s.ch <- model.IngestEnvelope{Source: s.Name(), Line: line}:
		case <-ctx.Done():
			return false
		}
	}
}

func (s *FileSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *FileSource) Lines() <-chan model.IngestEnvelope { return s.ch }

func (s *FileSource) Stop() {
	s.cancel()
	<-s.done
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
