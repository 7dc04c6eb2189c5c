package logsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func appendToFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestFileSource_PicksUpAppendedLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ufw.log")
	if err := os.WriteFile(path, []byte("old line\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	src, err := NewFileSource(context.Background(), path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer src.Stop()

	appendToFile(t, path, "fresh one\nfresh two\n")

	got := collectLines(t, src, 2)
	if len(got) != 2 || got[0] != "fresh one" || got[1] != "fresh two" {
		t.Fatalf("lines = %v (pre-existing content must be skipped)", got)
	}
}

func TestFileSource_PartialLinesWaitForNewline(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ufw.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	src, err := NewFileSource(context.Background(), path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer src.Stop()

	appendToFile(t, path, "half")
	select {
	case env := <-src.Lines():
		t.Fatalf("partial line emitted early: %q", env.Line)
	case <-time.After(200 * time.Millisecond):
	}

	appendToFile(t, path, " full\n")
	got := collectLines(t, src, 1)
	if got[0] != "half full" {
		t.Fatalf("line = %q, want %q", got[0], "half full")
	}
}

func TestFileSource_TruncationRestartsFromTop(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ufw.log")
	if err := os.WriteFile(path, []byte("aaa\nbbb\nccc\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	src, err := NewFileSource(context.Background(), path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer src.Stop()

	if err := os.WriteFile(path, []byte("rotated\n"), 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	got := collectLines(t, src, 1)
	if got[0] != "rotated" {
		t.Fatalf("line = %q, want %q", got[0], "rotated")
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := NewFileSource(context.Background(), "/nonexistent/ufw.log"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
