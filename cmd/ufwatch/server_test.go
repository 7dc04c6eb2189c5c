package main

import (
	"strings"
	"testing"
	"time"
)

func TestRunMonitor_ExitsNonZeroWhenSourceDies(t *testing.T) {
	// "true" exits immediately, standing in for a journal follower that
	// dies out from under the monitor.
	cfg := appConfig{
		JournaldEnabled: true,
		JournalctlBin:   "true",
		EnrichEnabled:   false,
		APIEnabled:      false,
		OutputFormat:    "json",
		MuxBufferSize:   16,
		RecentEvents:    8,
	}

	done := make(chan error, 1)
	go func() { done <- runMonitor(cfg) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a non-nil error after the line source died")
		}
		if !strings.Contains(err.Error(), "input source failed") {
			t.Fatalf("error = %v, want input source failure", err)
		}
	case <-time.After(8 * time.Second):
		t.Fatal("runMonitor did not return after the line source died")
	}
}
