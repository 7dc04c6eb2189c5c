package ingest

import (
	"reflect"
	"testing"
	"time"

	"github.com/ufwatch/ufwatch/internal/dockernet"
	"github.com/ufwatch/ufwatch/internal/enrich"
	"github.com/ufwatch/ufwatch/internal/model"
	"github.com/ufwatch/ufwatch/internal/ufwparse"
)

type captureSink struct {
	events []*model.EnrichedEvent
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Emit(ev *model.EnrichedEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func newTestProcessor(capture *captureSink) *Processor {
	handle := dockernet.NewHandle(dockernet.New(map[string]model.NetworkInfo{
		"abc123def456": {Name: "net1", Project: "demo", ID: "abc123def456ffff"},
	}))
	return NewProcessor(
		ufwparse.New("", nil),
		enrich.NewNetworkEnricher(handle, ""),
		enrich.NewDenylist(nil),
		[]RecordSink{capture},
		nil,
	)
}

func TestProcessEnvelope_EndToEnd(t *testing.T) {
	t.Parallel()

	capture := &captureSink{}
	p := newTestProcessor(capture)

	line := "Sep 1 00:00:00 host kernel: [UFW BLOCK] IN=br-abc123def456 OUT= SRC=10.0.0.5 DST=10.0.0.1 LEN=60 TTL=64 PROTO=TCP SPT=443 DPT=51000"
	ev := p.ProcessEnvelope(model.IngestEnvelope{Source: "journald", Line: line})
	if ev == nil {
		t.Fatal("expected an enriched event")
	}

	want := model.FieldSet{
		"in":            "br-abc123def456",
		"out":           "",
		"src":           "10.0.0.5",
		"dst":           "10.0.0.1",
		"proto":         "TCP",
		"spt":           "443",
		"dpt":           "51000",
		"dockerproject": "demo",
		"dockernetwork": "net1",
	}
	if !reflect.DeepEqual(ev.Fields, want) {
		t.Fatalf("fields = %v\nwant    %v", ev.Fields, want)
	}
	for _, stripped := range []string{"len", "ttl"} {
		if _, ok := ev.Fields[stripped]; ok {
			t.Fatalf("denylisted field %q present", stripped)
		}
	}
	if ev.Source != "journald" {
		t.Fatalf("source = %q", ev.Source)
	}
	if ev.Timestamp.Month() != time.September || ev.Timestamp.Day() != 1 {
		t.Fatalf("timestamp = %v, want the line's syslog time", ev.Timestamp)
	}
	if len(capture.events) != 1 {
		t.Fatalf("sink received %d events", len(capture.events))
	}
}

func TestProcessEnvelope_OrderPreserved(t *testing.T) {
	t.Parallel()

	capture := &captureSink{}
	p := newTestProcessor(capture)

	for _, spt := range []string{"1001", "1002", "1003"} {
		p.ProcessEnvelope(model.IngestEnvelope{
			Source: "journald",
			Line:   "[UFW BLOCK] IN=eth0 SPT=" + spt,
		})
	}

	if len(capture.events) != 3 {
		t.Fatalf("sink received %d events, want 3", len(capture.events))
	}
	for i, want := range []string{"1001", "1002", "1003"} {
		if got := capture.events[i].Fields["spt"]; got != want {
			t.Fatalf("event %d spt = %q, want %q", i, got, want)
		}
	}
}

func TestProcessEnvelope_SkipsBlankAndNonMarkerLines(t *testing.T) {
	t.Parallel()

	capture := &captureSink{}
	p := newTestProcessor(capture)

	for _, line := range []string{"", "kernel: regular message", "[UFW BLOCK] no pairs here"} {
		if ev := p.ProcessEnvelope(model.IngestEnvelope{Source: "stdin", Line: line}); ev != nil {
			t.Fatalf("line %q produced an event", line)
		}
	}
	if len(capture.events) != 0 {
		t.Fatalf("sink received %d events, want 0", len(capture.events))
	}
}

func TestProcessEnvelope_NoopEnricherStillStripsDenylist(t *testing.T) {
	t.Parallel()

	capture := &captureSink{}
	p := NewProcessor(ufwparse.New("", nil), nil, nil, []RecordSink{capture}, nil)

	ev := p.ProcessEnvelope(model.IngestEnvelope{
		Source: "stdin",
		Line:   "[UFW BLOCK] IN=br-abc123def456 LEN=60 TTL=64 SRC=1.2.3.4",
	})
	if ev == nil {
		t.Fatal("expected event")
	}
	if _, ok := ev.Fields["dockerproject"]; ok {
		t.Fatal("noop enricher must not add correlation fields")
	}
	want := model.FieldSet{"in": "br-abc123def456", "src": "1.2.3.4"}
	if !reflect.DeepEqual(ev.Fields, want) {
		t.Fatalf("fields = %v, want %v", ev.Fields, want)
	}
}
