package dockernet

import (
	"strings"
	"testing"

	"github.com/ufwatch/ufwatch/internal/model"
)

func TestParse_NDJSONListings(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"ID":"abc123def456789","Name":"app_net","Labels":"com.docker.compose.network=default,com.docker.compose.project=myapp"}`,
		`{"ID":"fedcba987654321","Name":"plain_net","Labels":""}`,
		``,
	}, "\n")

	reg, err := Parse(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}

	info, ok := reg.Lookup("abc123def456789")
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if info.Name != "app_net" || info.Project != "myapp" {
		t.Fatalf("info = %+v", info)
	}
	if info.ID != "abc123def456789" {
		t.Fatalf("full ID not preserved: %q", info.ID)
	}

	info, ok = reg.Lookup("fedcba987654")
	if !ok {
		t.Fatal("expected lookup hit for exact prefix")
	}
	if info.Project != model.ValueUnknown {
		t.Fatalf("missing project label should default to unknown, got %q", info.Project)
	}
}

func TestParse_MissingNameDefaultsToUnknown(t *testing.T) {
	t.Parallel()

	reg, err := Parse(strings.NewReader(`{"ID":"abc123def456789","Labels":""}`), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	info, ok := reg.Lookup("abc123def456789")
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if info.Name != model.ValueUnknown {
		t.Fatalf("Name = %q, want %q", info.Name, model.ValueUnknown)
	}
	if info.Project != model.ValueUnknown {
		t.Fatalf("Project = %q, want %q", info.Project, model.ValueUnknown)
	}
}

func TestParse_MalformedLineFailsWholeParse(t *testing.T) {
	t.Parallel()

	input := `{"ID":"abc123def456","Name":"ok","Labels":""}` + "\nnot json\n"
	if _, err := Parse(strings.NewReader(input), nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLookup_PrefixContainment(t *testing.T) {
	t.Parallel()

	reg := New(map[string]model.NetworkInfo{
		"abc123def456": {Name: "net1", Project: "demo", ID: "abc123def456ffff"},
	})

	// Runtime identifiers can be longer than the registered prefix.
	if _, ok := reg.Lookup("abc123def456ffff0000"); !ok {
		t.Fatal("expected containment match for longer identifier")
	}
	if _, ok := reg.Lookup("abc123def45"); ok {
		t.Fatal("identifier shorter than the prefix must not match")
	}
	if _, ok := reg.Lookup("000000000000"); ok {
		t.Fatal("expected miss")
	}
}

func TestLookup_DeterministicOrderOnOverlap(t *testing.T) {
	t.Parallel()

	reg := New(map[string]model.NetworkInfo{
		"abc":    {Name: "short", Project: "p1"},
		"abc123": {Name: "long", Project: "p2"},
	})

	// Sorted iteration makes the shorter prefix win every time.
	for i := 0; i < 50; i++ {
		info, ok := reg.Lookup("abc123def456")
		if !ok {
			t.Fatal("expected hit")
		}
		if info.Name != "short" {
			t.Fatalf("iteration %d: matched %q, want deterministic first match", i, info.Name)
		}
	}
}

func TestEmptyRegistry(t *testing.T) {
	t.Parallel()

	reg := Empty()
	if reg.Len() != 0 {
		t.Fatalf("Len = %d, want 0", reg.Len())
	}
	if _, ok := reg.Lookup("abc123def456"); ok {
		t.Fatal("empty registry must never match")
	}
}

func TestNetworks_SortedByPrefix(t *testing.T) {
	t.Parallel()

	reg := New(map[string]model.NetworkInfo{
		"bbb": {Name: "second"},
		"aaa": {Name: "first"},
	})
	nets := reg.Networks()
	if len(nets) != 2 || nets[0].Name != "first" || nets[1].Name != "second" {
		t.Fatalf("Networks() = %+v", nets)
	}
}

func TestProjectFromLabels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		labels string
		want   string
	}{
		{"com.docker.compose.project=shop,com.docker.compose.version=2", "shop"},
		{"com.docker.compose.version=2", "unknown"},
		{"", "unknown"},
		{"com.docker.compose.project=", ""},
	}
	for _, tc := range cases {
		if got := projectFromLabels(tc.labels); got != tc.want {
			t.Fatalf("projectFromLabels(%q) = %q, want %q", tc.labels, got, tc.want)
		}
	}
}
