package dockernet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ufwatch/ufwatch/internal/model"
)

type fakeEnumerator struct {
	mu   sync.Mutex
	regs []*Registry
	errs []error
	call int
}

func (f *fakeEnumerator) Enumerate(context.Context) (*Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.call
	if i >= len(f.regs) {
		i = len(f.regs) - 1
	}
	f.call++
	return f.regs[i], f.errs[i]
}

func TestHandle_SwapReplacesSnapshot(t *testing.T) {
	t.Parallel()

	first := New(map[string]model.NetworkInfo{"aaa": {Name: "one"}})
	h := NewHandle(first)
	if h.Current().Len() != 1 {
		t.Fatalf("initial Len = %d", h.Current().Len())
	}

	second := New(map[string]model.NetworkInfo{
		"aaa": {Name: "one"},
		"bbb": {Name: "two"},
	})
	h.Swap(second)
	if h.Current() != second {
		t.Fatal("Swap did not install the new snapshot")
	}
}

func TestHandle_NilSafety(t *testing.T) {
	t.Parallel()

	h := NewHandle(nil)
	if h.Current() == nil || h.Current().Len() != 0 {
		t.Fatal("nil seed should install an empty registry")
	}
	h.Swap(nil)
	if h.Current() == nil {
		t.Fatal("nil swap should install an empty registry")
	}
}

func TestRefresher_SwapsOnSuccessKeepsOnFailure(t *testing.T) {
	t.Parallel()

	initial := New(map[string]model.NetworkInfo{"aaa": {Name: "stale"}})
	fresh := New(map[string]model.NetworkInfo{
		"aaa": {Name: "stale"},
		"bbb": {Name: "fresh"},
	})

	enum := &fakeEnumerator{
		regs: []*Registry{fresh, nil},
		errs: []error{nil, errors.New("docker down")},
	}

	h := NewHandle(initial)
	r := StartRefresher(context.Background(), h, enum, 10*time.Millisecond, nil)
	if r == nil {
		t.Fatal("expected refresher")
	}
	defer r.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for h.Current() != fresh {
		if time.Now().After(deadline) {
			t.Fatal("refresher never swapped in the fresh snapshot")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Subsequent failures keep the last good snapshot.
	time.Sleep(50 * time.Millisecond)
	if h.Current() != fresh {
		t.Fatal("failed refresh must not replace the snapshot")
	}
}

func TestStartRefresher_DisabledForNonPositiveInterval(t *testing.T) {
	t.Parallel()

	h := NewHandle(Empty())
	if r := StartRefresher(context.Background(), h, FileEnumerator{Path: "x"}, 0, nil); r != nil {
		t.Fatal("zero interval should disable refresh")
	}
	var r *Refresher
	r.Stop() // nil-safe
}
