package container_test

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/km-arc/go-scoped/framework/container"
)

func TestStore_PutGetRemove(t *testing.T) {
	s := container.NewStore()
	typ := reflect.TypeFor[*testLogger]()
	a, b := &testLogger{Name: "a"}, &testLogger{Name: "b"}

	s.Put(typ, container.Default, a)
	s.Put(typ, "audit", b)

	if got, ok := s.Get(typ, container.Default); !ok || got != a {
		t.Errorf("Get(default): got %v want a", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len: got %d want 2", s.Len())
	}

	s.Remove(typ, container.Default)
	if !s.Has(typ) {
		t.Fatal("type should stay while another qualifier exists")
	}
	s.Remove(typ, "audit")
	if s.Has(typ) {
		t.Error("removing the last qualifier should drop the type key")
	}

	s.Remove(typ, "missing") // no-op
}

func TestStore_PutOverwrites(t *testing.T) {
	s := container.NewStore()
	typ := reflect.TypeFor[*testLogger]()
	s.Put(typ, container.Default, &testLogger{Name: "old"})
	s.Swap(typ, container.Default, &testLogger{Name: "new"})

	got, _ := s.Get(typ, container.Default)
	if got.(*testLogger).Name != "new" || s.Len() != 1 {
		t.Errorf("Swap: got %v (len %d)", got, s.Len())
	}
}

func TestStore_ClearAndEntries(t *testing.T) {
	s := container.NewStore()
	s.Put(reflect.TypeFor[*userContext](), "z", &userContext{})
	s.Put(reflect.TypeFor[*testLogger](), "b", &testLogger{})
	s.Put(reflect.TypeFor[*testLogger](), "a", &testLogger{})

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries: got %d want 3", len(entries))
	}
	if entries[0].Qualifier != "a" || entries[1].Qualifier != "b" {
		t.Errorf("Entries should be sorted, got %q, %q", entries[0].Qualifier, entries[1].Qualifier)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear: got %d", s.Len())
	}
}

// ── Scope ─────────────────────────────────────────────────────────────────────

func TestParseScope(t *testing.T) {
	tests := []struct {
		in   string
		want container.Scope
		ok   bool
	}{
		{"singleton", container.Singleton, true},
		{" Request ", container.Request, true},
		{"scoped", container.Request, true},
		{"prototype", container.Prototype, true},
		{"transient", container.Prototype, true},
		{"pooled", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := container.ParseScope(tt.in)
			if (err == nil) != tt.ok || got != tt.want {
				t.Errorf("got (%v, %v) want (%v, ok=%v)", got, err, tt.want, tt.ok)
			}
			if !tt.ok && !container.IsUnsupportedScope(err) {
				t.Errorf("expected UnsupportedScope, got %v", err)
			}
		})
	}
}

func TestScope_String(t *testing.T) {
	if container.Request.String() != "request" || container.Scope(9).String() != "scope(9)" {
		t.Error("unexpected Scope.String output")
	}
}

// ── Debug ─────────────────────────────────────────────────────────────────────

func TestFprintRegistry(t *testing.T) {
	c := container.New()
	declareLogger(t, c, nil)
	declareService(t, c)
	declareUser(t, c)
	ctx := container.WithRequestScope(context.Background())
	_ = container.MustMake[*testLogger](ctx, c)
	_ = container.MustMake[*userContext](ctx, c)

	var buf bytes.Buffer
	c.FprintRegistry(ctx, &buf)
	out := buf.String()

	for _, want := range []string{"testLogger", "userContext", "Log <- *container_test.testLogger", "request", "process"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
