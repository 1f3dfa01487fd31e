package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/store"
	"github.com/flowscope/flowscope/pkg/store/memory"
	"github.com/flowscope/flowscope/pkg/workflow"
)

func seedStore(t *testing.T, docs ...store.Document) store.Store {
	t.Helper()
	st := memory.NewStore()
	for _, doc := range docs {
		if err := st.Put(context.Background(), doc); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	return st
}

func captureDocument(t *testing.T, name string) store.Document {
	t.Helper()
	g, err := workflow.Parse([]byte(tracePayload))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	return store.NewDocument(name, g, []byte(tracePayload))
}

func TestResolveGraphIDFull(t *testing.T) {
	doc := captureDocument(t, "checkout")
	st := seedStore(t, doc)

	got, err := resolveGraphID(context.Background(), st, doc.ID)
	if err != nil {
		t.Fatalf("resolveGraphID() error: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("resolved ID = %s, want %s", got.ID, doc.ID)
	}
	if len(got.Payload) == 0 {
		t.Error("resolved document should include the payload")
	}
}

func TestResolveGraphIDPrefix(t *testing.T) {
	doc := captureDocument(t, "checkout")
	st := seedStore(t, doc)

	got, err := resolveGraphID(context.Background(), st, doc.ID[:8])
	if err != nil {
		t.Fatalf("resolveGraphID() error: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("resolved ID = %s, want %s", got.ID, doc.ID)
	}
	if len(got.Payload) == 0 {
		t.Error("prefix resolution should fetch the full document")
	}
}

func TestResolveGraphIDNotFound(t *testing.T) {
	st := seedStore(t, captureDocument(t, "checkout"))

	_, err := resolveGraphID(context.Background(), st, "zzz")
	if err == nil {
		t.Fatal("resolveGraphID() expected error")
	}
	if !errors.Is(err, errors.ErrCodeGraphNotFound) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeGraphNotFound)
	}
}

func TestResolveGraphIDAmbiguous(t *testing.T) {
	a := captureDocument(t, "first")
	a.ID = "aaa-1111"
	b := captureDocument(t, "second")
	b.ID = "aaa-2222"
	st := seedStore(t, a, b)

	_, err := resolveGraphID(context.Background(), st, "aaa")
	if err == nil {
		t.Fatal("resolveGraphID() expected error for ambiguous prefix")
	}
	if !errors.Is(err, errors.ErrCodeInvalidID) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidID)
	}
}

func TestGraphTable(t *testing.T) {
	doc := captureDocument(t, "checkout")
	out := graphTable([]store.Document{doc})

	for _, want := range []string{"ID", "Name", "Nodes", "Edges", "Captured", "checkout", shortID(doc.ID)} {
		if !strings.Contains(out, want) {
			t.Errorf("graphTable() output missing %q", want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %q, want %q", got, "01234567")
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q, want %q", got, "abc")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-48 * time.Hour), "2d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}

	old := now.Add(-30 * 24 * time.Hour)
	if got := formatRelativeTime(old); got != old.Format("Jan 2, 2006") {
		t.Errorf("formatRelativeTime() = %q, want date format", got)
	}
}
