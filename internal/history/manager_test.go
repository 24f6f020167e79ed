package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestAppendThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	m := NewManager(store, nil)
	m.Load(ctx)
	prior := m.Messages()

	m1 := Message{Role: RoleUser, Text: "open the auth module"}
	m2 := Message{Role: RoleModel, Text: "Here it is"}
	if err := m.Append(ctx, m1, m2); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	fresh := NewManager(mustFileStore(t, dir), nil)
	fresh.Load(ctx)
	got := fresh.Messages()

	want := append(prior, m1, m2)
	if len(got) != len(want) {
		t.Fatalf("len(Messages()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Messages()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadMalformedSnapshotFallsBackToGreeting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// Entry missing role.
	raw := `[{"role":"user","text":"hello"},{"text":"orphan"}]`
	if err := os.WriteFile(filepath.Join(dir, StorageKey), []byte(raw), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	m := NewManager(mustFileStore(t, dir), nil)
	m.Load(ctx)
	got := m.Messages()
	if len(got) != 1 {
		t.Fatalf("len(Messages()) = %d, want 1 (greeting only)", len(got))
	}
	if got[0].Role != RoleModel || got[0].Text != DefaultGreeting {
		t.Fatalf("Messages()[0] = %+v, want default greeting", got[0])
	}
}

func TestLoadCorruptJSONFallsBackToGreeting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, StorageKey), []byte(`{not json`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	m := NewManager(mustFileStore(t, dir), nil)
	m.Load(ctx)
	got := m.Messages()
	if len(got) != 1 || got[0].Text != DefaultGreeting {
		t.Fatalf("Messages() = %+v, want single greeting", got)
	}
}

func TestAppendDropsEmptyMessages(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewInMemoryStore(), nil)
	m.Load(ctx)
	before := len(m.Messages())

	if err := m.Append(ctx, Message{Role: RoleUser, Text: ""}, Message{Role: RoleModel, Text: ""}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if got := len(m.Messages()); got != before {
		t.Fatalf("len(Messages()) = %d, want %d (empty text never enters history)", got, before)
	}
}

func TestClearResetsToGreetingAndPersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewManager(mustFileStore(t, dir), nil)
	m.Load(ctx)
	if err := m.Append(ctx, Message{Role: RoleUser, Text: "hello"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	fresh := NewManager(mustFileStore(t, dir), nil)
	fresh.Load(ctx)
	got := fresh.Messages()
	if len(got) != 1 || got[0].Text != DefaultGreeting {
		t.Fatalf("Messages() after Clear+reload = %+v, want single greeting", got)
	}
}

func TestAppendAppliesRedaction(t *testing.T) {
	ctx := context.Background()
	redact := func(s string) (string, bool) {
		if s == "my email is a@b.com" {
			return "my email is [REDACTED_EMAIL]", true
		}
		return s, false
	}
	m := NewManager(NewInMemoryStore(), redact)
	m.Load(ctx)
	if err := m.Append(ctx, Message{Role: RoleUser, Text: "my email is a@b.com"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	msgs := m.Messages()
	last := msgs[len(msgs)-1]
	if last.Text != "my email is [REDACTED_EMAIL]" {
		t.Fatalf("last message = %q, want redacted text", last.Text)
	}
}

func mustFileStore(t *testing.T, dir string) *FileStore {
	t.Helper()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return store
}
