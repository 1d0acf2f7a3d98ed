package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gloop-agent/gloop/agent"
	"github.com/gloop-agent/gloop/session"
)

func openTestStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSaveVersioningAndConflict(t *testing.T) {
	store := openTestStore(t)
	runID := agent.RunID("run-1")

	initial := session.Record{
		RunID:   runID,
		History: []agent.Message{{Role: agent.RoleUser, Content: "hello"}},
		Status:  session.StatusActive,
	}
	if err := store.Save(context.Background(), initial); err != nil {
		t.Fatalf("save initial record: %v", err)
	}

	first, err := store.Load(context.Background(), runID)
	if err != nil {
		t.Fatalf("load first record: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("unexpected first version: %d", first.Version)
	}

	updated := first
	updated.History = append(updated.History, agent.Message{Role: agent.RoleAssistant, Content: "hi"})
	if err := store.Save(context.Background(), updated); err != nil {
		t.Fatalf("save updated record: %v", err)
	}

	second, err := store.Load(context.Background(), runID)
	if err != nil {
		t.Fatalf("load second record: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("unexpected second version: %d", second.Version)
	}
	if len(second.History) != 2 {
		t.Fatalf("expected 2 history messages, got %d", len(second.History))
	}

	stale := first
	stale.Status = session.StatusAborted
	err = store.Save(context.Background(), stale)
	if !errors.Is(err, session.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	latest, err := store.Load(context.Background(), runID)
	if err != nil {
		t.Fatalf("load latest record: %v", err)
	}
	if latest.Version != second.Version || latest.Status != second.Status {
		t.Fatalf("record changed after stale write attempt: got=%+v want=%+v", latest, second)
	}
}

func TestStoreLoadMissingRunReturnsNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Load(context.Background(), agent.RunID("does-not-exist"))
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListReturnsEverySavedSession(t *testing.T) {
	store := openTestStore(t)

	for _, runID := range []agent.RunID{"run-a", "run-b", "run-c"} {
		record := session.Record{RunID: runID, Status: session.StatusActive}
		if err := store.Save(context.Background(), record); err != nil {
			t.Fatalf("save %s: %v", runID, err)
		}
	}

	summaries, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(summaries))
	}
}
