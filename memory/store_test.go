package memory

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRememberAppendsLine(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "memory.txt"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.Remember("prefers tabs over spaces"); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if err := store.Remember("likes terse commit messages"); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	entries, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(entries), entries)
	}
	if entries[0] != "prefers tabs over spaces" {
		t.Fatalf("entries[0] = %q", entries[0])
	}
}

func TestRememberTruncatesLongEntries(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "memory.txt"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	long := strings.Repeat("x", 1000)
	if err := store.Remember(long); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	entries, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if len(entries[0]) > entryCap {
		t.Fatalf("entry length %d exceeds cap %d", len(entries[0]), entryCap)
	}
	if !strings.HasPrefix(entries[0], truncatedPrefix) {
		t.Fatalf("entry missing truncated prefix: %q", entries[0])
	}
	if strings.Contains(entries[0], "\n") {
		t.Fatalf("entry contains newline: %q", entries[0])
	}
}

func TestForgetRemovesMatchingEntries(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "memory.txt"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.Remember("keep this one"); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if err := store.Remember("drop this one"); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	if err := store.Forget("drop this"); err != nil {
		t.Fatalf("Forget: %v", err)
	}

	entries, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 1 || entries[0] != "keep this one" {
		t.Fatalf("unexpected entries after Forget: %v", entries)
	}
}

func TestAllOnMissingFileReturnsEmpty(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "nonexistent", "memory.txt"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entries, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries, want 0", len(entries))
	}
}

func TestSystemPromptSectionEmptyWhenNoEntries(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "memory.txt"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	section, err := store.SystemPromptSection()
	if err != nil {
		t.Fatalf("SystemPromptSection: %v", err)
	}
	if section != "" {
		t.Fatalf("expected empty section, got %q", section)
	}
}
