package memory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForgetRewritesFileWithoutMatchingEntry(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "memory.txt"))
	require.NoError(t, err)

	require.NoError(t, store.Remember("likes dark mode"))
	require.NoError(t, store.Remember("prefers tabs"))
	require.NoError(t, store.Forget("likes dark mode"))

	entries, err := store.All()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "prefers tabs", entries[0])
}

func TestSystemPromptSectionEmptyForNewStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "memory.txt"))
	require.NoError(t, err)

	section, err := store.SystemPromptSection()
	require.NoError(t, err)
	require.Empty(t, section)
}

func TestSystemPromptSectionListsEntries(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "memory.txt"))
	require.NoError(t, err)
	require.NoError(t, store.Remember("likes dark mode"))

	section, err := store.SystemPromptSection()
	require.NoError(t, err)
	require.Contains(t, section, "likes dark mode")
}
