// Package memory implements the agent's note store: a single append-only
// text file that Remember appends a line to and Forget rewrites wholesale,
// grounded on the lock-then-atomic-rename save pattern in
// reusee-tai/cmd/ai/memory.go.
package memory

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// DefaultFileName is the memory file's default name within the
	// workspace's .gloop directory.
	DefaultFileName = "memory.txt"

	// entryCap is the maximum length of a single stored entry; longer
	// entries are single-lined and truncated with a "[truncated]" prefix.
	entryCap = 500

	truncatedPrefix = "[truncated] "
)

// Store is an append-only/rewrite memory file, safe for concurrent use
// within a single process.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a Store backed by path, creating parent directories as
// needed. It does not require the file itself to already exist.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("memory: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("memory: create parent directory: %w", err)
	}
	return &Store{path: path}, nil
}

// compactEntry single-lines and caps an entry at 500 characters, prefixing
// truncated results with "[truncated] ".
func compactEntry(content string) string {
	single := strings.Join(strings.Fields(content), " ")
	if len(single) <= entryCap {
		return single
	}
	limit := entryCap - len(truncatedPrefix)
	if limit < 0 {
		limit = 0
	}
	return truncatedPrefix + single[:limit]
}

// Remember appends content (compacted) as a new line.
func (s *Store) Remember(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := compactEntry(content)
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("memory: open for append: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, entry); err != nil {
		return fmt.Errorf("memory: append entry: %w", err)
	}
	return nil
}

// Forget removes every stored line equal to, or containing, content and
// rewrites the file atomically. Matching is substring-based so a caller can
// forget an entry it only remembers part of.
func (s *Store) Forget(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.TrimSpace(content)
	lines, err := s.readLinesLocked()
	if err != nil {
		return err
	}

	kept := lines[:0]
	for _, line := range lines {
		if needle != "" && strings.Contains(line, needle) {
			continue
		}
		kept = append(kept, line)
	}

	return s.writeLinesLocked(kept)
}

// All returns every stored entry in insertion order.
func (s *Store) All() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLinesLocked()
}

func (s *Store) readLinesLocked() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("memory: open: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("memory: scan: %w", err)
	}
	return lines, nil
}

// writeLinesLocked rewrites the memory file atomically via a temp file
// plus rename.
func (s *Store) writeLinesLocked(lines []string) error {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, rand.Int64())
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("memory: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("memory: rename temp file: %w", err)
	}
	return nil
}

// SystemPromptSection renders the stored entries for inclusion in the
// system prompt built by Refresh.
func (s *Store) SystemPromptSection() (string, error) {
	entries, err := s.All()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("Remembered notes:\n")
	for _, entry := range entries {
		b.WriteString("- ")
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
