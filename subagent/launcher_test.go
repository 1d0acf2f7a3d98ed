package subagent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFakeGloop writes a shell script standing in for the gloop binary: it
// finds --events in its argv, writes a fixed event sequence there, prints to
// stdout/stderr, and exits with the given code.
func writeFakeGloop(t *testing.T, exitCode int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-gloop.sh")
	script := fmt.Sprintf(`#!/bin/sh
events=""
while [ "$#" -gt 0 ]; do
  if [ "$1" = "--events" ]; then
    shift
    events="$1"
  fi
  shift
done
echo "out line"
echo "err line" >&2
if [ -n "$events" ]; then
  printf '{"type":"start"}\n' >> "$events"
  printf '{"type":"complete","summary":"fake summary"}\n' >> "$events"
fi
exit %d
`, exitCode)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake gloop: %v", err)
	}
	return path
}

func TestLauncherSpawnSuccess(t *testing.T) {
	launcher := &Launcher{GloopPath: writeFakeGloop(t, 0)}

	result, err := launcher.Spawn(context.Background(), "do the thing")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Summary != "fake summary" {
		t.Fatalf("Summary = %q", result.Summary)
	}
	if result.ExitCode != 0 {
		t.Fatalf("ExitCode = %d", result.ExitCode)
	}
	if !strings.Contains(result.Stdout, "out line") {
		t.Fatalf("Stdout = %q", result.Stdout)
	}
	if !strings.Contains(result.Stderr, "err line") {
		t.Fatalf("Stderr = %q", result.Stderr)
	}
}

func TestLauncherSpawnNonZeroExit(t *testing.T) {
	launcher := &Launcher{GloopPath: writeFakeGloop(t, 3)}

	result, err := launcher.Spawn(context.Background(), "do the thing")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if result.Success {
		t.Fatalf("expected failure on non-zero exit, got %+v", result)
	}
	if result.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestTaskSuffixFixtureContainsSuffixOnce(t *testing.T) {
	task := "do x " + TaskSuffix
	if strings.Count(task, TaskSuffix) != 1 {
		t.Fatalf("fixture broken")
	}
	if !strings.Contains(task, TaskSuffix) {
		t.Fatalf("expected suffix present")
	}
}
