// Package session implements the two durability mechanisms the agent uses
// across process restarts: the fixed-path reboot snapshot and
// a longer-lived, queryable session store keyed by run ID (SQLite-backed).
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gloop-agent/gloop/agent"
)

// RebootExitCode is the distinguished process exit code a supervising
// launcher watches for to know it should respawn the process.
const RebootExitCode = 75

// DefaultRebootFileName is the fixed path (relative to the workspace's
// .gloop directory) the reboot snapshot is written to and read from.
const DefaultRebootFileName = "reboot_session.json"

// ResumeMessagePrefix is the synthetic first user input a rebooted process
// injects once it has reloaded its history.
const ResumeMessagePrefix = "[System: Rebooted successfully. Reason: "

// RebootSnapshot is the JSON shape persisted to the fixed reboot path.
type RebootSnapshot struct {
	History   []agent.Message `json:"history"`
	Reason    string          `json:"reason"`
	Timestamp time.Time       `json:"timestamp"`
}

// SaveReboot serializes history and reason to path, overwriting any
// existing file. Failure propagates to the caller; the process does not
// exit on a reboot save failure.
func SaveReboot(path string, history []agent.Message, reason string) error {
	snapshot := RebootSnapshot{
		History:   agent.CloneMessages(history),
		Reason:    reason,
		Timestamp: time.Now(),
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal reboot snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("session: create reboot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("session: write reboot snapshot: %w", err)
	}
	return nil
}

// LoadAndClearReboot loads the snapshot at path if present, then deletes
// it. A missing file is not an error: it returns (nil, false, nil).
func LoadAndClearReboot(path string) (*RebootSnapshot, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session: read reboot snapshot: %w", err)
	}

	var snapshot RebootSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("session: decode reboot snapshot: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("session: remove reboot snapshot: %w", err)
	}
	return &snapshot, true, nil
}

// ResumeMessage is the synthetic first user input fed to the conversation
// immediately after a rebooted process reloads its history.
func ResumeMessage(reason string) string {
	return ResumeMessagePrefix + reason + ". Fresh code is now loaded. Continue where you left off.]"
}
