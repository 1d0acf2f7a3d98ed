// Package subagent implements the detached subagent launcher:
// a Spawn effect shells out to a fresh `gloop --task "..."` process, the
// child writes newline-delimited agent.Event records to a temp file as it
// runs headless, and the parent tails that file once the child exits to
// recover the `complete` event's summary as the SpawnResult.
package subagent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gloop-agent/gloop/agent"
)

// EventWriter appends agent.Event records as newline-delimited JSON to a
// file, used by a headless run.
type EventWriter struct {
	file *os.File
}

// NewEventWriter creates (or truncates) path and returns a writer over it.
func NewEventWriter(path string) (*EventWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("subagent: open event file: %w", err)
	}
	return &EventWriter{file: file}, nil
}

// Publish implements agent.EventSink by appending one NDJSON line per call.
func (w *EventWriter) Publish(ctx context.Context, event agent.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("subagent: marshal event: %w", err)
	}
	line = append(line, '\n')
	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("subagent: write event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *EventWriter) Close() error {
	return w.file.Close()
}

// ReadEvents parses every NDJSON line in path into an agent.Event, skipping
// blank lines. Used by the launcher once the child process exits to recover
// its complete event.
func ReadEvents(path string) ([]agent.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("subagent: open event file: %w", err)
	}
	defer file.Close()

	var events []agent.Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event agent.Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("subagent: parse event line: %w", err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("subagent: scan event file: %w", err)
	}
	return events, nil
}

// FindComplete returns the last "complete" event in events, if any.
func FindComplete(events []agent.Event) (agent.Event, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == agent.EventTypeComplete {
			return events[i], true
		}
	}
	return agent.Event{}, false
}
