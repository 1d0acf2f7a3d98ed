package subagent

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gloop-agent/gloop/agent"
)

// TaskSuffix is appended to a subagent's task prompt unless already present.
const TaskSuffix = `Do not stop working until you think the task is complete, then return the results. make sure to do that by calling task complete tool with the results as arguments .`

// Launcher spawns detached `gloop --task "..."` subagent processes and
// recovers their SpawnResult from the headless NDJSON event stream they
// write.
type Launcher struct {
	// GloopPath is the binary to exec; defaults to the running executable.
	GloopPath string
	// Model and Provider, if set, are forwarded as --model/--provider.
	Model    string
	Provider string
	Debug    bool
}

// NewLauncher returns a Launcher that re-execs the current binary.
func NewLauncher() *Launcher {
	path, err := os.Executable()
	if err != nil {
		path = "gloop"
	}
	return &Launcher{GloopPath: path}
}

// Spawn runs one subagent to completion and returns its SpawnResult,
// implementing agent.Effects.Spawn. The task suffix is appended unless the
// caller's task already contains it.
func (l *Launcher) Spawn(ctx context.Context, task string) (agent.SpawnResult, error) {
	fullTask := task
	if !strings.Contains(fullTask, TaskSuffix) {
		fullTask = strings.TrimRight(fullTask, " ") + " " + TaskSuffix
	}

	eventFile, err := os.CreateTemp("", "gloop-subagent-*.ndjson")
	if err != nil {
		return agent.SpawnResult{}, fmt.Errorf("subagent: create event file: %w", err)
	}
	eventPath := eventFile.Name()
	eventFile.Close()
	defer os.Remove(eventPath)

	args := []string{"--task", fullTask, "--events", eventPath}
	if l.Model != "" {
		args = append(args, "--model", l.Model)
	}
	if l.Provider != "" {
		args = append(args, "--provider", l.Provider)
	}
	if l.Debug {
		args = append(args, "--debug")
	}

	cmd := exec.CommandContext(ctx, l.GloopPath, args...)

	var stdout, stderr bytes.Buffer
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return agent.SpawnResult{}, fmt.Errorf("subagent: stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return agent.SpawnResult{}, fmt.Errorf("subagent: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return agent.SpawnResult{}, fmt.Errorf("subagent: start: %w", err)
	}

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		_, err := stdout.ReadFrom(stdoutPipe)
		return err
	})
	group.Go(func() error {
		_, err := stderr.ReadFrom(stderrPipe)
		return err
	})

	drainErr := group.Wait()
	waitErr := cmd.Wait()

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return agent.SpawnResult{}, fmt.Errorf("subagent: wait: %w", waitErr)
		}
	}
	if drainErr != nil {
		return agent.SpawnResult{}, fmt.Errorf("subagent: drain output: %w", drainErr)
	}

	events, err := ReadEvents(eventPath)
	if err != nil {
		return agent.SpawnResult{
			Success:  false,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}, err
	}

	complete, ok := FindComplete(events)
	result := agent.SpawnResult{
		Success:  ok && exitCode == 0,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if ok {
		result.Summary = complete.Summary
	}
	return result, nil
}
