package toolset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gloop-agent/gloop/agent"
)

// NewBash returns the Bash tool definition: runs a bounded shell command in
// the workspace root. Its own askPermission is empty since Bash's danger
// gating is the evaluator's built-in rm-pattern check;
// this definition only bounds execution to the workspace and a timeout.
func NewBash(policy Policy) agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        "Bash",
		Description: "Run a shell command in the workspace root.",
		Arguments:   []agent.ArgSpec{{Name: "command", Description: "the shell command to run"}},
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			return executeBash(ctx, policy, args["command"])
		},
	}
}

func executeBash(ctx context.Context, policy Policy, command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("%w: command", ErrArgumentRequired)
	}

	ctx, cancel := context.WithTimeout(ctx, policy.BashTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	cmd.Dir = policy.WorkspaceRoot()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("bash command %q timed out after %s: stdout=%q stderr=%q",
			command, policy.BashTimeout(), stdout.String(), stderr.String())
	}
	if err != nil {
		return "", fmt.Errorf("bash command %q failed: %w: stdout=%q stderr=%q",
			command, err, stdout.String(), stderr.String())
	}
	return fmt.Sprintf("stdout: %s\nstderr: %s", strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String())), nil
}
