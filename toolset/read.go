package toolset

import (
	"context"
	"fmt"
	"os"

	"github.com/gloop-agent/gloop/agent"
)

// NewRead returns the Read tool definition: reads a UTF-8 text file within
// the workspace root, bounded to MaxReadSize.
func NewRead(policy Policy) agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        "Read",
		Description: "Read a UTF-8 text file within the workspace root.",
		Arguments:   []agent.ArgSpec{{Name: "path", Description: "file path"}},
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			resolved, err := policy.ResolvePath(args["path"])
			if err != nil {
				return "", err
			}
			info, err := os.Stat(resolved)
			if err != nil {
				return "", fmt.Errorf("read %q: %w", args["path"], err)
			}
			if info.Size() > policy.MaxReadSize() {
				return "", fmt.Errorf("read %q: file exceeds %d bytes", args["path"], policy.MaxReadSize())
			}
			content, err := os.ReadFile(resolved)
			if err != nil {
				return "", fmt.Errorf("read %q: %w", args["path"], err)
			}
			return string(content), nil
		},
	}
}
