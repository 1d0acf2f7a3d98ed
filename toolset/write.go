package toolset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gloop-agent/gloop/agent"
)

// NewWrite returns the Write tool definition: writes UTF-8 text content to
// a file within the workspace root, creating parent directories as needed.
func NewWrite(policy Policy) agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        "Write",
		Description: "Write UTF-8 text content to a file within the workspace root.",
		Arguments: []agent.ArgSpec{
			{Name: "path", Description: "file path"},
			{Name: "content", Description: "text content"},
		},
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			resolved, err := policy.ResolvePath(args["path"])
			if err != nil {
				return "", err
			}
			if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
				return "", fmt.Errorf("write %q: create parent directory: %w", args["path"], err)
			}
			content := args["content"]
			if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
				return "", fmt.Errorf("write %q: %w", args["path"], err)
			}
			return fmt.Sprintf("wrote %d bytes to %s", len(content), args["path"]), nil
		},
	}
}
