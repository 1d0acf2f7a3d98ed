package toolset

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gloop-agent/gloop/agent"
)

// NewEdit returns the Edit tool definition: replaces the first occurrence
// of old with new in a file within the workspace root.
func NewEdit(policy Policy) agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        "Edit",
		Description: "Replace the first occurrence of old text with new text in a file within the workspace root.",
		Arguments: []agent.ArgSpec{
			{Name: "path", Description: "file path"},
			{Name: "old", Description: "text to find"},
			{Name: "new", Description: "replacement text"},
		},
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			resolved, err := policy.ResolvePath(args["path"])
			if err != nil {
				return "", err
			}
			content, err := os.ReadFile(resolved)
			if err != nil {
				return "", fmt.Errorf("edit %q: %w", args["path"], err)
			}
			old, replacement := args["old"], args["new"]
			if !strings.Contains(string(content), old) {
				return "", fmt.Errorf("edit %q: old text not found", args["path"])
			}
			updated := strings.Replace(string(content), old, replacement, 1)
			if err := os.WriteFile(resolved, []byte(updated), 0o644); err != nil {
				return "", fmt.Errorf("edit %q: %w", args["path"], err)
			}
			return fmt.Sprintf("edited %s", args["path"]), nil
		},
	}
}
