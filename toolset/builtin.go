package toolset

import (
	"context"

	"github.com/gloop-agent/gloop/agent"
)

// BuiltinAdvertised returns tool definitions for names the evaluator
// intercepts before they ever reach a registry lookup: AskUser and
// ManageContext are handled inline by runInvoke, Reboot and CompleteTask are
// consumed by the response parser. They are still registered so the system
// prompt built from Registry.All() can describe them to the model.
func BuiltinAdvertised() []agent.ToolDefinition {
	return []agent.ToolDefinition{
		{
			Name:        "AskUser",
			Description: "Ask the user a clarifying question and wait for their reply.",
			Arguments:   []agent.ArgSpec{{Name: "question", Description: "the question to ask"}},
			Execute: func(ctx context.Context, args map[string]string) (string, error) {
				return "", nil
			},
		},
		{
			Name:        "ManageContext",
			Description: "Prune the conversation history when it grows too large, keeping only what's still relevant.",
			Arguments:   []agent.ArgSpec{{Name: "instructions", Description: "what to prune and why"}},
			Execute: func(ctx context.Context, args map[string]string) (string, error) {
				return "", nil
			},
		},
		{
			Name:        "Reload",
			Description: "Reload the system prompt from disk after editing it.",
			Arguments:   nil,
			Execute: func(ctx context.Context, args map[string]string) (string, error) {
				return "reloaded", nil
			},
		},
		{
			Name:        "Reboot",
			Description: "Save the conversation and restart the process, picking up where it left off.",
			Arguments:   []agent.ArgSpec{{Name: "reason", Description: "why the process is rebooting"}},
			Execute: func(ctx context.Context, args map[string]string) (string, error) {
				return "", nil
			},
		},
		{
			Name:        "CompleteTask",
			Description: "Mark the current task complete and report a summary to the user.",
			Arguments:   []agent.ArgSpec{{Name: "summary", Description: "a summary of what was accomplished"}},
			Execute: func(ctx context.Context, args map[string]string) (string, error) {
				return "", nil
			},
		},
	}
}
