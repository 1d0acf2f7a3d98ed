// Package parser turns raw LLM output text into agent Forms.
// Two competing markup dialects are recognized: a permissive <tools>
// container style and a sentinel <|tool_calls_section_begin|> style used by
// some open-weight models.
package parser

import "github.com/gloop-agent/gloop/agent"

// ParsedResponse is the intermediate extraction result, before Form
// construction collapses it into the evaluator's next unit of work.
type ParsedResponse struct {
	ToolCalls []agent.ToolCall
	Remembers []string
	Forgets   []string
	CleanText string
}

// reservedToolNames are handled specially by ParseToForm rather than treated
// as regular tool invocations.
const (
	toolNameReboot       = "Reboot"
	toolNameCompleteTask = "CompleteTask"
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
