package agent

import "time"

// RunID identifies one headless agent invocation (used by the subagent
// launcher to correlate NDJSON event lines and by the session store).
type RunID string

// EventType enumerates the headless event stream's required event kinds.
// A supervising launcher reads these newline-delimited from a
// temp file and extracts the `complete` event's summary as the subagent's
// result.
type EventType string

const (
	EventTypeStart         EventType = "start"
	EventTypeAssistant     EventType = "assistant"
	EventTypeToolStart     EventType = "tool_start"
	EventTypeToolDone      EventType = "tool_done"
	EventTypeRemember      EventType = "remember"
	EventTypeForget        EventType = "forget"
	EventTypeRefreshSystem EventType = "refresh_system"
	EventTypeReboot        EventType = "reboot"
	EventTypeComplete      EventType = "complete"
	EventTypeUsage         EventType = "usage"
	EventTypeError         EventType = "error"
)

// Usage carries token accounting for the `usage` event and the `complete`
// event's usage field. No component in this module fills it in: Headless
// publishes no `usage` event, and its `complete` event carries only the
// summary.
type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
}

// Event is one line of the headless NDJSON stream. Fields are optional and
// only the ones relevant to Type are populated; this keeps the wire shape
// flat instead of nesting a different payload struct per event type.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	RunID     RunID     `json:"run_id,omitempty"`

	Text    string `json:"text,omitempty"`    // assistant chunk / error message
	Name    string `json:"name,omitempty"`    // tool name
	Preview string `json:"preview,omitempty"` // tool_start argument preview
	OK      bool   `json:"ok,omitempty"`      // tool_done outcome
	Content string `json:"content,omitempty"` // remember/forget content
	Reason  string `json:"reason,omitempty"`  // reboot reason
	Summary string `json:"summary,omitempty"` // complete summary

	Usage *Usage `json:"usage,omitempty"`
}

// CloneEvent returns a copy safe to hand across goroutine boundaries.
func CloneEvent(in Event) Event {
	out := in
	if in.Usage != nil {
		usage := *in.Usage
		out.Usage = &usage
	}
	return out
}
