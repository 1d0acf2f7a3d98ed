package uieffects

import (
	"context"
	"strings"

	"github.com/gloop-agent/gloop/agent"
	"github.com/gloop-agent/gloop/memory"
	"github.com/gloop-agent/gloop/registry"
	"github.com/gloop-agent/gloop/session"
	"github.com/gloop-agent/gloop/subagent"
)

// Headless is the agent.Effects implementation a subagent run uses: instead of terminal I/O it publishes one
// agent.Event per side effect to an EventSink (normally a
// subagent.EventWriter over the run's NDJSON temp file), and since there is
// no human attached, Confirm auto-approves (a subagent that could never run
// a single Bash command without the policy gate refusing it outright would
// be useless) while Ask returns an empty answer — the model must press on
// without a clarification, which is the whole point of the task suffix's
// "do not stop working" instruction.
type Headless struct {
	core *core
	sink agent.EventSink

	assistantAcc strings.Builder
}

var _ agent.Effects = (*Headless)(nil)

// NewHeadless wires a Headless effects implementation over sink.
func NewHeadless(
	sink agent.EventSink,
	reg *registry.Registry,
	mem *memory.Store,
	sessions *session.Store,
	launcher *subagent.Launcher,
	runID agent.RunID,
	rebootPath string,
	conversation agent.Conversation,
) *Headless {
	return &Headless{
		core: &core{
			registry:     reg,
			mem:          mem,
			sessions:     sessions,
			rebootPath:   rebootPath,
			runID:        runID,
			conversation: conversation,
			launcher:     launcher,
		},
		sink: sink,
	}
}

func (h *Headless) publish(ctx context.Context, event agent.Event) {
	event.RunID = h.core.runID
	_ = h.sink.Publish(ctx, event)
}

func (h *Headless) StreamChunk(ctx context.Context, text string) {
	h.assistantAcc.WriteString(text)
}

func (h *Headless) StreamDone(ctx context.Context) {
	text := h.assistantAcc.String()
	h.assistantAcc.Reset()
	if text == "" {
		return
	}
	h.publish(ctx, agent.Event{Type: agent.EventTypeAssistant, Text: text})
}

func (h *Headless) ToolStart(ctx context.Context, name, preview string) {
	h.publish(ctx, agent.Event{Type: agent.EventTypeToolStart, Name: name, Preview: preview})
}

func (h *Headless) ToolDone(ctx context.Context, name string, ok bool, output string) {
	h.publish(ctx, agent.Event{Type: agent.EventTypeToolDone, Name: name, OK: ok, Text: output})
}

func (h *Headless) Confirm(ctx context.Context, command string) (bool, error) {
	return true, nil
}

func (h *Headless) Ask(ctx context.Context, question string) (string, error) {
	h.publish(ctx, agent.Event{Type: agent.EventTypeError, Text: "AskUser ignored in headless mode: " + question})
	return "", nil
}

func (h *Headless) Remember(ctx context.Context, content string) error {
	if err := h.core.Remember(ctx, content); err != nil {
		return err
	}
	h.publish(ctx, agent.Event{Type: agent.EventTypeRemember, Content: content})
	return nil
}

func (h *Headless) Forget(ctx context.Context, content string) error {
	if err := h.core.Forget(ctx, content); err != nil {
		return err
	}
	h.publish(ctx, agent.Event{Type: agent.EventTypeForget, Content: content})
	return nil
}

func (h *Headless) RefreshSystem(ctx context.Context) error {
	if err := h.core.RefreshSystem(ctx); err != nil {
		return err
	}
	h.publish(ctx, agent.Event{Type: agent.EventTypeRefreshSystem})
	return nil
}

func (h *Headless) Reboot(ctx context.Context, reason string, conversation agent.Conversation) error {
	h.publish(ctx, agent.Event{Type: agent.EventTypeReboot, Reason: reason})
	return h.core.Reboot(ctx, reason, conversation)
}

func (h *Headless) ManageContext(ctx context.Context, instructions string) (string, error) {
	return h.core.ManageContext(ctx, instructions)
}

func (h *Headless) Complete(ctx context.Context, summary string) {
	h.publish(ctx, agent.Event{Type: agent.EventTypeComplete, Summary: summary})
}

func (h *Headless) InstallTool(ctx context.Context, source string) (string, error) {
	return h.core.InstallTool(ctx, source)
}

func (h *Headless) ListTools(ctx context.Context) (string, error) {
	return h.core.ListTools(ctx)
}

func (h *Headless) Spawn(ctx context.Context, task string) (agent.SpawnResult, error) {
	return h.core.Spawn(ctx, task)
}

func (h *Headless) ListSessions(ctx context.Context) (string, error) {
	return h.core.ListSessions(ctx)
}

func (h *Headless) ResumeSession(ctx context.Context, runID string) (string, error) {
	return h.core.ResumeSession(ctx, runID)
}
