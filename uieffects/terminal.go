package uieffects

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gloop-agent/gloop/agent"
	"github.com/gloop-agent/gloop/memory"
	"github.com/gloop-agent/gloop/registry"
	"github.com/gloop-agent/gloop/session"
	"github.com/gloop-agent/gloop/subagent"
)

// Terminal is the interactive agent.Effects implementation: model text
// streams straight to stdout, tool start/done events render one-line status
// markers, and Confirm/Ask block on stdin. Grounded on clientchat.Renderer
// (prompt redraw on interleaved output) and resolution_prompt.go (blocking
// stdin question/answer).
type Terminal struct {
	core *core

	mu          sync.Mutex
	out         io.Writer
	in          *bufio.Reader
	prompt      string
	promptShown bool
}

var _ agent.Effects = (*Terminal)(nil)

// NewTerminal wires a Terminal over the given I/O streams and dependencies.
func NewTerminal(
	out io.Writer,
	in io.Reader,
	reg *registry.Registry,
	mem *memory.Store,
	sessions *session.Store,
	launcher *subagent.Launcher,
	runID agent.RunID,
	rebootPath string,
	conversation agent.Conversation,
) *Terminal {
	return &Terminal{
		core: &core{
			registry:     reg,
			mem:          mem,
			sessions:     sessions,
			rebootPath:   rebootPath,
			runID:        runID,
			conversation: conversation,
			launcher:     launcher,
		},
		out:    out,
		in:     bufio.NewReader(in),
		prompt: "gloop> ",
	}
}

func (t *Terminal) StreamChunk(ctx context.Context, text string) {
	t.writeRaw(text)
}

func (t *Terminal) StreamDone(ctx context.Context) {
	t.println("")
}

func (t *Terminal) ToolStart(ctx context.Context, name, preview string) {
	t.println(fmt.Sprintf("[tool] %s %s", name, preview))
}

func (t *Terminal) ToolDone(ctx context.Context, name string, ok bool, output string) {
	status := "ok"
	if !ok {
		status = "error"
	}
	t.println(fmt.Sprintf("[tool] %s %s: %s", name, status, strings.TrimSpace(output)))
}

func (t *Terminal) Confirm(ctx context.Context, command string) (bool, error) {
	t.println(fmt.Sprintf("About to run: %s", command))
	answer, err := t.readLine("Allow? [y/N] ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func (t *Terminal) Ask(ctx context.Context, question string) (string, error) {
	return t.readLine(question + " ")
}

func (t *Terminal) Remember(ctx context.Context, content string) error {
	return t.core.Remember(ctx, content)
}

func (t *Terminal) Forget(ctx context.Context, content string) error {
	return t.core.Forget(ctx, content)
}

func (t *Terminal) RefreshSystem(ctx context.Context) error {
	return t.core.RefreshSystem(ctx)
}

func (t *Terminal) Reboot(ctx context.Context, reason string, conversation agent.Conversation) error {
	return t.core.Reboot(ctx, reason, conversation)
}

func (t *Terminal) ManageContext(ctx context.Context, instructions string) (string, error) {
	return t.core.ManageContext(ctx, instructions)
}

func (t *Terminal) Complete(ctx context.Context, summary string) {
	t.println("Task complete: " + summary)
}

func (t *Terminal) InstallTool(ctx context.Context, source string) (string, error) {
	return t.core.InstallTool(ctx, source)
}

func (t *Terminal) ListTools(ctx context.Context) (string, error) {
	return t.core.ListTools(ctx)
}

func (t *Terminal) Spawn(ctx context.Context, task string) (agent.SpawnResult, error) {
	return t.core.Spawn(ctx, task)
}

func (t *Terminal) ListSessions(ctx context.Context) (string, error) {
	return t.core.ListSessions(ctx)
}

func (t *Terminal) ResumeSession(ctx context.Context, runID string) (string, error) {
	return t.core.ResumeSession(ctx, runID)
}

func (t *Terminal) writeRaw(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.out, text)
}

func (t *Terminal) println(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.promptShown {
		io.WriteString(t.out, "\r\033[2K")
	}
	if line != "" {
		io.WriteString(t.out, line)
	}
	io.WriteString(t.out, "\n")
	if t.promptShown {
		io.WriteString(t.out, t.prompt)
	}
}

func (t *Terminal) readLine(label string) (string, error) {
	t.mu.Lock()
	io.WriteString(t.out, label)
	t.promptShown = true
	t.mu.Unlock()

	line, err := t.in.ReadString('\n')

	t.mu.Lock()
	t.promptShown = false
	t.mu.Unlock()

	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ShowPrompt writes the REPL's own input prompt, distinct from readLine's
// inline question prompts.
func (t *Terminal) ShowPrompt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.out, t.prompt)
	t.promptShown = true
}

// ReadInput blocks for one line of top-level user input.
func (t *Terminal) ReadInput() (string, error) {
	line, err := t.in.ReadString('\n')
	t.mu.Lock()
	t.promptShown = false
	t.mu.Unlock()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\n"), nil
}
