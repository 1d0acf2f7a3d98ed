// Package uieffects implements agent.Effects: a Terminal for interactive
// REPL sessions (stdout streaming, stdin confirm/ask) and a Headless
// variant for subagent runs that publishes agent.Event records instead of
// writing to a terminal. Both share core logic — memory, registry
// mutation, session persistence, reboot, and spawn — grounded on the
// clientchat package for the interactive half and on a headless event
// stream for the other.
package uieffects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gloop-agent/gloop/agent"
	"github.com/gloop-agent/gloop/memory"
	"github.com/gloop-agent/gloop/registry"
	"github.com/gloop-agent/gloop/session"
	"github.com/gloop-agent/gloop/subagent"
	"github.com/gloop-agent/gloop/toolset"
)

// core bundles the dependencies both Effects implementations share: the
// mutable tool registry, the memory store, the session store, the reboot
// snapshot path, and the subagent launcher.
type core struct {
	registry     *registry.Registry
	mem          *memory.Store
	sessions     *session.Store
	rebootPath   string
	runID        agent.RunID
	conversation agent.Conversation
	launcher     *subagent.Launcher
}

func (c *core) Remember(ctx context.Context, content string) error {
	return c.mem.Remember(content)
}

func (c *core) Forget(ctx context.Context, content string) error {
	return c.mem.Forget(content)
}

func (c *core) RefreshSystem(ctx context.Context) error {
	section, err := c.mem.SystemPromptSection()
	if err != nil {
		return fmt.Errorf("uieffects: refresh system: %w", err)
	}
	c.conversation.SetSystem(BuildSystemPrompt(c.registry, section))
	return nil
}

func (c *core) Reboot(ctx context.Context, reason string, conversation agent.Conversation) error {
	if err := session.SaveReboot(c.rebootPath, conversation.GetHistory(), reason); err != nil {
		return fmt.Errorf("uieffects: reboot: %w", err)
	}
	if c.sessions != nil {
		_ = c.persistSession(ctx, session.StatusActive)
	}
	exitProcess(session.RebootExitCode)
	return nil
}

func (c *core) ManageContext(ctx context.Context, instructions string) (string, error) {
	return agent.RunContextPrune(ctx, c.conversation, instructions)
}

func (c *core) InstallTool(ctx context.Context, source string) (string, error) {
	trimmed := strings.TrimSpace(source)
	if strings.HasPrefix(trimmed, "mcp://") || strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		if err := registry.ImportMCP(ctx, c.registry, trimmed); err != nil {
			return "", fmt.Errorf("uieffects: install mcp tools: %w", err)
		}
		return "installed MCP tools from " + trimmed, nil
	}

	def, err := toolset.CompileInstall(source)
	if err != nil {
		return "", err
	}
	c.registry.Register(def)
	return "installed tool " + def.Name, nil
}

func (c *core) ListTools(ctx context.Context) (string, error) {
	section, err := c.mem.SystemPromptSection()
	if err != nil {
		return "", err
	}
	return BuildSystemPrompt(c.registry, section), nil
}

func (c *core) Spawn(ctx context.Context, task string) (agent.SpawnResult, error) {
	return c.launcher.Spawn(ctx, task)
}

// ListSessions renders the session store's contents as a plain-text table,
// most recently updated first.
func (c *core) ListSessions(ctx context.Context) (string, error) {
	summaries, err := c.sessions.List(ctx)
	if err != nil {
		return "", fmt.Errorf("uieffects: list sessions: %w", err)
	}
	if len(summaries) == 0 {
		return "no stored sessions", nil
	}
	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", s.RunID, s.Status, s.UpdatedAt.Format(time.RFC3339))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// ResumeSession loads runID's stored history into the running conversation,
// replacing whatever history it currently holds.
func (c *core) ResumeSession(ctx context.Context, runID string) (string, error) {
	record, err := c.sessions.Load(ctx, agent.RunID(runID))
	if err != nil {
		return "", fmt.Errorf("uieffects: resume session %q: %w", runID, err)
	}
	c.conversation.SetHistory(record.History)
	return fmt.Sprintf("resumed session %s (%d messages, last updated %s)", runID, len(record.History), record.UpdatedAt.Format(time.RFC3339)), nil
}

func (c *core) persistSession(ctx context.Context, status session.Status) error {
	current, err := c.sessions.Load(ctx, c.runID)
	version := 0
	if err == nil {
		version = current.Version
	}
	record := session.Record{
		RunID:   c.runID,
		History: c.conversation.GetHistory(),
		Status:  status,
		Version: version,
	}
	return c.sessions.Save(ctx, record)
}
