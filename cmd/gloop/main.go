// Command gloop is a terminal-resident agent driving an LLM through a
// recursive Form evaluator. Bare invocation opens an interactive
// REPL; --task runs headless as a subagent, writing NDJSON events to the
// path --events names.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/gloop-agent/gloop/agent"
	"github.com/gloop-agent/gloop/config"
	"github.com/gloop-agent/gloop/conversationtest"
	"github.com/gloop-agent/gloop/logging"
	"github.com/gloop-agent/gloop/memory"
	"github.com/gloop-agent/gloop/parser"
	"github.com/gloop-agent/gloop/policy/retry"
	"github.com/gloop-agent/gloop/providergenai"
	"github.com/gloop-agent/gloop/registry"
	"github.com/gloop-agent/gloop/session"
	"github.com/gloop-agent/gloop/subagent"
	"github.com/gloop-agent/gloop/toolset"
	"github.com/gloop-agent/gloop/uieffects"
)

const gloopDir = ".gloop"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "gloop:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("gloop", flag.ContinueOnError)
	task := fs.String("task", "", "run headless with this task and exit (subagent mode)")
	modelFlag := fs.String("model", "", "override the model/provider routing hint")
	providerFlag := fs.String("provider", "", "override the provider name")
	eventsPath := fs.String("events", "", "NDJSON event file for headless mode")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	logger := logging.New(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel), os.Stderr)
	slog.SetDefault(logger)

	agent.SetResponseParser(parser.ParseToForm)

	policy, err := config.LoadPolicy(filepath.Join(cfg.WorkspaceRoot, gloopDir, "policy.cue"))
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	toolPolicy, err := toolset.NewPolicy(cfg.WorkspaceRoot, cfg.BashTimeout)
	if err != nil {
		return fmt.Errorf("build tool policy: %w", err)
	}

	reg := registry.New()
	reg.Register(toolset.NewBash(toolPolicy))
	reg.Register(toolset.NewRead(toolPolicy))
	reg.Register(toolset.NewWrite(toolPolicy))
	reg.Register(toolset.NewEdit(toolPolicy))
	for _, def := range toolset.BuiltinAdvertised() {
		reg.Register(def)
	}

	if cfg.MCPServeAddr != "" {
		go func() {
			if err := registry.ServeMCP(ctx, reg, cfg.MCPServeAddr); err != nil {
				logger.Error("mcp server stopped", "error", err)
			}
		}()
	}

	mem, err := memory.Open(filepath.Join(cfg.WorkspaceRoot, gloopDir, cfg.MemoryPath))
	if err != nil {
		return fmt.Errorf("open memory store: %w", err)
	}

	sessions, err := session.Open(filepath.Join(cfg.WorkspaceRoot, gloopDir, cfg.SessionDBPath))
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()

	conversation, err := newConversation(ctx, cfg, *modelFlag)
	if err != nil {
		return err
	}

	rebootPath := filepath.Join(cfg.WorkspaceRoot, gloopDir, session.DefaultRebootFileName)
	var resumeInput string
	if snapshot, found, err := session.LoadAndClearReboot(rebootPath); err != nil {
		logger.Warn("failed to load reboot snapshot", "error", err)
	} else if found {
		conversation.SetHistory(snapshot.History)
		resumeInput = session.ResumeMessage(snapshot.Reason)
	}

	runID := agent.RunID(uuid.New().String())
	launcher := subagent.NewLauncher()
	launcher.Model = *modelFlag
	launcher.Provider = *providerFlag
	launcher.Debug = *debug

	world := agent.NewWorld(conversation, reg)
	world.Policy.DangerPatterns = policy.DangerPatterns
	if policy.ContextPruneThreshold > 0 {
		world.Policy.ContextPruneThreshold = policy.ContextPruneThreshold
	}

	if *task != "" {
		return runHeadless(ctx, *task, *eventsPath, reg, mem, sessions, launcher, runID, rebootPath, &world)
	}

	memorySection, _ := mem.SystemPromptSection()
	conversation.SetSystem(uieffects.BuildSystemPrompt(reg, memorySection))

	term := uieffects.NewTerminal(stdout, stdin, reg, mem, sessions, launcher, runID, rebootPath, conversation)
	return runREPL(ctx, &world, term, resumeInput)
}

func newConversation(ctx context.Context, cfg config.Config, modelOverride string) (agent.Conversation, error) {
	if cfg.ModelMode != "provider" {
		return conversationtest.New(), nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := cfg.GeminiModel
	if modelOverride != "" {
		model = modelOverride
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return retry.Wrap(providergenai.New(client, model), retry.Config{MaxAttempts: 3}), nil
}

func runREPL(ctx context.Context, world *agent.World, term *uieffects.Terminal, resumeInput string) error {
	if resumeInput != "" {
		if err := agent.Eval(ctx, world, agent.Think(resumeInput), term); err != nil && !errors.Is(err, agent.ErrAborted) {
			return err
		}
	}

	for {
		term.ShowPrompt()
		line, err := term.ReadInput()
		if err != nil {
			return err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "/quit" || trimmed == "/exit" {
			return nil
		}

		form := dispatchInput(trimmed)
		if err := agent.Eval(ctx, world, form, term); err != nil && !errors.Is(err, agent.ErrAborted) {
			return err
		}
	}
}

// dispatchInput turns one line of REPL input into a Form: /install, /tools,
// /sessions, and /resume route to their Forms, unknown /commands Emit an
// error, and anything else becomes a Think.
func dispatchInput(line string) agent.Form {
	if !strings.HasPrefix(line, "/") {
		return agent.Think(line)
	}

	command := line
	rest := ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		command = line[:i]
		rest = strings.TrimSpace(line[i+1:])
	}

	switch command {
	case "/install":
		return agent.Install(rest)
	case "/tools":
		return agent.ListTools()
	case "/sessions":
		return agent.ListSessions()
	case "/resume":
		if rest == "" {
			return agent.Emit("Usage: /resume <run-id>", agent.Nil())
		}
		return agent.Resume(rest)
	default:
		return agent.Emit("Unknown command: "+command, agent.Nil())
	}
}

func runHeadless(
	ctx context.Context,
	task, eventsPath string,
	reg *registry.Registry,
	mem *memory.Store,
	sessions *session.Store,
	launcher *subagent.Launcher,
	runID agent.RunID,
	rebootPath string,
	world *agent.World,
) error {
	if eventsPath == "" {
		eventsPath = filepath.Join(os.TempDir(), string(runID)+".ndjson")
	}
	writer, err := subagent.NewEventWriter(eventsPath)
	if err != nil {
		return err
	}
	defer writer.Close()

	fullTask := task
	if !strings.Contains(fullTask, subagent.TaskSuffix) {
		fullTask = strings.TrimRight(fullTask, " ") + " " + subagent.TaskSuffix
	}

	headless := uieffects.NewHeadless(writer, reg, mem, sessions, launcher, runID, rebootPath, world.Conversation)
	_ = writer.Publish(ctx, agent.Event{Type: agent.EventTypeStart, RunID: runID})

	err = agent.Eval(ctx, world, agent.Think(fullTask), headless)
	if err != nil && !errors.Is(err, agent.ErrAborted) {
		_ = writer.Publish(ctx, agent.Event{Type: agent.EventTypeError, RunID: runID, Text: err.Error()})
		return err
	}
	return nil
}
