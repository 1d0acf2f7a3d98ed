package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const prunePromptSystem = "You are a context-pruning assistant. You see an indexed list of the " +
	"conversation's messages and instructions describing what to keep. Use ViewMessage(index) to " +
	"inspect a message in full, DeleteMessages(indexes) to mark comma-separated indices for " +
	"removal, and CompleteTask(summary) once you are done, with a short summary of what you pruned. " +
	"Index 0 is the system message and can never be deleted."

// pruneDeleteSet accumulates indices to remove from the outer conversation's
// history. Index 0 (the system message) is never added.
type pruneDeleteSet struct {
	indices map[int]bool
}

func newPruneDeleteSet() *pruneDeleteSet { return &pruneDeleteSet{indices: map[int]bool{}} }

func (s *pruneDeleteSet) add(i int) {
	if i > 0 {
		s.indices[i] = true
	}
}

// RunContextPrune spawns a nested evaluator over a restricted three-tool
// registry to edit the outer conversation's message history. A
// concrete Effects implementation's ManageContext method calls this both for
// the ManageContext tool call and for the Invoke step's periodic
// context-prune trigger.
func RunContextPrune(ctx context.Context, conversation Conversation, instructions string) (string, error) {
	history := conversation.GetHistory()
	deleteSet := newPruneDeleteSet()

	registry := newPruneRegistry(history, deleteSet)
	forked := conversation.Fork(prunePromptSystem)
	silent := &silentEffects{}

	input := "Instructions: " + instructions + "\n\nMessage index:\n" + indexSummary(history)

	world := NewWorld(forked, registry)
	if err := Eval(ctx, &world, Think(input), silent); err != nil {
		return "", err
	}

	if len(deleteSet.indices) > 0 {
		pruned := make([]Message, 0, len(history))
		for i, m := range history {
			if deleteSet.indices[i] {
				continue
			}
			pruned = append(pruned, m)
		}
		conversation.SetHistory(pruned)
	}

	return silent.summary, nil
}

func indexSummary(history []Message) string {
	lines := make([]string, len(history))
	for i, m := range history {
		lines[i] = fmt.Sprintf("#%d [%s] %s", i, m.Role, quoteEdges(m.Content))
	}
	return strings.Join(lines, "\n")
}

func quoteEdges(content string) string {
	r := []rune(content)
	if len(r) <= 100 {
		return "\"" + content + "\""
	}
	head := string(r[:50])
	tail := string(r[len(r)-50:])
	return "\"" + head + "... ..." + tail + "\""
}

// pruneRegistry is the fork's three-tool registry.
type pruneRegistry struct {
	defs map[string]ToolDefinition
}

func newPruneRegistry(history []Message, deleteSet *pruneDeleteSet) *pruneRegistry {
	r := &pruneRegistry{defs: map[string]ToolDefinition{}}

	r.Register(ToolDefinition{
		Name:        "ViewMessage",
		Description: "View the full content of one message by index.",
		Arguments:   []ArgSpec{{Name: "index", Description: "message index"}},
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			idx, err := strconv.Atoi(strings.TrimSpace(args["index"]))
			if err != nil || idx < 0 || idx >= len(history) {
				return fmt.Sprintf("No message at index %s", args["index"]), nil
			}
			m := history[idx]
			return fmt.Sprintf("#%d [%s]\n%s", idx, m.Role, m.Content), nil
		},
	})

	r.Register(ToolDefinition{
		Name:        "DeleteMessages",
		Description: "Mark comma-separated message indices for deletion.",
		Arguments:   []ArgSpec{{Name: "indexes", Description: "comma-separated indices"}},
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			var deleted []string
			for _, p := range strings.Split(args["indexes"], ",") {
				p = strings.TrimSpace(p)
				if p == "" {
					continue
				}
				idx, err := strconv.Atoi(p)
				if err != nil || idx <= 0 || idx >= len(history) {
					continue
				}
				deleteSet.add(idx)
				deleted = append(deleted, p)
			}
			if len(deleted) == 0 {
				return "No messages marked for deletion", nil
			}
			return "Marked for deletion: " + strings.Join(deleted, ", "), nil
		},
	})

	// CompleteTask is listed for the fork's system prompt, but the response
	// parser intercepts a CompleteTask call as a terminal marker before it
	// ever reaches the registry; Execute here is a
	// defensive fallback, not the normal path.
	r.Register(ToolDefinition{
		Name:        "CompleteTask",
		Description: "Finish pruning and report a short summary.",
		Arguments:   []ArgSpec{{Name: "summary", Description: "what was pruned"}},
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			return args["summary"], nil
		},
	})

	return r
}

func (r *pruneRegistry) Lookup(name string) (ToolDefinition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

func (r *pruneRegistry) All() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

func (r *pruneRegistry) Register(def ToolDefinition) {
	r.defs[def.Name] = def
}

// silentEffects is the fork's Effects implementation: no UI output, memory
// and refresh/reboot are no-ops or errors, and nested context-pruning is
// refused.
type silentEffects struct {
	summary string
}

func (s *silentEffects) StreamChunk(ctx context.Context, text string)                  {}
func (s *silentEffects) StreamDone(ctx context.Context)                                 {}
func (s *silentEffects) ToolStart(ctx context.Context, name, preview string)            {}
func (s *silentEffects) ToolDone(ctx context.Context, name string, ok bool, output string) {}

func (s *silentEffects) Confirm(ctx context.Context, command string) (bool, error) {
	return false, errNestedUnsupported("confirm")
}

func (s *silentEffects) Ask(ctx context.Context, question string) (string, error) {
	return "", errNestedUnsupported("ask")
}

func (s *silentEffects) Remember(ctx context.Context, content string) error { return nil }
func (s *silentEffects) Forget(ctx context.Context, content string) error  { return nil }

func (s *silentEffects) RefreshSystem(ctx context.Context) error {
	return errNestedUnsupported("refreshSystem")
}

func (s *silentEffects) Reboot(ctx context.Context, reason string, conversation Conversation) error {
	return errNestedUnsupported("reboot")
}

func (s *silentEffects) ManageContext(ctx context.Context, instructions string) (string, error) {
	return "", errNestedUnsupported("nested context-pruning")
}

func (s *silentEffects) Complete(ctx context.Context, summary string) {
	s.summary = summary
}

func (s *silentEffects) InstallTool(ctx context.Context, source string) (string, error) {
	return "", errNestedUnsupported("installTool")
}

func (s *silentEffects) ListTools(ctx context.Context) (string, error) {
	return "", errNestedUnsupported("listTools")
}

func (s *silentEffects) Spawn(ctx context.Context, task string) (SpawnResult, error) {
	return SpawnResult{}, errNestedUnsupported("spawn")
}

func (s *silentEffects) ListSessions(ctx context.Context) (string, error) {
	return "", errNestedUnsupported("listSessions")
}

func (s *silentEffects) ResumeSession(ctx context.Context, runID string) (string, error) {
	return "", errNestedUnsupported("resumeSession")
}

func errNestedUnsupported(op string) error {
	return fmt.Errorf("context-prune fork: %s not supported", op)
}
