package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gloop-agent/gloop/agent"
	"github.com/gloop-agent/gloop/conversationtest"
)

type stubRegistry struct {
	defs map[string]agent.ToolDefinition
}

func newStubRegistry() *stubRegistry { return &stubRegistry{defs: map[string]agent.ToolDefinition{}} }

func (r *stubRegistry) Lookup(name string) (agent.ToolDefinition, bool) {
	d, ok := r.defs[name]
	return d, ok
}
func (r *stubRegistry) All() []agent.ToolDefinition {
	out := make([]agent.ToolDefinition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}
func (r *stubRegistry) Register(def agent.ToolDefinition) { r.defs[def.Name] = def }

func TestEvalInvokeRunsToolsInOrderThenContinues(t *testing.T) {
	reg := newStubRegistry()
	var order []string
	reg.Register(agent.ToolDefinition{
		Name: "First",
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			order = append(order, "First")
			return "first-out", nil
		},
	})
	reg.Register(agent.ToolDefinition{
		Name: "Second",
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			order = append(order, "Second")
			return "second-out", nil
		},
	})

	conv := conversationtest.New()
	world := agent.NewWorld(conv, reg)
	effects := &recordingEffects{}

	calls := []agent.ToolCall{{Name: "First"}, {Name: "Second"}}
	var gotResults []agent.ToolResult
	form := agent.Invoke(calls, func(results []agent.ToolResult) agent.Form {
		gotResults = results
		return agent.Done("ok")
	})

	if err := agent.Eval(context.Background(), &world, form, effects); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(order) != 2 || order[0] != "First" || order[1] != "Second" {
		t.Fatalf("unexpected execution order: %v", order)
	}
	if len(gotResults) != 2 || !gotResults[0].Success || gotResults[0].Output != "first-out" {
		t.Fatalf("unexpected results: %+v", gotResults)
	}
}

func TestEvalInvokeUnknownToolReportsFailureWithoutAborting(t *testing.T) {
	reg := newStubRegistry()
	conv := conversationtest.New()
	world := agent.NewWorld(conv, reg)
	effects := &recordingEffects{}

	var gotResults []agent.ToolResult
	form := agent.Invoke([]agent.ToolCall{{Name: "Missing"}}, func(results []agent.ToolResult) agent.Form {
		gotResults = results
		return agent.Done("done")
	})

	if err := agent.Eval(context.Background(), &world, form, effects); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(gotResults) != 1 || gotResults[0].Success {
		t.Fatalf("expected one failed result, got %+v", gotResults)
	}
}

func TestEvalInvokeToolErrorIsReportedNotFatal(t *testing.T) {
	reg := newStubRegistry()
	reg.Register(agent.ToolDefinition{
		Name: "Boom",
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			return "", errors.New("boom")
		},
	})
	conv := conversationtest.New()
	world := agent.NewWorld(conv, reg)
	effects := &recordingEffects{}

	var gotResults []agent.ToolResult
	form := agent.Invoke([]agent.ToolCall{{Name: "Boom"}}, func(results []agent.ToolResult) agent.Form {
		gotResults = results
		return agent.Done("done")
	})

	if err := agent.Eval(context.Background(), &world, form, effects); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(gotResults) != 1 || gotResults[0].Success {
		t.Fatalf("expected one unsuccessful result, got %+v", gotResults)
	}
}

func TestEvalInvokeDangerousBashRequiresConfirmation(t *testing.T) {
	reg := newStubRegistry()
	var executed bool
	reg.Register(agent.ToolDefinition{
		Name: "Bash",
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			executed = true
			return "ran", nil
		},
	})
	conv := conversationtest.New()
	world := agent.NewWorld(conv, reg)

	var confirmedCommand string
	effects := &recordingEffects{}
	wrappedConfirm := func(ctx context.Context, command string) (bool, error) {
		confirmedCommand = command
		return false, nil
	}
	withDeny := &denyingEffects{recordingEffects: effects, confirm: wrappedConfirm}

	form := agent.Invoke([]agent.ToolCall{{Name: "Bash", RawArgs: []string{"rm -rf /tmp/x"}}}, func(results []agent.ToolResult) agent.Form {
		return agent.Done(results[0].Output)
	})

	if err := agent.Eval(context.Background(), &world, form, withDeny); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if executed {
		t.Fatal("expected denied confirmation to prevent execution")
	}
	if confirmedCommand == "" {
		t.Fatal("expected Confirm to be called with a danger description")
	}
}

type denyingEffects struct {
	*recordingEffects
	confirm func(ctx context.Context, command string) (bool, error)
}

func (d *denyingEffects) Confirm(ctx context.Context, command string) (bool, error) {
	return d.confirm(ctx, command)
}

func TestEvalInvokeAskUserDelegatesToEffectsAsk(t *testing.T) {
	reg := newStubRegistry()
	conv := conversationtest.New()
	world := agent.NewWorld(conv, reg)

	effects := &recordingEffects{}
	answeringEffects := &answerEffects{recordingEffects: effects, answer: "yes please"}

	var gotResults []agent.ToolResult
	form := agent.Invoke([]agent.ToolCall{{Name: "AskUser", RawArgs: []string{"Continue?"}}}, func(results []agent.ToolResult) agent.Form {
		gotResults = results
		return agent.Done("done")
	})

	if err := agent.Eval(context.Background(), &world, form, answeringEffects); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(gotResults) != 1 || gotResults[0].Output != "User answered: yes please" {
		t.Fatalf("unexpected results: %+v", gotResults)
	}
}

type answerEffects struct {
	*recordingEffects
	answer string
}

func (a *answerEffects) Ask(ctx context.Context, question string) (string, error) {
	return a.answer, nil
}
