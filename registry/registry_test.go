package registry

import (
	"context"
	"testing"

	"github.com/gloop-agent/gloop/agent"
)

func echoTool(name string) agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        name,
		Description: "echoes",
		Execute:     func(ctx context.Context, args map[string]string) (string, error) { return name, nil },
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	r.Register(echoTool("Echo"))

	def, ok := r.Lookup("Echo")
	if !ok {
		t.Fatal("expected Echo to be registered")
	}
	out, err := def.Execute(context.Background(), nil)
	if err != nil || out != "Echo" {
		t.Fatalf("Execute = %q, %v", out, err)
	}
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	r := New()
	if _, ok := r.Lookup("Nope"); ok {
		t.Fatal("expected Lookup to report false for an unregistered tool")
	}
}

func TestRegisterIgnoresDefinitionWithoutName(t *testing.T) {
	r := New()
	r.Register(agent.ToolDefinition{Execute: func(context.Context, map[string]string) (string, error) { return "", nil }})
	if len(r.All()) != 0 {
		t.Fatalf("expected nameless definition to be rejected, got %d tools", len(r.All()))
	}
}

func TestRegisterIgnoresDefinitionWithoutExecute(t *testing.T) {
	r := New()
	r.Register(agent.ToolDefinition{Name: "NoExec"})
	if _, ok := r.Lookup("NoExec"); ok {
		t.Fatal("expected definition without Execute to be rejected")
	}
}

func TestRegisterDoesNotMutateASnapshotTakenViaAll(t *testing.T) {
	r := New()
	r.Register(echoTool("First"))
	snapshot := r.All()

	r.Register(echoTool("Second"))

	if len(snapshot) != 1 {
		t.Fatalf("snapshot length changed after later Register, got %d", len(snapshot))
	}
	if len(r.All()) != 2 {
		t.Fatalf("expected registry to now have 2 tools, got %d", len(r.All()))
	}
}

func TestMustRegisterReportsMissingName(t *testing.T) {
	r := New()
	err := MustRegister(r, agent.ToolDefinition{Execute: func(context.Context, map[string]string) (string, error) { return "", nil }})
	if err != ErrToolUnregistered {
		t.Fatalf("got %v, want ErrToolUnregistered", err)
	}
}

func TestMustRegisterReportsMissingExecute(t *testing.T) {
	r := New()
	err := MustRegister(r, agent.ToolDefinition{Name: "X"})
	if err != ErrNilExecute {
		t.Fatalf("got %v, want ErrNilExecute", err)
	}
}

func TestNamesListsRegisteredTools(t *testing.T) {
	r := New()
	r.Register(echoTool("A"))
	r.Register(echoTool("B"))

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2", len(names))
	}
}
