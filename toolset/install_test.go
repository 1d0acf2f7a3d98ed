package toolset

import (
	"context"
	"testing"
)

func TestCompileInstallBuildsToolDefinition(t *testing.T) {
	source := `
name = "Greet"
description = "Greets a person by name."
arguments = [("who", "the name to greet")]

def execute(args):
    return "hello, " + args["who"]
`
	def, err := CompileInstall(source)
	if err != nil {
		t.Fatalf("CompileInstall: %v", err)
	}
	if def.Name != "Greet" {
		t.Fatalf("Name = %q", def.Name)
	}
	if len(def.Arguments) != 1 || def.Arguments[0].Name != "who" {
		t.Fatalf("Arguments = %+v", def.Arguments)
	}

	out, err := def.Execute(context.Background(), map[string]string{"who": "world"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != "hello, world" {
		t.Fatalf("Execute output = %q", out)
	}
}

func TestCompileInstallMissingNameErrors(t *testing.T) {
	source := `
def execute(args):
    return "x"
`
	_, err := CompileInstall(source)
	if err == nil {
		t.Fatalf("expected an error for missing name")
	}
}

func TestCompileInstallExecuteFailurePropagates(t *testing.T) {
	source := `
name = "Boom"
description = "always fails"
arguments = []

def execute(args):
    fail("kaboom")
`
	def, err := CompileInstall(source)
	if err != nil {
		t.Fatalf("CompileInstall: %v", err)
	}
	if _, err := def.Execute(context.Background(), map[string]string{}); err == nil {
		t.Fatalf("expected execute to fail")
	}
}
