package agent

import "context"

// ToolCall is a single invocation extracted from model output. Arguments are
// positional: the Response Parser collapses any keyword-argument syntax
// (name= / name:) to positional order before this type is constructed, so
// RawArgs is the one argument shape the rest of the system ever reasons
// about.
type ToolCall struct {
	Name    string
	RawArgs []string
}

// ToolResult is the normalized output produced by executing a ToolCall.
type ToolResult struct {
	Name    string
	Output  string
	Success bool
}

// ArgSpec names one positional argument a tool accepts, in declaration order.
type ArgSpec struct {
	Name        string
	Description string
}

// ToolDefinition is the registry's unit of capability. Execute receives
// arguments already zipped from RawArgs against Arguments (by position,
// excess RawArgs ignored, missing names simply absent from the map), plus
// the context the Invoke step is running under so a tool can honor
// cancellation/deadlines on its own blocking work (a Bash call's process,
// an MCP round trip, and so on).
// AskPermission lets a tool flag a call as dangerous independent of the
// built-in Bash pattern gate (see the Invoke step); returning ok=false means
// the call needs no confirmation.
type ToolDefinition struct {
	Name          string
	Description   string
	Arguments     []ArgSpec
	Execute       func(ctx context.Context, args map[string]string) (string, error)
	AskPermission func(args map[string]string) (danger string, ok bool)
}

// ZipArguments builds the argument mapping Execute/AskPermission receive.
func ZipArguments(def ToolDefinition, rawArgs []string) map[string]string {
	out := make(map[string]string, len(def.Arguments))
	for i, spec := range def.Arguments {
		if i >= len(rawArgs) {
			break
		}
		out[spec.Name] = rawArgs[i]
	}
	return out
}

// CloneToolDefinitions returns a shallow copy of the slice (the function
// fields are themselves immutable closures, so a shallow copy is sufficient
// for cross-goroutine handoff — e.g. rebuilding a system prompt listing).
func CloneToolDefinitions(in []ToolDefinition) []ToolDefinition {
	out := make([]ToolDefinition, len(in))
	copy(out, in)
	return out
}
