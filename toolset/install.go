package toolset

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/gloop-agent/gloop/agent"
)

// ErrInstallScript wraps any error produced while compiling or validating an
// inline Starlark tool definition.
var ErrInstallScript = errors.New("toolset: install script")

// CompileInstall evaluates source as a Starlark tool definition: a `name`, a
// `description`, an ordered `arguments` list of (name, description) pairs,
// and an `execute(args)` function returning a string or raising fail(...).
// It returns a ToolDefinition whose Execute marshals the Go args map into
// Starlark and the Starlark return value back into a Go string. This is a
// scripting sandbox — no filesystem or network builtins are exposed to the
// script, only the predeclared Starlark language itself.
func CompileInstall(source string) (agent.ToolDefinition, error) {
	thread := &starlark.Thread{Name: "install"}
	globals, err := starlark.ExecFile(thread, "install.star", source, nil)
	if err != nil {
		return agent.ToolDefinition{}, fmt.Errorf("%w: %w", ErrInstallScript, err)
	}

	name, ok := globals["name"].(starlark.String)
	if !ok {
		return agent.ToolDefinition{}, fmt.Errorf("%w: missing string global \"name\"", ErrInstallScript)
	}
	description, _ := globals["description"].(starlark.String)

	arguments, err := parseInstallArguments(globals["arguments"])
	if err != nil {
		return agent.ToolDefinition{}, err
	}

	execute, ok := globals["execute"].(*starlark.Function)
	if !ok {
		return agent.ToolDefinition{}, fmt.Errorf("%w: missing function global \"execute\"", ErrInstallScript)
	}

	return agent.ToolDefinition{
		Name:        string(name),
		Description: string(description),
		Arguments:   arguments,
		Execute: func(ctx context.Context, args map[string]string) (string, error) {
			return callInstallExecute(execute, args)
		},
	}, nil
}

func parseInstallArguments(value starlark.Value) ([]agent.ArgSpec, error) {
	list, ok := value.(*starlark.List)
	if !ok {
		if value == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: \"arguments\" must be a list", ErrInstallScript)
	}

	specs := make([]agent.ArgSpec, 0, list.Len())
	iter := list.Iterate()
	defer iter.Done()
	var elem starlark.Value
	for iter.Next(&elem) {
		tuple, ok := elem.(starlark.Tuple)
		if !ok || len(tuple) != 2 {
			return nil, fmt.Errorf("%w: each argument must be a (name, description) tuple", ErrInstallScript)
		}
		name, ok1 := tuple[0].(starlark.String)
		desc, ok2 := tuple[1].(starlark.String)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: argument name/description must be strings", ErrInstallScript)
		}
		specs = append(specs, agent.ArgSpec{Name: string(name), Description: string(desc)})
	}
	return specs, nil
}

func callInstallExecute(fn *starlark.Function, args map[string]string) (string, error) {
	thread := &starlark.Thread{Name: "install-execute"}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dict := starlark.NewDict(len(args))
	for _, k := range keys {
		if err := dict.SetKey(starlark.String(k), starlark.String(args[k])); err != nil {
			return "", fmt.Errorf("%w: building args dict: %w", ErrInstallScript, err)
		}
	}

	result, err := starlark.Call(thread, fn, starlark.Tuple{dict}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: execute: %w", ErrInstallScript, err)
	}

	text, ok := starlark.AsString(result)
	if !ok {
		return "", fmt.Errorf("%w: execute must return a string, got %s", ErrInstallScript, result.Type())
	}
	return text, nil
}
