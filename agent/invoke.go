package agent

import (
	"context"
	"regexp"
	"runtime/debug"
	"strings"
)

const managePrunePrompt = "Prune old tool results and intermediate outputs. " +
	"Keep the current task goal, recent results, and any information the agent is actively using."

// runInvoke executes a batch of tool calls in order, then
// returns the Form the batch's continuation produces.
func runInvoke(ctx context.Context, world *World, calls []ToolCall, then func(results []ToolResult) Form, effects Effects) (Form, error) {
	results := make([]ToolResult, 0, len(calls))
	sawReload := false

	for _, call := range calls {
		if world.Cancellation.Fired() {
			return Form{}, ErrAborted
		}

		switch call.Name {
		case "AskUser":
			question := firstArgOf(call)
			effects.ToolStart(ctx, call.Name, previewArgs(call.RawArgs))
			reply, err := effects.Ask(ctx, question)
			if err != nil {
				return Form{}, err
			}
			output := "User answered: " + reply
			results = append(results, ToolResult{Name: call.Name, Output: output, Success: true})
			effects.ToolDone(ctx, call.Name, true, output)
			continue

		case "ManageContext":
			instructions := firstArgOf(call)
			effects.ToolStart(ctx, call.Name, previewArgs(call.RawArgs))
			summary, err := effects.ManageContext(ctx, instructions)
			if err != nil {
				return Form{}, err
			}
			results = append(results, ToolResult{Name: call.Name, Output: summary, Success: true})
			effects.ToolDone(ctx, call.Name, true, summary)
			continue
		}

		def, ok := world.Registry.Lookup(call.Name)
		if !ok {
			msg := "Unknown tool: " + call.Name
			results = append(results, ToolResult{Name: call.Name, Output: msg, Success: false})
			effects.ToolDone(ctx, call.Name, false, msg)
			continue
		}

		if call.Name == "Reload" {
			sawReload = true
		}

		args := ZipArguments(def, call.RawArgs)

		danger, gated := dangerFromPattern(call, world.Policy.DangerPatterns)
		if !gated && def.AskPermission != nil {
			danger, gated = def.AskPermission(args)
		}
		if gated {
			ok, err := effects.Confirm(ctx, danger)
			if err != nil {
				return Form{}, err
			}
			if !ok {
				results = append(results, ToolResult{Name: call.Name, Output: "User denied execution", Success: false})
				effects.ToolDone(ctx, call.Name, false, "denied by user")
				continue
			}
		}

		effects.ToolStart(ctx, call.Name, previewArgs(call.RawArgs))
		output, err := def.Execute(ctx, args)
		if err != nil {
			msg := err.Error() + "\n" + shortStackExcerpt()
			results = append(results, ToolResult{Name: call.Name, Output: msg, Success: false})
			effects.ToolDone(ctx, call.Name, false, err.Error())
			continue
		}
		results = append(results, ToolResult{Name: call.Name, Output: output, Success: true})
		effects.ToolDone(ctx, call.Name, true, "ok")
	}

	if sawReload {
		if err := effects.RefreshSystem(ctx); err != nil {
			return Form{}, err
		}
	}

	threshold := world.Policy.ContextPruneThreshold
	if threshold <= 0 {
		threshold = DefaultInvokePolicy().ContextPruneThreshold
	}
	world.ToolCalls += len(calls)
	if world.ToolCalls >= threshold {
		world.ToolCalls = 0
		effects.ToolStart(ctx, "ManageContext", previewArgs([]string{managePrunePrompt}))
		summary, err := effects.ManageContext(ctx, managePrunePrompt)
		if err != nil {
			return Form{}, err
		}
		effects.ToolDone(ctx, "ManageContext", true, summary)
	}

	return then(results), nil
}

func firstArgOf(call ToolCall) string {
	if len(call.RawArgs) == 0 {
		return ""
	}
	return call.RawArgs[0]
}

func dangerFromPattern(call ToolCall, patterns []*regexp.Regexp) (string, bool) {
	if call.Name != "Bash" || len(call.RawArgs) == 0 {
		return "", false
	}
	command := call.RawArgs[0]
	for _, pattern := range patterns {
		if pattern.MatchString(command) {
			return "command matches a destructive pattern: " + command, true
		}
	}
	return "", false
}

// previewArgs truncates each argument to 40 characters and joins them,
// matching the toolStart preview shape.
func previewArgs(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = truncateRunes(a, 40)
	}
	return strings.Join(parts, ", ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func shortStackExcerpt() string {
	stack := string(debug.Stack())
	lines := strings.SplitN(stack, "\n", 5)
	if len(lines) > 4 {
		lines = lines[:4]
	}
	return strings.Join(lines, "\n")
}
