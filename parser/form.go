package parser

import (
	"strings"

	"github.com/gloop-agent/gloop/agent"
)

// ParseToForm translates raw LLM output into the evaluator's next Form.
// Memory operations become a Seq prefix; a Reboot call
// preempts a CompleteTask call if both are present; remaining regular tool
// calls are partitioned into plain invocations and detected subagent
// spawns.
func ParseToForm(text string) agent.Form {
	parsed := ParseResponse(text)

	var memoryForms []agent.Form
	for _, c := range parsed.Remembers {
		memoryForms = append(memoryForms, agent.Remember(c, agent.Nil()))
	}
	for _, c := range parsed.Forgets {
		memoryForms = append(memoryForms, agent.Forget(c, agent.Nil()))
	}

	var rebootCall, completeCall *agent.ToolCall
	var regular []agent.ToolCall
	for i := range parsed.ToolCalls {
		c := parsed.ToolCalls[i]
		switch {
		case c.Name == toolNameReboot && rebootCall == nil:
			rebootCall = &c
		case c.Name == toolNameCompleteTask && completeCall == nil:
			completeCall = &c
		default:
			regular = append(regular, c)
		}
	}

	var terminal agent.Form
	hasTerminal := true
	switch {
	case rebootCall != nil:
		terminal = agent.Reboot(firstArg(*rebootCall))
	case completeCall != nil:
		terminal = agent.Done(firstArg(*completeCall))
	default:
		hasTerminal = false
	}

	if hasTerminal {
		if len(regular) == 0 {
			return withMemoryPrefix(memoryForms, terminal)
		}
		body := agent.Invoke(regular, func(_ []agent.ToolResult) agent.Form { return terminal })
		return withMemoryPrefix(memoryForms, body)
	}

	if len(regular) == 0 {
		return withMemoryPrefix(memoryForms, agent.Nil())
	}

	var plain []agent.ToolCall
	var spawnTasks []string
	for _, c := range regular {
		if task, ok := DetectSpawn(c); ok {
			spawnTasks = append(spawnTasks, task)
			continue
		}
		plain = append(plain, c)
	}

	if len(spawnTasks) == 0 {
		body := agent.Invoke(regular, func(results []agent.ToolResult) agent.Form {
			return agent.Think(FormatResults(results))
		})
		return withMemoryPrefix(memoryForms, body)
	}

	if len(plain) == 0 {
		return withMemoryPrefix(memoryForms, buildSpawnChain(spawnTasks, nil))
	}
	body := agent.Invoke(plain, func(results []agent.ToolResult) agent.Form {
		return buildSpawnChain(spawnTasks, resultBlobs(results))
	})
	return withMemoryPrefix(memoryForms, body)
}

func firstArg(c agent.ToolCall) string {
	if len(c.RawArgs) == 0 {
		return ""
	}
	return c.RawArgs[0]
}

func withMemoryPrefix(memoryForms []agent.Form, body agent.Form) agent.Form {
	if len(memoryForms) == 0 {
		return body
	}
	return agent.Seq(append(memoryForms, body)...)
}

// buildSpawnChain right-folds spawnTasks into a chain of Spawn forms, each
// appending its synthesized result blob to priorBlobs, finally resuming
// with a Think carrying the concatenation of every blob.
func buildSpawnChain(spawnTasks []string, priorBlobs []string) agent.Form {
	if len(spawnTasks) == 0 {
		return agent.Think(strings.Join(priorBlobs, "\n\n"))
	}
	task := spawnTasks[0]
	rest := spawnTasks[1:]
	return agent.Spawn(task, func(result agent.SpawnResult) agent.Form {
		blobs := append(append([]string{}, priorBlobs...), formatSpawnResult(result))
		return buildSpawnChain(rest, blobs)
	})
}

