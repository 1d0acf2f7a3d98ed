package uieffects

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gloop-agent/gloop/agent"
)

// BuildSystemPrompt renders the registry's current tool listing and the
// memory store's remembered notes into the text installed on the
// conversation by the Refresh effect.
func BuildSystemPrompt(reg agent.Registry, memorySection string) string {
	var b strings.Builder
	b.WriteString("You are gloop, a terminal-resident agent. Invoke tools using the <tools> markup described below.\n\n")
	b.WriteString("Available tools:\n")

	defs := reg.All()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	for _, def := range defs {
		argNames := make([]string, len(def.Arguments))
		for i, a := range def.Arguments {
			argNames[i] = a.Name
		}
		fmt.Fprintf(&b, "- %s(%s): %s\n", def.Name, strings.Join(argNames, ", "), def.Description)
	}

	if strings.TrimSpace(memorySection) != "" {
		b.WriteString("\n")
		b.WriteString(memorySection)
	}

	return b.String()
}
