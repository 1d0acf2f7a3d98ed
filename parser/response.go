package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/gloop-agent/gloop/agent"
)

const (
	sectionBegin      = "<|tool_calls_section_begin|>"
	sectionEnd        = "<|tool_calls_section_end|>"
	callBegin         = "<|tool_call_begin|>"
	callArgumentBegin = "<|tool_call_argument_begin|>"
	callEnd           = "<|tool_call_end|>"
)

var elementPattern = regexp.MustCompile(`(?s)<tool>([A-Za-z_][A-Za-z0-9_]*)\((.*?)\)</tool>|<remember>(.*?)</remember>|<forget>(.*?)</forget>`)

var headerPattern = regexp.MustCompile(`^(?:functions\.)?([A-Za-z_][A-Za-z0-9_]*)(?::\d+)?$`)

// ParseResponse extracts tool calls and memory ops from raw LLM text,
// recognizing both the <tools> container dialect and the
// <|tool_calls_section_begin|> sentinel dialect.
func ParseResponse(text string) ParsedResponse {
	var out ParsedResponse

	remaining := text
	remaining = extractToolsContainers(remaining, &out)
	remaining = extractSentinelSections(remaining, &out)
	extractElements(remaining, &out)

	out.CleanText = remaining
	return out
}

// extractToolsContainers finds every <tools>...</tools> region (a bare
// <tools> reopening is accepted as the closer too — observed models emit
// this), extracts its elements into out, and returns the text with those
// regions removed so bare top-level tags can still be found afterward.
func extractToolsContainers(text string, out *ParsedResponse) string {
	var b strings.Builder
	for {
		start := strings.Index(text, "<tools>")
		if start < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		rest := text[start+len("<tools>"):]

		closeIdx := strings.Index(rest, "</tools>")
		reopenIdx := strings.Index(rest, "<tools>")
		var innerEnd, afterLen int
		switch {
		case closeIdx < 0 && reopenIdx < 0:
			extractElements(rest, out)
			text = ""
			continue
		case closeIdx >= 0 && (reopenIdx < 0 || closeIdx <= reopenIdx):
			innerEnd, afterLen = closeIdx, len("</tools>")
		default:
			innerEnd, afterLen = reopenIdx, len("<tools>")
		}
		extractElements(rest[:innerEnd], out)
		text = rest[innerEnd+afterLen:]
	}
	return b.String()
}

func extractSentinelSections(text string, out *ParsedResponse) string {
	var b strings.Builder
	for {
		start := strings.Index(text, sectionBegin)
		if start < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		rest := text[start+len(sectionBegin):]
		end := strings.Index(rest, sectionEnd)
		if end < 0 {
			extractSentinelCalls(rest, out)
			text = ""
			continue
		}
		extractSentinelCalls(rest[:end], out)
		text = rest[end+len(sectionEnd):]
	}
	return b.String()
}

func extractSentinelCalls(section string, out *ParsedResponse) {
	for {
		start := strings.Index(section, callBegin)
		if start < 0 {
			return
		}
		rest := section[start+len(callBegin):]
		argIdx := strings.Index(rest, callArgumentBegin)
		if argIdx < 0 {
			return
		}
		header := rest[:argIdx]
		rest2 := rest[argIdx+len(callArgumentBegin):]
		endIdx := strings.Index(rest2, callEnd)
		if endIdx < 0 {
			return
		}
		jsonText := rest2[:endIdx]
		section = rest2[endIdx+len(callEnd):]

		name := header
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(header)); m != nil {
			name = m[1]
		}
		out.ToolCalls = append(out.ToolCalls, agent.ToolCall{
			Name:    name,
			RawArgs: orderedJSONValues(jsonText),
		})
	}
}

// orderedJSONValues decodes a JSON object text into its values in key order.
// If the text fails to parse as a JSON object, the entire text is returned
// as a single raw argument.
func orderedJSONValues(text string) []string {
	dec := json.NewDecoder(strings.NewReader(text))
	tok, err := dec.Token()
	if err != nil {
		return []string{text}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return []string{text}
	}

	var values []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return []string{text}
		}
		if _, ok := keyTok.(string); !ok {
			return []string{text}
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return []string{text}
		}
		values = append(values, rawJSONToArg(raw))
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return []string{text}
	}
	return values
}

func rawJSONToArg(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return trimmed
}

// extractElements scans text for <tool>Name(args)</tool>, <remember>...,
// and <forget>... elements in source order and appends them to out.
func extractElements(text string, out *ParsedResponse) {
	for _, m := range elementPattern.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			out.ToolCalls = append(out.ToolCalls, agent.ToolCall{Name: m[1], RawArgs: SplitArgs(m[2])})
		case m[3] != "":
			out.Remembers = append(out.Remembers, strings.TrimSpace(m[3]))
		default:
			out.Forgets = append(out.Forgets, strings.TrimSpace(m[4]))
		}
	}
}

// formatResultBlob renders one tool result in the <tool_result> wire shape
// fed back into the next Think.
func formatResultBlob(name, output string, success bool) string {
	status := "success"
	if !success {
		status = "error"
	}
	return "<tool_result name=\"" + name + "\" status=\"" + status + "\">\n" + output + "\n</tool_result>"
}

// FormatResults joins tool results into the synthetic text blob fed back
// into the next Think.
func FormatResults(results []agent.ToolResult) string {
	return strings.Join(resultBlobs(results), "\n\n")
}

func resultBlobs(results []agent.ToolResult) []string {
	blobs := make([]string, len(results))
	for i, r := range results {
		blobs[i] = formatResultBlob(r.Name, r.Output, r.Success)
	}
	return blobs
}

// formatSpawnResult renders a detached subagent's outcome using the same
// <tool_result> wire shape, tagged as a Bash result (the Spawn form is
// always produced by reinterpreting a Bash call's command).
func formatSpawnResult(result agent.SpawnResult) string {
	return formatResultBlob("Bash", result.Summary, result.Success)
}

// Preview truncates s to n characters for tool_start event previews.
func Preview(s string, n int) string {
	return truncate(s, n)
}
