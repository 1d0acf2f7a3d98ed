package parser

import (
	"path/filepath"

	"github.com/gloop-agent/gloop/agent"
)

// Tokenize splits a shell command line using POSIX-like quoting rules:
// single quotes are literal (no escape processing), double-quoted and
// backtick regions respect backslash escapes. Used by DetectSpawn to
// recognize a gloop subagent invocation hidden inside a Bash call.
func Tokenize(s string) []string {
	var tokens []string
	var cur []byte
	inToken := false
	i, n := 0, len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			if inToken {
				tokens = append(tokens, string(cur))
				cur = nil
				inToken = false
			}
			i++
		case c == '\'':
			inToken = true
			i++
			for i < n && s[i] != '\'' {
				cur = append(cur, s[i])
				i++
			}
			if i < n {
				i++
			}
		case c == '"' || c == '`':
			quote := c
			inToken = true
			i++
			for i < n && s[i] != quote {
				if s[i] == '\\' && i+1 < n {
					cur = append(cur, s[i+1])
					i += 2
					continue
				}
				cur = append(cur, s[i])
				i++
			}
			if i < n {
				i++
			}
		default:
			inToken = true
			cur = append(cur, c)
			i++
		}
	}
	if inToken {
		tokens = append(tokens, string(cur))
	}
	return tokens
}

// DetectSpawn recognizes a Bash call whose command is a gloop subagent
// invocation of the form `gloop [flags...] --task "..."`.
// Only Bash calls are considered; the first token's basename must equal
// gloop.
func DetectSpawn(call agent.ToolCall) (string, bool) {
	if call.Name != "Bash" || len(call.RawArgs) == 0 {
		return "", false
	}
	tokens := Tokenize(call.RawArgs[0])
	if len(tokens) == 0 || filepath.Base(tokens[0]) != "gloop" {
		return "", false
	}
	for i := 1; i < len(tokens); i++ {
		if tokens[i] == "--task" && i+1 < len(tokens) {
			return tokens[i+1], true
		}
	}
	return "", false
}
