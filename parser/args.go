package parser

import "strings"

// SplitArgs tokenizes the comma-separated argument list inside a
// Name(args...) call. Each element is either bare — it runs to
// the next unquoted comma, trimmed — or quoted by ", ' or `. Backslash
// escapes inside double quotes interpret \n, \t, \\; any other escaped
// character is emitted literally. An optional name= or name: prefix
// (keyword-argument style) is accepted and stripped before the value is
// scanned; the order elements appear in becomes the positional rawArgs
// order.
func SplitArgs(body string) []string {
	var args []string
	i, n := 0, len(body)
	for i < n {
		for i < n && (body[i] == ' ' || body[i] == '\t' || body[i] == '\n' || body[i] == ',') {
			i++
		}
		if i >= n {
			break
		}
		i = skipKeywordPrefix(body, i)
		var val string
		val, i = scanOneArg(body, i)
		args = append(args, val)
	}
	return args
}

// skipKeywordPrefix advances past a leading identifier followed by = or :,
// if present, returning the index of the actual value.
func skipKeywordPrefix(body string, i int) int {
	n := len(body)
	j := i
	for j < n && isIdentChar(body[j], j == i) {
		j++
	}
	if j == i || j >= n {
		return i
	}
	if body[j] == '=' || body[j] == ':' {
		return j + 1
	}
	return i
}

func isIdentChar(b byte, first bool) bool {
	isAlpha := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
	if first {
		return isAlpha
	}
	return isAlpha || (b >= '0' && b <= '9')
}

// scanOneArg reads one argument value starting at i (after any keyword
// prefix has already been skipped) and returns it plus the index just past
// the argument and its trailing comma, if any.
func scanOneArg(body string, i int) (string, int) {
	n := len(body)
	for i < n && (body[i] == ' ' || body[i] == '\t') {
		i++
	}
	if i < n && (body[i] == '"' || body[i] == '\'' || body[i] == '`') {
		quote := body[i]
		i++
		var sb strings.Builder
		for i < n && body[i] != quote {
			if quote == '"' && body[i] == '\\' && i+1 < n {
				switch body[i+1] {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				case '\\':
					sb.WriteByte('\\')
				default:
					sb.WriteByte(body[i+1])
				}
				i += 2
				continue
			}
			sb.WriteByte(body[i])
			i++
		}
		if i < n {
			i++ // closing quote
		}
		for i < n && body[i] != ',' {
			i++
		}
		if i < n {
			i++
		}
		return sb.String(), i
	}

	start := i
	for i < n && body[i] != ',' {
		i++
	}
	val := strings.TrimSpace(body[start:i])
	if i < n {
		i++
	}
	return val, i
}
