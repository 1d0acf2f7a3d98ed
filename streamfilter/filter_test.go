package streamfilter

import (
	"strings"
	"testing"
)

func runFilter(t *testing.T, chunks []string) (string, []ToolParsed) {
	t.Helper()
	var out strings.Builder
	var parsed []ToolParsed
	f := &Filter{
		Sink:         func(text string) { out.WriteString(text) },
		OnToolParsed: func(event ToolParsed) { parsed = append(parsed, event) },
	}
	for _, c := range chunks {
		f.Feed(c)
	}
	f.Flush()
	return out.String(), parsed
}

// TestCleanTextPassesThroughUnchanged is the clean-passthrough identity
// invariant: text containing none of the recognized tags must reach Sink
// byte-for-byte, regardless of how it is chunked.
func TestCleanTextPassesThroughUnchanged(t *testing.T) {
	text := "Here is some prose with <angle brackets> that aren't tags, and more text."
	chunkSizes := []int{1, 3, 7, len(text)}
	for _, size := range chunkSizes {
		var chunks []string
		for i := 0; i < len(text); i += size {
			end := i + size
			if end > len(text) {
				end = len(text)
			}
			chunks = append(chunks, text[i:end])
		}
		got, parsed := runFilter(t, chunks)
		if got != text {
			t.Fatalf("chunk size %d: got %q, want %q", size, got, text)
		}
		if len(parsed) != 0 {
			t.Fatalf("chunk size %d: unexpected tool-parsed events: %+v", size, parsed)
		}
	}
}

// TestToolContainerFiresExactlyOncePerElement is the exact-K-firings
// invariant: a <tools> container with three tool elements fires
// OnToolParsed exactly three times, in order, regardless of chunk
// boundaries, and none of the markup reaches Sink.
func TestToolContainerFiresExactlyOncePerElement(t *testing.T) {
	text := `before <tools><tool>Bash(ls)</tool><tool>Read(a.txt)</tool><tool>Write(b.txt, "hi")</tool></tools> after`
	for _, size := range []int{1, 2, 5, len(text)} {
		var chunks []string
		for i := 0; i < len(text); i += size {
			end := i + size
			if end > len(text) {
				end = len(text)
			}
			chunks = append(chunks, text[i:end])
		}
		got, parsed := runFilter(t, chunks)
		if got != "before  after" {
			t.Fatalf("chunk size %d: got %q, want %q", size, got, "before  after")
		}
		if len(parsed) != 3 {
			t.Fatalf("chunk size %d: got %d tool-parsed events, want 3: %+v", size, len(parsed), parsed)
		}
		if parsed[0].Name != "Bash" || parsed[1].Name != "Read" || parsed[2].Name != "Write" {
			t.Fatalf("chunk size %d: unexpected event order: %+v", size, parsed)
		}
	}
}

func TestSentinelContainerFiresToolParsed(t *testing.T) {
	text := "<|tool_calls_section_begin|><tool>Bash(ls -la)</tool><|tool_calls_section_end|>"
	got, parsed := runFilter(t, []string{text})
	if got != "" {
		t.Fatalf("got %q, want empty", got)
	}
	if len(parsed) != 1 || parsed[0].Name != "Bash" {
		t.Fatalf("unexpected parsed events: %+v", parsed)
	}
}

func TestRememberAndForgetAreSuppressedWithoutToolParsedEvents(t *testing.T) {
	text := "keep <remember>note one</remember> and <forget>note two</forget> going"
	got, parsed := runFilter(t, []string{text})
	if got != "keep  and  going" {
		t.Fatalf("got %q", got)
	}
	if len(parsed) != 0 {
		t.Fatalf("expected no tool-parsed events for memory tags, got %+v", parsed)
	}
}

func TestFlushEmitsUnterminatedBufferingPrefixAsText(t *testing.T) {
	got, parsed := runFilter(t, []string{"hello <tool"})
	if got != "hello <tool" {
		t.Fatalf("got %q", got)
	}
	if len(parsed) != 0 {
		t.Fatalf("unexpected events: %+v", parsed)
	}
}

func TestFlushDiscardsUnterminatedSuppressedContent(t *testing.T) {
	got, _ := runFilter(t, []string{"before <tools><tool>Bash(ls)</tool>"})
	if got != "before " {
		t.Fatalf("got %q, want %q", got, "before ")
	}
}
