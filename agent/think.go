package agent

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gloop-agent/gloop/streamfilter"
)

const (
	sentinelBegin = "<|tool_calls_section_begin|>"
	sentinelEnd   = "<|tool_calls_section_end|>"
)

// parseToForm is set by the parser package's init-free entry point; it is
// wired as a function value rather than a direct import to keep the agent
// package the dependency root (parser imports agent for its Form/ToolCall
// types, so agent cannot import parser back).
var parseToForm func(text string) Form

// SetResponseParser installs the Form constructor used after a Think step's
// stream ends. Called once at process startup (see cmd/gloop).
func SetResponseParser(fn func(text string) Form) {
	parseToForm = fn
}

type nextResult struct {
	chunk Chunk
	err   error
}

// runThink drives one Think step: append input as a user turn,
// stream the reply through the Stream Filter, detect early tool-block
// completion, and hand the accumulated text to the response parser.
func runThink(ctx context.Context, world *World, input string, effects Effects) (Form, error) {
	stream, err := world.Conversation.Stream(ctx, input)
	if err != nil {
		return Form{}, err
	}

	var acc strings.Builder
	filter := &streamfilter.Filter{
		Sink: func(text string) { effects.StreamChunk(ctx, text) },
		OnToolParsed: func(event streamfilter.ToolParsed) {
			effects.ToolStart(ctx, event.Name, event.Preview)
		},
	}

	earlyBreak := false
loop:
	for {
		result := raceNext(ctx, stream, world.Cancellation)
		if result.err != nil {
			if errors.Is(result.err, io.EOF) {
				break loop
			}
			if result.err == errCancelled {
				go stream.Close()
				if acc.Len() > 0 {
					appendAssistant(world, acc.String())
				}
				return Form{}, ErrAborted
			}
			return Form{}, result.err
		}

		if result.chunk.Text != "" {
			filter.Feed(result.chunk.Text)
			acc.WriteString(result.chunk.Text)
		}
		if result.chunk.Done {
			break loop
		}
		if hasCompleteToolBlock(acc.String()) {
			go stream.Close()
			earlyBreak = true
			break loop
		}
	}

	if earlyBreak {
		appendAssistant(world, acc.String())
	}

	filter.Flush()
	effects.StreamDone(ctx)

	if parseToForm == nil {
		return Form{}, errors.New("agent: no response parser installed")
	}
	return parseToForm(acc.String()), nil
}

var errCancelled = errors.New("agent: stream race cancelled")

// raceNext races stream.Next against world.Cancellation: the Think step
// must be able to abandon the iterator without awaiting its cleanup,
// since some providers hold the HTTP connection open inside their own
// teardown.
func raceNext(ctx context.Context, stream ChunkStream, cancellation *Cancellation) nextResult {
	ch := make(chan nextResult, 1)
	go func() {
		chunk, err := stream.Next(ctx)
		ch <- nextResult{chunk: chunk, err: err}
	}()
	select {
	case <-cancellation.Done():
		return nextResult{err: errCancelled}
	case r := <-ch:
		return r
	}
}

func hasCompleteToolBlock(acc string) bool {
	if strings.Contains(acc, "<tools>") && strings.Contains(acc, "</tools>") {
		return true
	}
	return strings.Contains(acc, sentinelBegin) && strings.Contains(acc, sentinelEnd)
}

// appendAssistant manually appends the accumulated text as an assistant
// message to history — needed whenever the conversation's normal
// end-of-stream hook did not run (early tool-block break, or abort).
func appendAssistant(world *World, text string) {
	history := world.Conversation.GetHistory()
	history = append(history, Message{Role: RoleAssistant, Content: text})
	world.Conversation.SetHistory(history)
}
