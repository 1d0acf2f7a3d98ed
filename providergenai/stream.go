package providergenai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/gloop-agent/gloop/agent"
)

// genaiIterator is the range-over-func shape google.golang.org/genai's
// GenerateContentStream returns: a push-style iterator the caller drives
// with a yield callback, rather than a pull-style Next method.
type genaiIterator func(yield func(*genai.GenerateContentResponse, error) bool)

// chunkStream adapts a genaiIterator to the agent.ChunkStream pull shape
// (Next(ctx)/Close) by running the iterator in its own goroutine and
// forwarding each response over an unbuffered channel. This is what makes
// the Think step's cancellation race work: abandoning Next calls
// never blocks on the iterator's own pace, since the goroutine also selects
// on the same cancel context Close triggers.
type chunkStream struct {
	conversation *Conversation
	cancel       context.CancelFunc

	chunks chan agent.Chunk
	errs   chan error

	closeOnce sync.Once
	acc       strings.Builder
}

var _ agent.ChunkStream = (*chunkStream)(nil)

func (s *chunkStream) run(ctx context.Context, iter genaiIterator) {
	defer close(s.chunks)

	for resp, err := range iter {
		if err != nil {
			select {
			case s.errs <- fmt.Errorf("providergenai: stream: %w", err):
			case <-ctx.Done():
			}
			return
		}
		text := responseText(resp)
		if text == "" {
			continue
		}
		select {
		case s.chunks <- agent.Chunk{Text: text}:
		case <-ctx.Done():
			return
		}
	}
}

// Next returns the next delta chunk, or a final Chunk with Done set (and the
// accumulated reply appended to the owning Conversation's history) once the
// iterator is exhausted.
func (s *chunkStream) Next(ctx context.Context) (agent.Chunk, error) {
	select {
	case err := <-s.errs:
		return agent.Chunk{}, err
	case chunk, ok := <-s.chunks:
		if !ok {
			select {
			case err := <-s.errs:
				return agent.Chunk{}, err
			default:
			}
			full := s.acc.String()
			final := agent.Message{Role: agent.RoleAssistant, Content: full}
			s.conversation.appendAssistant(full)
			return agent.Chunk{Done: true, Final: &final}, nil
		}
		s.acc.WriteString(chunk.Text)
		return chunk, nil
	case <-ctx.Done():
		return agent.Chunk{}, ctx.Err()
	}
}

// Close abandons the stream; safe to call more than once and from a
// fire-and-forget goroutine.
func (s *chunkStream) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}
