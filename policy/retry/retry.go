// Package retry wraps a Conversation with deterministic, error-only retries.
package retry

import (
	"context"
	"errors"

	"github.com/gloop-agent/gloop/agent"
)

// Config controls retry behavior for a wrapped conversation.
type Config struct {
	MaxAttempts int
	ShouldRetry func(error) bool
}

// Wrap wraps a Conversation so Send and the initial Stream call are retried
// on failure. Once a stream has started, its chunks are not retried — only
// establishing the stream is.
func Wrap(conversation agent.Conversation, cfg Config) agent.Conversation {
	if conversation == nil {
		return nil
	}
	return &conversationWrapper{next: conversation, cfg: cfg}
}

type conversationWrapper struct {
	next agent.Conversation
	cfg  Config
}

func (w *conversationWrapper) GetHistory() []agent.Message { return w.next.GetHistory() }
func (w *conversationWrapper) SetHistory(history []agent.Message) { w.next.SetHistory(history) }
func (w *conversationWrapper) SetSystem(prompt string)             { w.next.SetSystem(prompt) }
func (w *conversationWrapper) SetProviderRouting(hint string)      { w.next.SetProviderRouting(hint) }

func (w *conversationWrapper) Fork(systemPrompt string) agent.Conversation {
	return Wrap(w.next.Fork(systemPrompt), w.cfg)
}

func (w *conversationWrapper) Send(ctx context.Context, text string) (agent.Message, error) {
	if err := ctx.Err(); err != nil {
		return agent.Message{}, err
	}

	attempts := normalizedAttempts(w.cfg.MaxAttempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		msg, err := w.next.Send(ctx, text)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		if attempt == attempts || !shouldRetry(ctx, w.cfg, err) {
			break
		}
	}
	return agent.Message{}, lastErr
}

func (w *conversationWrapper) Stream(ctx context.Context, text string) (agent.ChunkStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	attempts := normalizedAttempts(w.cfg.MaxAttempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		stream, err := w.next.Stream(ctx, text)
		if err == nil {
			return stream, nil
		}
		lastErr = err
		if attempt == attempts || !shouldRetry(ctx, w.cfg, err) {
			break
		}
	}
	return nil, lastErr
}

func normalizedAttempts(maxAttempts int) int {
	if maxAttempts < 1 {
		return 1
	}
	return maxAttempts
}

func shouldRetry(ctx context.Context, cfg Config, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if cfg.ShouldRetry == nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		return true
	}
	return cfg.ShouldRetry(err)
}
