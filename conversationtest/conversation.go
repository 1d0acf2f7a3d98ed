// Package conversationtest is a deterministic, in-memory Conversation
// implementation for tests, grounded on adapters/modeltest.ScriptedModel: a
// fixed sequence of turns is consumed in order and Stream/Send exhaust the
// script exactly like Generate exhausts its Response slice.
package conversationtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gloop-agent/gloop/agent"
)

// Turn configures one scripted model turn. Chunks, if non-empty, are fed to
// the Stream caller one at a time; if Chunks is empty, Text is streamed as
// the sole chunk. Send returns Text as the reply, while a stream's final
// assistant message is the concatenation of the chunks it replayed. Err, if
// set, is returned instead of producing any chunks.
type Turn struct {
	Chunks []string
	Text   string
	Err    error
}

// Conversation is a scripted agent.Conversation for deterministic tests.
type Conversation struct {
	mu          sync.Mutex
	history     []agent.Message
	system      string
	routing     string
	index       int
	turns       []Turn
	sends       int
	forkedChild *Conversation
}

// New returns a scripted Conversation that will produce turns in order.
func New(turns ...Turn) *Conversation {
	cloned := make([]Turn, len(turns))
	copy(cloned, turns)
	return &Conversation{turns: cloned}
}

var _ agent.Conversation = (*Conversation)(nil)

func (c *Conversation) GetHistory() []agent.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return agent.CloneMessages(c.history)
}

func (c *Conversation) SetHistory(history []agent.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = agent.CloneMessages(history)
}

func (c *Conversation) SetSystem(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.system = prompt
}

func (c *Conversation) SetProviderRouting(hint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routing = hint
}

// System returns the last value SetSystem installed, for test assertions.
func (c *Conversation) System() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.system
}

// Routing returns the last value SetProviderRouting installed.
func (c *Conversation) Routing() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.routing
}

// Fork returns a fresh scripted Conversation sharing this one's remaining
// turns, with empty history and systemPrompt installed, matching the
// Conversation.Fork contract.
func (c *Conversation) Fork(systemPrompt string) agent.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	child := New(c.turns[c.index:]...)
	child.system = systemPrompt
	c.forkedChild = child
	return child
}

// ForkedChild returns the most recent Conversation produced by Fork, for
// test assertions about what the context-prune fork did.
func (c *Conversation) ForkedChild() *Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forkedChild
}

func (c *Conversation) nextTurn() (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index >= len(c.turns) {
		return Turn{}, fmt.Errorf("conversationtest: script exhausted at turn %d", c.index+1)
	}
	turn := c.turns[c.index]
	c.index++
	c.sends++
	return turn, nil
}

// Send appends text to history as a user message, consumes the next
// scripted turn, appends its result as an assistant message, and returns it.
func (c *Conversation) Send(ctx context.Context, text string) (agent.Message, error) {
	c.appendUser(text)

	turn, err := c.nextTurn()
	if err != nil {
		return agent.Message{}, err
	}
	if turn.Err != nil {
		return agent.Message{}, turn.Err
	}

	msg := agent.Message{Role: agent.RoleAssistant, Content: turn.Text}
	c.appendAssistant(msg.Content)
	return msg, nil
}

// Stream appends text to history as a user message and returns a
// ChunkStream that replays the next scripted turn's Chunks (or its Text as
// a single chunk), ending with the Final assistant message appended to
// history only once the stream is exhausted — matching the Think step's
// "append the full raw text once streaming ends" contract.
func (c *Conversation) Stream(ctx context.Context, text string) (agent.ChunkStream, error) {
	c.appendUser(text)

	turn, err := c.nextTurn()
	if err != nil {
		return nil, err
	}
	if turn.Err != nil {
		return nil, turn.Err
	}

	chunks := turn.Chunks
	if len(chunks) == 0 {
		chunks = []string{turn.Text}
	}
	return &scriptedStream{conversation: c, chunks: chunks}, nil
}

func (c *Conversation) appendUser(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, agent.Message{Role: agent.RoleUser, Content: text})
}

func (c *Conversation) appendAssistant(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, agent.Message{Role: agent.RoleAssistant, Content: text})
}

// scriptedStream replays a fixed chunk slice and appends the concatenated
// text to the owning Conversation's history as the final assistant message
// once exhausted.
type scriptedStream struct {
	conversation *Conversation
	chunks       []string
	pos          int
	closed       bool
}

func (s *scriptedStream) Next(ctx context.Context) (agent.Chunk, error) {
	select {
	case <-ctx.Done():
		return agent.Chunk{}, ctx.Err()
	default:
	}

	if s.pos >= len(s.chunks) {
		full := ""
		for _, c := range s.chunks {
			full += c
		}
		final := agent.Message{Role: agent.RoleAssistant, Content: full}
		s.conversation.appendAssistant(full)
		return agent.Chunk{Done: true, Final: &final}, nil
	}

	text := s.chunks[s.pos]
	s.pos++
	return agent.Chunk{Text: text}, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called, for tests asserting early
// stream cleanup.
func (s *scriptedStream) Closed() bool {
	return s.closed
}
