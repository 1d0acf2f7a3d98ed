// Package providergenai implements agent.Conversation against Google's
// Gemini API via google.golang.org/genai — the one concrete LLM wire format
// this module ships (every other Form/tool-result exchange is plain text
// markup, not native function calling, so the adapter only needs
// text-in/text-out turns). Grounded on nstogner-operative's Gemini
// provider, which shows the SDK's GenerateContentStream range-over-func
// iterator shape.
package providergenai

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/gloop-agent/gloop/agent"
)

// Conversation is a streaming agent.Conversation backed by one genai.Client
// and model name. Each instance owns its own mutable history, system
// prompt, and provider-routing hint.
type Conversation struct {
	mu      sync.Mutex
	client  *genai.Client
	model   string
	history []agent.Message
	system  string
	routing string
}

var _ agent.Conversation = (*Conversation)(nil)

// New returns a Conversation against modelName using client.
func New(client *genai.Client, modelName string) *Conversation {
	return &Conversation{client: client, model: modelName}
}

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

// SetProviderRouting records a routing hint (e.g. a specific Gemini model
// variant); the model name itself is only changed if the hint is non-empty.
func (c *Conversation) SetProviderRouting(hint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routing = hint
	if hint != "" {
		c.model = hint
	}
}

// Fork returns a fresh Conversation against the same client/model, with
// empty history and systemPrompt installed.
func (c *Conversation) Fork(systemPrompt string) agent.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	child := New(c.client, c.model)
	child.system = systemPrompt
	return child
}

// Send runs one non-streaming turn: append text, call GenerateContent, append
// the reply, and return it.
func (c *Conversation) Send(ctx context.Context, text string) (agent.Message, error) {
	c.appendUser(text)

	contents, system, model := c.snapshotForCall()
	config := &genai.GenerateContentConfig{SystemInstruction: system}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return agent.Message{}, fmt.Errorf("providergenai: generate content: %w", err)
	}

	reply := responseText(resp)
	msg := agent.Message{Role: agent.RoleAssistant, Content: reply}
	c.appendAssistant(reply)
	return msg, nil
}

// Stream runs one streaming turn, returning a ChunkStream that yields delta
// text chunks and appends the accumulated reply to history once the
// underlying iterator is exhausted.
func (c *Conversation) Stream(ctx context.Context, text string) (agent.ChunkStream, error) {
	c.appendUser(text)

	contents, system, model := c.snapshotForCall()
	config := &genai.GenerateContentConfig{SystemInstruction: system}

	streamCtx, cancel := context.WithCancel(ctx)
	iter := c.client.Models.GenerateContentStream(streamCtx, model, contents, config)

	stream := &chunkStream{
		conversation: c,
		cancel:       cancel,
		chunks:       make(chan agent.Chunk),
		errs:         make(chan error, 1),
	}
	go stream.run(streamCtx, genaiIterator(iter))
	return stream, nil
}

func (c *Conversation) snapshotForCall() ([]*genai.Content, *genai.Content, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var system *genai.Content
	if c.system != "" {
		system = &genai.Content{Parts: []*genai.Part{{Text: c.system}}}
	}

	contents := make([]*genai.Content, 0, len(c.history))
	for _, msg := range c.history {
		role := "user"
		if msg.Role == agent.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return contents, system, c.model
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

func responseText(resp *genai.GenerateContentResponse) string {
	var text string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			text += part.Text
		}
	}
	return text
}
