package agent

import "context"

// Chunk is one piece of a streamed model reply. A Chunk with Done set carries
// the assembled Final message the provider's own end-of-stream hook would
// have appended to history — the Think step only needs this on the
// uninterrupted path, since on early termination or abort it appends the raw
// accumulator manually instead.
type Chunk struct {
	Text  string
	Done  bool
	Final *Message
}

// ChunkStream is deliberately not the cooperative range-over-func iterator
// shape: the Think step must be able to abandon it mid-stream without
// awaiting Close (some providers hold the HTTP connection open inside their
// own cleanup, which would deadlock a user-initiated abort). Close is always
// safe to call more than once and is frequently invoked fire-and-forget in a
// background goroutine.
type ChunkStream interface {
	Next(ctx context.Context) (Chunk, error)
	Close() error
}

// Conversation is an opaque handle owning a mutable message history, a model
// identifier, an optional provider-routing hint, and a system prompt.
type Conversation interface {
	GetHistory() []Message
	SetHistory(history []Message)
	Send(ctx context.Context, text string) (Message, error)
	Stream(ctx context.Context, text string) (ChunkStream, error)
	SetSystem(prompt string)
	SetProviderRouting(hint string)
	// Fork returns a new Conversation sharing this one's provider/model/
	// routing but with fresh, empty history and the given system prompt. Used
	// by the context-prune fork to run a nested evaluator without
	// disturbing the outer conversation.
	Fork(systemPrompt string) Conversation
}

// Registry resolves tool names to definitions and lists them for system
// prompt construction. Mutations (Reload, Install) must be atomic with
// respect to concurrent readers — a copy-on-write map satisfies this with a
// single pointer swap.
type Registry interface {
	Lookup(name string) (ToolDefinition, bool)
	All() []ToolDefinition
	Register(def ToolDefinition)
}

// EventSink receives normalized runtime events (the headless NDJSON stream,
// a UI broker, or a test probe all implement this).
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

// IDGenerator creates run IDs at the runtime boundary.
type IDGenerator interface {
	NewRunID(ctx context.Context) (RunID, error)
}

// SpawnResult is returned by a detached subagent invocation.
type SpawnResult struct {
	Success  bool
	Summary  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Effects is the evaluator's only outward dependency. Every method
// that can block takes a context so cancellation reaches it.
type Effects interface {
	StreamChunk(ctx context.Context, text string)
	StreamDone(ctx context.Context)

	ToolStart(ctx context.Context, name, preview string)
	ToolDone(ctx context.Context, name string, ok bool, output string)

	Confirm(ctx context.Context, command string) (bool, error)
	Ask(ctx context.Context, question string) (string, error)

	Remember(ctx context.Context, content string) error
	Forget(ctx context.Context, content string) error

	RefreshSystem(ctx context.Context) error

	// Reboot persists the session and terminates the process with the
	// restart signal. It only returns if persistence failed; on success the
	// process exits and this call never returns.
	Reboot(ctx context.Context, reason string, conversation Conversation) error

	ManageContext(ctx context.Context, instructions string) (string, error)

	Complete(ctx context.Context, summary string)

	InstallTool(ctx context.Context, source string) (string, error)
	ListTools(ctx context.Context) (string, error)

	Spawn(ctx context.Context, task string) (SpawnResult, error)

	ListSessions(ctx context.Context) (string, error)
	ResumeSession(ctx context.Context, runID string) (string, error)
}
