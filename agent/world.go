package agent

import (
	"regexp"
	"sync"
)

// Cancellation is a one-shot token checked at every recursive evaluator
// entry and raced against the Think step's stream chunks. Done
// returns a channel usable in a select statement so the race is expressed
// without polling.
type Cancellation struct {
	ch   chan struct{}
	once sync.Once
}

// NewCancellation returns a token that has not fired.
func NewCancellation() *Cancellation {
	return &Cancellation{ch: make(chan struct{})}
}

// Fire marks the token as triggered. Safe to call more than once or from
// any goroutine.
func (c *Cancellation) Fire() {
	c.once.Do(func() { close(c.ch) })
}

// Fired reports whether Fire has been called.
func (c *Cancellation) Fired() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel that closes when Fire is called.
func (c *Cancellation) Done() <-chan struct{} {
	return c.ch
}

// InvokePolicy carries the Invoke step's danger gate and context-prune
// threshold, sourced from an external policy document so
// the evaluator itself stays free of config-loading concerns.
type InvokePolicy struct {
	DangerPatterns        []*regexp.Regexp
	ContextPruneThreshold int
}

// World is the per-run state threaded through evaluation: the
// conversation and registry are shared handles, ToolCalls counts executed
// tool calls (each batch adds its size) toward the context-prune threshold, and Cancellation is
// the run's abort token. The evaluator is single-threaded per run, so
// ToolCalls needs no lock of its own.
type World struct {
	Conversation Conversation
	Registry     Registry
	ToolCalls    int
	Cancellation *Cancellation
	Policy       InvokePolicy
}

// NewWorld constructs a World for a fresh run, with the built-in default
// policy (the four rm-family danger patterns, a 50-call prune threshold).
func NewWorld(conversation Conversation, registry Registry) World {
	return World{
		Conversation: conversation,
		Registry:     registry,
		Cancellation: NewCancellation(),
		Policy:       DefaultInvokePolicy(),
	}
}

// DefaultInvokePolicy returns the built-in gate used when no policy
// document overrides it.
func DefaultInvokePolicy() InvokePolicy {
	return InvokePolicy{
		DangerPatterns: []*regexp.Regexp{
			regexp.MustCompile(`\brm\b`),
			regexp.MustCompile(`\brmdir\b`),
			regexp.MustCompile(`\brm\s+-rf?\b`),
			regexp.MustCompile(`\brm\s+-fr?\b`),
		},
		ContextPruneThreshold: 50,
	}
}
