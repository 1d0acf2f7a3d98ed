package agent

import "errors"

var (
	// ErrAborted is raised when the run's cancellation token has fired. It is
	// checked at the head of every recursive evaluator entry and between the
	// Think step's stream chunks.
	ErrAborted = errors.New("run aborted")

	// ErrRunNotFound is returned by session stores when a run ID is unknown.
	ErrRunNotFound = errors.New("run not found")

	// ErrContextNil is returned by Eval when it is given a nil context.Context.
	ErrContextNil = errors.New("context is nil")
)
