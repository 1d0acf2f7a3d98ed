// Package toolset provides the built-in tool definitions registered with
// the agent's tool registry: Bash/Read/Write/Edit for workspace access, and
// stub listings for the tools the Invoke step or response parser intercept
// before they ever reach a registry lookup (AskUser, ManageContext, Reload,
// Reboot, CompleteTask) so the system prompt can still describe them.
package toolset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultBashTimeout = 30 * time.Second
	DefaultMaxReadSize = 1 << 20
)

var (
	ErrPathRequired         = errors.New("toolset: path is required")
	ErrPathOutsideWorkspace = errors.New("toolset: path escapes workspace root")
	ErrArgumentRequired     = errors.New("toolset: argument is required")
)

// Policy bounds filesystem and shell access to a workspace root.
type Policy struct {
	workspaceRoot string
	bashTimeout   time.Duration
	maxReadSize   int64
}

// NewPolicy resolves workspaceRoot to an absolute, symlink-free path.
func NewPolicy(workspaceRoot string, bashTimeout time.Duration) (Policy, error) {
	root := strings.TrimSpace(workspaceRoot)
	if root == "" {
		return Policy{}, fmt.Errorf("toolset: workspace root is required")
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return Policy{}, fmt.Errorf("toolset: resolve workspace root: %w", err)
	}
	rootResolved, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		if os.IsNotExist(err) {
			return Policy{}, fmt.Errorf("toolset: workspace root does not exist: %q", rootAbs)
		}
		return Policy{}, fmt.Errorf("toolset: resolve workspace root symlinks: %w", err)
	}
	info, err := os.Stat(rootResolved)
	if err != nil {
		return Policy{}, fmt.Errorf("toolset: stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return Policy{}, fmt.Errorf("toolset: workspace root is not a directory: %q", rootResolved)
	}
	if bashTimeout <= 0 {
		bashTimeout = DefaultBashTimeout
	}
	return Policy{workspaceRoot: rootResolved, bashTimeout: bashTimeout, maxReadSize: DefaultMaxReadSize}, nil
}

func (p Policy) WorkspaceRoot() string    { return p.workspaceRoot }
func (p Policy) BashTimeout() time.Duration { return p.bashTimeout }
func (p Policy) MaxReadSize() int64        { return p.maxReadSize }

// ResolvePath joins raw against the workspace root (or accepts it verbatim
// if absolute) and rejects anything that resolves outside the root.
func (p Policy) ResolvePath(raw string) (string, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "", ErrPathRequired
	}

	var candidate string
	if filepath.IsAbs(path) {
		candidate = filepath.Clean(path)
	} else {
		candidate = filepath.Join(p.workspaceRoot, filepath.Clean(path))
	}

	candidateAbs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("toolset: resolve path %q: %w", path, err)
	}
	if !hasPathPrefix(p.workspaceRoot, candidateAbs) {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideWorkspace, path)
	}
	return candidateAbs, nil
}

func hasPathPrefix(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
