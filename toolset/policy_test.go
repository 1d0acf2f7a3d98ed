package toolset

import (
	"testing"
	"time"
)

func TestNewPolicyRejectsMissingRoot(t *testing.T) {
	if _, err := NewPolicy("", time.Second); err == nil {
		t.Fatal("expected error for empty workspace root")
	}
}

func TestNewPolicyRejectsMissingDirectory(t *testing.T) {
	if _, err := NewPolicy("/nonexistent/path/gloop-test", time.Second); err == nil {
		t.Fatal("expected error for nonexistent workspace root")
	}
}

func TestNewPolicyDefaultsBashTimeout(t *testing.T) {
	policy, err := NewPolicy(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if policy.BashTimeout() != DefaultBashTimeout {
		t.Fatalf("BashTimeout = %v, want %v", policy.BashTimeout(), DefaultBashTimeout)
	}
}

func TestResolvePathJoinsRelativePaths(t *testing.T) {
	root := t.TempDir()
	policy, err := NewPolicy(root, time.Second)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	resolved, err := policy.ResolvePath("sub/file.txt")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if !hasPathPrefix(root, resolved) {
		t.Fatalf("resolved path %q escaped root %q", resolved, root)
	}
}

func TestResolvePathRejectsEscapingRoot(t *testing.T) {
	root := t.TempDir()
	policy, err := NewPolicy(root, time.Second)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if _, err := policy.ResolvePath("../../etc/passwd"); err == nil {
		t.Fatal("expected ErrPathOutsideWorkspace")
	}
}

func TestResolvePathRejectsEmptyPath(t *testing.T) {
	policy, err := NewPolicy(t.TempDir(), time.Second)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if _, err := policy.ResolvePath("   "); err != ErrPathRequired {
		t.Fatalf("got %v, want ErrPathRequired", err)
	}
}
