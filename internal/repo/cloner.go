// Package repo acquires the source tree to audit: a local directory as-is,
// or a shallow clone of a remote repository into a temp dir.
package repo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CloneOptions tune the shallow clone.
type CloneOptions struct {
	Branch string
	Depth  int // defaults to 1
}

// IsRemote reports whether target looks like a git URL rather than a
// local path.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "ssh://") ||
		strings.HasPrefix(target, "git@")
}

// cloneArgs builds the git command line for a shallow clone.
func cloneArgs(url, dir string, opts CloneOptions) []string {
	depth := opts.Depth
	if depth <= 0 {
		depth = 1
	}
	args := []string{"clone", "--depth", fmt.Sprintf("%d", depth), "--single-branch"}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	return append(args, url, dir)
}

// Clone shallow-clones url into a fresh temp directory and returns the
// directory plus a cleanup func removing it.
func Clone(ctx context.Context, url string, opts CloneOptions) (string, func(), error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", nil, fmt.Errorf("git is not installed: %w", err)
	}

	dir, err := os.MkdirTemp("", "codeaudit-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	cmd := exec.CommandContext(ctx, "git", cloneArgs(url, dir, opts)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cleanup()
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", nil, fmt.Errorf("git clone %s failed: %s", url, msg)
	}
	return dir, cleanup, nil
}

// ValidateLocal checks that a local audit target exists and is a directory.
func ValidateLocal(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("repository path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("repository path %s is not a directory", path)
	}
	return nil
}
