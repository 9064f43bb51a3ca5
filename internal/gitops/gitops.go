// Package gitops shells out to git so engagement workspaces stay
// version-controlled: imports, adjustments, and sign-offs can each be
// committed as they happen.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	_, err := run(dir, "init")
	return err
}

// CommitAll stages everything and commits. Returns the short commit hash.
func CommitAll(dir, message, authorName, authorEmail string) (string, error) {
	if _, err := run(dir, "add", "-A"); err != nil {
		return "", err
	}

	author := fmt.Sprintf("%s <%s>", authorName, authorEmail)
	if _, err := run(dir, "commit", "-m", message, "--author", author); err != nil {
		return "", err
	}

	return run(dir, "rev-parse", "--short", "HEAD")
}

// HasChanges reports whether the working tree has uncommitted changes.
func HasChanges(dir string) bool {
	out, err := run(dir, "status", "--porcelain")
	return err == nil && out != ""
}

// IsRepo reports whether dir is a git repository root.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
