// Package issues files refactoring requests on GitHub through the gh CLI.
package issues

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/blackwell-systems/refactorwatch/internal/planner"
)

// ErrRepoRequired is returned when no target repository was given.
var ErrRepoRequired = errors.New("repository is required (owner/name)")

// Creator files an issue and returns its URL.
type Creator interface {
	CreateIssue(ctx context.Context, repo, title, body string) (string, error)
}

// CommandRunner builds the command to execute. Tests substitute it to avoid
// running the real gh binary.
type CommandRunner func(ctx context.Context, name string, args ...string) *exec.Cmd

// GHCreator creates issues with `gh issue create`.
type GHCreator struct {
	command string
	run     CommandRunner
}

// NewGHCreator returns a creator that invokes the given gh executable
// ("gh" when empty).
func NewGHCreator(command string) *GHCreator {
	if command == "" {
		command = "gh"
	}
	return &GHCreator{command: command, run: exec.CommandContext}
}

// WithRunner replaces the command runner.
func (g *GHCreator) WithRunner(run CommandRunner) *GHCreator {
	g.run = run
	return g
}

// CreateIssue implements Creator. Any non-zero exit is an error; the call
// is never retried.
func (g *GHCreator) CreateIssue(ctx context.Context, repo, title, body string) (string, error) {
	if repo == "" {
		return "", ErrRepoRequired
	}

	cmd := g.run(ctx, g.command, "issue", "create",
		"--repo", repo,
		"--title", title,
		"--body", body,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("gh issue create: %w: %s", err, msg)
		}
		return "", fmt.Errorf("gh issue create: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Title returns the issue title for a plan.
func Title(p planner.Plan) string {
	return "Refactor: " + p.File
}

// Body returns the issue body for a plan. It mentions @claude so the
// assistant picks the issue up.
func Body(p planner.Plan) string {
	return fmt.Sprintf("@claude Please refactor this file.\n\nLines: %d", p.Lines)
}
