// Package controller provides output adapters for displaying injection and
// scoring progress.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	m "solseed.dev/pkg/solseed/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeInject StartMode = iota
	ModeEval
	ModeScore
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	total int
}

// WithInjectMode sets the UI to injection mode.
func WithInjectMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeInject
	}
}

// WithEvalMode sets the UI to analyzer evaluation mode.
func WithEvalMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeEval
	}
}

// WithScoreMode sets the UI to scoring mode.
func WithScoreMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeScore
	}
}

// WithTotal tells the UI how many work items the run will process, so it
// can render overall progress.
func WithTotal(total int) StartOption {
	return func(c *StartConfig) {
		c.total = total
	}
}

// UI defines the interface for displaying run progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayConcurrencyInfo(ctx context.Context, threads int, items int)
	DisplayInjection(ctx context.Context, contractID string, bugType m.BugType, injected int)
	DisplaySkip(ctx context.Context, contractID string, bugType m.BugType, reason string)
	DisplayToolRun(ctx context.Context, run m.ToolRun)
	DisplayScoreCard(ctx context.Context, card m.ScoreCard) error
	DisplayRunSummary(ctx context.Context, runs []m.ToolRun)
}

// NewUI picks the interactive TUI on a terminal and the plain printer
// everywhere else (pipes, CI).
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
