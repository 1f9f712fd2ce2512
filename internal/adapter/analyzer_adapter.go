package adapter

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// AnalyzerResult carries one external tool invocation's raw output.
type AnalyzerResult struct {
	Tool     string
	Raw      []byte
	Err      error
	Duration time.Duration
	TimedOut bool
}

// AnalyzerRunner executes external static analyzers against a contract
// file. Each invocation is independent and idempotent; the deadline comes
// from the caller's context.
type AnalyzerRunner interface {
	Run(ctx context.Context, tool string, args ...string) AnalyzerResult
}

// LocalAnalyzerRunner runs tools as subprocesses via os/exec.
type LocalAnalyzerRunner struct{}

// NewLocalAnalyzerRunner constructs a LocalAnalyzerRunner.
func NewLocalAnalyzerRunner() *LocalAnalyzerRunner {
	return &LocalAnalyzerRunner{}
}

// Run executes the tool and captures stdout. Stderr is discarded: the
// analyzers this benchmark drives write their reports to stdout and their
// progress chatter to stderr. A context deadline marks the result as timed
// out so a partial report is never mistaken for a complete one.
func (r *LocalAnalyzerRunner) Run(ctx context.Context, tool string, args ...string) AnalyzerResult {
	start := time.Now()

	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	timedOut := ctx.Err() == context.DeadlineExceeded

	raw := stdout.Bytes()
	if timedOut {
		raw = nil
	}

	return AnalyzerResult{
		Tool:     tool,
		Raw:      raw,
		Err:      err,
		Duration: time.Since(start),
		TimedOut: timedOut,
	}
}
