package adapter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CompilerAdapter validates syntactic legality of a candidate mutation.
// The compiler is a black box: success or a parse error with detail, no
// other coupling.
type CompilerAdapter interface {
	Validate(ctx context.Context, source string) error
}

// SolcAdapter shells out to the Solidity compiler, stopping after the
// parsing stage. The source is fed over stdin so no temp file is needed.
type SolcAdapter struct {
	binary  string
	timeout time.Duration
}

// NewSolcAdapter constructs a SolcAdapter. An empty binary defaults to
// "solc" on PATH.
func NewSolcAdapter(binary string, timeout time.Duration) *SolcAdapter {
	if binary == "" {
		binary = "solc"
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &SolcAdapter{binary: binary, timeout: timeout}
}

// Validate runs the compiler's parse stage over the source text.
func (a *SolcAdapter) Validate(ctx context.Context, source string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.binary, "--stop-after", "parsing", "-")
	cmd.Stdin = strings.NewReader(source)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}

		return fmt.Errorf("solc parse: %s", detail)
	}

	return nil
}
