// Package model defines the data structures for bug injection and scoring.
package model

import "fmt"

// BugType identifies a class of injectable vulnerability.
type BugType string

// Bug types covered by the built-in catalog. The catalog file may declare
// additional types; these constants exist for the common set so callers
// don't scatter string literals.
const (
	BugReentrancy          BugType = "Re-entrancy"
	BugTimestampDependency BugType = "Timestamp-Dependency"
	BugUncheckedSend       BugType = "Unchecked-Send"
	BugUnhandledExceptions BugType = "Unhandled-Exceptions"
	BugTOD                 BugType = "TOD"
	BugOverflowUnderflow   BugType = "Overflow-Underflow"
	BugTxOrigin            BugType = "tx.origin"
)

// KnownBugTypes lists the built-in bug types in their canonical injection order.
func KnownBugTypes() []BugType {
	return []BugType{
		BugReentrancy,
		BugTimestampDependency,
		BugUncheckedSend,
		BugUnhandledExceptions,
		BugTOD,
		BugOverflowUnderflow,
		BugTxOrigin,
	}
}

// ParseBugType validates a bug type label against the known set.
func ParseBugType(s string) (BugType, error) {
	for _, bt := range KnownBugTypes() {
		if string(bt) == s {
			return bt, nil
		}
	}

	return "", fmt.Errorf("unknown bug type %q", s)
}

// SitePattern names the structural pattern a snippet requires at its
// insertion site.
type SitePattern string

const (
	// SiteContractBody inserts a self-contained declaration (usually a whole
	// vulnerable function) directly inside a contract body.
	SiteContractBody SitePattern = "contract-body"
	// SiteAfterExternalCall inserts a statement on the line following an
	// external call (.call/.send/.transfer/.delegatecall).
	SiteAfterExternalCall SitePattern = "after-external-call"
	// SiteAfterSend inserts a statement after a .send or .transfer.
	SiteAfterSend SitePattern = "after-send"
	// SiteFunctionStart inserts a statement as the first line of a function body.
	SiteFunctionStart SitePattern = "function-start"
	// SiteAfterLoopHeader inserts a statement as the first line of a loop body.
	SiteAfterLoopHeader SitePattern = "after-loop-header"
)

// Snippet is an injectable code fragment owned by the pattern catalog.
// Read-only after load.
type Snippet struct {
	ID      string      `yaml:"id"`
	BugType BugType     `yaml:"-"`
	Pattern SitePattern `yaml:"pattern"`
	Code    string      `yaml:"code"`
}

// LineCount reports how many source lines the snippet occupies once
// inserted. Snippets are normalized to end with a newline at catalog load.
func (s Snippet) LineCount() int {
	if s.Code == "" {
		return 0
	}

	n := 0
	for _, r := range s.Code {
		if r == '\n' {
			n++
		}
	}

	return n
}
