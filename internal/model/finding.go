package model

import "fmt"

// LineRange is a 1-based inclusive span of source lines.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Distance returns the minimal line distance between two ranges;
// overlapping ranges have distance zero.
func (r LineRange) Distance(other LineRange) int {
	if r.End < other.Start {
		return other.Start - r.End
	}

	if other.End < r.Start {
		return r.Start - other.End
	}

	return 0
}

// Finding is one reported potential vulnerability from an external tool or
// LLM, normalized to a uniform shape. Never mutated after production.
type Finding struct {
	ContractID string  `json:"contract"`
	BugType    BugType `json:"bug_type"`
	Tool       string  `json:"tool"`

	// Lines is the reported location. Nil means the report carried no line
	// information at all: the finding is file-level and matches any
	// injection of the same bug type in the contract.
	Lines *LineRange `json:"lines,omitempty"`

	// Confidence is the tool's own confidence label where one exists
	// ("high", "medium", "low"); empty otherwise.
	Confidence string `json:"confidence,omitempty"`

	// Raw preserves the tool-specific payload for diagnostics.
	Raw string `json:"raw,omitempty"`
}

// WholeFile reports whether the finding is file-level.
func (f Finding) WholeFile() bool {
	return f.Lines == nil
}

// ToolStatus classifies the outcome of one external analysis invocation for
// a (tool, contract) pair. Timeouts and unavailability are recorded, never
// silently dropped, so a zero-findings report is distinguishable from a run
// that never happened.
type ToolStatus int

const (
	// ToolCompleted means the tool produced a report (possibly empty).
	ToolCompleted ToolStatus = iota
	// ToolTimeout means the invocation exceeded its deadline.
	ToolTimeout
	// ToolUnavailable means the tool could not be reached after retries.
	ToolUnavailable
)

func (s ToolStatus) String() string {
	switch s {
	case ToolCompleted:
		return "completed"
	case ToolTimeout:
		return "timeout"
	case ToolUnavailable:
		return "unavailable"
	}

	return "unknown"
}

// ParseToolStatus is the inverse of ToolStatus.String, used when reading a
// persisted run ledger back.
func ParseToolStatus(s string) (ToolStatus, error) {
	switch s {
	case "completed":
		return ToolCompleted, nil
	case "timeout":
		return ToolTimeout, nil
	case "unavailable":
		return ToolUnavailable, nil
	}

	return 0, fmt.Errorf("unknown tool status %q", s)
}

// ToolRun records the outcome of one analysis invocation.
type ToolRun struct {
	Tool       string
	ContractID string
	BugType    BugType
	Status     ToolStatus
	Detail     string
}
