package model

// Verdict classifies a match result.
type Verdict int

const (
	// TruePositive pairs an injection with a finding inside the tolerance window.
	TruePositive Verdict = iota
	// FalseNegative is an injection no finding matched.
	FalseNegative
	// FalsePositive is a finding no injection matched.
	FalsePositive
)

func (v Verdict) String() string {
	switch v {
	case TruePositive:
		return "TP"
	case FalseNegative:
		return "FN"
	case FalsePositive:
		return "FP"
	}

	return "unknown"
}

// MatchResult is produced once per injection and once per unmatched finding.
// Exactly one of Injection/Finding is nil for FN/FP verdicts.
type MatchResult struct {
	Verdict   Verdict
	Injection *Injection
	Finding   *Finding
}

// Ratio is a score that distinguishes "undefined" (zero denominator) from a
// true 0.0. Value is meaningless when Defined is false.
type Ratio struct {
	Value   float64
	Defined bool
}

// Metrics aggregates match counts for one scoring partition.
type Metrics struct {
	TP int
	FP int
	FN int

	Precision Ratio
	Recall    Ratio
	F1        Ratio
}

// ScoreCard holds the scored run for one tool: per-bug-type metrics, the
// overall roll-up, and the raw match results behind them.
type ScoreCard struct {
	Tool      string
	PerType   map[BugType]Metrics
	Overall   Metrics
	Results   []MatchResult
	Malformed int // report entries skipped as unparseable
	Runs      []ToolRun
}
