package domain

import "errors"

// Recoverable conditions: the workflow skips the affected
// (contract, bug type) or report entry and continues.
var (
	// ErrNoInjectionPoint means a contract offers no legal site for a bug type.
	ErrNoInjectionPoint = errors.New("no injection point")

	// ErrInvalidInjection means the compiler rejected the mutated text; the
	// mutation was rolled back and no injection was recorded.
	ErrInvalidInjection = errors.New("invalid injection")
)

// Fatal invariant violations: the pipeline is internally inconsistent and
// the run must abort rather than produce wrong metrics.
var (
	// ErrDuplicateSequence means two injections for one contract claim the
	// same sequence number.
	ErrDuplicateSequence = errors.New("duplicate injection sequence")

	// ErrUnknownContract means ground truth references a contract id absent
	// from the dataset under scoring.
	ErrUnknownContract = errors.New("ground truth references unknown contract")

	// ErrUnknownBugType means a finding or truth entry carries a bug type
	// the catalog does not declare.
	ErrUnknownBugType = errors.New("undefined bug type")
)
