package model

// Path represents a file system path.
type Path string

// Contract is a named Solidity source file taking part in an injection run.
// The text is mutated only through an injection session, which owns
// exclusive write access for the duration of the run.
type Contract struct {
	// ID is the contract's identity in ground truth and reports,
	// e.g. "buggy_3.sol". Strictly contract-local line numbers hang off it.
	ID string

	// Source is the path the original text was read from.
	Source Path

	// Text is the current source text. Before any injection it equals the
	// on-disk content of Source.
	Text string
}
