package model

// Injection records one successful snippet insertion. Created exactly once
// per insertion and immutable afterwards, except that the owning session
// shifts StartLine/EndLine when a later insertion lands above it.
type Injection struct {
	ContractID string  `json:"contract"`
	BugType    BugType `json:"bug_type"`
	SnippetID  string  `json:"snippet_id"`

	// Seq is the per-contract sequence number, allocated monotonically by
	// the injection session. It is the stable ground-truth key: two
	// injections may share a line, never a sequence number.
	Seq int `json:"seq"`

	// StartLine and EndLine delimit the snippet in the final mutated text,
	// 1-based and inclusive.
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Lines returns the line span of the injection.
func (i Injection) Lines() LineRange {
	return LineRange{Start: i.StartLine, End: i.EndLine}
}

// GroundTruth is the merged, read-only view over all injection logs:
// contract id -> injections in sequence order.
type GroundTruth map[string][]Injection

// ForContractAndType filters one contract's injections by bug type,
// preserving sequence order.
func (gt GroundTruth) ForContractAndType(contractID string, bt BugType) []Injection {
	var out []Injection

	for _, inj := range gt[contractID] {
		if inj.BugType == bt {
			out = append(out, inj)
		}
	}

	return out
}

// BugTypes returns the set of bug types present anywhere in the table.
func (gt GroundTruth) BugTypes() map[BugType]bool {
	set := make(map[BugType]bool)

	for _, injections := range gt {
		for _, inj := range injections {
			set[inj.BugType] = true
		}
	}

	return set
}

// Count reports the total number of injections in the table.
func (gt GroundTruth) Count() int {
	n := 0
	for _, injections := range gt {
		n += len(injections)
	}

	return n
}
