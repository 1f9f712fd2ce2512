package domain

import (
	m "solseed.dev/pkg/solseed/internal/model"
)

// Match performs greedy bipartite matching for one (contract, bug type)
// partition: each finding satisfies at most one injection and vice versa.
//
// Findings are taken in input order; each claims the first still-unmatched
// injection (sequence order) whose line range lies within the tolerance
// window of the finding's range. Matching is range-against-range because an
// injected snippet may span several lines. A file-level finding (no line
// information) matches any unmatched injection of the bug type - a
// deliberate leniency for tools that report per file; see the scoring docs.
//
// Inputs are read-only; Match is safe to run concurrently across partitions.
func Match(injections []m.Injection, findings []m.Finding, tolerance int) []m.MatchResult {
	matched := make([]bool, len(injections))
	results := make([]m.MatchResult, 0, len(injections)+len(findings))

	for fi := range findings {
		finding := findings[fi]
		hit := -1

		for ii := range injections {
			if matched[ii] {
				continue
			}

			if finding.WholeFile() || finding.Lines.Distance(injections[ii].Lines()) <= tolerance {
				hit = ii
				break
			}
		}

		if hit < 0 {
			results = append(results, m.MatchResult{Verdict: m.FalsePositive, Finding: &findings[fi]})
			continue
		}

		matched[hit] = true
		results = append(results, m.MatchResult{
			Verdict:   m.TruePositive,
			Injection: &injections[hit],
			Finding:   &findings[fi],
		})
	}

	for ii := range injections {
		if !matched[ii] {
			results = append(results, m.MatchResult{Verdict: m.FalseNegative, Injection: &injections[ii]})
		}
	}

	return results
}
