package domain

import (
	"fmt"
	"sort"

	m "solseed.dev/pkg/solseed/internal/model"
)

// BuildGroundTruth merges per-contract injection logs into one table.
//
// The merge is a pure, order-independent replay: each record already carries
// its final line numbers and sequence number, so aggregation never re-scans
// mutated source (overlapping injections make a re-scan ambiguous). Logs may
// arrive in any order; the result sorts each contract's injections by
// sequence number.
func BuildGroundTruth(logs ...[]m.Injection) (m.GroundTruth, error) {
	gt := make(m.GroundTruth)

	for _, log := range logs {
		for _, inj := range log {
			if inj.ContractID == "" {
				return nil, fmt.Errorf("injection with empty contract id (seq %d)", inj.Seq)
			}

			gt[inj.ContractID] = append(gt[inj.ContractID], inj)
		}
	}

	for contractID, injections := range gt {
		sort.Slice(injections, func(i, j int) bool { return injections[i].Seq < injections[j].Seq })

		for i := 1; i < len(injections); i++ {
			if injections[i].Seq == injections[i-1].Seq {
				return nil, fmt.Errorf("%w: contract %s seq %d",
					ErrDuplicateSequence, contractID, injections[i].Seq)
			}
		}

		gt[contractID] = injections
	}

	return gt, nil
}

// ValidateAgainstContracts aborts scoring when the table references a
// contract id the dataset does not contain - that means the pipeline is
// internally inconsistent, not that a tool misbehaved.
func ValidateAgainstContracts(gt m.GroundTruth, contracts map[string]bool) error {
	ids := make([]string, 0, len(gt))
	for id := range gt {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		if !contracts[id] {
			return fmt.Errorf("%w: %s", ErrUnknownContract, id)
		}
	}

	return nil
}
