package tools

import (
	"encoding/json"
	"fmt"

	m "solseed.dev/pkg/solseed/internal/model"
)

// Securify emits one JSON object keyed by contract, each listing pattern
// results with zero-based violation lines.
type securifyReport map[string]struct {
	Results map[string]struct {
		Violations []int `json:"violations"`
		Warnings   []int `json:"warnings"`
	} `json:"results"`
}

var securifyPatterns = map[string]m.BugType{
	"DAO":                   m.BugReentrancy,
	"DAOConstantGas":        m.BugReentrancy,
	"TODAmount":             m.BugTOD,
	"TODReceiver":           m.BugTOD,
	"TODTransfer":           m.BugTOD,
	"UnhandledException":    m.BugUnhandledExceptions,
	"UnrestrictedEtherFlow": m.BugUncheckedSend,
	"UnrestrictedWrite":     m.BugTxOrigin,
}

func normalizeSecurify(rep Report) ([]m.Finding, Diagnostics, error) {
	var parsed securifyReport

	if err := json.Unmarshal(rep.Raw, &parsed); err != nil {
		return nil, Diagnostics{Malformed: 1}, fmt.Errorf("securify report: %w", err)
	}

	var (
		out  []m.Finding
		diag Diagnostics
	)

	for _, contract := range parsed {
		for pattern, result := range contract.Results {
			bt, ok := securifyPatterns[pattern]
			if !ok {
				diag.Ignored++

				continue
			}

			lines := make([]int, 0, len(result.Violations)+len(result.Warnings))
			lines = append(lines, result.Violations...)
			lines = append(lines, result.Warnings...)

			for _, line := range lines {
				// Securify lines are zero based.
				out = append(out, m.Finding{
					ContractID: rep.ContractID,
					BugType:    bt,
					Tool:       rep.Tool,
					Lines:      singleLine(line + 1),
					Raw:        pattern,
				})
			}
		}
	}

	return out, diag, nil
}
