package tools

import (
	"encoding/json"
	"fmt"

	m "solseed.dev/pkg/solseed/internal/model"
)

// Mythril JSON issues, keyed by SWC registry id.
type mythrilIssue struct {
	SwcID       string `json:"swc-id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
	LineNo      int    `json:"lineno"`
}

type mythrilOut struct {
	Issues []mythrilIssue `json:"issues"`
}

// SWC ids mapped onto benchmark bug types.
var mythrilSWC = map[string]m.BugType{
	"101": m.BugOverflowUnderflow,
	"104": m.BugUnhandledExceptions,
	"105": m.BugUncheckedSend,
	"107": m.BugReentrancy,
	"114": m.BugTOD,
	"115": m.BugTxOrigin,
	"116": m.BugTimestampDependency,
}

func normalizeMythril(rep Report) ([]m.Finding, Diagnostics, error) {
	var o mythrilOut
	if err := json.Unmarshal(rep.Raw, &o); err != nil {
		return nil, Diagnostics{}, fmt.Errorf("mythril report for %s: %w", rep.ContractID, err)
	}

	var (
		out  []m.Finding
		diag Diagnostics
	)

	for _, issue := range o.Issues {
		bt, ok := mythrilSWC[normalizeSWC(issue.SwcID)]
		if !ok {
			diag.Ignored++
			continue
		}

		out = append(out, m.Finding{
			ContractID: contractFromPath(issue.Filename, rep.ContractID),
			BugType:    bt,
			Tool:       rep.Tool,
			Lines:      singleLine(issue.LineNo),
			Raw:        issue.Title,
		})
	}

	return out, diag, nil
}

// normalizeSWC strips the "SWC-" prefix mythril sometimes includes.
func normalizeSWC(id string) string {
	if len(id) > 4 && (id[:4] == "SWC-" || id[:4] == "swc-") {
		return id[4:]
	}

	return id
}
