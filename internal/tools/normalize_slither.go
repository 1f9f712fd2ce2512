package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	m "solseed.dev/pkg/solseed/internal/model"
)

// Slither JSON (the subset the benchmark consumes).
type slitherLocation struct {
	Filename string `json:"filename"`
	Lines    []int  `json:"lines"`
}

type slitherDetection struct {
	Check       string `json:"check"`
	Confidence  string `json:"confidence"`
	Description string `json:"description"`
	Elements    []struct {
		SourceMapping slitherLocation `json:"source_mapping"`
	} `json:"elements"`
}

type slitherOut struct {
	Results struct {
		Detectors []slitherDetection `json:"detectors"`
	} `json:"results"`
}

// Slither detector ids mapped onto benchmark bug types. Detectors outside
// this table concern vulnerability classes the benchmark does not inject
// and are counted as ignored.
var slitherChecks = map[string]m.BugType{
	"reentrancy-eth":         m.BugReentrancy,
	"reentrancy-no-eth":      m.BugReentrancy,
	"reentrancy-benign":      m.BugReentrancy,
	"timestamp":              m.BugTimestampDependency,
	"unchecked-send":         m.BugUncheckedSend,
	"unchecked-lowlevel":     m.BugUnhandledExceptions,
	"low-level-calls":        m.BugUnhandledExceptions,
	"tx-origin":              m.BugTxOrigin,
	"divide-before-multiply": m.BugOverflowUnderflow,
	"tautology":              m.BugOverflowUnderflow,
}

func normalizeSlither(rep Report) ([]m.Finding, Diagnostics, error) {
	var o slitherOut
	if err := json.Unmarshal(rep.Raw, &o); err != nil {
		return nil, Diagnostics{}, fmt.Errorf("slither report for %s: %w", rep.ContractID, err)
	}

	var (
		out  []m.Finding
		diag Diagnostics
	)

	for _, d := range o.Results.Detectors {
		bt, ok := slitherChecks[d.Check]
		if !ok {
			diag.Ignored++
			continue
		}

		finding := m.Finding{
			ContractID: rep.ContractID,
			BugType:    bt,
			Tool:       rep.Tool,
			Confidence: strings.ToLower(d.Confidence),
			Raw:        d.Description,
		}

		if len(d.Elements) > 0 {
			loc := d.Elements[0].SourceMapping
			finding.ContractID = contractFromPath(loc.Filename, rep.ContractID)
			finding.Lines = linesToRange(loc.Lines)
		}

		if finding.ContractID == "" {
			diag.Malformed++
			continue
		}

		out = append(out, finding)
	}

	return out, diag, nil
}

// linesToRange collapses slither's line list into a span; an empty list
// leaves the finding file-level.
func linesToRange(lines []int) *m.LineRange {
	if len(lines) == 0 {
		return nil
	}

	r := &m.LineRange{Start: lines[0], End: lines[0]}

	for _, l := range lines[1:] {
		if l < r.Start {
			r.Start = l
		}

		if l > r.End {
			r.End = l
		}
	}

	return r
}
