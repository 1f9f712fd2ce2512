package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	m "solseed.dev/pkg/solseed/internal/model"
)

// llmResult is the per-contract object the model is prompted to produce.
type llmResult struct {
	Contract     string       `json:"contract"`
	ContractName string       `json:"contract_name"`
	BugType      string       `json:"bug_type"`
	Findings     []llmFinding `json:"findings"`
}

type llmFinding struct {
	Line        flexibleInt `json:"line"`
	Confidence  string      `json:"confidence"`
	Description string      `json:"description"`
}

// flexibleInt accepts 12, "12", and "line 12" style values.
type flexibleInt struct {
	Value int
	OK    bool
}

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.OK = n, true

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}

	for _, field := range strings.Fields(s) {
		if n, err := strconv.Atoi(strings.Trim(field, ":,.")); err == nil {
			f.Value, f.OK = n, true

			return nil
		}
	}

	return nil
}

var confidenceRank = map[string]int{
	"low":    1,
	"medium": 2,
	"high":   3,
}

func normalizeLLM(rep Report) ([]m.Finding, Diagnostics, error) {
	obj, ok := extractJSON(rep.Raw)
	if !ok {
		return nil, Diagnostics{Malformed: 1}, fmt.Errorf("llm report for %s: no JSON object found", rep.ContractID)
	}

	var result llmResult
	if err := json.Unmarshal(obj, &result); err != nil {
		return nil, Diagnostics{Malformed: 1}, fmt.Errorf("llm report for %s: %w", rep.ContractID, err)
	}

	bt := rep.BugType
	if bt == "" {
		if parsed, err := m.ParseBugType(result.BugType); err == nil {
			bt = parsed
		}
	}

	var (
		diag Diagnostics
		best = make(map[int]llmFinding)
		seen []int
	)

	for _, f := range result.Findings {
		if !f.Line.OK || f.Line.Value <= 0 {
			diag.Malformed++

			continue
		}

		confidence := strings.ToLower(strings.TrimSpace(f.Confidence))

		prev, dup := best[f.Line.Value]
		if !dup {
			seen = append(seen, f.Line.Value)
			best[f.Line.Value] = llmFinding{Line: f.Line, Confidence: confidence, Description: f.Description}

			continue
		}

		// Duplicate line reports collapse to the highest confidence.
		if confidenceRank[confidence] > confidenceRank[prev.Confidence] {
			best[f.Line.Value] = llmFinding{Line: f.Line, Confidence: confidence, Description: f.Description}
		}
	}

	out := make([]m.Finding, 0, len(seen))

	for _, line := range seen {
		f := best[line]

		out = append(out, m.Finding{
			ContractID: rep.ContractID,
			BugType:    bt,
			Tool:       rep.Tool,
			Lines:      singleLine(line),
			Confidence: f.Confidence,
			Raw:        f.Description,
		})
	}

	return out, diag, nil
}
