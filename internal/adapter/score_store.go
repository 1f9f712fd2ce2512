package adapter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	m "solseed.dev/pkg/solseed/internal/model"
)

// ScoreStore writes scoring output: the per-bug-type metrics CSV and the
// TP/FP/FN detail CSVs, prefixed per tool.
type ScoreStore interface {
	SaveScoreCard(ctx context.Context, fs ContractFSAdapter, dir m.Path, card m.ScoreCard) error
}

// CSVScoreStore renders score cards as CSV files:
// <tool>_metrics_by_bug_type.csv, <tool>_true_positives.csv,
// <tool>_false_positives.csv, <tool>_false_negatives.csv.
type CSVScoreStore struct{}

// NewCSVScoreStore constructs a CSVScoreStore.
func NewCSVScoreStore() *CSVScoreStore {
	return &CSVScoreStore{}
}

// undefinedScore marks a zero-denominator ratio in the CSV output. It is
// deliberately not "0.0": an undefined score and a true zero mean different
// things when comparing tools.
const undefinedScore = "undefined"

// SaveScoreCard writes all four CSVs for one tool's scored run.
func (s *CSVScoreStore) SaveScoreCard(ctx context.Context, fs ContractFSAdapter, dir m.Path, card m.ScoreCard) error {
	metrics, err := renderMetricsCSV(card)
	if err != nil {
		return err
	}

	files := map[string][]byte{
		card.Tool + "_metrics_by_bug_type.csv": metrics,
	}

	for suffix, verdict := range map[string]m.Verdict{
		"_true_positives.csv":  m.TruePositive,
		"_false_positives.csv": m.FalsePositive,
		"_false_negatives.csv": m.FalseNegative,
	} {
		detail, err := renderDetailCSV(card.Results, verdict)
		if err != nil {
			return err
		}

		files[card.Tool+suffix] = detail
	}

	for name, content := range files {
		path := m.Path(filepath.Join(string(dir), name))
		if err := fs.WriteFile(ctx, path, content, 0o644); err != nil {
			return err
		}
	}

	return nil
}

func renderMetricsCSV(card m.ScoreCard) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Bug_Type", "TP", "FP", "TN", "FN", "Precision", "Recall", "F1_Score"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write metrics header: %w", err)
	}

	types := make([]m.BugType, 0, len(card.PerType))
	for bt := range card.PerType {
		types = append(types, bt)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, bt := range types {
		if err := w.Write(metricsRow(string(bt), card.PerType[bt])); err != nil {
			return nil, fmt.Errorf("write metrics row: %w", err)
		}
	}

	if err := w.Write(metricsRow("Overall", card.Overall)); err != nil {
		return nil, fmt.Errorf("write overall row: %w", err)
	}

	w.Flush()

	return buf.Bytes(), w.Error()
}

func metricsRow(label string, metrics m.Metrics) []string {
	return []string{
		label,
		strconv.Itoa(metrics.TP),
		strconv.Itoa(metrics.FP),
		"0", // true negatives are not applicable to this dataset
		strconv.Itoa(metrics.FN),
		formatRatio(metrics.Precision),
		formatRatio(metrics.Recall),
		formatRatio(metrics.F1),
	}
}

func formatRatio(r m.Ratio) string {
	if !r.Defined {
		return undefinedScore
	}

	return strconv.FormatFloat(r.Value, 'f', 4, 64)
}

func renderDetailCSV(results []m.MatchResult, verdict m.Verdict) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	var header []string
	if verdict == m.TruePositive {
		header = []string{"contract", "bug_type", "tool_line", "truth_line", "diff"}
	} else {
		header = []string{"contract", "bug_type", "line"}
	}

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write detail header: %w", err)
	}

	for _, r := range results {
		if r.Verdict != verdict {
			continue
		}

		if err := w.Write(detailRow(r)); err != nil {
			return nil, fmt.Errorf("write detail row: %w", err)
		}
	}

	w.Flush()

	return buf.Bytes(), w.Error()
}

func detailRow(r m.MatchResult) []string {
	switch r.Verdict {
	case m.TruePositive:
		toolLine := 0
		if r.Finding.Lines != nil {
			toolLine = r.Finding.Lines.Start
		}

		return []string{
			r.Injection.ContractID,
			string(r.Injection.BugType),
			strconv.Itoa(toolLine),
			strconv.Itoa(r.Injection.StartLine),
			strconv.Itoa(toolLine - r.Injection.StartLine),
		}
	case m.FalsePositive:
		line := 0
		if r.Finding.Lines != nil {
			line = r.Finding.Lines.Start
		}

		return []string{r.Finding.ContractID, string(r.Finding.BugType), strconv.Itoa(line)}
	case m.FalseNegative:
		return []string{r.Injection.ContractID, string(r.Injection.BugType), strconv.Itoa(r.Injection.StartLine)}
	}

	return nil
}
