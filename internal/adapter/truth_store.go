package adapter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	m "solseed.dev/pkg/solseed/internal/model"
)

// Injection approach recorded in bug logs; the benchmark only injects code
// snippets, but the column keeps logs self-describing.
const approachSnippetInjection = "code snippet injection"

// GroundTruthStore persists injection logs, the merged ground-truth table
// and per-tool invocation ledgers in a stable tabular form, so re-running
// the scorer without re-injecting reproduces identical verdicts.
type GroundTruthStore interface {
	// EncodeBugLog renders one contract's injection log as a BugLog CSV.
	EncodeBugLog(injections []m.Injection) ([]byte, error)

	// DecodeBugLog parses a BugLog CSV back into injections for a contract.
	DecodeBugLog(raw []byte, contractID string) ([]m.Injection, error)

	// SaveMerged writes the merged ground-truth table to path.
	SaveMerged(ctx context.Context, fs ContractFSAdapter, path m.Path, gt m.GroundTruth) error

	// LoadMerged reads a merged ground-truth table from path.
	LoadMerged(ctx context.Context, fs ContractFSAdapter, path m.Path) (m.GroundTruth, error)

	// SaveRuns writes one tool's invocation outcome ledger to path.
	SaveRuns(ctx context.Context, fs ContractFSAdapter, path m.Path, runs []m.ToolRun) error

	// LoadRuns reads an invocation outcome ledger from path.
	LoadRuns(ctx context.Context, fs ContractFSAdapter, path m.Path) ([]m.ToolRun, error)
}

// CSVTruthStore implements GroundTruthStore over encoding/csv.
//
// BugLog columns: seq,loc,length,bug type,approach - one file per mutated
// contract, rows in sequence order. Merged columns:
// bug_id,contract,line,length,bug_type,approach with bug_id monotonically
// increasing across the whole table.
type CSVTruthStore struct{}

// NewCSVTruthStore constructs a CSVTruthStore.
func NewCSVTruthStore() *CSVTruthStore {
	return &CSVTruthStore{}
}

var bugLogHeader = []string{"seq", "loc", "length", "bug type", "approach"}

// EncodeBugLog renders injections as a BugLog CSV in sequence order.
func (s *CSVTruthStore) EncodeBugLog(injections []m.Injection) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(bugLogHeader); err != nil {
		return nil, fmt.Errorf("write bug log header: %w", err)
	}

	sorted := make([]m.Injection, len(injections))
	copy(sorted, injections)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	for _, inj := range sorted {
		row := []string{
			strconv.Itoa(inj.Seq),
			strconv.Itoa(inj.StartLine),
			strconv.Itoa(inj.EndLine - inj.StartLine + 1),
			string(inj.BugType),
			approachSnippetInjection,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write bug log row: %w", err)
		}
	}

	w.Flush()

	return buf.Bytes(), w.Error()
}

// DecodeBugLog parses a BugLog CSV. Rows with an unparseable location are
// rejected: a bug log is ground truth, not tool output, so damage in it is
// fatal rather than skippable.
func (s *CSVTruthStore) DecodeBugLog(raw []byte, contractID string) ([]m.Injection, error) {
	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse bug log for %s: %w", contractID, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	col := columnIndex(rows[0])

	var out []m.Injection

	for i, row := range rows[1:] {
		seq, err := intField(row, col, "seq")
		if err != nil {
			return nil, fmt.Errorf("bug log %s row %d: %w", contractID, i+1, err)
		}

		loc, err := intField(row, col, "loc")
		if err != nil {
			return nil, fmt.Errorf("bug log %s row %d: %w", contractID, i+1, err)
		}

		length, err := intField(row, col, "length")
		if err != nil {
			return nil, fmt.Errorf("bug log %s row %d: %w", contractID, i+1, err)
		}

		bugType, ok := field(row, col, "bug type")
		if !ok {
			return nil, fmt.Errorf("bug log %s row %d: missing bug type", contractID, i+1)
		}

		out = append(out, m.Injection{
			ContractID: contractID,
			BugType:    m.BugType(bugType),
			Seq:        seq,
			StartLine:  loc,
			EndLine:    loc + length - 1,
		})
	}

	return out, nil
}

var mergedHeader = []string{"bug_id", "contract", "line", "length", "bug_type", "approach"}

// SaveMerged writes the merged table, contracts in lexical order and each
// contract's rows in sequence order.
func (s *CSVTruthStore) SaveMerged(ctx context.Context, fs ContractFSAdapter, path m.Path, gt m.GroundTruth) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(mergedHeader); err != nil {
		return fmt.Errorf("write merged header: %w", err)
	}

	contracts := make([]string, 0, len(gt))
	for id := range gt {
		contracts = append(contracts, id)
	}

	sort.Strings(contracts)

	bugID := 1

	for _, contractID := range contracts {
		for _, inj := range gt[contractID] {
			row := []string{
				strconv.Itoa(bugID),
				contractID,
				strconv.Itoa(inj.StartLine),
				strconv.Itoa(inj.EndLine - inj.StartLine + 1),
				string(inj.BugType),
				approachSnippetInjection,
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write merged row: %w", err)
			}

			bugID++
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return err
	}

	return fs.WriteFile(ctx, path, buf.Bytes(), 0o644)
}

// LoadMerged reads a merged table. The per-contract sequence numbers are
// recovered from the global bug_id ordering, which preserves them.
func (s *CSVTruthStore) LoadMerged(ctx context.Context, fs ContractFSAdapter, path m.Path) (m.GroundTruth, error) {
	raw, err := fs.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("ground truth %s is empty", path)
	}

	col := columnIndex(rows[0])
	gt := make(m.GroundTruth)
	seqPerContract := make(map[string]int)

	for i, row := range rows[1:] {
		contract, ok := field(row, col, "contract")
		if !ok || contract == "" {
			return nil, fmt.Errorf("ground truth row %d: missing contract", i+1)
		}

		line, err := intField(row, col, "line")
		if err != nil {
			return nil, fmt.Errorf("ground truth row %d: %w", i+1, err)
		}

		// Tables produced by older trials carry no length column; those
		// injections are single lines. A present but unparseable value is
		// damaged ground truth and stays fatal.
		length := 1
		if _, hasLength := col["length"]; hasLength {
			length, err = intField(row, col, "length")
			if err != nil {
				return nil, fmt.Errorf("ground truth row %d: %w", i+1, err)
			}
		}

		bugType, ok := field(row, col, "bug_type")
		if !ok || bugType == "" {
			return nil, fmt.Errorf("ground truth row %d: missing bug_type", i+1)
		}

		seqPerContract[contract]++

		gt[contract] = append(gt[contract], m.Injection{
			ContractID: contract,
			BugType:    m.BugType(bugType),
			Seq:        seqPerContract[contract],
			StartLine:  line,
			EndLine:    line + length - 1,
		})
	}

	return gt, nil
}

var runsHeader = []string{"tool", "contract", "bug_type", "status", "detail"}

// SaveRuns writes one tool's invocation ledger, rows sorted by contract so
// reruns produce identical files.
func (s *CSVTruthStore) SaveRuns(ctx context.Context, fs ContractFSAdapter, path m.Path, runs []m.ToolRun) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(runsHeader); err != nil {
		return fmt.Errorf("write run ledger header: %w", err)
	}

	sorted := make([]m.ToolRun, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ContractID < sorted[j].ContractID })

	for _, run := range sorted {
		row := []string{run.Tool, run.ContractID, string(run.BugType), run.Status.String(), run.Detail}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write run ledger row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return err
	}

	return fs.WriteFile(ctx, path, buf.Bytes(), 0o644)
}

// LoadRuns reads an invocation ledger back. An unknown status is fatal: the
// ledger decides which ground-truth pairs are scorable at all.
func (s *CSVTruthStore) LoadRuns(ctx context.Context, fs ContractFSAdapter, path m.Path) ([]m.ToolRun, error) {
	raw, err := fs.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse run ledger %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	col := columnIndex(rows[0])

	var out []m.ToolRun

	for i, row := range rows[1:] {
		tool, ok := field(row, col, "tool")
		if !ok || tool == "" {
			return nil, fmt.Errorf("run ledger %s row %d: missing tool", path, i+1)
		}

		contract, ok := field(row, col, "contract")
		if !ok || contract == "" {
			return nil, fmt.Errorf("run ledger %s row %d: missing contract", path, i+1)
		}

		statusRaw, ok := field(row, col, "status")
		if !ok {
			return nil, fmt.Errorf("run ledger %s row %d: missing status", path, i+1)
		}

		status, err := m.ParseToolStatus(statusRaw)
		if err != nil {
			return nil, fmt.Errorf("run ledger %s row %d: %w", path, i+1, err)
		}

		bugType, _ := field(row, col, "bug_type")
		detail, _ := field(row, col, "detail")

		out = append(out, m.ToolRun{
			Tool:       tool,
			ContractID: contract,
			BugType:    m.BugType(bugType),
			Status:     status,
			Detail:     detail,
		})
	}

	return out, nil
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	return col
}

func field(row []string, col map[string]int, name string) (string, bool) {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return "", false
	}

	return row[i], true
}

func intField(row []string, col map[string]int, name string) (int, error) {
	raw, ok := field(row, col, name)
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}

	return v, nil
}
