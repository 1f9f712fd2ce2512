package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"solseed.dev/pkg/solseed/internal/adapter"
	"solseed.dev/pkg/solseed/internal/catalog"
	"solseed.dev/pkg/solseed/internal/controller"
	m "solseed.dev/pkg/solseed/internal/model"
	"solseed.dev/pkg/solseed/internal/tools"
	pkg "solseed.dev/pkg/solseed/pkg"
)

// InjectArgs configures an injection run.
type InjectArgs struct {
	ContractsDir m.Path
	OutputDir    m.Path
	BugTypes     []m.BugType // empty means every catalog bug type
	PerContract  int         // injections per (contract, bug type), min 1
	Threads      int
	Validate     bool // compile-check every mutation, roll back rejects
}

// InjectSummary reports what an injection run produced.
type InjectSummary struct {
	Contracts int // source contracts seen
	Mutated   int // (contract, bug type) outputs written
	Injected  int // injections recorded in ground truth
	Skipped   int // (contract, bug type) pairs with no usable site
}

// EvalArgs configures an analyzer evaluation run over a mutated corpus.
type EvalArgs struct {
	BuggyDir    m.Path
	ReportsDir  m.Path
	Tools       []string // static analyzer binaries to drive
	LLM         bool     // also query the configured LLM detector
	Threads     int
	ToolTimeout time.Duration
}

// ScoreArgs configures scoring of collected reports against ground truth.
type ScoreArgs struct {
	TruthCSV   m.Path
	ReportsDir m.Path
	Tools      []string
	Tolerance  int
	OutputDir  m.Path
}

// MergeArgs configures merging per-contract bug logs into one table.
type MergeArgs struct {
	BuggyDir m.Path
	Output   m.Path
}

// Workflow is the use-case layer: each method is one CLI operation.
type Workflow interface {
	Inject(ctx context.Context, args InjectArgs) (*InjectSummary, error)
	Eval(ctx context.Context, args EvalArgs) ([]m.ToolRun, error)
	Score(ctx context.Context, args ScoreArgs) ([]m.ScoreCard, error)
	Merge(ctx context.Context, args MergeArgs) (m.GroundTruth, error)
}

type workflow struct {
	adapter.ContractFSAdapter
	adapter.GroundTruthStore
	adapter.ScoreStore
	adapter.AnalyzerRunner
	adapter.LLMAdapter
	controller.UI

	catalog   *catalog.Catalog
	locator   *Locator
	validator Validator
}

// NewWorkflow creates a Workflow instance with the provided dependencies.
// validator may be nil to disable compile validation; llm may be nil when
// no inference endpoint is configured.
func NewWorkflow(
	fsAdapter adapter.ContractFSAdapter,
	truthStore adapter.GroundTruthStore,
	scoreStore adapter.ScoreStore,
	runner adapter.AnalyzerRunner,
	llm adapter.LLMAdapter,
	ui controller.UI,
	cat *catalog.Catalog,
	validator Validator,
) Workflow {
	return &workflow{
		ContractFSAdapter: fsAdapter,
		GroundTruthStore:  truthStore,
		ScoreStore:        scoreStore,
		AnalyzerRunner:    runner,
		LLMAdapter:        llm,
		UI:                ui,
		catalog:           cat,
		locator:           NewLocator(cat),
		validator:         validator,
	}
}

// Inject mutates every contract under ContractsDir once per bug type,
// writing buggy sources, per-contract bug logs, and the merged ground-truth
// table. Pairs with no usable injection site are skipped, never failed.
func (w *workflow) Inject(ctx context.Context, args InjectArgs) (*InjectSummary, error) {
	contracts, err := w.ListFiles(ctx, args.ContractsDir, ".sol")
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	if len(contracts) == 0 {
		return nil, fmt.Errorf("no .sol contracts under %s", args.ContractsDir)
	}

	bugTypes := args.BugTypes
	if len(bugTypes) == 0 {
		bugTypes = w.catalog.BugTypes()
	}

	perContract := args.PerContract
	if perContract < 1 {
		perContract = 1
	}

	threads := normalizeThreads(args.Threads)
	total := len(contracts) * len(bugTypes)

	if err := w.Start(ctx, controller.WithInjectMode(), controller.WithTotal(total)); err != nil {
		return nil, fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	w.DisplayConcurrencyInfo(ctx, threads, total)

	journal, err := pkg.NewJournal[m.Injection](filepath.Join(string(args.OutputDir), "injections.gob"))
	if err != nil {
		return nil, fmt.Errorf("open injection journal: %w", err)
	}

	defer func() {
		if err := journal.Close(); err != nil {
			slog.Error("failed to close injection journal", "error", err)
		}
	}()

	summary := &InjectSummary{Contracts: len(contracts)}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	var mu sync.Mutex

	for _, contractPath := range contracts {
		for _, bt := range bugTypes {
			currentPath := contractPath
			currentType := bt

			group.Go(func() error {
				injected, err := w.injectOne(groupCtx, args, currentPath, currentType, perContract, journal)
				if err != nil {
					return err
				}

				mu.Lock()
				if injected == 0 {
					summary.Skipped++
				} else {
					summary.Mutated++
				}
				mu.Unlock()

				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	gt, err := w.replayGroundTruth(journal)
	if err != nil {
		return nil, err
	}

	mergedPath := m.Path(filepath.Join(string(args.OutputDir), "merged_bug_logs.csv"))
	if err := w.SaveMerged(ctx, w.ContractFSAdapter, mergedPath, gt); err != nil {
		return nil, fmt.Errorf("save merged ground truth: %w", err)
	}

	summary.Injected = gt.Count()

	slog.Info("injection run finished",
		"contracts", summary.Contracts,
		"mutated", summary.Mutated,
		"injected", summary.Injected,
		"skipped", summary.Skipped)

	return summary, nil
}

// injectOne produces one mutated copy of a contract for one bug type and
// returns how many injections were committed. Zero means the pair was
// skipped; nothing is written in that case.
func (w *workflow) injectOne(
	ctx context.Context,
	args InjectArgs,
	contractPath m.Path,
	bt m.BugType,
	perContract int,
	journal pkg.Journal[m.Injection],
) (int, error) {
	raw, err := w.ReadFile(ctx, contractPath)
	if err != nil {
		return 0, fmt.Errorf("read contract %s: %w", contractPath, err)
	}

	contractID := mutatedContractID(contractPath, bt)

	var validator Validator
	if args.Validate {
		validator = w.validator
	}

	session := NewSession(m.Contract{ID: contractID, Source: contractPath, Text: string(raw)}, validator)

	for len(session.Log()) < perContract {
		candidates, err := w.locator.Locate(session.Text(), bt, session.UsedLines())
		if errors.Is(err, ErrNoInjectionPoint) {
			break
		}

		if err != nil {
			return 0, fmt.Errorf("locate sites in %s: %w", contractID, err)
		}

		committed := false

		for _, candidate := range candidates {
			_, err := session.Inject(ctx, candidate.Snippet, candidate.Site.Offset)
			if errors.Is(err, ErrInvalidInjection) {
				continue
			}

			if err != nil {
				return 0, fmt.Errorf("inject into %s: %w", contractID, err)
			}

			committed = true

			break
		}

		if !committed {
			break
		}
	}

	log := session.Log()
	if len(log) == 0 {
		w.DisplaySkip(ctx, contractID, bt, "no usable injection site")
		slog.Debug("skipped contract", "contract", contractID, "bug_type", bt)

		return 0, nil
	}

	outPath := m.Path(filepath.Join(string(args.OutputDir), contractID))
	if err := w.WriteFile(ctx, outPath, []byte(session.Text()), 0o640); err != nil {
		return 0, fmt.Errorf("write mutated contract %s: %w", outPath, err)
	}

	bugLog, err := w.EncodeBugLog(log)
	if err != nil {
		return 0, fmt.Errorf("encode bug log for %s: %w", contractID, err)
	}

	logPath := m.Path(filepath.Join(string(args.OutputDir), string(bt), bugLogName(contractPath)))
	if err := w.WriteFile(ctx, logPath, bugLog, 0o640); err != nil {
		return 0, fmt.Errorf("write bug log %s: %w", logPath, err)
	}

	if err := journal.AppendBatch(log); err != nil {
		return 0, fmt.Errorf("journal injections for %s: %w", contractID, err)
	}

	w.DisplayInjection(ctx, contractID, bt, len(log))

	return len(log), nil
}

// replayGroundTruth rebuilds the ground-truth table from the journal on
// disk. Aggregation consumes only the recorded log, never the mutated
// sources, so reruns over the same journal are byte-identical.
func (w *workflow) replayGroundTruth(journal pkg.Journal[m.Injection]) (m.GroundTruth, error) {
	var all []m.Injection

	err := journal.Replay(func(_ uint64, inj m.Injection) error {
		all = append(all, inj)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replay injection journal: %w", err)
	}

	gt, err := BuildGroundTruth(all)
	if err != nil {
		return nil, fmt.Errorf("aggregate ground truth: %w", err)
	}

	return gt, nil
}

// Eval runs the configured analyzers over every mutated contract and stores
// their raw reports under ReportsDir/<tool>/. Timeouts and unavailable
// tools are recorded as run outcomes, not errors: one dead analyzer must
// not sink the rest of the run.
func (w *workflow) Eval(ctx context.Context, args EvalArgs) ([]m.ToolRun, error) {
	contracts, err := w.ListFiles(ctx, args.BuggyDir, ".sol")
	if err != nil {
		return nil, fmt.Errorf("list mutated contracts: %w", err)
	}

	if len(contracts) == 0 {
		return nil, fmt.Errorf("no .sol contracts under %s", args.BuggyDir)
	}

	toolCount := len(args.Tools)
	if args.LLM {
		toolCount++
	}

	if toolCount == 0 {
		return nil, errors.New("nothing to evaluate: no tools and no llm")
	}

	threads := normalizeThreads(args.Threads)
	total := len(contracts) * toolCount

	if err := w.Start(ctx, controller.WithEvalMode(), controller.WithTotal(total)); err != nil {
		return nil, fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	w.DisplayConcurrencyInfo(ctx, threads, total)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	var (
		mu   sync.Mutex
		runs []m.ToolRun
	)

	record := func(ctx context.Context, run m.ToolRun) {
		mu.Lock()
		runs = append(runs, run)
		mu.Unlock()

		w.DisplayToolRun(ctx, run)
	}

	for _, contractPath := range contracts {
		currentPath := contractPath

		for _, tool := range args.Tools {
			currentTool := tool

			group.Go(func() error {
				run, raw := w.evalTool(groupCtx, args, currentTool, currentPath)
				if run.Status == m.ToolCompleted {
					if err := w.saveReport(groupCtx, args.ReportsDir, currentTool, currentPath, ".out", raw); err != nil {
						return err
					}
				}

				record(groupCtx, run)

				return nil
			})
		}

		if args.LLM {
			group.Go(func() error {
				run, raw := w.evalLLM(groupCtx, args, currentPath)
				if run.Status == m.ToolCompleted {
					if err := w.saveReport(groupCtx, args.ReportsDir, "llm", currentPath, ".json", raw); err != nil {
						return err
					}
				}

				record(groupCtx, run)

				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return runs, err
	}

	if err := w.saveRunLedgers(ctx, args.ReportsDir, runs); err != nil {
		return runs, err
	}

	w.DisplayRunSummary(ctx, runs)

	return runs, nil
}

// saveRunLedgers persists each tool's invocation outcomes next to its
// reports. Scoring reads the ledger back, so a pair whose analysis timed
// out is excluded instead of counted as a miss.
func (w *workflow) saveRunLedgers(ctx context.Context, reportsDir m.Path, runs []m.ToolRun) error {
	byTool := make(map[string][]m.ToolRun)
	for _, run := range runs {
		byTool[run.Tool] = append(byTool[run.Tool], run)
	}

	for tool, toolRuns := range byTool {
		if err := w.SaveRuns(ctx, w.ContractFSAdapter, runLedgerPath(reportsDir, tool), toolRuns); err != nil {
			return fmt.Errorf("save %s run ledger: %w", tool, err)
		}
	}

	return nil
}

// evalTool invokes one static analyzer against one contract.
func (w *workflow) evalTool(ctx context.Context, args EvalArgs, tool string, contractPath m.Path) (m.ToolRun, []byte) {
	run := m.ToolRun{
		Tool:       tool,
		ContractID: buggyContractID(args.BuggyDir, contractPath),
		BugType:    bugTypeFromLayout(contractPath),
	}

	timeout := args.ToolTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := w.Run(toolCtx, tool, toolArgs(tool, string(contractPath))...)

	switch {
	case result.TimedOut:
		run.Status = m.ToolTimeout
		run.Detail = fmt.Sprintf("exceeded %s", timeout)
	case result.Err != nil && len(result.Raw) == 0:
		run.Status = m.ToolUnavailable
		run.Detail = result.Err.Error()
	default:
		// Analyzers exit non-zero when they find issues; output wins.
		run.Status = m.ToolCompleted
	}

	slog.Debug("analyzer run",
		"tool", tool,
		"contract", run.ContractID,
		"status", run.Status.String(),
		"duration", result.Duration)

	return run, result.Raw
}

// evalLLM queries the LLM detector with a prompt focused on the bug type the
// contract's directory was seeded with.
func (w *workflow) evalLLM(ctx context.Context, args EvalArgs, contractPath m.Path) (m.ToolRun, []byte) {
	run := m.ToolRun{
		Tool:       "llm",
		ContractID: buggyContractID(args.BuggyDir, contractPath),
		BugType:    bugTypeFromLayout(contractPath),
	}

	if w.LLMAdapter == nil {
		run.Status = m.ToolUnavailable
		run.Detail = "no llm endpoint configured"

		return run, nil
	}

	raw, err := w.ReadFile(ctx, contractPath)
	if err != nil {
		run.Status = m.ToolUnavailable
		run.Detail = err.Error()

		return run, nil
	}

	prompt := buildPrompt(run.BugType, filepath.Base(string(contractPath)), string(raw))

	response, err := w.Generate(ctx, prompt)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		run.Status = m.ToolTimeout
		run.Detail = err.Error()
	case err != nil:
		run.Status = m.ToolUnavailable
		run.Detail = err.Error()
	default:
		run.Status = m.ToolCompleted
	}

	return run, []byte(response)
}

func (w *workflow) saveReport(ctx context.Context, reportsDir m.Path, tool string, contractPath m.Path, ext string, raw []byte) error {
	name := filepath.Base(string(contractPath)) + ext
	dir := string(bugTypeFromLayout(contractPath))
	path := m.Path(filepath.Join(string(reportsDir), tool, dir, name))

	if err := w.WriteFile(ctx, path, raw, 0o640); err != nil {
		return fmt.Errorf("save %s report for %s: %w", tool, contractPath, err)
	}

	return nil
}

// Score loads ground truth and every tool's stored reports, normalizes them,
// matches against the recorded injections, and writes the metric CSVs.
func (w *workflow) Score(ctx context.Context, args ScoreArgs) ([]m.ScoreCard, error) {
	gt, err := w.LoadMerged(ctx, w.ContractFSAdapter, args.TruthCSV)
	if err != nil {
		return nil, fmt.Errorf("load ground truth: %w", err)
	}

	if gt.Count() == 0 {
		return nil, fmt.Errorf("ground truth %s is empty", args.TruthCSV)
	}

	if err := w.Start(ctx, controller.WithScoreMode()); err != nil {
		return nil, fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	cards := make([]m.ScoreCard, 0, len(args.Tools))

	for _, tool := range args.Tools {
		if !tools.Known(tool) {
			return nil, fmt.Errorf("no normalizer for tool %q", tool)
		}

		card, err := w.scoreTool(ctx, args, gt, tool)
		if err != nil {
			return nil, err
		}

		if err := w.SaveScoreCard(ctx, w.ContractFSAdapter, args.OutputDir, *card); err != nil {
			return nil, fmt.Errorf("save score card for %s: %w", tool, err)
		}

		if err := w.DisplayScoreCard(ctx, *card); err != nil {
			return nil, err
		}

		cards = append(cards, *card)
	}

	return cards, nil
}

// scoreTool builds one tool's score card from its report directory.
func (w *workflow) scoreTool(ctx context.Context, args ScoreArgs, gt m.GroundTruth, tool string) (*m.ScoreCard, error) {
	toolDir := m.Path(filepath.Join(string(args.ReportsDir), tool))

	reports, err := w.ListFiles(ctx, toolDir, reportExt(tool))
	toolDirMissing := errors.Is(err, fs.ErrNotExist)

	if err != nil && !toolDirMissing {
		return nil, fmt.Errorf("list %s reports: %w", tool, err)
	}

	runs, err := w.LoadRuns(ctx, w.ContractFSAdapter, runLedgerPath(args.ReportsDir, tool))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s run ledger: %w", tool, err)
	}

	card := &m.ScoreCard{Tool: tool, Runs: runs}
	scored := make(map[string]bool)

	// Pairs whose analysis never completed carry no verdict either way.
	incomplete := make(map[string]bool)

	for _, run := range runs {
		if run.Status != m.ToolCompleted {
			incomplete[scoredKey(run.ContractID, run.BugType)] = true
		}
	}

	for _, reportPath := range reports {
		contractID, bt, ok := reportedContract(toolDir, reportPath)
		if !ok {
			slog.Warn("report outside the expected layout", "tool", tool, "path", reportPath)
			card.Malformed++

			continue
		}

		raw, err := w.ReadFile(ctx, reportPath)
		if err != nil {
			return nil, fmt.Errorf("read report %s: %w", reportPath, err)
		}

		findings, diag, err := tools.Normalize(tool, tools.Report{
			Tool:       tool,
			ContractID: contractID,
			BugType:    bt,
			Raw:        raw,
		})

		card.Malformed += diag.Malformed

		if err != nil {
			// A malformed report never matches; its injections become FNs below.
			slog.Warn("malformed report", "tool", tool, "contract", contractID, "error", err)
			continue
		}

		byType, typeOrder := findingsByType(findings)

		// The seeded type always scores, so uncovered injections become
		// misses even when the report was empty. Findings normalized to
		// another type score in that type's own partition, where an empty
		// injection set turns them into false positives.
		scored[scoredKey(contractID, bt)] = true
		card.Results = append(card.Results, Match(gt.ForContractAndType(contractID, bt), byType[bt], args.Tolerance)...)

		for _, ft := range typeOrder {
			if ft == bt {
				continue
			}

			scored[scoredKey(contractID, ft)] = true
			card.Results = append(card.Results, Match(gt.ForContractAndType(contractID, ft), byType[ft], args.Tolerance)...)
		}
	}

	// Injections with no report at all are still misses, unless the run
	// ledger says their analysis never finished. A wholly absent tool
	// directory means nothing ran: no verdicts at all.
	if !toolDirMissing {
		for contractID, injections := range gt {
			for _, inj := range injections {
				key := scoredKey(contractID, inj.BugType)
				if scored[key] || incomplete[key] {
					continue
				}

				missed := inj

				card.Results = append(card.Results, m.MatchResult{
					Verdict:   m.FalseNegative,
					Injection: &missed,
				})
			}
		}
	}

	card.PerType = MetricsByBugType(card.Results)
	card.Overall = ComputeMetrics(card.Results)

	return card, nil
}

// Merge collects every per-contract bug log under BuggyDir into the merged
// ground-truth table, assigning global bug ids in deterministic order.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) (m.GroundTruth, error) {
	logFiles, err := w.ListFiles(ctx, args.BuggyDir, ".csv")
	if err != nil {
		return nil, fmt.Errorf("list bug logs: %w", err)
	}

	var logs [][]m.Injection

	for _, logPath := range logFiles {
		name := filepath.Base(string(logPath))
		if !strings.HasPrefix(name, "BugLog_") {
			continue
		}

		raw, err := w.ReadFile(ctx, logPath)
		if err != nil {
			return nil, fmt.Errorf("read bug log %s: %w", logPath, err)
		}

		contractID := contractIDForBugLog(logPath)

		injections, err := w.DecodeBugLog(raw, contractID)
		if err != nil {
			return nil, fmt.Errorf("decode bug log %s: %w", logPath, err)
		}

		logs = append(logs, injections)
	}

	if len(logs) == 0 {
		return nil, fmt.Errorf("no BugLog_*.csv files under %s", args.BuggyDir)
	}

	gt, err := BuildGroundTruth(logs...)
	if err != nil {
		return nil, fmt.Errorf("aggregate ground truth: %w", err)
	}

	if err := w.SaveMerged(ctx, w.ContractFSAdapter, args.Output, gt); err != nil {
		return nil, fmt.Errorf("save merged ground truth: %w", err)
	}

	slog.Info("merged bug logs", "logs", len(logs), "injections", gt.Count(), "output", args.Output)

	return gt, nil
}

func normalizeThreads(threads int) int {
	if threads < 1 {
		return 1
	}

	return threads
}

// mutatedContractID names a mutated output relative to the output root:
// <BugType>/buggy_<stem>.sol. The bug type segment keeps sequence numbers
// of different mutations of the same source from colliding.
func mutatedContractID(contractPath m.Path, bt m.BugType) string {
	stem := strings.TrimSuffix(filepath.Base(string(contractPath)), ".sol")

	return filepath.ToSlash(filepath.Join(string(bt), "buggy_"+stem+".sol"))
}

func bugLogName(contractPath m.Path) string {
	stem := strings.TrimSuffix(filepath.Base(string(contractPath)), ".sol")

	return "BugLog_" + stem + ".csv"
}

// buggyContractID recovers the ground-truth contract id of a mutated file:
// its path relative to the corpus root.
func buggyContractID(buggyDir m.Path, contractPath m.Path) string {
	rel, err := filepath.Rel(string(buggyDir), string(contractPath))
	if err != nil {
		return filepath.Base(string(contractPath))
	}

	return filepath.ToSlash(rel)
}

// bugTypeFromLayout reads the bug type off the directory the mutated
// contract sits in. Unknown directories yield an empty bug type; the
// normalizers then fall back to what the report itself claims.
func bugTypeFromLayout(contractPath m.Path) m.BugType {
	dir := filepath.Base(filepath.Dir(string(contractPath)))

	bt, err := m.ParseBugType(dir)
	if err != nil {
		return ""
	}

	return bt
}

func contractIDForBugLog(logPath m.Path) string {
	stem := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(string(logPath)), "BugLog_"), ".csv")
	dir := filepath.Base(filepath.Dir(string(logPath)))

	return filepath.ToSlash(filepath.Join(dir, "buggy_"+stem+".sol"))
}

func scoredKey(contractID string, bt m.BugType) string {
	return contractID + "\x00" + string(bt)
}

// findingsByType partitions findings by their normalized bug type, keeping
// first-seen order so scoring output is deterministic.
func findingsByType(findings []m.Finding) (map[m.BugType][]m.Finding, []m.BugType) {
	byType := make(map[m.BugType][]m.Finding)

	var typeOrder []m.BugType

	for _, f := range findings {
		if _, seen := byType[f.BugType]; !seen {
			typeOrder = append(typeOrder, f.BugType)
		}

		byType[f.BugType] = append(byType[f.BugType], f)
	}

	return byType, typeOrder
}

// runLedgerName is the per-tool invocation ledger eval writes and score reads.
const runLedgerName = "runs.csv"

func runLedgerPath(reportsDir m.Path, tool string) m.Path {
	return m.Path(filepath.Join(string(reportsDir), tool, runLedgerName))
}

// reportExt maps a tool to the extension its stored raw reports carry.
func reportExt(tool string) string {
	if tool == "llm" {
		return ".json"
	}

	return ".out"
}

// reportedContract derives (contract id, bug type) from a report's location:
// <toolDir>/<BugType>/<contract file>.<ext>.
func reportedContract(toolDir m.Path, reportPath m.Path) (string, m.BugType, bool) {
	rel, err := filepath.Rel(string(toolDir), string(reportPath))
	if err != nil {
		return "", "", false
	}

	dir, name := filepath.Split(filepath.ToSlash(rel))

	dir = strings.Trim(dir, "/")
	if dir == "" || strings.Contains(dir, "/") {
		return "", "", false
	}

	bt, err := m.ParseBugType(dir)
	if err != nil {
		return "", "", false
	}

	contract := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasSuffix(contract, ".sol") {
		return "", "", false
	}

	return dir + "/" + contract, bt, true
}

// toolArgs supplies each analyzer's report-producing invocation.
func toolArgs(tool string, contractPath string) []string {
	switch tool {
	case "slither":
		return []string{contractPath, "--json", "-"}
	case "mythril":
		return []string{"analyze", contractPath, "-o", "json"}
	case "oyente":
		return []string{"-s", contractPath}
	case "smartcheck":
		return []string{"-p", contractPath}
	case "securify":
		return []string{"--output", "json", contractPath}
	}

	return []string{contractPath}
}

// buildPrompt frames a single-bug-type review request with output fencing
// the extractor recognizes even in chatty responses.
func buildPrompt(bt m.BugType, contractName string, source string) string {
	focus := string(bt)
	if focus == "" {
		focus = "any known vulnerability class"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are a Solidity security auditor. Analyze the contract below strictly for %s vulnerabilities.\n\n", focus)
	b.WriteString("Respond with exactly one JSON object between <<JSON_START>> and <<JSON_END>> markers, shaped as:\n")
	b.WriteString(`{"contract": "<file>", "contract_name": "<name>", "bug_type": "<type>", "findings": [{"line": <n>, "confidence": "high|medium|low", "description": "<why>"}]}`)
	b.WriteString("\n\nReport an empty findings list if the contract is clean. Use 1-based line numbers of the source exactly as given.\n\n")
	fmt.Fprintf(&b, "File: %s\n\n```solidity\n%s\n```\n", contractName, source)

	return b.String()
}

