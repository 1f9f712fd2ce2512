package domain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solseed.dev/pkg/solseed/internal/adapter"
	"solseed.dev/pkg/solseed/internal/controller"
	m "solseed.dev/pkg/solseed/internal/model"
)

// fakeRunner serves canned analyzer results keyed by tool name.
type fakeRunner struct {
	results map[string]adapter.AnalyzerResult
}

func (r *fakeRunner) Run(_ context.Context, tool string, _ ...string) adapter.AnalyzerResult {
	res := r.results[tool]
	res.Tool = tool

	return res
}

// fakeLLM answers every prompt with the same response.
type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (l *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)

	return l.response, l.err
}

func testUI(t *testing.T) controller.UI {
	t.Helper()

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return controller.NewSimpleUI(cmd)
}

func newTestWorkflow(t *testing.T, runner adapter.AnalyzerRunner, llm adapter.LLMAdapter) Workflow {
	t.Helper()

	return NewWorkflow(
		adapter.NewLocalContractFSAdapter(),
		adapter.NewCSVTruthStore(),
		adapter.NewCSVScoreStore(),
		runner,
		llm,
		testUI(t),
		defaultCatalog(t),
		nil,
	)
}

func writeContract(t *testing.T, path string, text string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func TestWorkflow_InjectWritesCorpusAndGroundTruth(t *testing.T) {
	root := t.TempDir()
	contractsDir := filepath.Join(root, "contracts")
	outputDir := filepath.Join(root, "buggy")

	writeContract(t, filepath.Join(contractsDir, "payer.sol"), sendingContract)
	writeContract(t, filepath.Join(contractsDir, "seed.sol"), plainContract)
	// No contract body at all: every bug type skips this one.
	writeContract(t, filepath.Join(contractsDir, "pragma_only.sol"), "pragma solidity ^0.5.0;\n")

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	summary, err := wf.Inject(context.Background(), InjectArgs{
		ContractsDir: m.Path(contractsDir),
		OutputDir:    m.Path(outputDir),
		BugTypes:     []m.BugType{m.BugReentrancy, m.BugUncheckedSend},
		PerContract:  1,
		Threads:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Contracts)
	assert.Equal(t, 4, summary.Mutated)
	assert.Equal(t, 4, summary.Injected)
	assert.Equal(t, 2, summary.Skipped)

	mutated, err := os.ReadFile(filepath.Join(outputDir, "Re-entrancy", "buggy_payer.sol"))
	require.NoError(t, err)
	assert.Contains(t, string(mutated), "withdrawSeed")

	_, err = os.Stat(filepath.Join(outputDir, "Re-entrancy", "BugLog_payer.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "injections.gob"))
	require.NoError(t, err)

	merged, err := os.ReadFile(filepath.Join(outputDir, "merged_bug_logs.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(merged), "bug_id,contract,line,length,bug_type,approach")
	assert.Contains(t, string(merged), "Re-entrancy/buggy_payer.sol")
	assert.Contains(t, string(merged), "Unchecked-Send/buggy_seed.sol")
}

func TestWorkflow_InjectEmptyCorpusFails(t *testing.T) {
	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	_, err := wf.Inject(context.Background(), InjectArgs{
		ContractsDir: m.Path(t.TempDir()),
		OutputDir:    m.Path(t.TempDir()),
	})
	require.Error(t, err)
}

func TestWorkflow_MergeRebuildsInjectedTruth(t *testing.T) {
	root := t.TempDir()
	contractsDir := filepath.Join(root, "contracts")
	outputDir := filepath.Join(root, "buggy")

	writeContract(t, filepath.Join(contractsDir, "payer.sol"), sendingContract)

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	_, err := wf.Inject(context.Background(), InjectArgs{
		ContractsDir: m.Path(contractsDir),
		OutputDir:    m.Path(outputDir),
		BugTypes:     []m.BugType{m.BugReentrancy, m.BugTxOrigin},
	})
	require.NoError(t, err)

	remergedPath := filepath.Join(root, "remerged.csv")
	gt, err := wf.Merge(context.Background(), MergeArgs{
		BuggyDir: m.Path(outputDir),
		Output:   m.Path(remergedPath),
	})
	require.NoError(t, err)

	original, err := os.ReadFile(filepath.Join(outputDir, "merged_bug_logs.csv"))
	require.NoError(t, err)
	remerged, err := os.ReadFile(remergedPath)
	require.NoError(t, err)

	// Rebuilding from the per-contract logs reproduces the merged table.
	assert.Equal(t, string(original), string(remerged))
	assert.Equal(t, 2, gt.Count())
}

func TestWorkflow_MergeWithoutLogsFails(t *testing.T) {
	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	_, err := wf.Merge(context.Background(), MergeArgs{
		BuggyDir: m.Path(t.TempDir()),
		Output:   m.Path(filepath.Join(t.TempDir(), "out.csv")),
	})
	require.Error(t, err)
}

func TestWorkflow_EvalRecordsPerToolOutcomes(t *testing.T) {
	root := t.TempDir()
	buggyDir := filepath.Join(root, "buggy")
	reportsDir := filepath.Join(root, "reports")

	writeContract(t, filepath.Join(buggyDir, "Re-entrancy", "buggy_payer.sol"), sendingContract)

	runner := &fakeRunner{results: map[string]adapter.AnalyzerResult{
		"slither":  {Raw: []byte(`{"results":{"detectors":[]}}`)},
		"deadtool": {Err: errors.New("executable not found")},
		"slowtool": {TimedOut: true},
	}}
	llm := &fakeLLM{response: `<<JSON_START>>{"contract":"buggy_payer.sol","bug_type":"Re-entrancy","findings":[]}<<JSON_END>>`}

	wf := newTestWorkflow(t, runner, llm)

	runs, err := wf.Eval(context.Background(), EvalArgs{
		BuggyDir:   m.Path(buggyDir),
		ReportsDir: m.Path(reportsDir),
		Tools:      []string{"slither", "deadtool", "slowtool"},
		LLM:        true,
		Threads:    2,
	})
	require.NoError(t, err)
	require.Len(t, runs, 4)

	status := make(map[string]m.ToolStatus)
	for _, run := range runs {
		status[run.Tool] = run.Status
		assert.Equal(t, "Re-entrancy/buggy_payer.sol", run.ContractID)
		assert.Equal(t, m.BugReentrancy, run.BugType)
	}

	assert.Equal(t, m.ToolCompleted, status["slither"])
	assert.Equal(t, m.ToolUnavailable, status["deadtool"])
	assert.Equal(t, m.ToolTimeout, status["slowtool"])
	assert.Equal(t, m.ToolCompleted, status["llm"])

	_, err = os.Stat(filepath.Join(reportsDir, "slither", "Re-entrancy", "buggy_payer.sol.out"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(reportsDir, "llm", "Re-entrancy", "buggy_payer.sol.json"))
	require.NoError(t, err)

	// Every tool leaves an invocation ledger; failed tools leave nothing else.
	for _, tool := range []string{"slither", "deadtool", "slowtool", "llm"} {
		_, err = os.Stat(filepath.Join(reportsDir, tool, "runs.csv"))
		require.NoError(t, err, tool)
	}

	_, err = os.Stat(filepath.Join(reportsDir, "deadtool", "Re-entrancy"))
	require.True(t, os.IsNotExist(err))

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Re-entrancy")
	assert.Contains(t, llm.prompts[0], "<<JSON_START>>")
}

func TestWorkflow_EvalWithoutLLMAdapter(t *testing.T) {
	root := t.TempDir()
	buggyDir := filepath.Join(root, "buggy")

	writeContract(t, filepath.Join(buggyDir, "TOD", "buggy_seed.sol"), plainContract)

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	runs, err := wf.Eval(context.Background(), EvalArgs{
		BuggyDir:   m.Path(buggyDir),
		ReportsDir: m.Path(filepath.Join(root, "reports")),
		LLM:        true,
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, m.ToolUnavailable, runs[0].Status)
}

func TestWorkflow_EvalNothingToRunFails(t *testing.T) {
	root := t.TempDir()
	buggyDir := filepath.Join(root, "buggy")

	writeContract(t, filepath.Join(buggyDir, "TOD", "buggy_seed.sol"), plainContract)

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	_, err := wf.Eval(context.Background(), EvalArgs{
		BuggyDir:   m.Path(buggyDir),
		ReportsDir: m.Path(filepath.Join(root, "reports")),
	})
	require.Error(t, err)
}

func TestWorkflow_ScoreMatchesReportsAgainstTruth(t *testing.T) {
	root := t.TempDir()
	reportsDir := filepath.Join(root, "reports")
	scoresDir := filepath.Join(root, "scores")
	truthPath := filepath.Join(root, "merged_bug_logs.csv")

	gt := m.GroundTruth{
		"Re-entrancy/buggy_payer.sol": {
			injection("Re-entrancy/buggy_payer.sol", 1, 5, 6, m.BugReentrancy),
		},
		"TOD/buggy_seed.sol": {
			injection("TOD/buggy_seed.sol", 1, 9, 9, m.BugTOD),
		},
	}

	fs := adapter.NewLocalContractFSAdapter()
	truthStore := adapter.NewCSVTruthStore()
	require.NoError(t, truthStore.SaveMerged(context.Background(), fs, m.Path(truthPath), gt))

	// One true positive on line 5 and one ignored detector row. The TOD
	// contract has no report, so its injection must come back as a miss.
	slitherReport := `{"results":{"detectors":[
  {"check":"reentrancy-eth","confidence":"High","description":"reentrancy in withdrawSeed",
   "elements":[{"source_mapping":{"filename":"buggy_payer.sol","lines":[5,6]}}]},
  {"check":"naming-convention","confidence":"Informational","description":"bad name",
   "elements":[{"source_mapping":{"filename":"buggy_payer.sol","lines":[2]}}]}
]}}`
	writeContract(t, filepath.Join(reportsDir, "slither", "Re-entrancy", "buggy_payer.sol.out"), slitherReport)

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	cards, err := wf.Score(context.Background(), ScoreArgs{
		TruthCSV:   m.Path(truthPath),
		ReportsDir: m.Path(reportsDir),
		Tools:      []string{"slither"},
		Tolerance:  2,
		OutputDir:  m.Path(scoresDir),
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)

	card := cards[0]
	assert.Equal(t, "slither", card.Tool)
	assert.Equal(t, 1, card.Overall.TP)
	assert.Equal(t, 0, card.Overall.FP)
	assert.Equal(t, 1, card.Overall.FN)
	assert.Equal(t, 0, card.Malformed)

	require.Contains(t, card.PerType, m.BugReentrancy)
	assert.Equal(t, 1, card.PerType[m.BugReentrancy].TP)
	require.Contains(t, card.PerType, m.BugTOD)
	assert.Equal(t, 1, card.PerType[m.BugTOD].FN)

	entries, err := os.ReadDir(scoresDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestWorkflow_ScoreCountsOffTypeFindingsAsFalsePositives(t *testing.T) {
	root := t.TempDir()
	reportsDir := filepath.Join(root, "reports")
	truthPath := filepath.Join(root, "merged_bug_logs.csv")

	gt := m.GroundTruth{
		"Re-entrancy/buggy_payer.sol": {
			injection("Re-entrancy/buggy_payer.sol", 1, 5, 6, m.BugReentrancy),
		},
	}

	fs := adapter.NewLocalContractFSAdapter()
	require.NoError(t, adapter.NewCSVTruthStore().SaveMerged(context.Background(), fs, m.Path(truthPath), gt))

	// The timestamp detector fires in a corpus seeded only with re-entrancy.
	// No injection backs it, so it must surface as a false positive rather
	// than vanish.
	slitherReport := `{"results":{"detectors":[
  {"check":"reentrancy-eth","confidence":"High","description":"reentrancy in withdrawSeed",
   "elements":[{"source_mapping":{"filename":"buggy_payer.sol","lines":[5]}}]},
  {"check":"timestamp","confidence":"Medium","description":"block.timestamp comparison",
   "elements":[{"source_mapping":{"filename":"buggy_payer.sol","lines":[30]}}]}
]}}`
	writeContract(t, filepath.Join(reportsDir, "slither", "Re-entrancy", "buggy_payer.sol.out"), slitherReport)

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	cards, err := wf.Score(context.Background(), ScoreArgs{
		TruthCSV:   m.Path(truthPath),
		ReportsDir: m.Path(reportsDir),
		Tools:      []string{"slither"},
		Tolerance:  2,
		OutputDir:  m.Path(filepath.Join(root, "scores")),
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)

	card := cards[0]
	assert.Equal(t, 1, card.Overall.TP)
	assert.Equal(t, 1, card.Overall.FP)
	assert.Equal(t, 0, card.Overall.FN)

	require.Contains(t, card.PerType, m.BugTimestampDependency)
	assert.Equal(t, 1, card.PerType[m.BugTimestampDependency].FP)
}

func TestWorkflow_ScoreExcludesTimedOutAnalyses(t *testing.T) {
	root := t.TempDir()
	buggyDir := filepath.Join(root, "buggy")
	reportsDir := filepath.Join(root, "reports")
	truthPath := filepath.Join(root, "merged_bug_logs.csv")

	writeContract(t, filepath.Join(buggyDir, "Re-entrancy", "buggy_payer.sol"), sendingContract)

	runner := &fakeRunner{results: map[string]adapter.AnalyzerResult{
		"slither": {TimedOut: true},
	}}

	wf := newTestWorkflow(t, runner, nil)

	runs, err := wf.Eval(context.Background(), EvalArgs{
		BuggyDir:   m.Path(buggyDir),
		ReportsDir: m.Path(reportsDir),
		Tools:      []string{"slither"},
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, m.ToolTimeout, runs[0].Status)

	gt := m.GroundTruth{
		"Re-entrancy/buggy_payer.sol": {
			injection("Re-entrancy/buggy_payer.sol", 1, 5, 6, m.BugReentrancy),
		},
	}

	fs := adapter.NewLocalContractFSAdapter()
	require.NoError(t, adapter.NewCSVTruthStore().SaveMerged(context.Background(), fs, m.Path(truthPath), gt))

	cards, err := wf.Score(context.Background(), ScoreArgs{
		TruthCSV:   m.Path(truthPath),
		ReportsDir: m.Path(reportsDir),
		Tools:      []string{"slither"},
		Tolerance:  2,
		OutputDir:  m.Path(filepath.Join(root, "scores")),
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)

	// A timed-out analysis contributes no verdict at all: not a miss, not
	// a hit, just a recorded incomplete run.
	card := cards[0]
	assert.Equal(t, 0, card.Overall.TP)
	assert.Equal(t, 0, card.Overall.FN)
	assert.Empty(t, card.Results)

	require.Len(t, card.Runs, 1)
	assert.Equal(t, m.ToolTimeout, card.Runs[0].Status)
	assert.Equal(t, "Re-entrancy/buggy_payer.sol", card.Runs[0].ContractID)
}

func TestWorkflow_ScoreToleratesAbsentToolReports(t *testing.T) {
	root := t.TempDir()
	truthPath := filepath.Join(root, "merged_bug_logs.csv")

	gt := m.GroundTruth{
		"Re-entrancy/buggy_payer.sol": {
			injection("Re-entrancy/buggy_payer.sol", 1, 5, 6, m.BugReentrancy),
		},
	}

	fs := adapter.NewLocalContractFSAdapter()
	require.NoError(t, adapter.NewCSVTruthStore().SaveMerged(context.Background(), fs, m.Path(truthPath), gt))

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	cards, err := wf.Score(context.Background(), ScoreArgs{
		TruthCSV:   m.Path(truthPath),
		ReportsDir: m.Path(filepath.Join(root, "reports")),
		Tools:      []string{"slither"},
		Tolerance:  2,
		OutputDir:  m.Path(filepath.Join(root, "scores")),
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)

	// The tool never ran here: no verdicts, not a wall of misses.
	card := cards[0]
	assert.Empty(t, card.Results)
	assert.Equal(t, 0, card.Overall.FN)
	assert.False(t, card.Overall.Recall.Defined)
}

func TestWorkflow_ScoreCountsMalformedReports(t *testing.T) {
	root := t.TempDir()
	reportsDir := filepath.Join(root, "reports")
	truthPath := filepath.Join(root, "merged_bug_logs.csv")

	gt := m.GroundTruth{
		"Re-entrancy/buggy_payer.sol": {
			injection("Re-entrancy/buggy_payer.sol", 1, 5, 5, m.BugReentrancy),
		},
	}

	fs := adapter.NewLocalContractFSAdapter()
	require.NoError(t, adapter.NewCSVTruthStore().SaveMerged(context.Background(), fs, m.Path(truthPath), gt))

	writeContract(t, filepath.Join(reportsDir, "slither", "Re-entrancy", "buggy_payer.sol.out"), "not json at all")

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	cards, err := wf.Score(context.Background(), ScoreArgs{
		TruthCSV:   m.Path(truthPath),
		ReportsDir: m.Path(reportsDir),
		Tools:      []string{"slither"},
		Tolerance:  2,
		OutputDir:  m.Path(filepath.Join(root, "scores")),
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)

	// The unreadable report contributes nothing; its injection is a miss.
	assert.Equal(t, 1, cards[0].Overall.FN)
	assert.Equal(t, 0, cards[0].Overall.TP)
}

func TestWorkflow_ScoreUnknownToolFails(t *testing.T) {
	root := t.TempDir()
	truthPath := filepath.Join(root, "merged_bug_logs.csv")

	gt := m.GroundTruth{
		"TOD/buggy_seed.sol": {injection("TOD/buggy_seed.sol", 1, 9, 9, m.BugTOD)},
	}

	fs := adapter.NewLocalContractFSAdapter()
	require.NoError(t, adapter.NewCSVTruthStore().SaveMerged(context.Background(), fs, m.Path(truthPath), gt))

	wf := newTestWorkflow(t, &fakeRunner{}, nil)

	_, err := wf.Score(context.Background(), ScoreArgs{
		TruthCSV:   m.Path(truthPath),
		ReportsDir: m.Path(filepath.Join(root, "reports")),
		Tools:      []string{"made-up-tool"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no normalizer")
}

func TestMutatedContractID(t *testing.T) {
	assert.Equal(t, "Re-entrancy/buggy_payer.sol",
		mutatedContractID(m.Path("/data/contracts/payer.sol"), m.BugReentrancy))
	assert.Equal(t, "tx.origin/buggy_a.sol",
		mutatedContractID(m.Path("a.sol"), m.BugTxOrigin))
}

func TestBugLogName(t *testing.T) {
	assert.Equal(t, "BugLog_payer.csv", bugLogName(m.Path("/data/contracts/payer.sol")))
}

func TestContractIDForBugLog(t *testing.T) {
	assert.Equal(t, "Re-entrancy/buggy_payer.sol",
		contractIDForBugLog(m.Path("/buggy/Re-entrancy/BugLog_payer.csv")))
}

func TestBugTypeFromLayout(t *testing.T) {
	assert.Equal(t, m.BugTOD, bugTypeFromLayout(m.Path("/buggy/TOD/buggy_a.sol")))
	assert.Equal(t, m.BugType(""), bugTypeFromLayout(m.Path("/buggy/stray/buggy_a.sol")))
}

func TestReportedContract(t *testing.T) {
	toolDir := m.Path("/reports/slither")

	contractID, bt, ok := reportedContract(toolDir, m.Path("/reports/slither/TOD/buggy_a.sol.out"))
	require.True(t, ok)
	assert.Equal(t, "TOD/buggy_a.sol", contractID)
	assert.Equal(t, m.BugTOD, bt)

	_, _, ok = reportedContract(toolDir, m.Path("/reports/slither/buggy_a.sol.out"))
	assert.False(t, ok)

	_, _, ok = reportedContract(toolDir, m.Path("/reports/slither/TOD/deep/buggy_a.sol.out"))
	assert.False(t, ok)

	_, _, ok = reportedContract(toolDir, m.Path("/reports/slither/TOD/notes.txt"))
	assert.False(t, ok)

	_, _, ok = reportedContract(toolDir, m.Path("/reports/slither/Gas/buggy_a.sol.out"))
	assert.False(t, ok)
}

func TestReportExt(t *testing.T) {
	assert.Equal(t, ".json", reportExt("llm"))
	assert.Equal(t, ".out", reportExt("slither"))
}

func TestToolArgs(t *testing.T) {
	assert.Equal(t, []string{"x.sol", "--json", "-"}, toolArgs("slither", "x.sol"))
	assert.Equal(t, []string{"analyze", "x.sol", "-o", "json"}, toolArgs("mythril", "x.sol"))
	assert.Equal(t, []string{"-s", "x.sol"}, toolArgs("oyente", "x.sol"))
	assert.Equal(t, []string{"-p", "x.sol"}, toolArgs("smartcheck", "x.sol"))
	assert.Equal(t, []string{"--output", "json", "x.sol"}, toolArgs("securify", "x.sol"))
	assert.Equal(t, []string{"x.sol"}, toolArgs("unknown", "x.sol"))
}

func TestNormalizeThreads(t *testing.T) {
	assert.Equal(t, 1, normalizeThreads(0))
	assert.Equal(t, 1, normalizeThreads(-3))
	assert.Equal(t, 8, normalizeThreads(8))
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(m.BugReentrancy, "buggy_payer.sol", "contract C {}")

	assert.Contains(t, prompt, "Re-entrancy")
	assert.Contains(t, prompt, "<<JSON_START>>")
	assert.Contains(t, prompt, "<<JSON_END>>")
	assert.Contains(t, prompt, "buggy_payer.sol")
	assert.Contains(t, prompt, "contract C {}")

	fallback := buildPrompt("", "x.sol", "")
	assert.True(t, strings.Contains(fallback, "any known vulnerability class"))
}
