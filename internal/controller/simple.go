package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "solseed.dev/pkg/solseed/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayConcurrencyInfo shows concurrency settings for the run.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, threads int, items int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Processing %d item(s) with %d worker(s)\n", items, threads)
}

// DisplayInjection shows one completed contract mutation.
func (s *SimpleUI) DisplayInjection(ctx context.Context, contractID string, bugType m.BugType, injected int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Injected %d x %s into %s\n", injected, bugType, contractID)
}

// DisplaySkip shows a contract that produced no mutation for a bug type.
func (s *SimpleUI) DisplaySkip(ctx context.Context, contractID string, bugType m.BugType, reason string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Skipped %s (%s): %s\n", contractID, bugType, reason)
}

// DisplayToolRun shows the outcome of one analyzer invocation.
func (s *SimpleUI) DisplayToolRun(ctx context.Context, run m.ToolRun) {
	if err := ctx.Err(); err != nil {
		return
	}

	if run.Status == m.ToolCompleted {
		s.printf("%s -> %s: %s\n", run.Tool, run.ContractID, run.Status)
		return
	}

	s.printf("%s -> %s: %s (%s)\n", run.Tool, run.ContractID, run.Status, run.Detail)
}

// DisplayScoreCard prints per-bug-type metrics and the overall row as a table.
func (s *SimpleUI) DisplayScoreCard(ctx context.Context, card m.ScoreCard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderScoreTable(card))

	if card.Malformed > 0 {
		s.printf("Skipped %d malformed report entr(ies) for %s\n", card.Malformed, card.Tool)
	}

	if n := incompleteRuns(card.Runs); n > 0 {
		s.printf("%d of %d analysis run(s) incomplete for %s; their pairs were not scored\n", n, len(card.Runs), card.Tool)
	}

	return nil
}

// incompleteRuns counts ledger entries whose analysis never finished.
func incompleteRuns(runs []m.ToolRun) int {
	n := 0

	for _, run := range runs {
		if run.Status != m.ToolCompleted {
			n++
		}
	}

	return n
}

func renderScoreTable(card m.ScoreCard) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Bug Type", "TP", "FP", "FN", "Precision", "Recall", "F1"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	types := make([]m.BugType, 0, len(card.PerType))
	for bt := range card.PerType {
		types = append(types, bt)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, bt := range types {
		metrics := card.PerType[bt]
		table.Append([]string{
			string(bt),
			fmt.Sprintf("%d", metrics.TP),
			fmt.Sprintf("%d", metrics.FP),
			fmt.Sprintf("%d", metrics.FN),
			displayRatio(metrics.Precision),
			displayRatio(metrics.Recall),
			displayRatio(metrics.F1),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Overall (%s)", card.Tool),
		fmt.Sprintf("%d", card.Overall.TP),
		fmt.Sprintf("%d", card.Overall.FP),
		fmt.Sprintf("%d", card.Overall.FN),
		displayRatio(card.Overall.Precision),
		displayRatio(card.Overall.Recall),
		displayRatio(card.Overall.F1),
	})

	table.Render()

	return tableBuffer.String()
}

func displayRatio(r m.Ratio) string {
	if !r.Defined {
		return "n/a"
	}

	return fmt.Sprintf("%.4f", r.Value)
}

// DisplayRunSummary prints completed vs skipped counts per (tool, bug type),
// so an empty report is distinguishable from a run that never happened.
func (s *SimpleUI) DisplayRunSummary(ctx context.Context, runs []m.ToolRun) {
	if err := ctx.Err(); err != nil {
		return
	}

	if len(runs) == 0 {
		return
	}

	type key struct {
		tool    string
		bugType m.BugType
	}

	type tally struct {
		completed int
		failed    int
	}

	tallies := make(map[key]tally)
	keys := make([]key, 0)

	for _, run := range runs {
		k := key{tool: run.Tool, bugType: run.BugType}
		if _, seen := tallies[k]; !seen {
			keys = append(keys, k)
		}

		t := tallies[k]
		if run.Status == m.ToolCompleted {
			t.completed++
		} else {
			t.failed++
		}

		tallies[k] = t
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].tool != keys[j].tool {
			return keys[i].tool < keys[j].tool
		}

		return keys[i].bugType < keys[j].bugType
	})

	s.printf("\nRun summary:\n")

	for _, k := range keys {
		t := tallies[k]
		s.printf("  %s / %s: %d completed, %d skipped\n", k.tool, k.bugType, t.completed, t.failed)
	}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
