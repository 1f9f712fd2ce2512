package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	m "solseed.dev/pkg/solseed/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// recentLines bounds the activity log kept on screen.
const recentLines = 8

// TUI implements UI using Bubble Tea for interactive progress display.
type TUI struct {
	output  io.Writer
	program *tea.Program

	mu   sync.Mutex
	wg   sync.WaitGroup
	open bool
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress program in the background.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	model := newRunModel(config.mode, config.total)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.program = tea.NewProgram(model, tea.WithOutput(p.output))
	p.open = true

	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		_, _ = p.program.Run()
	}()

	return nil
}

// Close stops the progress program and waits for its final repaint.
func (p *TUI) Close(ctx context.Context) {
	p.mu.Lock()

	if !p.open {
		p.mu.Unlock()
		return
	}

	p.open = false
	program := p.program

	p.mu.Unlock()

	program.Send(runFinishedMsg{})
	p.wg.Wait()

	_ = ctx.Err()
}

// Wait blocks until the program exits.
func (p *TUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.wg.Wait()
}

func (p *TUI) send(msg tea.Msg) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.open {
		p.program.Send(msg)
	}
}

// DisplayConcurrencyInfo shows concurrency settings for the run.
func (p *TUI) DisplayConcurrencyInfo(ctx context.Context, threads int, items int) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.send(activityMsg{line: fmt.Sprintf("processing %d item(s) with %d worker(s)", items, threads)})
}

// DisplayInjection shows one completed contract mutation.
func (p *TUI) DisplayInjection(ctx context.Context, contractID string, bugType m.BugType, injected int) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.send(itemDoneMsg{line: fmt.Sprintf("injected %d x %s into %s", injected, bugType, contractID)})
}

// DisplaySkip shows a contract that produced no mutation for a bug type.
func (p *TUI) DisplaySkip(ctx context.Context, contractID string, bugType m.BugType, reason string) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.send(itemDoneMsg{
		line:    skipStyle.Render(fmt.Sprintf("skipped %s (%s): %s", contractID, bugType, reason)),
		skipped: true,
	})
}

// DisplayToolRun shows the outcome of one analyzer invocation.
func (p *TUI) DisplayToolRun(ctx context.Context, run m.ToolRun) {
	if err := ctx.Err(); err != nil {
		return
	}

	line := fmt.Sprintf("%s -> %s: %s", run.Tool, run.ContractID, run.Status)
	if run.Status != m.ToolCompleted && run.Detail != "" {
		line += " (" + run.Detail + ")"
	}

	p.send(itemDoneMsg{line: line, skipped: run.Status != m.ToolCompleted})
}

// DisplayScoreCard closes the progress view and prints the metrics table.
func (p *TUI) DisplayScoreCard(ctx context.Context, card m.ScoreCard) error {
	p.Close(ctx)

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(p.output, "\n%s", renderScoreTable(card)); err != nil {
		return err
	}

	if card.Malformed > 0 {
		_, _ = fmt.Fprintf(p.output, "Skipped %d malformed report entr(ies) for %s\n", card.Malformed, card.Tool)
	}

	if n := incompleteRuns(card.Runs); n > 0 {
		_, _ = fmt.Fprintf(p.output, "%d of %d analysis run(s) incomplete for %s; their pairs were not scored\n", n, len(card.Runs), card.Tool)
	}

	return nil
}

// DisplayRunSummary prints per (tool, bug type) completion counts after the
// progress view has closed.
func (p *TUI) DisplayRunSummary(ctx context.Context, runs []m.ToolRun) {
	p.Close(ctx)

	if err := ctx.Err(); err != nil {
		return
	}

	completed := 0

	for _, run := range runs {
		if run.Status == m.ToolCompleted {
			completed++
		}
	}

	_, _ = fmt.Fprintf(p.output, "\n%d/%d invocation(s) completed\n", completed, len(runs))
}

type activityMsg struct {
	line string
}

type itemDoneMsg struct {
	line    string
	skipped bool
}

type runFinishedMsg struct{}

// runModel renders a spinner, a progress bar when the total is known, and a
// short tail of recent activity.
type runModel struct {
	mode     StartMode
	total    int
	done     int
	skipped  int
	spinner  spinner.Model
	progress progress.Model
	recent   []string
	finished bool
}

func newRunModel(mode StartMode, total int) runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return runModel{
		mode:     mode,
		total:    total,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			rm.finished = true
			return rm, tea.Quit
		}

		return rm, nil

	case activityMsg:
		rm.recent = appendRecent(rm.recent, msg.line)

		return rm, nil

	case itemDoneMsg:
		rm.done++
		if msg.skipped {
			rm.skipped++
		}

		rm.recent = appendRecent(rm.recent, msg.line)

		return rm, nil

	case runFinishedMsg:
		rm.finished = true

		return rm, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd

	case progress.FrameMsg:
		model, cmd := rm.progress.Update(msg)
		if pm, ok := model.(progress.Model); ok {
			rm.progress = pm
		}

		return rm, cmd
	}

	return rm, nil
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("solseed - " + modeLabel(rm.mode)))
	b.WriteString("\n\n")

	if rm.finished {
		fmt.Fprintf(&b, "done: %d item(s), %d skipped\n", rm.done, rm.skipped)
	} else if rm.total > 0 {
		fmt.Fprintf(&b, "%s %d/%d\n%s\n",
			rm.spinner.View(), rm.done, rm.total,
			rm.progress.ViewAs(float64(rm.done)/float64(rm.total)))
	} else {
		fmt.Fprintf(&b, "%s %d item(s) processed\n", rm.spinner.View(), rm.done)
	}

	for _, line := range rm.recent {
		b.WriteString(faintStyle.Render("  " + line))
		b.WriteString("\n")
	}

	return b.String()
}

func modeLabel(mode StartMode) string {
	switch mode {
	case ModeInject:
		return "injecting"
	case ModeEval:
		return "evaluating"
	case ModeScore:
		return "scoring"
	}

	return "running"
}

func appendRecent(recent []string, line string) []string {
	recent = append(recent, line)
	if len(recent) > recentLines {
		recent = recent[len(recent)-recentLines:]
	}

	return recent
}
