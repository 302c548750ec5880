package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

const recentLines = 8

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	survivedMark = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	rejectedMark = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("✗")
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// TUI renders a live progress view with Bubble Tea.
type TUI struct {
	output  io.Writer
	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

type eventMsg telemetry.Event

type finishMsg struct{}

// Start launches the Bubble Tea program. Input is left alone so that Ctrl+C
// reaches the process signal handler and cancels the session.
func (t *TUI) Start(ctx context.Context, info StartInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	program := tea.NewProgram(
		newProgressModel(info, terminalWidth(t.output, 80)),
		tea.WithOutput(t.output),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
	)

	done := make(chan struct{})

	go func() {
		defer close(done)

		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			slog.Debug("Progress view stopped", "error", err)
		}
	}()

	t.mu.Lock()
	t.program = program
	t.done = done
	t.mu.Unlock()

	return nil
}

// Emit implements telemetry.Sink. It blocks until the program accepts the
// event or has stopped.
func (t *TUI) Emit(event telemetry.Event) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(eventMsg(event))
}

// Close stops the program and waits for it to restore the terminal.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program = nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(finishMsg{})
	<-done
}

// DisplayReport prints the summary once the live view is gone.
func (t *TUI) DisplayReport(ctx context.Context, report m.Report, err error) error {
	t.Close(ctx)

	_, writeErr := fmt.Fprint(t.output, renderReport(report))

	if err != nil {
		_, _ = fmt.Fprintf(t.output, "%s Session aborted: %v\n", rejectedMark, err)
	}

	return writeErr
}

// progressModel is the Bubble Tea model of a running session.
type progressModel struct {
	info      StartInfo
	spinner   spinner.Model
	bar       progress.Model
	width     int
	baseline  int
	generated int
	survived  int
	rejected  int
	failures  int
	byStage   map[m.Stage]int
	recent    []string
	finished  bool
}

func newProgressModel(info StartInfo, width int) progressModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = barWidth(width)

	return progressModel{
		info:     info,
		spinner:  spin,
		bar:      bar,
		width:    width,
		baseline: -1,
		byStage:  map[m.Stage]int{},
	}
}

func barWidth(width int) int {
	if width-4 < 10 {
		return 10
	}

	return width - 4
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case finishMsg:
		pm.finished = true
		return pm, tea.Quit

	case tea.WindowSizeMsg:
		pm.width = msg.Width
		pm.bar.Width = barWidth(msg.Width)

		return pm, nil

	case eventMsg:
		return pm.apply(telemetry.Event(msg)), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) apply(event telemetry.Event) progressModel {
	switch event.Kind {
	case telemetry.KindBaseline:
		if lines, ok := event.Data["lines"].(int); ok {
			pm.baseline = lines
		}
	case telemetry.KindCandidateGenerated:
		pm.generated++
	case telemetry.KindGenerationFailed, telemetry.KindGenerationEmpty:
		pm.failures++
	case telemetry.KindVerdict:
		mark := survivedMark

		if event.Stage == m.StageSurvived {
			pm.survived++
		} else {
			pm.rejected++
			pm.byStage[event.Stage]++
			mark = rejectedMark
		}

		line := fmt.Sprintf("%s %s", mark, truncateLine(describeEvent(event), pm.width-4))
		pm.recent = append(pm.recent, line)

		if len(pm.recent) > recentLines {
			pm.recent = pm.recent[len(pm.recent)-recentLines:]
		}
	}

	return pm
}

// ratio is the share of generated candidates that reached a verdict.
func (pm progressModel) ratio() float64 {
	if pm.generated == 0 {
		return 0
	}

	return float64(pm.survived+pm.rejected) / float64(pm.generated)
}

func (pm progressModel) View() string {
	if pm.finished {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("sieve") + " " + string(pm.info.TestFile) + "\n\n")

	if pm.baseline < 0 {
		fmt.Fprintf(&b, "  %s measuring baseline coverage\n", pm.spinner.View())
		return b.String()
	}

	fmt.Fprintf(&b, "  %s baseline %d line(s) | generated %d | survived %d | rejected %d",
		pm.spinner.View(), pm.baseline, pm.generated, pm.survived, pm.rejected)

	if pm.failures > 0 {
		fmt.Fprintf(&b, " | failed generations %d", pm.failures)
	}

	b.WriteString("\n\n  " + pm.bar.ViewAs(pm.ratio()) + "\n\n")

	stages := make([]string, 0, len(m.Stages))
	for _, stage := range m.Stages {
		stages = append(stages, fmt.Sprintf("%s %d", stage, pm.byStage[stage]))
	}

	b.WriteString(faintStyle.Render("  "+strings.Join(stages, " · ")) + "\n\n")

	for _, line := range pm.recent {
		b.WriteString("  " + line + "\n")
	}

	return b.String()
}
