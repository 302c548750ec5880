package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "sieve.dev/pkg/sieve/internal/model"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

func sampleReport() m.Report {
	report := m.NewReport("session", m.Target{TestFile: "tests/test_calc.py", Language: m.LanguagePython})
	report.BaselineLines = 12
	report.Requests = 4
	report.Generated = 5
	report.RejectedBy[m.StageExecution] = 2
	report.RejectedBy[m.StageDuplicate] = 1
	report.RejectedFor[m.ReasonExecutionFailed] = 2
	report.RejectedFor[m.ReasonDuplicate] = 1
	report.Survivors = append(report.Survivors,
		m.TestCaseResult{Candidate: m.Candidate{Seq: 3, Name: "test_neg", Strategy: "corner-cases", Temperature: 0.7}, LinesAdded: 3},
		m.TestCaseResult{Candidate: m.Candidate{Seq: 4, Name: "test_zero", Strategy: "extend-test"}, LinesAdded: 1, FilesNewlyCovered: []string{"calc.py"}},
	)

	return report
}

func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd, stdout, stderr
}

func TestSimpleUI_Session(t *testing.T) {
	cmd, stdout, stderr := newTestCmd()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx, StartInfo{
		TestFile:          "tests/test_calc.py",
		Strategies:        []string{"extend-test"},
		Temperatures:      []float64{0.2, 0.8},
		GenerationWorkers: 2,
		FiltrationWorkers: 4,
	}))

	generated := telemetry.NewEvent(telemetry.KindCandidateGenerated).ForCandidate(m.Candidate{Seq: 3, Name: "test_neg", Strategy: "corner-cases", Temperature: 0.7})
	ui.Emit(generated)

	rejected := telemetry.NewEvent(telemetry.KindVerdict).ForCandidate(m.Candidate{Seq: 5, Name: "test_bad"})
	rejected.Stage = m.StageExecution
	rejected.Reason = m.ReasonExecutionFailed
	rejected.Detail = "exit code 1"
	ui.Emit(rejected)

	ui.Emit(telemetry.NewEvent(telemetry.KindStageEntered))

	require.NoError(t, ui.DisplayReport(ctx, sampleReport(), nil))
	ui.Close(ctx)

	out := stderr.String()
	assert.Empty(t, stdout.String(), "progress never goes to stdout")
	assert.Contains(t, out, "Improving tests/test_calc.py with 1 strategy at 2 temperature(s) (2 generation / 4 filtration workers)")
	assert.Contains(t, out, "Generated #3 test_neg (corner-cases @ 0.70)")
	assert.Contains(t, out, "Completed #5 test_bad -> rejected at Execution (execution-failed): exit code 1")
	assert.NotContains(t, out, "stage.entered")
	assert.Contains(t, out, "Baseline: 12 covered line(s), 4 generation request(s)")
	assert.Contains(t, out, "#3 test_neg")
	assert.Contains(t, out, "corner-cases")
	assert.Contains(t, out, "execution-failed")
}

func TestSimpleUI_DisplayReport_Aborted(t *testing.T) {
	cmd, _, stderr := newTestCmd()
	ui := NewSimpleUI(cmd)

	report := m.NewReport("session", m.Target{})

	require.NoError(t, ui.DisplayReport(context.Background(), report, errors.New("infrastructure failure: pytest missing")))

	assert.Contains(t, stderr.String(), "No candidate survived the filtration.")
	assert.Contains(t, stderr.String(), "Session aborted: infrastructure failure: pytest missing")
}

func TestDescribeEvent(t *testing.T) {
	survived := telemetry.NewEvent(telemetry.KindVerdict).ForCandidate(m.Candidate{Seq: 1, Name: "test_a"})
	survived.Stage = m.StageSurvived

	failed := telemetry.NewEvent(telemetry.KindGenerationFailed)
	failed.Strategy = "extend-test"
	failed.Temperature = 0.5
	failed.Detail = "boom"

	baseline := telemetry.NewEvent(telemetry.KindBaseline)
	baseline.Data = map[string]any{"lines": 7}

	tests := []struct {
		name  string
		event telemetry.Event
		want  string
	}{
		{"survived", survived, "Completed #1 test_a -> survived"},
		{"generation failed", failed, "Generation failed (extend-test @ 0.50): boom"},
		{"baseline", baseline, "Baseline coverage: 7 line(s)"},
		{"ignored", telemetry.NewEvent(telemetry.KindStagePassed), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeEvent(tt.event))
		})
	}
}

func TestProgressModel(t *testing.T) {
	model := newProgressModel(StartInfo{TestFile: "tests/test_calc.py"}, 80)

	assert.Contains(t, model.View(), "measuring baseline coverage")

	baseline := telemetry.NewEvent(telemetry.KindBaseline)
	baseline.Data = map[string]any{"lines": 12}

	verdict := telemetry.NewEvent(telemetry.KindVerdict).ForCandidate(m.Candidate{Seq: 1, Name: "test_a"})
	verdict.Stage = m.StageFlakiness
	verdict.Reason = m.ReasonFlaky

	var next tea.Model = model
	for _, event := range []telemetry.Event{
		baseline,
		telemetry.NewEvent(telemetry.KindCandidateGenerated),
		telemetry.NewEvent(telemetry.KindCandidateGenerated),
		verdict,
		telemetry.NewEvent(telemetry.KindGenerationEmpty),
	} {
		next, _ = next.Update(eventMsg(event))
	}

	pm, ok := next.(progressModel)
	require.True(t, ok)

	assert.Equal(t, 12, pm.baseline)
	assert.Equal(t, 2, pm.generated)
	assert.Equal(t, 1, pm.rejected)
	assert.Equal(t, 1, pm.failures)
	assert.Equal(t, 1, pm.byStage[m.StageFlakiness])
	assert.InDelta(t, 0.5, pm.ratio(), 1e-9)

	view := pm.View()
	assert.Contains(t, view, "generated 2 | survived 0 | rejected 1 | failed generations 1")
	assert.Contains(t, view, "Flakiness 1")
	assert.Contains(t, view, "rejected at Flakiness (flaky)")

	next, cmd := pm.Update(finishMsg{})
	assert.NotNil(t, cmd)
	assert.Empty(t, next.View())
}

func TestProgressModel_RecentIsBounded(t *testing.T) {
	var model tea.Model = newProgressModel(StartInfo{}, 80)

	for i := 0; i < recentLines+5; i++ {
		verdict := telemetry.NewEvent(telemetry.KindVerdict).ForCandidate(m.Candidate{Seq: uint64(i + 1)})
		verdict.Stage = m.StageSurvived
		model, _ = model.Update(eventMsg(verdict))
	}

	pm := model.(progressModel)
	assert.Len(t, pm.recent, recentLines)
	assert.Contains(t, pm.recent[recentLines-1], "#13")
}

func TestTUI_DisplayReportWithoutStart(t *testing.T) {
	var out bytes.Buffer

	ui := NewTUI(&out)
	ui.Emit(telemetry.NewEvent(telemetry.KindCandidateGenerated))
	ui.Close(context.Background())

	require.NoError(t, ui.DisplayReport(context.Background(), sampleReport(), nil))
	assert.Contains(t, out.String(), "SURVIVORS 2")
}

func TestNewUI(t *testing.T) {
	cmd, _, _ := newTestCmd()

	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
	assert.IsType(t, &TUI{}, NewUI(cmd, true))
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.Equal(t, 80, terminalWidth(&bytes.Buffer{}, 80))
}

func TestTruncateLine(t *testing.T) {
	assert.Equal(t, "short", truncateLine("short", 10))
	assert.Equal(t, "abcd…", truncateLine("abcdefgh", 5))
	assert.Equal(t, "a b", truncateLine("a\nb", 10))
}

func TestStartInfo_Requests(t *testing.T) {
	info := StartInfo{Strategies: []string{"a", "b"}, Temperatures: []float64{0.1, 0.5, 0.9}}

	assert.Equal(t, 6, info.Requests(true))
	assert.Equal(t, 1, info.Requests(false))
}
