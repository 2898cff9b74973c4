package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsv/circuitio"
)

func recordedViewer(t *testing.T) viewer {
	t.Helper()
	p, err := circuitio.ParseQASM("qreg q[3];\nh q[0];\nx q[2];\ncx q[0], q[2];\nrz(pi/4) q[1];")
	require.NoError(t, err)
	res, err := simulate(context.Background(), baseConfig(), p, quiet(), true)
	require.NoError(t, err)

	m := newViewer(res, baseConfig(), nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(viewer)
}

func press(m viewer, msg tea.KeyMsg) (viewer, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(viewer), cmd
}

func TestViewerStepping(t *testing.T) {
	m := recordedViewer(t)
	assert.Equal(t, 0, m.pos)
	assert.Equal(t, -1, m.currentStep())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.pos, "cannot step before the initial state")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	assert.Equal(t, 2, m.pos)
	assert.Equal(t, 1, m.currentStep())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 4, m.pos)
	assert.Equal(t, 1.0, m.fraction())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 4, m.pos, "cannot step past the final state")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, m.pos)
	assert.Equal(t, 0.0, m.fraction())
}

func TestViewerQuit(t *testing.T) {
	m := recordedViewer(t)
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestViewerRendersCurrentGate(t *testing.T) {
	m := recordedViewer(t)
	assert.Contains(t, m.View(), "initial state")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnd})
	view := m.View()
	assert.Contains(t, view, "gate 4/4")
	assert.Contains(t, view, "rz(pi/4) q[1]")
	assert.Contains(t, view, "|101>")
	assert.Contains(t, view, "q[2]")
}

func TestViewerShowsRunError(t *testing.T) {
	m := recordedViewer(t)
	m.runErr = errors.New("run abandoned")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Contains(t, m.View(), "run abandoned")
}

func TestViewerLoadingBeforeResize(t *testing.T) {
	p, err := circuitio.ParseQASM("qreg q[1];\nh q[0];")
	require.NoError(t, err)
	res, err := simulate(context.Background(), baseConfig(), p, quiet(), true)
	require.NoError(t, err)
	assert.Equal(t, "Loading...", newViewer(res, baseConfig(), nil).View())
}

func TestTargetSymbol(t *testing.T) {
	cases := []struct {
		step circuitio.Step
		mode circuitio.ControlledMode
		want string
	}{
		{circuitio.Step{Name: "h", Op: circuitio.OpSingle}, circuitio.Exchange, "H"},
		{circuitio.Step{Name: "rx", Op: circuitio.OpSingle}, circuitio.Exchange, "RX"},
		{circuitio.Step{Name: "cx", Op: circuitio.OpExchange}, circuitio.Exchange, "⊕"},
		{circuitio.Step{Name: "crx", Op: circuitio.OpControlledUnitary}, circuitio.Exchange, "RX"},
		{circuitio.Step{Name: "cz", Op: circuitio.OpControlledUnitary}, circuitio.Exchange, "●"},
		{circuitio.Step{Name: "CZ", Op: circuitio.OpControlled}, circuitio.Exchange, "⊕"},
		{circuitio.Step{Name: "CZ", Op: circuitio.OpControlled}, circuitio.Unitary, "●"},
		{circuitio.Step{Name: "mystery", Op: circuitio.OpSingle}, circuitio.Exchange, "MYS"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, targetSymbol(tc.step, tc.mode), tc.step.Name)
	}
}

func TestExpandedMarksOnlySplitGates(t *testing.T) {
	csvProg, err := circuitio.ReadCSV(strings.NewReader("a,b,c,d,e,2\n1,H,NaN,0,\"[[0.7071,0.7071],[0.7071,-0.7071]]\"\n2,CNOT,0,1\n3,X,NaN,1,\"[[0,1],[1,0]]\"\n"))
	require.NoError(t, err)
	for i := range csvProg.Steps {
		assert.False(t, expanded(csvProg, i), "step %d", i)
	}

	swap, err := circuitio.ParseQASM("qreg q[2];\nh q[0];\nswap q[0], q[1];")
	require.NoError(t, err)
	require.Len(t, swap.Steps, 4)
	assert.False(t, expanded(swap, 0))
	for i := 1; i < 4; i++ {
		assert.True(t, expanded(swap, i), "step %d", i)
	}

	res, err := simulate(context.Background(), baseConfig(), csvProg, quiet(), true)
	require.NoError(t, err)
	m := newViewer(res, baseConfig(), nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(viewer)
	for range csvProg.Steps {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
		assert.NotContains(t, m.View(), "source gate")
	}
}
