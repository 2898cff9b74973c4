package main

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qtermsv/circuitio"
)

// keyMap holds the viewer bindings.
type keyMap struct {
	Prev  key.Binding
	Next  key.Binding
	First key.Binding
	Last  key.Binding
	Up    key.Binding
	Down  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.First, k.Last, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Prev, k.Next, k.First, k.Last}, {k.Up, k.Down, k.Quit}}
}

var defaultKeys = keyMap{
	Prev:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev gate")),
	Next:  key.NewBinding(key.WithKeys("right", "l", " "), key.WithHelp("→/l", "next gate")),
	First: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "initial")),
	Last:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "final")),
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// viewer steps through the snapshots of a recorded run.
type viewer struct {
	res    Result
	mode   circuitio.ControlledMode
	runErr error // set when the run stopped early

	pos      int // index into res.Snapshots
	width    int
	height   int
	amps     viewport.Model
	progress progress.Model
	help     help.Model
	keys     keyMap
}

func newViewer(res Result, cfg Config, runErr error) viewer {
	m := viewer{
		res:      res,
		mode:     cfg.Controlled,
		runErr:   runErr,
		amps:     viewport.New(40, 10),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     defaultKeys,
	}
	m.amps.SetContent(m.renderAmplitudes())
	return m
}

// currentStep is the program step whose output is on screen, -1 for the
// initial state.
func (m viewer) currentStep() int {
	return m.res.Snapshots[m.pos].Step
}

func (m viewer) fraction() float64 {
	if len(m.res.Snapshots) <= 1 {
		return 1
	}
	return float64(m.pos) / float64(len(m.res.Snapshots)-1)
}

// seek moves to snapshot pos, clamped to the recorded range.
func (m *viewer) seek(pos int) {
	pos = min(max(pos, 0), len(m.res.Snapshots)-1)
	if pos == m.pos {
		return
	}
	m.pos = pos
	m.amps.SetContent(m.renderAmplitudes())
}

func (m viewer) stateWidth() int {
	return max(m.width*2/5, 56)
}

func (m viewer) Init() tea.Cmd {
	return nil
}

func (m viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.amps.Width = m.stateWidth() - 4
		m.amps.Height = max(msg.Height-10, 4)
		m.progress.Width = max(msg.Width-8, 10)
		m.help.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.seek(m.pos - 1)
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.seek(m.pos + 1)
			return m, nil
		case key.Matches(msg, m.keys.First):
			m.seek(0)
			return m, nil
		case key.Matches(msg, m.keys.Last):
			m.seek(len(m.res.Snapshots) - 1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.amps, cmd = m.amps.Update(msg)
	return m, cmd
}

// View renders the UI.
func (m viewer) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	stateWidth := m.stateWidth()
	circuitWidth := max(m.width-stateWidth-4, 20)
	panelHeight := max(m.height-6, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, panelHeight)
	statePanel := m.renderStatePanel(stateWidth, panelHeight)
	controlsPanel := m.renderControlsPanel(m.width - 4)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, statePanel)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)
}
