package sink

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"qtermsv/qsim"
)

var (
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ff9e64"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	ketStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

// Report describes one finished run.
type Report struct {
	ID        uuid.UUID
	Circuit   string
	Qubits    int
	Gates     int
	Depth     int
	Precision string
	Layout    string
	Storage   string
	Scan      string
	Elapsed   time.Duration
	Norm      float64

	Fingerprint string
	Top         []qsim.BasisState

	// Transfer counters, set when the run went through the staged executor.
	Launches int
	BytesIn  int64
	BytesOut int64
	Retries  int

	Output string
	Chart  string
}

// NewReport starts a report with a fresh run ID.
func NewReport(circuit string) Report {
	return Report{ID: uuid.New(), Circuit: circuit}
}

func row(sb *strings.Builder, key, value string) {
	fmt.Fprintf(sb, "%s %s\n", keyStyle.Render(fmt.Sprintf("%-12s", key)), value)
}

// RenderSummary draws r as a bordered terminal panel.
func RenderSummary(r Report) string {
	var sb strings.Builder
	sb.WriteString(summaryTitleStyle.Render("Simulation complete"))
	sb.WriteString("\n\n")

	row(&sb, "run", r.ID.String())
	if r.Circuit != "" {
		row(&sb, "circuit", r.Circuit)
	}
	row(&sb, "shape", fmt.Sprintf("%d qubits, %d gates, depth %d", r.Qubits, r.Gates, r.Depth))
	row(&sb, "precision", r.Precision)
	row(&sb, "layout", fmt.Sprintf("%s / %s", r.Layout, r.Storage))
	row(&sb, "scan", r.Scan)
	row(&sb, "elapsed", r.Elapsed.Round(time.Microsecond).String())
	row(&sb, "norm", fmt.Sprintf("%.9f", r.Norm))
	if r.Launches > 0 {
		row(&sb, "device", fmt.Sprintf("%d launches, %d B in, %d B out, %d retries", r.Launches, r.BytesIn, r.BytesOut, r.Retries))
	}
	row(&sb, "fingerprint", mutedStyle.Render(r.Fingerprint))
	if r.Output != "" {
		row(&sb, "output", r.Output)
	}
	if r.Chart != "" {
		row(&sb, "chart", r.Chart)
	}

	if len(r.Top) > 0 {
		sb.WriteString("\n")
		sb.WriteString(summaryTitleStyle.Render("Most probable"))
		sb.WriteString("\n")
		for _, s := range r.Top {
			fmt.Fprintf(&sb, "  %s  %6.2f%%  %s\n",
				ketStyle.Render(Ket(s.Index, r.Qubits)),
				100*s.Prob,
				mutedStyle.Render(fmt.Sprintf("%.4f%+.4fi", real(s.Amplitude), imag(s.Amplitude))))
		}
	}
	return summaryStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
