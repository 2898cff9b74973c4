package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qtermsv/circuitio"
	"qtermsv/sink"
)

// padCenter centers s in width visible columns.
func padCenter(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// targetSymbol is what a step draws on its target wire.
func targetSymbol(s circuitio.Step, mode circuitio.ControlledMode) string {
	if s.Op == circuitio.OpExchange || (s.Op == circuitio.OpControlled && mode == circuitio.Exchange) {
		return "⊕"
	}
	sym := strings.ToUpper(s.Name)
	if e, ok := circuitio.Lookup(s.Name); ok {
		sym = e.Symbol
		if e.Qubits == 2 {
			sym = strings.TrimPrefix(sym, "●─")
		}
	}
	return truncate(sym, gateNameW)
}

// cellFor renders the cell of step s on qubit q, or a bare wire.
func cellFor(s *circuitio.Step, q int, mode circuitio.ControlledMode, style lipgloss.Style) string {
	if s == nil {
		return strings.Repeat("─", cellW)
	}
	lo, hi := s.Target, s.Target
	if s.Op != circuitio.OpSingle {
		lo, hi = min(s.Control, s.Target), max(s.Control, s.Target)
	}
	halfW := cellW / 2
	switch {
	case s.Op != circuitio.OpSingle && q == s.Control:
		return strings.Repeat("─", halfW) + style.Render("●") + strings.Repeat("─", cellW-halfW-1)
	case q == s.Target:
		sym := targetSymbol(*s, mode)
		if sym == "⊕" || sym == "●" {
			return strings.Repeat("─", halfW) + style.Render(sym) + strings.Repeat("─", cellW-halfW-1)
		}
		box := "┤" + padCenter(sym, gateNameW) + "├"
		dash := cellW - lipgloss.Width(box)
		return strings.Repeat("─", dash/2) + style.Render(box) + strings.Repeat("─", dash-dash/2)
	case q > lo && q < hi:
		return strings.Repeat("─", halfW) + style.Render("┼") + strings.Repeat("─", cellW-halfW-1)
	}
	return strings.Repeat("─", cellW)
}

// stepAt returns the step of layer that touches qubit q, or failing that
// the controlled step whose span crosses q; -1 when the wire is bare.
func stepAt(p circuitio.Program, layer []int, q int) int {
	for _, i := range layer {
		for _, t := range p.Steps[i].Qubits() {
			if t == q {
				return i
			}
		}
	}
	for _, i := range layer {
		s := p.Steps[i]
		if s.Op != circuitio.OpSingle && q > min(s.Control, s.Target) && q < max(s.Control, s.Target) {
			return i
		}
	}
	return -1
}

// expanded reports whether step i is one of several steps a single source
// gate was expanded into, as swap is.
func expanded(p circuitio.Program, i int) bool {
	idx := p.Steps[i].Index
	return (i > 0 && p.Steps[i-1].Index == idx) || (i+1 < len(p.Steps) && p.Steps[i+1].Index == idx)
}

// renderCircuitPanel draws the wires moment by moment, highlighting the
// gate the viewer is on.
func (m viewer) renderCircuitPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Circuit"))
	fmt.Fprintf(&sb, "  %s\n\n", dimStyle.Render(fmt.Sprintf("%s · %d qubits · depth %d",
		m.res.Program.Name, m.res.Program.Qubits, m.res.DAG.Depth())))

	p := m.res.Program
	cur := m.currentStep()
	layers := m.res.DAG.Layers

	visible := max((width-labelVisualW-4)/cellW, 1)
	start := 0
	if cur >= 0 {
		start = max(m.res.DAG.LayerOf(cur)-visible/2, 0)
	}
	end := min(start+visible, len(layers))

	header := strings.Repeat(" ", labelVisualW)
	for l := start; l < end; l++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", l), cellW))
	}
	sb.WriteString(header + "\n")

	for q := 0; q < p.Qubits; q++ {
		line := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", q))) + "──"
		for l := start; l < end; l++ {
			idx := stepAt(p, layers[l], q)
			var at *circuitio.Step
			if idx >= 0 {
				at = &p.Steps[idx]
			}
			style := gateStyle
			switch {
			case idx == cur:
				style = activeGateStyle
			case idx > cur:
				style = dimStyle
			}
			line += cellFor(at, q, m.mode, style)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	if cur >= 0 {
		s := p.Steps[cur]
		fmt.Fprintf(&sb, "  %s %s  %s", dimStyle.Render(fmt.Sprintf("gate %d/%d", cur+1, len(p.Steps))),
			activeGateStyle.Render(m.res.Snapshots[m.pos].Gate),
			dimStyle.Render(fmt.Sprintf("moment %d", m.res.DAG.LayerOf(cur))))
		if expanded(p, cur) {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  (part of source gate %d)", s.Index)))
		}
	} else {
		sb.WriteString(dimStyle.Render("  initial state"))
	}
	if m.runErr != nil && m.pos == len(m.res.Snapshots)-1 {
		sb.WriteString("\n  ")
		sb.WriteString(errorStyle.Render(m.runErr.Error()))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderAmplitudes lists every basis state of the current snapshot with a
// probability bar.
func (m viewer) renderAmplitudes() string {
	snap := m.res.Snapshots[m.pos]
	n := m.res.Program.Qubits
	var sb strings.Builder
	for i, a := range snap.Amps {
		p := snap.Probs[i]
		filled := int(math.Round(p * ampBarW))
		filled = min(max(filled, 0), ampBarW)
		bar := probBarStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("·", ampBarW-filled))
		ket := sink.Ket(i, n)
		if p < 1e-12 {
			ket = dimStyle.Render(ket)
		} else {
			ket = gateStyle.Render(ket)
		}
		fmt.Fprintf(&sb, "%s %+.4f%+.4fi %s %6.2f%%\n", ket, real(a), imag(a), bar, 100*p)
	}

	sb.WriteString("\n")
	for q, mp := range snap.Marginals {
		fmt.Fprintf(&sb, "%s P(1) = %.4f\n", qubitLabelStyle.Render(fmt.Sprintf("q[%d]", q)), mp.Prob1)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderStatePanel frames the scrollable amplitude list.
func (m viewer) renderStatePanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("State"))
	sb.WriteString("\n\n")
	sb.WriteString(m.amps.View())
	return stateStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the progress bar and key help.
func (m viewer) renderControlsPanel(width int) string {
	var sb strings.Builder
	sb.WriteString(m.progress.ViewAs(m.fraction()))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return controlsStyle.Width(width).Render(sb.String())
}
