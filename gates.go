package main

import (
	"fmt"
	"strings"

	"qtermsv/circuitio"
)

// renderCatalog lists every category of cat with its gates.
func renderCatalog(cat []circuitio.Category) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Supported Gates"))
	sb.WriteString("\n")

	for i, c := range cat {
		sb.WriteString("\n")
		sb.WriteString(activeGateStyle.Render(" " + c.Name + " "))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(strings.Repeat("─", 48)))
		sb.WriteString("\n")
		for _, e := range c.Entries {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-20s", e.Name)))
			sb.WriteString(gateStyle.Render(fmt.Sprintf("%-6s", e.Symbol)))
			sb.WriteString(dimStyle.Render(gateUsage(e)))
			sb.WriteString("\n")
		}
		if i == len(cat)-1 {
			sb.WriteString("\n")
			sb.WriteString(dimStyle.Render(" ccx, reset, measure-conditioned gates are not supported"))
		}
	}
	return menuBorderStyle.Render(sb.String())
}

// gateUsage renders a QASM call for e, e.g. "crx(pi/2) c, t".
func gateUsage(e circuitio.Entry) string {
	var sb strings.Builder
	sb.WriteString(e.Gate)
	if e.Params > 0 {
		fmt.Fprintf(&sb, "(%s)", e.Example)
	}
	switch e.Qubits {
	case 2:
		sb.WriteString(" c, t")
	default:
		sb.WriteString(" q")
	}
	return sb.String()
}
