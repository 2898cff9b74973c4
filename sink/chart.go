package sink

import (
	"fmt"
	"io"
	"math/bits"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"qtermsv/qsim"
)

// MaxBars caps the basis states drawn in the probability chart. Larger
// states keep only their most probable entries.
const MaxBars = 256

// Ket formats basis index i of an n-qubit register as |q(n-1)...q0>.
func Ket(i, n int) string {
	if n <= 0 {
		return "|>"
	}
	return fmt.Sprintf("|%0*b>", n, i)
}

// chartIndices picks the basis states to plot, in index order.
func chartIndices(probs []float64) []int {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	if len(idx) <= MaxBars {
		return idx
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return probs[idx[a]] > probs[idx[b]]
	})
	idx = idx[:MaxBars]
	sort.Ints(idx)
	return idx
}

func newProbabilityChart(title string, probs []float64, n int) *charts.Bar {
	idx := chartIndices(probs)
	labels := make([]string, len(idx))
	items := make([]opts.BarData, len(idx))
	for k, i := range idx {
		labels[k] = Ket(i, n)
		items[k] = opts.BarData{Value: probs[i]}
	}

	bar := charts.NewBar()
	subtitle := fmt.Sprintf("%d qubits, %d of %d basis states", n, len(idx), len(probs))
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("probability", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

func newMarginalChart(marginals []qsim.QubitProbability) *charts.Bar {
	labels := make([]string, len(marginals))
	ones := make([]opts.BarData, len(marginals))
	for q, m := range marginals {
		labels[q] = fmt.Sprintf("q[%d]", q)
		ones[q] = opts.BarData{Value: m.Prob1}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "P(qubit = 1)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("P(1)", ones)
	return bar
}

// WriteChart renders an HTML page with the basis-state probabilities and
// the per-qubit marginals of one state.
func WriteChart(w io.Writer, title string, probs []float64, marginals []qsim.QubitProbability) error {
	if len(probs) == 0 || len(probs)&(len(probs)-1) != 0 {
		return fmt.Errorf("%w: chart needs 2^n probabilities, got %d", ErrFormat, len(probs))
	}
	n := bits.TrailingZeros(uint(len(probs)))
	if len(marginals) != n {
		return fmt.Errorf("%w: %d marginals for %d qubits", ErrFormat, len(marginals), n)
	}

	page := components.NewPage()
	page.AddCharts(newProbabilityChart(title, probs, n), newMarginalChart(marginals))
	return page.Render(w)
}
