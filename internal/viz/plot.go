package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/propsim/internal/storage"
)

const (
	plotHeight = 10
	plotWidth  = 70
)

// finiteOnly drops NaN and Inf samples, which asciigraph cannot scale.
func finiteOnly(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Plot draws one series, or returns "" when nothing is plottable.
func Plot(caption string, data []float64) string {
	data = finiteOnly(data)
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// LoadingPlot draws the thrust loading dT/dr from hub to tip.
func LoadingPlot(dTdr []float64) string {
	return Plot("dT/dr (N/m) hub to tip", dTdr)
}

// SweepPlot draws CT and CP of a stored sweep on one chart.
func SweepPlot(rows []storage.SweepRow) string {
	ct := make([]float64, 0, len(rows))
	cp := make([]float64, 0, len(rows))
	for _, r := range rows {
		if math.IsNaN(r.CT) || math.IsNaN(r.CP) {
			continue
		}
		ct = append(ct, r.CT)
		cp = append(cp, r.CP)
	}
	if len(ct) == 0 {
		return ""
	}
	return asciigraph.PlotMany([][]float64{ct, cp},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("CT (green) and CP (red) over the sweep"),
	)
}

// EfficiencyPlot draws the propulsive efficiency of a stored sweep.
func EfficiencyPlot(rows []storage.SweepRow) string {
	eta := make([]float64, len(rows))
	for i, r := range rows {
		eta[i] = r.Efficiency
	}
	return Plot("efficiency over the sweep", eta)
}
