package export

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/propsim/internal/storage"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 5 * vg.Inch
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func series(n int, x, y func(i int) float64) plotter.XYs {
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if xv, yv := x(i), y(i); finite(xv) && finite(yv) {
			pts = append(pts, plotter.XY{X: xv, Y: yv})
		}
	}
	return pts
}

// SweepChart plots CT, 10*CP and efficiency against advance ratio.
func SweepChart(rows []storage.SweepRow, title, path string) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Advance ratio J"
	p.Y.Label.Text = "Coefficient"
	p.Add(plotter.NewGrid())

	j := func(i int) float64 { return rows[i].J }
	err := plotutil.AddLinePoints(p,
		"CT", series(len(rows), j, func(i int) float64 { return rows[i].CT }),
		"10 CP", series(len(rows), j, func(i int) float64 { return 10 * rows[i].CP }),
		"eta", series(len(rows), j, func(i int) float64 { return rows[i].Efficiency }),
	)
	if err != nil {
		return fmt.Errorf("export: sweep chart: %w", err)
	}
	p.Legend.Top = true

	return p.Save(chartWidth, chartHeight, path)
}

// LoadingChart plots thrust, torque and circulation distributions along
// the blade, each scaled to its own peak.
func LoadingChart(rows []storage.ElementRow, title, path string) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	peak := func(v func(i int) float64) float64 {
		m := 0.0
		for i := range rows {
			if x := math.Abs(v(i)); finite(x) && x > m {
				m = x
			}
		}
		if m == 0 {
			return 1
		}
		return m
	}
	scaled := func(v func(i int) float64) plotter.XYs {
		s := peak(v)
		return series(len(rows),
			func(i int) float64 { return rows[i].Radius },
			func(i int) float64 { return v(i) / s })
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Radius (m)"
	p.Y.Label.Text = "Normalised loading"
	p.Add(plotter.NewGrid())

	err := plotutil.AddLinePoints(p,
		"dT/dr", scaled(func(i int) float64 { return rows[i].DTdr }),
		"dQ/dr", scaled(func(i int) float64 { return rows[i].DQdr }),
		"Gamma", scaled(func(i int) float64 { return rows[i].Gamma }),
	)
	if err != nil {
		return fmt.Errorf("export: loading chart: %w", err)
	}

	return p.Save(chartWidth, chartHeight, path)
}

// Chart draws the chart that fits the run kind.
func Chart(data *RunData, path string) error {
	title := data.Meta.Name
	if len(data.Sweep) > 0 {
		return SweepChart(data.Sweep, title+" sweep", path)
	}
	return LoadingChart(data.Elements, title+" blade loading", path)
}
