// Package report renders an optional error-trend chart from a
// comparison run's per-diagnostic records, for the -plot flag.
package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"numdiff/internal/engine"
)

// ErrorSeries turns a slice of number-kind Diagnostics into three
// columns to be plotted, one per metric.
type ErrorSeries struct {
	Abs, Rel, Dig plotter.XYs
}

// CollectErrorSeries filters diags down to "number"-kind records and
// buckets their metric values by sequence order.
func CollectErrorSeries(diags []engine.Diagnostic) ErrorSeries {
	var s ErrorSeries
	for _, d := range diags {
		if d.Kind != "number" {
			continue
		}
		x := float64(d.Seq)
		s.Abs = append(s.Abs, plotter.XY{X: x, Y: d.AbsErr})
		s.Rel = append(s.Rel, plotter.XY{X: x, Y: d.RelErr})
		s.Dig = append(s.Dig, plotter.XY{X: x, Y: d.DigErr})
	}
	return s
}

// SaveErrorTrend renders abs/rel/dig error vs. diagnostic sequence to a
// PNG at path, sized 8x5 inches.
func SaveErrorTrend(s ErrorSeries, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "diagnostic #"
	p.Y.Label.Text = "error"

	series := []struct {
		name string
		pts  plotter.XYs
	}{
		{"abs", s.Abs},
		{"rel", s.Rel},
		{"dig", s.Dig},
	}
	for _, sr := range series {
		if len(sr.pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(sr.pts)
		if err != nil {
			return fmt.Errorf("report: building %s series: %w", sr.name, err)
		}
		p.Add(line)
		p.Legend.Add(sr.name, line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("report: saving %s: %w", path, err)
	}
	return nil
}
