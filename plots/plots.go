// Package plots renders seasonal analysis grids and loaded time series
// to image files.
package plots

import (
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/JonathonMSmith/pysat/frame"
	"github.com/JonathonMSmith/pysat/season"
)

// HeatmapConfig controls grid rendering. Zero values fall back to the
// grid's own range and a 6x4 inch canvas.
type HeatmapConfig struct {
	Title  string
	XLabel string
	YLabel string
	Min    float64
	Max    float64
	Width  vg.Length
	Height vg.Length
}

// gridXYZ adapts a season grid to the plotter interface. Bin centers
// become the plotted coordinates.
type gridXYZ struct {
	g *season.Grid2D
}

func (d gridXYZ) Dims() (int, int) { return len(d.g.Values), len(d.g.Values[0]) }

func (d gridXYZ) X(c int) float64 {
	return (d.g.XEdges[c] + d.g.XEdges[c+1]) / 2
}

func (d gridXYZ) Y(r int) float64 {
	return (d.g.YEdges[r] + d.g.YEdges[r+1]) / 2
}

func (d gridXYZ) Z(c, r int) float64 { return d.g.Values[c][r] }

func (d gridXYZ) valueRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, col := range d.g.Values {
		for _, v := range col {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}

// Heatmap writes the grid as a heatmap image. The output format follows
// the file extension (.png, .svg, .pdf).
func Heatmap(g *season.Grid2D, cfg HeatmapConfig, path string) error {
	if g == nil || len(g.Values) == 0 || len(g.Values[0]) == 0 {
		return fmt.Errorf("plots: empty grid")
	}

	data := gridXYZ{g: g}
	lo, hi := cfg.Min, cfg.Max
	if lo == hi {
		lo, hi = data.valueRange()
	}

	pal := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(data, pal)
	hm.Min, hm.Max = lo, hi
	hm.NaN = nil

	p := plot.New()
	p.Title.Text = cfg.Title
	if p.Title.Text == "" {
		p.Title.Text = g.Variable
	}
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	p.Add(hm)

	w, h := cfg.Width, cfg.Height
	if w == 0 {
		w = 6 * vg.Inch
	}
	if h == 0 {
		h = 4 * vg.Inch
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("plots: saving %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Series writes one loaded variable as a line plot against elapsed time
// in hours from the first sample.
func Series(s *frame.Series, title, path string) error {
	if s == nil || len(s.Times) == 0 {
		return fmt.Errorf("plots: empty series")
	}

	pts := make(plotter.XYs, 0, len(s.Times))
	t0 := s.Times[0]
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{
			X: s.Times[i].Sub(t0).Hours(),
			Y: v,
		})
	}
	if len(pts) == 0 {
		return fmt.Errorf("plots: series contains no finite values")
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("plots: building line: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "hours since start"
	p.Add(plotter.NewGrid(), line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("plots: saving %s: %w", filepath.Base(path), err)
	}
	return nil
}
