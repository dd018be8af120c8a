// Package season computes seasonal summaries over a date-bounded
// instrument iteration: two-dimensional binned medians and occurrence
// probabilities, keyed by any two loaded variables.
package season

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/JonathonMSmith/pysat/instrument"
	"github.com/JonathonMSmith/pysat/orbits"
	"github.com/JonathonMSmith/pysat/stats"
)

// Bins returns n+1 evenly spaced bin edges spanning [lo, hi].
func Bins(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	edges := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + step*float64(i)
	}
	return edges
}

// Grid2D is the result of a 2-D seasonal analysis for one variable.
// Values and Counts are indexed [x][y].
type Grid2D struct {
	Variable string
	XEdges   []float64
	YEdges   []float64
	Values   [][]float64
	Counts   [][]int
}

func newGrid(variable string, xEdges, yEdges []float64) *Grid2D {
	nx, ny := len(xEdges)-1, len(yEdges)-1
	g := &Grid2D{
		Variable: variable,
		XEdges:   xEdges,
		YEdges:   yEdges,
		Values:   make([][]float64, nx),
		Counts:   make([][]int, nx),
	}
	for i := range g.Values {
		g.Values[i] = make([]float64, ny)
		g.Counts[i] = make([]int, ny)
		for j := range g.Values[i] {
			g.Values[i][j] = math.NaN()
		}
	}
	return g
}

// binIndex locates v in the edges, returning -1 when outside. The final
// bin is closed on the right.
func binIndex(edges []float64, v float64) int {
	if math.IsNaN(v) || v < edges[0] || v > edges[len(edges)-1] {
		return -1
	}
	for i := 1; i < len(edges); i++ {
		if v < edges[i] {
			return i - 1
		}
	}
	return len(edges) - 2
}

func validate(xEdges, yEdges []float64, dataNames []string) error {
	if len(xEdges) < 2 || len(yEdges) < 2 {
		return fmt.Errorf("season: at least one bin per axis is required")
	}
	if len(dataNames) == 0 {
		return fmt.Errorf("season: no data variables supplied")
	}
	return nil
}

// Median2D iterates the instrument day by day over its bounds and returns
// the per-bin median of each named variable, binned by xName and yName.
func Median2D(ctx context.Context, inst *instrument.Instrument,
	xEdges []float64, xName string, yEdges []float64, yName string,
	dataNames []string) (map[string]*Grid2D, error) {

	if err := validate(xEdges, yEdges, dataNames); err != nil {
		return nil, err
	}

	nx, ny := len(xEdges)-1, len(yEdges)-1
	samples := make(map[string][][][]float64, len(dataNames))
	for _, name := range dataNames {
		cells := make([][][]float64, nx)
		for i := range cells {
			cells[i] = make([][]float64, ny)
		}
		samples[name] = cells
	}

	inst.ResetIteration()
	for {
		err := inst.Next(ctx)
		if errors.Is(err, instrument.ErrOutOfBounds) {
			break
		}
		if err != nil {
			return nil, err
		}
		if inst.Data.Len() == 0 {
			continue
		}

		xs, ok := inst.Data.Column(xName)
		if !ok {
			return nil, fmt.Errorf("season: variable %q not in loaded data", xName)
		}
		ys, ok := inst.Data.Column(yName)
		if !ok {
			return nil, fmt.Errorf("season: variable %q not in loaded data", yName)
		}

		for _, name := range dataNames {
			vals, ok := inst.Data.Column(name)
			if !ok {
				return nil, fmt.Errorf("season: variable %q not in loaded data", name)
			}
			cells := samples[name]
			for k := range vals {
				ix := binIndex(xEdges, xs[k])
				iy := binIndex(yEdges, ys[k])
				if ix < 0 || iy < 0 || math.IsNaN(vals[k]) {
					continue
				}
				cells[ix][iy] = append(cells[ix][iy], vals[k])
			}
		}
	}

	out := make(map[string]*Grid2D, len(dataNames))
	for _, name := range dataNames {
		g := newGrid(name, xEdges, yEdges)
		cells := samples[name]
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				g.Counts[i][j] = len(cells[i][j])
				if len(cells[i][j]) > 0 {
					g.Values[i][j] = stats.Median(cells[i][j])
				}
			}
		}
		out[name] = g
	}
	return out, nil
}

// occurAccum tracks per-bin totals and hits for one variable.
type occurAccum struct {
	total [][]int
	hits  [][]int
}

func newOccurAccum(nx, ny int) *occurAccum {
	a := &occurAccum{
		total: make([][]int, nx),
		hits:  make([][]int, nx),
	}
	for i := 0; i < nx; i++ {
		a.total[i] = make([]int, ny)
		a.hits[i] = make([]int, ny)
	}
	return a
}

// accumulate folds one iteration interval (a day or an orbit) into the
// per-variable accumulators. A bin counts once per interval; it hits when
// any sample in the interval exceeds the variable's threshold.
func accumulate(xs, ys []float64, xEdges, yEdges []float64,
	varVals map[string][]float64, thresholds map[string]float64,
	accums map[string]*occurAccum) {

	nx, ny := len(xEdges)-1, len(yEdges)-1
	for name, vals := range varVals {
		present := make([][]bool, nx)
		exceeded := make([][]bool, nx)
		for i := 0; i < nx; i++ {
			present[i] = make([]bool, ny)
			exceeded[i] = make([]bool, ny)
		}
		for k := range vals {
			ix := binIndex(xEdges, xs[k])
			iy := binIndex(yEdges, ys[k])
			if ix < 0 || iy < 0 || math.IsNaN(vals[k]) {
				continue
			}
			present[ix][iy] = true
			if vals[k] > thresholds[name] {
				exceeded[ix][iy] = true
			}
		}
		acc := accums[name]
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				if present[i][j] {
					acc.total[i][j]++
					if exceeded[i][j] {
						acc.hits[i][j]++
					}
				}
			}
		}
	}
}

func occurResult(dataNames []string, thresholds []float64,
	xEdges, yEdges []float64, accums map[string]*occurAccum) map[string]*Grid2D {

	nx, ny := len(xEdges)-1, len(yEdges)-1
	out := make(map[string]*Grid2D, len(dataNames))
	for _, name := range dataNames {
		g := newGrid(name, xEdges, yEdges)
		acc := accums[name]
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				g.Counts[i][j] = acc.total[i][j]
				if acc.total[i][j] > 0 {
					g.Values[i][j] = float64(acc.hits[i][j]) / float64(acc.total[i][j])
				}
			}
		}
		out[name] = g
	}
	return out
}

// OccurProbDaily2D returns, per bin, the fraction of days on which each
// named variable exceeded its threshold at least once while the bin was
// sampled.
func OccurProbDaily2D(ctx context.Context, inst *instrument.Instrument,
	xEdges []float64, xName string, yEdges []float64, yName string,
	dataNames []string, thresholds []float64) (map[string]*Grid2D, error) {

	if err := validate(xEdges, yEdges, dataNames); err != nil {
		return nil, err
	}
	if len(thresholds) != len(dataNames) {
		return nil, fmt.Errorf("season: %d thresholds for %d variables",
			len(thresholds), len(dataNames))
	}

	nx, ny := len(xEdges)-1, len(yEdges)-1
	accums := make(map[string]*occurAccum, len(dataNames))
	thr := make(map[string]float64, len(dataNames))
	for i, name := range dataNames {
		accums[name] = newOccurAccum(nx, ny)
		thr[name] = thresholds[i]
	}

	inst.ResetIteration()
	for {
		err := inst.Next(ctx)
		if errors.Is(err, instrument.ErrOutOfBounds) {
			break
		}
		if err != nil {
			return nil, err
		}
		if inst.Data.Len() == 0 {
			continue
		}
		xs, ys, varVals, err := pull(inst, xName, yName, dataNames)
		if err != nil {
			return nil, err
		}
		accumulate(xs, ys, xEdges, yEdges, varVals, thr, accums)
	}
	return occurResult(dataNames, thresholds, xEdges, yEdges, accums), nil
}

// OccurProbByOrbit2D is OccurProbDaily2D with orbits as the interval,
// segmented by the supplied orbit configuration.
func OccurProbByOrbit2D(ctx context.Context, inst *instrument.Instrument,
	orbitCfg orbits.Config, xEdges []float64, xName string,
	yEdges []float64, yName string,
	dataNames []string, thresholds []float64) (map[string]*Grid2D, error) {

	if err := validate(xEdges, yEdges, dataNames); err != nil {
		return nil, err
	}
	if len(thresholds) != len(dataNames) {
		return nil, fmt.Errorf("season: %d thresholds for %d variables",
			len(thresholds), len(dataNames))
	}

	iter, err := orbits.New(inst, orbitCfg)
	if err != nil {
		return nil, err
	}

	nx, ny := len(xEdges)-1, len(yEdges)-1
	accums := make(map[string]*occurAccum, len(dataNames))
	thr := make(map[string]float64, len(dataNames))
	for i, name := range dataNames {
		accums[name] = newOccurAccum(nx, ny)
		thr[name] = thresholds[i]
	}

	inst.ResetIteration()
	for {
		err := iter.Next(ctx)
		if errors.Is(err, orbits.ErrNoOrbits) {
			break
		}
		if err != nil {
			return nil, err
		}
		data := iter.Current()
		if data.Len() == 0 {
			continue
		}

		xs, ok := data.Column(xName)
		if !ok {
			return nil, fmt.Errorf("season: variable %q not in loaded data", xName)
		}
		ys, ok := data.Column(yName)
		if !ok {
			return nil, fmt.Errorf("season: variable %q not in loaded data", yName)
		}
		varVals := make(map[string][]float64, len(dataNames))
		for _, name := range dataNames {
			vals, ok := data.Column(name)
			if !ok {
				return nil, fmt.Errorf("season: variable %q not in loaded data", name)
			}
			varVals[name] = vals
		}
		accumulate(xs, ys, xEdges, yEdges, varVals, thr, accums)
	}
	return occurResult(dataNames, thresholds, xEdges, yEdges, accums), nil
}

func pull(inst *instrument.Instrument, xName, yName string, dataNames []string) ([]float64, []float64, map[string][]float64, error) {
	xs, ok := inst.Data.Column(xName)
	if !ok {
		return nil, nil, nil, fmt.Errorf("season: variable %q not in loaded data", xName)
	}
	ys, ok := inst.Data.Column(yName)
	if !ok {
		return nil, nil, nil, fmt.Errorf("season: variable %q not in loaded data", yName)
	}
	varVals := make(map[string][]float64, len(dataNames))
	for _, name := range dataNames {
		vals, ok := inst.Data.Column(name)
		if !ok {
			return nil, nil, nil, fmt.Errorf("season: variable %q not in loaded data", name)
		}
		varVals[name] = vals
	}
	return xs, ys, varVals, nil
}
