package main

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonathonMSmith/pysat/orbits"
	"github.com/JonathonMSmith/pysat/plots"
	"github.com/JonathonMSmith/pysat/season"
	"github.com/JonathonMSmith/pysat/stats"
)

func newLoadCommand(a *app) *cobra.Command {
	var (
		clean    string
		strict   bool
		plot     string
		variable string
	)
	cmd := &cobra.Command{
		Use:   "load platform/name[/tag[/instID]] date",
		Short: "Load one day of data and summarize it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1])
			if err != nil {
				return err
			}
			inst, err := a.newInstrument(cmd.Context(), args[0], clean, strict)
			if err != nil {
				return err
			}
			if err := inst.Load(cmd.Context(), date); err != nil {
				return err
			}
			if inst.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "no data for", args[1])
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: %d samples\n", inst.Platform, inst.Name, inst.Data.Len())
			for _, name := range inst.Data.Columns() {
				vals, _ := inst.Data.Column(name)
				fmt.Fprintf(out, "  %-16s mean=%.4f std=%.4f\n",
					name, stats.Mean(vals), stats.Std(vals))
			}

			if plot != "" {
				if variable == "" {
					return fmt.Errorf("--plot requires --variable")
				}
				s, err := inst.Data.Series(variable)
				if err != nil {
					return err
				}
				title := fmt.Sprintf("%s %s %s", inst.Platform, inst.Name, args[1])
				if err := plots.Series(s, title, plot); err != nil {
					return err
				}
				fmt.Fprintln(out, "wrote", plot)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&clean, "clean", "none", "cleaning level (none, dirty, dusty, clean)")
	cmd.Flags().BoolVar(&strict, "strict-time", false, "reject non-monotonic or duplicated time indexes")
	cmd.Flags().StringVar(&plot, "plot", "", "write a line plot of --variable to this file")
	cmd.Flags().StringVar(&variable, "variable", "", "variable to plot")
	return cmd
}

func newOrbitsCommand(a *app) *cobra.Command {
	var (
		indexVar string
		kind     string
		periodS  float64
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "orbits platform/name[/tag[/instID]] start stop",
		Short: "Iterate data orbit by orbit and report each segment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[1])
			if err != nil {
				return err
			}
			stop, err := parseDate(args[2])
			if err != nil {
				return err
			}
			inst, err := a.newInstrument(cmd.Context(), args[0], "", false)
			if err != nil {
				return err
			}
			if err := inst.SetBounds(start, stop); err != nil {
				return err
			}

			iter, err := orbits.New(inst, orbits.Config{
				Kind:   orbits.Kind(kind),
				Index:  indexVar,
				Period: time.Duration(periodS * float64(time.Second)),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for limit <= 0 || iter.Num() < limit {
				err := iter.Next(cmd.Context())
				if errors.Is(err, orbits.ErrNoOrbits) {
					break
				}
				if err != nil {
					return err
				}
				data := iter.Current()
				idx := data.Index()
				fmt.Fprintf(out, "orbit %4d: %s .. %s (%d samples)\n",
					iter.Num(), idx[0].Format(time.RFC3339),
					idx[len(idx)-1].Format(time.RFC3339), data.Len())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&indexVar, "index", "mlt", "variable used to detect orbit breaks")
	cmd.Flags().StringVar(&kind, "kind", "lt", "break detection kind (lt, longitude, polar, orbit)")
	cmd.Flags().Float64Var(&periodS, "period", orbits.DefaultPeriod.Seconds(), "nominal orbit period in seconds")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many orbits (0 = all)")
	return cmd
}

func newSeasonCommand(a *app) *cobra.Command {
	var (
		mode      string
		xName     string
		yName     string
		xRange    []float64
		yRange    []float64
		xBins     int
		yBins     int
		threshold float64
		output    string
	)
	cmd := &cobra.Command{
		Use:   "season platform/name[/tag[/instID]] start stop variable",
		Short: "Run a 2-D seasonal analysis and render it as a heatmap",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[1])
			if err != nil {
				return err
			}
			stop, err := parseDate(args[2])
			if err != nil {
				return err
			}
			variable := args[3]

			inst, err := a.newInstrument(cmd.Context(), args[0], "", false)
			if err != nil {
				return err
			}
			if err := inst.SetBounds(start, stop); err != nil {
				return err
			}

			if len(xRange) != 2 || len(yRange) != 2 {
				return fmt.Errorf("--x-range and --y-range each need exactly two values")
			}
			xEdges := season.Bins(xRange[0], xRange[1], xBins)
			yEdges := season.Bins(yRange[0], yRange[1], yBins)

			var grids map[string]*season.Grid2D
			switch mode {
			case "median":
				grids, err = season.Median2D(cmd.Context(), inst,
					xEdges, xName, yEdges, yName, []string{variable})
			case "occurrence":
				grids, err = season.OccurProbDaily2D(cmd.Context(), inst,
					xEdges, xName, yEdges, yName,
					[]string{variable}, []float64{threshold})
			default:
				return fmt.Errorf("unknown mode %q (median or occurrence)", mode)
			}
			if err != nil {
				return err
			}

			g := grids[variable]
			filled := 0
			for i := range g.Values {
				for j := range g.Values[i] {
					if !math.IsNaN(g.Values[i][j]) {
						filled++
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d bins populated\n",
				variable, filled, xBins*yBins)

			if output != "" {
				cfg := plots.HeatmapConfig{
					Title:  fmt.Sprintf("%s %s %s", inst.Platform, inst.Name, variable),
					XLabel: xName,
					YLabel: yName,
				}
				if err := plots.Heatmap(g, cfg, output); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "wrote", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "median", "analysis mode (median or occurrence)")
	cmd.Flags().StringVar(&xName, "x", "longitude", "variable binned on the x axis")
	cmd.Flags().StringVar(&yName, "y", "latitude", "variable binned on the y axis")
	cmd.Flags().Float64SliceVar(&xRange, "x-range", []float64{0, 360}, "x axis range (lo,hi)")
	cmd.Flags().Float64SliceVar(&yRange, "y-range", []float64{-90, 90}, "y axis range (lo,hi)")
	cmd.Flags().IntVar(&xBins, "x-bins", 36, "number of x bins")
	cmd.Flags().IntVar(&yBins, "y-bins", 18, "number of y bins")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "occurrence threshold")
	cmd.Flags().StringVar(&output, "output", "", "write a heatmap image to this file")
	return cmd
}
