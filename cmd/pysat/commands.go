package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonathonMSmith/pysat/instruments"
)

func newIndexCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "List the registered instrument modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range instruments.Default.List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "status platform/name[/tag[/instID]]",
		Short: "Show the local file index for an instrument",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := a.newInstrument(cmd.Context(), args[0], "", false)
			if err != nil {
				return err
			}
			if refresh {
				if err := inst.Files.Refresh(); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), inst.Files.String())

			newFiles, err := inst.Files.GetNew()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "New files since last run: %d\n", newFiles.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rescan the data directory before reporting")
	return cmd
}

func newDataDirCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datadir [directory...]",
		Short: "Show or set the stored data directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				if err := a.prm.SetDataDirs(args); err != nil {
					return err
				}
			}
			for _, d := range a.prm.DataDirs {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "settings: %s\n", a.prm.Path())
			return nil
		},
	}
	return cmd
}
