package main

import (
	"github.com/spf13/cobra"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [dirs...]",
		Short: "Decode every pack and report collisions",
		Long: `Decode every pack below the given directories, or the configured data
and content directories, and report files and table rows that more than one
pack provides.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := a.dirs(args)
			if err != nil {
				return err
			}
			m, err := a.manager()
			if err != nil {
				return err
			}
			res, err := m.ScanDirs(cmd.Context(), dirs...)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), newReport(res.Snapshot, res.Failures))
			}
			writeReport(cmd.OutOrStdout(), res.Snapshot, res.Failures)
			return nil
		},
	}
}
