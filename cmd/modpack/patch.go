package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meigma/modpack"
	"github.com/meigma/modpack/synth"
)

// toggleFlags registers the patch toggles on cmd.
func toggleFlags(cmd *cobra.Command, o *synth.Options) {
	cmd.Flags().BoolVar(&o.ForceGenerals, "force-generals", false, "make every custom battle unit recruitable as a general")
	cmd.Flags().BoolVar(&o.SkipMovies, "skip-movies", false, "replace the intro movies with empty entries")
	cmd.Flags().BoolVar(&o.ScriptLogging, "script-logging", false, "enable script console logging")
}

func newPatchCmd(a *app) *cobra.Command {
	var (
		out  string
		opts synth.Options
	)
	cmd := &cobra.Command{
		Use:   "patch --out <file> [toggles] <packs...>",
		Short: "Write a session patch pack from the given packs",
		Long: `Decode the given packs and write a patch pack applying the selected
toggles. Include the base game pack so its custom battle permissions are
carried into the patch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Enabled() {
				return fmt.Errorf("no toggle selected")
			}
			var extra []modpack.Option
			if out != "" {
				extra = append(extra, modpack.WithPatch(filepath.Dir(out), filepath.Base(out)))
			}
			m, err := a.manager(extra...)
			if err != nil {
				return err
			}
			res, err := m.Scan(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, f := range res.Failures {
				a.logger.Warn("pack left out of patch", "path", f.Path, "error", f.Err)
			}
			path, err := m.Patch(res.Snapshot.Packs, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "patch file to write (default is patch.dir/patch.name)")
	toggleFlags(cmd, &opts)
	return cmd
}
