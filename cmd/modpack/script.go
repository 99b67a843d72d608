package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/modpack"
	"github.com/meigma/modpack/library"
	"github.com/meigma/modpack/loadorder"
	"github.com/meigma/modpack/synth"
)

// parseOrders parses name=index load-order pins.
func parseOrders(pins []string) ([]modpack.Option, error) {
	opts := make([]modpack.Option, 0, len(pins))
	for _, pin := range pins {
		name, idx, ok := strings.Cut(pin, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid load order %q, want name=index", pin)
		}
		n, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("invalid load order %q: %w", pin, err)
		}
		opts = append(opts, modpack.WithLoadOrder(name, n))
	}
	return opts, nil
}

// onlyInSave keeps the packs a save file references, plus the base pack.
func onlyInSave(snap library.Snapshot, savePath, basePack string) (library.Snapshot, error) {
	f, err := os.Open(savePath)
	if err != nil {
		return library.Snapshot{}, err
	}
	defer f.Close()
	names, err := loadorder.PacksInSave(f)
	if err != nil {
		return library.Snapshot{}, err
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	out := library.Snapshot{Generation: snap.Generation}
	for _, p := range snap.Packs {
		if want[strings.ToLower(p.Name)] || strings.EqualFold(p.Name, basePack) {
			out.Packs = append(out.Packs, p)
		}
	}
	return out, nil
}

func newScriptCmd(a *app) *cobra.Command {
	var (
		out    string
		save   string
		orders []string
		opts   synth.Options
	)
	cmd := &cobra.Command{
		Use:   "script [dirs...]",
		Short: "Write the game's mod-list script",
		Long: `Scan the mod directories and write the mod-list script the game reads on
startup. When a toggle is selected the session patch pack is written too and
appended to the script.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := a.dirs(args)
			if err != nil {
				return err
			}
			extra, err := parseOrders(orders)
			if err != nil {
				return err
			}
			m, err := a.manager(extra...)
			if err != nil {
				return err
			}
			res, err := m.ScanDirs(cmd.Context(), dirs...)
			if err != nil {
				return err
			}
			snap := res.Snapshot
			if save != "" {
				if snap, err = onlyInSave(snap, save, a.cfg.Game.BasePack); err != nil {
					return err
				}
			}

			if out == "" {
				return m.PrepareLaunch(cmd.OutOrStdout(), snap, opts)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := m.PrepareLaunch(f, snap, opts); err != nil {
				f.Close() //nolint:errcheck // the launch error wins
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.logger.Info("mod list written", "path", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "script file to write (default is stdout)")
	cmd.Flags().StringVar(&save, "save", "", "only enable the packs referenced by this save file")
	cmd.Flags().StringSliceVar(&orders, "order", nil, "pin a pack to a load-order index, as name=index")
	toggleFlags(cmd, &opts)
	return cmd
}
