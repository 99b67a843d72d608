// Command modpack inspects mod pack containers, reports collisions between
// mods and prepares game launches.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/meigma/modpack"
	"github.com/meigma/modpack/internal/config"
	"github.com/meigma/modpack/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "modpack:", err)
		os.Exit(1)
	}
}

// app holds the global flags and the loaded configuration.
type app struct {
	cfgFile    string
	verbose    bool
	jsonOut    bool
	noCache    bool
	dataDir    string
	contentDir []string
	cacheDir   string
	catalogue  string
	workers    int

	cfg    *config.Config
	logger *slog.Logger
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}
	root := &cobra.Command{
		Use:           "modpack",
		Short:         "Inspect mod packs, find collisions and prepare game launches",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is <user config dir>/modpack/modpack.{toml,yaml,json})")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.jsonOut, "json", false, "write JSON output")
	flags.BoolVar(&a.noCache, "no-cache", false, "disable the decoded-pack cache")
	flags.StringVar(&a.dataDir, "data-dir", "", "game data directory (overrides game.data_dir)")
	flags.StringSliceVar(&a.contentDir, "content-dir", nil, "mod content directories (overrides game.content_dirs)")
	flags.StringVar(&a.cacheDir, "cache-dir", "", "decoded-pack cache directory (overrides cache.dir)")
	flags.StringVar(&a.catalogue, "catalogue", "", "table catalogue JSON file (overrides schema.catalogue)")
	flags.IntVar(&a.workers, "workers", 0, "packs decoded concurrently (overrides scan.workers)")

	root.AddCommand(
		newScanCmd(a),
		newInspectCmd(a),
		newPatchCmd(a),
		newWatchCmd(a),
		newScriptCmd(a),
	)
	return root
}

// load reads the configuration and applies flag overrides.
func (a *app) load(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(tint.NewHandler(a.stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}))

	cfg, used, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if used != "" {
		a.logger.Debug("config loaded", "file", used)
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Game.DataDir = a.dataDir
	}
	if flags.Changed("content-dir") {
		cfg.Game.ContentDirs = a.contentDir
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir = a.cacheDir
	}
	if flags.Changed("catalogue") {
		cfg.Schema.Catalogue = a.catalogue
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = a.workers
	}
	if a.noCache {
		cfg.Cache.Dir = ""
	}
	a.cfg = cfg
	return nil
}

// manager builds a Manager from the configuration.
func (a *app) manager(extra ...modpack.Option) (*modpack.Manager, error) {
	cfg := a.cfg
	opts := []modpack.Option{
		modpack.WithLogger(a.logger),
		modpack.WithWorkers(cfg.Scan.Workers),
		modpack.WithBasePack(cfg.Game.BasePack),
		modpack.WithDataDir(cfg.Game.DataDir),
		modpack.WithPatch(cfg.Patch.Dir, cfg.Patch.Name),
		modpack.WithIgnore(cfg.Watch.Ignore...),
		modpack.WithWatchOptions(watch.WithDebounce(cfg.Watch.Debounce)),
	}
	if cfg.Schema.Catalogue != "" {
		opts = append(opts, modpack.WithCatalogueFile(cfg.Schema.Catalogue))
	}
	if cfg.Cache.Dir != "" {
		opts = append(opts, modpack.WithCacheDirSize(cfg.Cache.Dir, cfg.Cache.MaxBytes))
	}
	return modpack.NewManager(append(opts, extra...)...)
}

// dirs returns args, or the configured pack directories when args is empty.
func (a *app) dirs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	dirs := a.cfg.PackDirs()
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no directories given and neither game.data_dir nor game.content_dirs is configured")
	}
	return dirs, nil
}
