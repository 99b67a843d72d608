package modpack

import (
	"errors"
	"log/slog"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	corecache "github.com/meigma/modpack/core/cache"
	coredisk "github.com/meigma/modpack/core/cache/disk"
	"github.com/meigma/modpack/schema"
	"github.com/meigma/modpack/watch"
)

// Option configures a Manager.
type Option func(*Manager) error

// DefaultCacheSize is the decoded-pack cache limit used by WithCacheDir.
const DefaultCacheSize int64 = 512 << 20 // 512 MB

// WithCatalogue sets the table catalogue used to decode packs.
// If not set, the embedded default catalogue is used.
func WithCatalogue(c *schema.Catalogue) Option {
	return func(m *Manager) error {
		if c == nil {
			return errors.New("modpack: nil catalogue")
		}
		m.catalogue = c
		return nil
	}
}

// WithCatalogueFile loads the table catalogue from a JSON file.
func WithCatalogueFile(path string) Option {
	return func(m *Manager) error {
		c, err := schema.LoadCatalogueFile(path)
		if err != nil {
			return err
		}
		m.catalogue = c
		return nil
	}
}

// WithCacheDir enables the decoded-pack cache in dir with the
// [DefaultCacheSize] limit.
func WithCacheDir(dir string) Option {
	return WithCacheDirSize(dir, DefaultCacheSize)
}

// WithCacheDirSize enables the decoded-pack cache in dir. A maxBytes of 0
// disables the size limit.
func WithCacheDirSize(dir string, maxBytes int64) Option {
	return func(m *Manager) error {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
		c, err := coredisk.New(dir, coredisk.WithMaxBytes(maxBytes))
		if err != nil {
			return err
		}
		m.cache = c
		return nil
	}
}

// WithCache sets a custom decoded-pack cache.
func WithCache(c corecache.Cache) Option {
	return func(m *Manager) error {
		m.cache = c
		return nil
	}
}

// WithWorkers sets how many packs are decoded concurrently.
// Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(m *Manager) error {
		m.workers = n
		return nil
	}
}

// WithBasePack names the base-game pack. It is decoded only for the tables
// patches need and never takes part in collisions.
func WithBasePack(name string) Option {
	return func(m *Manager) error {
		if name == "" {
			return errors.New("modpack: empty base pack name")
		}
		m.basePack = name
		return nil
	}
}

// WithDataDir sets the game's data directory. Mods stored there need no
// working-directory line in the launch script.
func WithDataDir(dir string) Option {
	return func(m *Manager) error {
		m.dataDir = dir
		return nil
	}
}

// WithPatch sets where the session patch container is written.
// An empty name keeps the default.
func WithPatch(dir, name string) Option {
	return func(m *Manager) error {
		m.patchDir = dir
		if name != "" {
			m.patchName = name
		}
		return nil
	}
}

// WithLoadOrder pins the pack named name to index n of the load order.
func WithLoadOrder(name string, n int) Option {
	return func(m *Manager) error {
		if n < 0 {
			return errors.New("modpack: negative load order")
		}
		if m.loadOrders == nil {
			m.loadOrders = make(map[string]int)
		}
		m.loadOrders[name] = n
		return nil
	}
}

// WithIgnore excludes paths matching the doublestar patterns from scans
// and watches.
func WithIgnore(patterns ...string) Option {
	return func(m *Manager) error {
		for _, pat := range patterns {
			if !doublestar.ValidatePattern(pat) {
				return errors.New("modpack: invalid ignore pattern " + pat)
			}
		}
		m.ignore = append(m.ignore, patterns...)
		return nil
	}
}

// WithWatchOptions passes extra options to the directory watcher.
func WithWatchOptions(opts ...watch.Option) Option {
	return func(m *Manager) error {
		m.watchOpts = append(m.watchOpts, opts...)
		return nil
	}
}

// WithLogger sets the logger for all manager components.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		m.logger = logger
		return nil
	}
}
