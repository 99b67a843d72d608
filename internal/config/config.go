// Package config loads modpack settings from defaults, an optional config
// file and MODPACK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

// AppName names the config directory and the config file base name.
const AppName = "modpack"

// EnvPrefix prefixes every environment override, e.g. MODPACK_SCAN_WORKERS.
const EnvPrefix = "MODPACK"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete modpack configuration.
type Config struct {
	Game   GameConfig   `mapstructure:"game"`
	Schema SchemaConfig `mapstructure:"schema"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Watch  WatchConfig  `mapstructure:"watch"`
	Patch  PatchConfig  `mapstructure:"patch"`
}

// GameConfig locates the game's packs.
type GameConfig struct {
	DataDir     string   `mapstructure:"data_dir"`
	ContentDirs []string `mapstructure:"content_dirs"`
	BasePack    string   `mapstructure:"base_pack"`
}

// SchemaConfig selects the table catalogue. An empty Catalogue uses the
// embedded default.
type SchemaConfig struct {
	Catalogue string `mapstructure:"catalogue"`
}

// CacheConfig configures the decoded-pack cache. An empty Dir disables it.
type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// ScanConfig bounds library scans. Workers <= 0 uses GOMAXPROCS.
type ScanConfig struct {
	Workers int `mapstructure:"workers"`
}

// WatchConfig tunes the directory watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Ignore   []string      `mapstructure:"ignore"`
}

// PatchConfig says where the session patch container is written.
type PatchConfig struct {
	Dir  string `mapstructure:"dir"`
	Name string `mapstructure:"name"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	cfg := Config{
		Game:  GameConfig{BasePack: "data.pack"},
		Watch: WatchConfig{Debounce: 500 * time.Millisecond, Ignore: []string{"**/whmm_backups/**"}},
		Patch: PatchConfig{Dir: filepath.Join(os.TempDir(), AppName), Name: "!!!!out.pack"},
		Cache: CacheConfig{MaxBytes: 512 << 20},
	}
	if dir, err := os.UserCacheDir(); err == nil {
		cfg.Cache.Dir = filepath.Join(dir, AppName)
	}
	return cfg
}

// Dir returns the per-user config directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load reads the configuration. A non-empty path must name a readable
// TOML, YAML or JSON file. An empty path looks for modpack.{toml,yaml,json}
// in the user config directory and then the working directory; finding none
// is not an error. Load returns the file used, if any.
func Load(path string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName(AppName)
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, "", fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("game.data_dir", d.Game.DataDir)
	v.SetDefault("game.content_dirs", d.Game.ContentDirs)
	v.SetDefault("game.base_pack", d.Game.BasePack)
	v.SetDefault("schema.catalogue", d.Schema.Catalogue)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.max_bytes", d.Cache.MaxBytes)
	v.SetDefault("scan.workers", d.Scan.Workers)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.ignore", d.Watch.Ignore)
	v.SetDefault("patch.dir", d.Patch.Dir)
	v.SetDefault("patch.name", d.Patch.Name)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(key, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: "+format, append([]any{key}, args...)...))
	}

	if c.Game.BasePack == "" {
		bad("game.base_pack", "must not be empty")
	}
	if c.Cache.MaxBytes < 0 {
		bad("cache.max_bytes", "must not be negative, got %d", c.Cache.MaxBytes)
	}
	if c.Watch.Debounce < 0 {
		bad("watch.debounce", "must not be negative, got %s", c.Watch.Debounce)
	}
	for _, pat := range c.Watch.Ignore {
		if !doublestar.ValidatePattern(pat) {
			bad("watch.ignore", "invalid pattern %q", pat)
		}
	}
	switch name := c.Patch.Name; {
	case name == "":
		bad("patch.name", "must not be empty")
	case strings.ContainsAny(name, `/\`):
		bad("patch.name", "must be a file name, got %q", name)
	case !strings.HasSuffix(strings.ToLower(name), ".pack"):
		bad("patch.name", "must end in .pack, got %q", name)
	}
	if c.Patch.Dir == "" {
		bad("patch.dir", "must not be empty")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// PackDirs returns the directories holding mod packs: the data directory
// followed by the content directories.
func (c *Config) PackDirs() []string {
	var dirs []string
	if c.Game.DataDir != "" {
		dirs = append(dirs, c.Game.DataDir)
	}
	return append(dirs, c.Game.ContentDirs...)
}
