// Package config resolves where day logs live and how the tools behave.
//
// Values are layered in priority order:
//  1. Defaults
//  2. Config file ($XDG_CONFIG_HOME/todoer/config.toml or ~/.config/todoer/config.toml)
//  3. Environment variables (TODOER_*)
//  4. Command line flags, applied by the caller
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jamzrob/todoer/internal/daykey"
	"github.com/jamzrob/todoer/internal/store/daylog"
)

// ErrNoHome is returned when neither XDG_CONFIG_HOME nor HOME is set and no
// directory was configured.
var ErrNoHome = errors.New("unable to find todo location: set XDG_CONFIG_HOME or HOME")

// Config is the full runtime configuration.
type Config struct {
	Dir        string `toml:"dir"`
	Extension  string `toml:"extension"`
	DateLayout string `toml:"date_layout"`
	Render     string `toml:"render"`
	Theme      string `toml:"theme"`
	NoColor    bool   `toml:"no_color"`

	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the long-running service.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	Token     string `toml:"token"`
	TokenFile string `toml:"token_file"`
	Watch     bool   `toml:"watch"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Getenv looks up an environment variable. Tests substitute their own.
type Getenv func(string) string

// Defaults returns the built-in configuration. Dir is left empty and
// filled from the environment by Load.
func Defaults() *Config {
	return &Config{
		Extension:  daylog.DefaultExtension,
		DateLayout: daykey.DefaultLayout,
		Render:     "numbered",
		Theme:      "classic",
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration from defaults, the config file at path (or
// the default location when path is empty) and the environment.
func Load(path string, getenv Getenv) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = FilePath(getenv)
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	loadFromEnv(cfg, getenv)

	if cfg.Dir == "" {
		dir, err := DefaultDir(getenv)
		if err != nil {
			return nil, err
		}
		cfg.Dir = dir
	}
	cfg.Dir = expandHome(cfg.Dir, getenv)
	cfg.Server.TokenFile = expandHome(cfg.Server.TokenFile, getenv)
	return cfg, nil
}

// FilePath returns the default config file location, or "" when no home
// directory is known.
func FilePath(getenv Getenv) string {
	if x := getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "todoer", "config.toml")
	}
	if h := getenv("HOME"); h != "" {
		return filepath.Join(h, ".config", "todoer", "config.toml")
	}
	return ""
}

// DefaultDir returns $XDG_CONFIG_HOME/todo, falling back to $HOME/todo.
func DefaultDir(getenv Getenv) (string, error) {
	if x := getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "todo"), nil
	}
	if h := getenv("HOME"); h != "" {
		return filepath.Join(h, "todo"), nil
	}
	return "", ErrNoHome
}

func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config, getenv Getenv) {
	if v := getenv("TODOER_DIR"); v != "" {
		cfg.Dir = v
	}
	if v := getenv("TODOER_EXT"); v != "" {
		cfg.Extension = v
	}
	if v := getenv("TODOER_DATE_LAYOUT"); v != "" {
		cfg.DateLayout = v
	}
	if v := getenv("TODOER_RENDER"); v != "" {
		cfg.Render = v
	}
	if v := getenv("TODOER_THEME"); v != "" {
		cfg.Theme = v
	}
	if getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	if v := getenv("TODOER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv("TODOER_TOKEN"); v != "" {
		cfg.Server.Token = v
	}
	if v := getenv("TODOER_TOKEN_FILE"); v != "" {
		cfg.Server.TokenFile = v
	}
	if v := getenv("TODOER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("TODOER_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func expandHome(path string, getenv Getenv) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if h := getenv("HOME"); h != "" {
			return filepath.Join(h, path[1:])
		}
	}
	return path
}

// Journal opens the journal the configuration points at.
func (c *Config) Journal() *daylog.Journal {
	return daylog.NewJournal(c.Dir, daylog.WithExtension(c.Extension), daylog.WithLayout(c.DateLayout))
}
