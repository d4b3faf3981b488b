// Package config loads the rexp init file.
//
// The init file is TOML. It names the display modules, the theme and the
// provider settings; every key is optional and missing ones keep their
// defaults. Values may also come from REXP_* environment variables, e.g.
// REXP_PROVIDER_SUMMARY_LIMIT.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rexplorer/rexp/pkg/fsutils"
	"github.com/rexplorer/rexp/pkg/modules"
	"github.com/rexplorer/rexp/pkg/provider"
	"github.com/rexplorer/rexp/pkg/theme"
	"github.com/spf13/viper"
)

const (
	AppName   = "rexp"
	FileName  = "init.toml"
	envPrefix = "REXP"
)

var (
	ErrNotFound      = errors.New("config file not found")
	ErrExists        = errors.New("config file already exists")
	ErrInvalidConfig = errors.New("invalid config")
)

var userConfigDir = os.UserConfigDir

type Config struct {
	NerdFonts bool     `mapstructure:"nerd_fonts" toml:"nerd_fonts"`
	Modules   []string `mapstructure:"modules" toml:"modules"`
	// Parallelism bounds how many rows are evaluated at once. Zero means one
	// per CPU.
	Parallelism int            `mapstructure:"parallelism" toml:"parallelism"`
	Theme       ThemeConfig    `mapstructure:"theme" toml:"theme"`
	Provider    ProviderConfig `mapstructure:"provider" toml:"provider"`
}

// ThemeConfig selects a preset flavor. Any fg/bg/selected/highlight tables
// next to it define a custom theme instead.
type ThemeConfig struct {
	Flavor string         `mapstructure:"flavor" toml:"flavor"`
	Custom map[string]any `mapstructure:",remain" toml:"-"`
}

type ProviderConfig struct {
	SummaryLimit int            `mapstructure:"summary_limit" toml:"summary_limit"`
	Timeout      string         `mapstructure:"timeout" toml:"timeout"`
	CacheTTL     string         `mapstructure:"cache_ttl" toml:"cache_ttl"`
	CacheSize    int            `mapstructure:"cache_size" toml:"cache_size"`
	Exclude      []string       `mapstructure:"exclude" toml:"exclude"`
	Language     LanguageConfig `mapstructure:"language" toml:"language"`
}

type LanguageConfig struct {
	Detector string `mapstructure:"detector" toml:"detector"`
	Command  string `mapstructure:"command" toml:"command"`
	Field    string `mapstructure:"field" toml:"field"`
}

func DefaultConfig() Config {
	pc := provider.DefaultConfig()
	return Config{
		NerdFonts: true,
		Modules:   modules.DefaultNames(true),
		Theme:     ThemeConfig{Flavor: theme.DefaultFlavor.String()},
		Provider: ProviderConfig{
			SummaryLimit: pc.SummaryLimit,
			Timeout:      pc.Timeout.String(),
			CacheTTL:     pc.CacheTTL.String(),
			CacheSize:    pc.CacheSize,
			Exclude:      []string{},
			Language: LanguageConfig{
				Detector: pc.Language.Detector,
				Command:  pc.Language.Command,
				Field:    pc.Language.Field,
			},
		},
	}
}

// DefaultPath is init.toml in the rexp directory under the user config dir,
// $XDG_CONFIG_HOME/rexp/init.toml on Linux.
func DefaultPath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName, FileName), nil
}

// Load reads the init file at path. An empty path means DefaultPath, which
// may be absent; an explicit path must exist. It returns the file actually
// read, or "" when only defaults apply.
func Load(path string) (*Config, string, error) {
	explicit := path != ""
	if explicit {
		path = fsutils.ExpandHome(path)
	} else {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, "", err
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolved := ""
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		resolved = path
	} else if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("failed to stat %s: %w", path, err)
	} else if explicit {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := cfg.ProviderConfig(); err != nil {
		return nil, "", err
	}
	if _, err := cfg.ThemeValue(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, resolved, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("nerd_fonts", d.NerdFonts)
	v.SetDefault("modules", d.Modules)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("theme.flavor", d.Theme.Flavor)
	v.SetDefault("provider.summary_limit", d.Provider.SummaryLimit)
	v.SetDefault("provider.timeout", d.Provider.Timeout)
	v.SetDefault("provider.cache_ttl", d.Provider.CacheTTL)
	v.SetDefault("provider.cache_size", d.Provider.CacheSize)
	v.SetDefault("provider.exclude", d.Provider.Exclude)
	v.SetDefault("provider.language.detector", d.Provider.Language.Detector)
	v.SetDefault("provider.language.command", d.Provider.Language.Command)
	v.SetDefault("provider.language.field", d.Provider.Language.Field)
}

// ProviderConfig converts the [provider] table.
func (c Config) ProviderConfig() (provider.Config, error) {
	pc := provider.DefaultConfig()
	pc.SummaryLimit = c.Provider.SummaryLimit
	pc.CacheSize = c.Provider.CacheSize
	pc.Exclude = c.Provider.Exclude
	var err error
	if pc.Timeout, err = parseDuration("provider.timeout", c.Provider.Timeout, pc.Timeout); err != nil {
		return provider.Config{}, err
	}
	if pc.CacheTTL, err = parseDuration("provider.cache_ttl", c.Provider.CacheTTL, pc.CacheTTL); err != nil {
		return provider.Config{}, err
	}
	lc := c.Provider.Language
	if lc.Detector != "" {
		pc.Language.Detector = lc.Detector
	}
	if lc.Command != "" {
		pc.Language.Command = lc.Command
	}
	if lc.Field != "" {
		pc.Language.Field = lc.Field
	}
	return pc, nil
}

func parseDuration(key, s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, key)
	}
	return d, nil
}

// ThemeValue resolves the [theme] table.
func (c Config) ThemeValue() (theme.Theme, error) {
	if len(c.Theme.Custom) > 0 {
		return theme.FromTable(c.Theme.Custom)
	}
	if c.Theme.Flavor == "" {
		return theme.ForFlavor(theme.DefaultFlavor), nil
	}
	f, err := theme.ParseFlavor(c.Theme.Flavor)
	if err != nil {
		return theme.Theme{}, err
	}
	return theme.ForFlavor(f), nil
}

// WriteDefault writes the default init file to path, creating parent
// directories. An existing file is left alone.
func WriteDefault(path string) error {
	path = fsutils.ExpandHome(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
