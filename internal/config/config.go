// Package config loads wfviz settings from defaults, an optional YAML file,
// WFVIZ_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/render"
	"github.com/example/wfviz/internal/storage"
)

// EnvPrefix is prepended to every environment variable, e.g. WFVIZ_SOURCE.
const EnvPrefix = "WFVIZ"

// FileName is the config file looked up in the working directory when no
// explicit file is given.
const FileName = "wfviz"

// Config holds the resolved settings.
type Config struct {
	Source   string        `mapstructure:"source"`
	Fname    string        `mapstructure:"fname"`
	Columns  []string      `mapstructure:"columns"`
	Color    bool          `mapstructure:"color"`
	LogLevel string        `mapstructure:"log_level"`
	Palette  PaletteConfig `mapstructure:"palette"`
}

// PaletteConfig holds style names keyed by status name.
type PaletteConfig struct {
	Statuses map[string]string `mapstructure:"statuses"`
	Parallel string            `mapstructure:"parallel"`
	Serial   string            `mapstructure:"serial"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", string(storage.KindRelational))
	v.SetDefault("fname", "")
	v.SetDefault("columns", render.DefaultColumns)
	v.SetDefault("color", true)
	v.SetDefault("log_level", "warn")

	palette := render.DefaultPalette()
	for status, style := range palette.Statuses {
		v.SetDefault("palette.statuses."+status.String(), string(style))
	}
	v.SetDefault("palette.parallel", string(palette.Parallel))
	v.SetDefault("palette.serial", string(palette.Serial))
}

// Load reads the config file, if any, and decodes the merged settings.
// An explicitly named file must exist; the default wfviz.yaml is optional.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that can be checked without opening anything.
func (c *Config) Validate() error {
	if _, err := storage.ParseKind(c.Source); err != nil {
		return err
	}
	if _, err := render.ParseColumns(c.Columns); err != nil {
		return err
	}
	_, err := c.Palette.Palette()
	return err
}

// Palette converts the configured style names into a render palette.
func (p PaletteConfig) Palette() (render.Palette, error) {
	out := render.DefaultPalette()
	for name, style := range p.Statuses {
		status, err := domain.ParseStatus(name)
		if err != nil {
			return render.Palette{}, fmt.Errorf("palette: %w", err)
		}
		out.Statuses[status] = render.Style(style)
	}
	out.Parallel = render.Style(p.Parallel)
	out.Serial = render.Style(p.Serial)
	if err := out.Validate(); err != nil {
		return render.Palette{}, fmt.Errorf("palette: %w", err)
	}
	return out, nil
}
