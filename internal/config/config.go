// Package config loads and persists analysis settings.
//
// Precedence matches the usual viper stack: command flags override
// environment variables (LEMURS_*), which override the YAML config file,
// which overrides built-in defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/drewgille/lemurs/pkg/errors"
)

// Analysis holds every tunable of the weight pipeline.
type Analysis struct {
	DataPath       string   `mapstructure:"data_path" yaml:"data_path"`
	Taxa           []string `mapstructure:"taxa" yaml:"taxa"`
	AdultAgeMonths float64  `mapstructure:"adult_age_months" yaml:"adult_age_months"`

	// Bootstrap settings.
	Sims  int     `mapstructure:"sims" yaml:"sims"`
	Level float64 `mapstructure:"level" yaml:"level"`
	Seed  uint64  `mapstructure:"seed" yaml:"seed"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings: the three focal taxa, a thousand
// bootstrap simulations at 95%, and info-level logging.
func Default() *Analysis {
	return &Analysis{
		Taxa:           []string{"OGG", "PCOQ", "LCAT"},
		AdultAgeMonths: 36,
		Sims:           1000,
		Level:          0.95,
		Seed:           1,
		LogLevel:       "info",
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home dir")
	}
	return filepath.Join(home, ".lemurs"), nil
}

// Load reads settings from file, environment, and defaults. A missing config
// file is not an error; a malformed one is.
func Load(cfgFile string) (*Analysis, error) {
	v := viper.New()
	v.SetEnvPrefix("LEMURS")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("data_path", def.DataPath)
	v.SetDefault("taxa", def.Taxa)
	v.SetDefault("adult_age_months", def.AdultAgeMonths)
	v.SetDefault("sims", def.Sims)
	v.SetDefault("level", def.Level)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("log_level", def.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Analysis
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no pipeline stage could run with.
func (c *Analysis) Validate() error {
	if c.Sims < 2 {
		return errors.NewValidationError("sims", "at least two bootstrap simulations required", c.Sims)
	}
	if c.Level <= 0 || c.Level >= 1 {
		return errors.NewValidationError("level", "confidence level must lie in (0, 1)", c.Level)
	}
	if c.AdultAgeMonths <= 0 {
		return errors.NewValidationError("adult_age_months", "adult age threshold must be positive", c.AdultAgeMonths)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("log_level", "must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// Save writes the settings to cfgFile, defaulting to ~/.lemurs/config.yaml.
func Save(c *Analysis, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "mkdir config dir")
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}
