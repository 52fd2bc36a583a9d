// Package config loads hades settings from hades.yaml, HADES_* environment
// variables and built-in defaults, in increasing order of precedence below
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/ginhom/hades/internal/parser"
)

// Drivers accepted in database.driver.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes environment overrides, e.g. HADES_DATABASE_DSN.
// List values such as HADES_PARSER_PREFIXES are comma-separated.
const EnvPrefix = "HADES"

// ErrInvalidConfig is returned for settings that fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

type Database struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type Parser struct {
	Prefixes []string `mapstructure:"prefixes"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Config is the resolved configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Parser   Parser   `mapstructure:"parser"`
	Log      Log      `mapstructure:"log"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: Database{Driver: DriverSQLite, Path: "hades.db"},
		Parser:   Parser{Prefixes: slices.Clone(parser.DefaultPrefixes)},
		Log:      Log{Level: "info"},
	}
}

// Load resolves the configuration. file names an explicit config file;
// when empty, hades.yaml is searched for in the working directory. A
// missing implicit file is not an error.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("hades")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	cfg := Config{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("parser.prefixes", d.Parser.Prefixes)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate checks driver-specific requirements and the log level.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for %s", ErrInvalidConfig, DriverSQLite)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database.dsn is required for %s", ErrInvalidConfig, DriverPostgres)
		}
	default:
		return fmt.Errorf("%w: unknown database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	for _, p := range c.Parser.Prefixes {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty parser prefix", ErrInvalidConfig)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by log.level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return l, nil
}
