// Package config loads the YAML configuration shared by the psd2xsp and
// server binaries. Command line flags override the values loaded here.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hb9tf/xtiming/xspec"
)

// Outputs lists the supported archive outputs. The empty string disables
// archiving.
var Outputs = []string{"", "csv", "sqlite", "mysql", "server"}

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Noise     NoiseConfig     `yaml:"noise"`
	Converter ConverterConfig `yaml:"converter"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

type NoiseConfig struct {
	// Freq is the white noise cutoff frequency.
	Freq *float64 `yaml:"freq"`
	// Level is the white noise level, ignored when Freq is set.
	Level *float64 `yaml:"level"`
}

type ConverterConfig struct {
	Binary  string            `yaml:"binary"`
	Timeout time.Duration     `yaml:"timeout"`
	Env     map[string]string `yaml:"env"`
}

type ArchiveConfig struct {
	Output     string `yaml:"output"`
	Identifier string `yaml:"identifier"`

	SQLiteFile string `yaml:"sqlite_file"`

	MySQLServer       string `yaml:"mysql_server"`
	MySQLUser         string `yaml:"mysql_user"`
	MySQLPasswordFile string `yaml:"mysql_password_file"`
	MySQLDBName       string `yaml:"mysql_db_name"`

	Server        string `yaml:"server"`
	ServerSamples int    `yaml:"server_samples"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Converter: ConverterConfig{
			Binary:  xspec.ConverterAlias,
			Timeout: xspec.DefaultTimeout,
			Env:     xspec.DefaultEnv(),
		},
		Archive: ArchiveConfig{
			SQLiteFile:  "/tmp/xtiming",
			MySQLServer: "127.0.0.1:3306",
			MySQLDBName: "xtiming",
			Server:      "https://localhost:8443",
		},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("unable to parse config %q: %s", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %s", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Converter.Timeout < 0 {
		return fmt.Errorf("converter timeout must not be negative, got %s", c.Converter.Timeout)
	}
	if c.Archive.ServerSamples < 0 {
		return fmt.Errorf("archive server_samples must not be negative, got %d", c.Archive.ServerSamples)
	}
	c.Archive.Output = strings.ToLower(c.Archive.Output)
	for _, o := range Outputs {
		if c.Archive.Output == o {
			return nil
		}
	}
	return fmt.Errorf("%q is not a supported archive output, pick one of: %s", c.Archive.Output, strings.Join(Outputs[1:], ", "))
}

// NewConverter builds the flx2xsp runner described by the configuration.
func (c *Config) NewConverter() *xspec.Converter {
	return &xspec.Converter{
		Binary:  c.Converter.Binary,
		Timeout: c.Converter.Timeout,
		Env:     c.Converter.Env,
	}
}
