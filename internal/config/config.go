// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Host() HostConfig
	Scripts() ScriptsConfig

	// Host Setters
	SetHostProfile(name string)
	SetHostDefects(names []string)
	SetHostViewport(width, height float64)

	// Scripts Setters
	SetScriptsEnabled(bool)
	SetScriptsTimeout(d time.Duration)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	HostCfg    HostConfig    `mapstructure:"host" yaml:"host"`
	ScriptsCfg ScriptsConfig `mapstructure:"scripts" yaml:"scripts"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Host() HostConfig       { return c.HostCfg }
func (c *Config) Scripts() ScriptsConfig { return c.ScriptsCfg }

// --- Interface Method Implementations (Setters) ---

// Host Setters
func (c *Config) SetHostProfile(name string)     { c.HostCfg.Profile = name }
func (c *Config) SetHostDefects(names []string) { c.HostCfg.Defects = names }
func (c *Config) SetHostViewport(width, height float64) {
	c.HostCfg.ViewportWidth = width
	c.HostCfg.ViewportHeight = height
}

// Scripts Setters
func (c *Config) SetScriptsEnabled(b bool)           { c.ScriptsCfg.Enabled = b }
func (c *Config) SetScriptsTimeout(d time.Duration) { c.ScriptsCfg.Timeout = d }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// HostConfig selects the simulated host document: its defect profile, any
// extra defects layered on top, and the viewport used for layout.
type HostConfig struct {
	Profile        string   `mapstructure:"profile" yaml:"profile"`
	Defects        []string `mapstructure:"defects" yaml:"defects"`
	ViewportWidth  float64  `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight float64  `mapstructure:"viewport_height" yaml:"viewport_height"`
}

// ResolveProfile returns the named profile with the configured defects applied.
func (h HostConfig) ResolveProfile() (host.Profile, error) {
	p, err := host.ProfileByName(h.Profile)
	if err != nil {
		return host.Profile{}, err
	}
	return p.WithDefects(h.Defects...)
}

// Options returns the host document options for this configuration.
func (h HostConfig) Options() ([]host.Option, error) {
	p, err := h.ResolveProfile()
	if err != nil {
		return nil, err
	}
	return []host.Option{
		host.WithProfile(p),
		host.WithViewport(h.ViewportWidth, h.ViewportHeight),
	}, nil
}

// ScriptsConfig controls evaluation of scripts extracted from inserted markup.
type ScriptsConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "scalpel-dom")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Host --
	v.SetDefault("host.profile", "standard")
	v.SetDefault("host.defects", []string{})
	v.SetDefault("host.viewport_width", 1024.0)
	v.SetDefault("host.viewport_height", 768.0)

	// -- Scripts --
	v.SetDefault("scripts.enabled", true)
	v.SetDefault("scripts.timeout", "30s")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.HostCfg.Validate(); err != nil {
		return fmt.Errorf("host configuration invalid: %w", err)
	}
	if c.ScriptsCfg.Enabled && c.ScriptsCfg.Timeout <= 0 {
		return fmt.Errorf("scripts.timeout must be a positive duration")
	}
	return nil
}

// Validate checks the host configuration.
func (h *HostConfig) Validate() error {
	if h.ViewportWidth <= 0 || h.ViewportHeight <= 0 {
		return fmt.Errorf("viewport_width and viewport_height must be positive")
	}
	if _, err := h.ResolveProfile(); err != nil {
		return err
	}
	return nil
}
