// Package config holds the settings of a layout pass: logging, conflict
// handling, page geometry and the shared layout cache.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Conflict resolution policies, see the table package.
const (
	PolicyFirstWins  = "first-wins"
	PolicyStrictFail = "strict-fail"
	PolicyUnion      = "union"
)

// Config is the root configuration object.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Layout LayoutConfig `mapstructure:"layout" yaml:"layout"`
	Page   PageConfig   `mapstructure:"page" yaml:"page"`
	Cache  CacheConfig  `mapstructure:"cache" yaml:"cache"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	Color       bool   `mapstructure:"color" yaml:"color"`
}

// LayoutConfig tunes the geometry pass.
type LayoutConfig struct {
	// ConflictDetection enables the cross-context and grid conflict checks.
	ConflictDetection bool `mapstructure:"conflict_detection" yaml:"conflict_detection"`
	// ConflictPolicy is one of first-wins, strict-fail or union.
	ConflictPolicy string `mapstructure:"conflict_policy" yaml:"conflict_policy"`
	// Epsilon is the geometry tolerance, in micro-points.
	Epsilon int64 `mapstructure:"epsilon" yaml:"epsilon"`
	// Zoom is the viewport factor of preview contexts.
	Zoom float64 `mapstructure:"zoom" yaml:"zoom"`
	// Workers bounds the number of contexts laid out concurrently.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// PageConfig describes the physical page, in points.
type PageConfig struct {
	// Size is a named size (A4, Letter...). When empty, Width and Height are used.
	Size        string  `mapstructure:"size" yaml:"size"`
	Orientation string  `mapstructure:"orientation" yaml:"orientation"`
	Width       float64 `mapstructure:"width" yaml:"width"`
	Height      float64 `mapstructure:"height" yaml:"height"`
	Margins     Margins `mapstructure:"margins" yaml:"margins"`
}

type Margins struct {
	Top    float64 `mapstructure:"top" yaml:"top"`
	Right  float64 `mapstructure:"right" yaml:"right"`
	Bottom float64 `mapstructure:"bottom" yaml:"bottom"`
	Left   float64 `mapstructure:"left" yaml:"left"`
}

type CacheConfig struct {
	Buckets int `mapstructure:"buckets" yaml:"buckets"`
	// SharedStyles lists the style keys compared across contexts.
	SharedStyles []string `mapstructure:"shared_styles" yaml:"shared_styles"`
	Metrics      bool     `mapstructure:"metrics" yaml:"metrics"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "reportlayout")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.color", true)

	v.SetDefault("layout.conflict_detection", true)
	v.SetDefault("layout.conflict_policy", PolicyFirstWins)
	v.SetDefault("layout.epsilon", 0)
	v.SetDefault("layout.zoom", 1.0)
	v.SetDefault("layout.workers", 4)

	v.SetDefault("page.size", "A4")
	v.SetDefault("page.orientation", "portrait")
	v.SetDefault("page.margins.top", 36)
	v.SetDefault("page.margins.right", 36)
	v.SetDefault("page.margins.bottom", 36)
	v.SetDefault("page.margins.left", 36)

	v.SetDefault("cache.buckets", 32)
	v.SetDefault("cache.shared_styles", []string{"anchor-name", "color", "background-color"})
	v.SetDefault("cache.metrics", false)
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

// Load reads the YAML file at path on top of the defaults.
// Environment variables prefixed by REPORTLAYOUT_ override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("REPORTLAYOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch c.Layout.ConflictPolicy {
	case PolicyFirstWins, PolicyStrictFail, PolicyUnion:
	default:
		return fmt.Errorf("%w: unknown layout.conflict_policy %q", ErrInvalidConfig, c.Layout.ConflictPolicy)
	}
	if c.Layout.Epsilon < 0 {
		return fmt.Errorf("%w: layout.epsilon must not be negative", ErrInvalidConfig)
	}
	if c.Layout.Zoom <= 0 {
		return fmt.Errorf("%w: layout.zoom must be positive", ErrInvalidConfig)
	}
	if c.Layout.Workers <= 0 {
		return fmt.Errorf("%w: layout.workers must be a positive integer", ErrInvalidConfig)
	}
	if c.Cache.Buckets <= 0 {
		return fmt.Errorf("%w: cache.buckets must be a positive integer", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Page.Orientation) {
	case "", "portrait", "landscape":
	default:
		return fmt.Errorf("%w: unknown page.orientation %q", ErrInvalidConfig, c.Page.Orientation)
	}
	if c.Page.Size == "" && (c.Page.Width <= 0 || c.Page.Height <= 0) {
		return fmt.Errorf("%w: page.width and page.height are required without page.size", ErrInvalidConfig)
	}
	return nil
}
