package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wekolo/justified-grid/internal/grid"
	"github.com/wekolo/justified-grid/internal/storage"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string           `yaml:"port"`
	DefaultConstraints   grid.Constraints `yaml:"-"`
	ShutdownGracePeriod  time.Duration    `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration    `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration    `yaml:"write_timeout"`
	IdleTimeout          time.Duration    `yaml:"idle_timeout"`
	EnableRequestLogging bool             `yaml:"enable_request_logging"`
	RateLimitRPS         float64          `yaml:"-"`
	RateLimitBurst       int              `yaml:"-"`
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Layout               yamlLayout    `yaml:"layout"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlLayout represents the layout constraints section in YAML. Pointer
// fields distinguish absent keys from explicit zero values (gap: 0 is valid).
type yamlLayout struct {
	AvailableWidth *float64 `yaml:"available_width"`
	MinLineHeight  *float64 `yaml:"min_line_height"`
	MaxLineHeight  *float64 `yaml:"max_line_height"`
	MinItemWidth   *float64 `yaml:"min_item_width"`
	Gap            *float64 `yaml:"gap"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides. Negative numeric values
// mean "not set".
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	AvailableWidth *float64
	MinLineHeight  *float64
	MaxLineHeight  *float64
	MinItemWidth   *float64
	Gap            *float64
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		DefaultConstraints:   storage.DefaultConstraints(),
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Layout.AvailableWidth != nil {
		cfg.DefaultConstraints.AvailableWidth = *yamlCfg.Layout.AvailableWidth
	}
	if yamlCfg.Layout.MinLineHeight != nil {
		cfg.DefaultConstraints.MinLineHeight = *yamlCfg.Layout.MinLineHeight
	}
	if yamlCfg.Layout.MaxLineHeight != nil {
		cfg.DefaultConstraints.MaxLineHeight = *yamlCfg.Layout.MaxLineHeight
	}
	if yamlCfg.Layout.MinItemWidth != nil {
		cfg.DefaultConstraints.MinItemWidth = *yamlCfg.Layout.MinItemWidth
	}
	if yamlCfg.Layout.Gap != nil {
		cfg.DefaultConstraints.Gap = *yamlCfg.Layout.Gap
	}

	applyDuration(yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod)
	applyDuration(yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout)
	applyDuration(yamlCfg.WriteTimeout, &cfg.WriteTimeout)
	applyDuration(yamlCfg.IdleTimeout, &cfg.IdleTimeout)

	cfg.EnableRequestLogging = yamlCfg.EnableRequestLogging

	if yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = yamlCfg.RateLimit.Burst
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if value, ok := envFloat("AVAILABLE_WIDTH"); ok && value >= 0 {
		cfg.DefaultConstraints.AvailableWidth = value
	}
	if value, ok := envFloat("MIN_LINE_HEIGHT"); ok && value >= 0 {
		cfg.DefaultConstraints.MinLineHeight = value
	}
	if value, ok := envFloat("MAX_LINE_HEIGHT"); ok && value >= 0 {
		cfg.DefaultConstraints.MaxLineHeight = value
	}
	if value, ok := envFloat("MIN_ITEM_WIDTH"); ok && value >= 0 {
		cfg.DefaultConstraints.MinItemWidth = value
	}
	if value, ok := envFloat("GAP"); ok && value >= 0 {
		cfg.DefaultConstraints.Gap = value
	}

	if value, ok := envFloat("RATE_LIMIT_RPS"); ok && value >= 0 {
		cfg.RateLimitRPS = value
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.AvailableWidth != nil && *overrides.AvailableWidth >= 0 {
		cfg.DefaultConstraints.AvailableWidth = *overrides.AvailableWidth
	}
	if overrides.MinLineHeight != nil && *overrides.MinLineHeight >= 0 {
		cfg.DefaultConstraints.MinLineHeight = *overrides.MinLineHeight
	}
	if overrides.MaxLineHeight != nil && *overrides.MaxLineHeight >= 0 {
		cfg.DefaultConstraints.MaxLineHeight = *overrides.MaxLineHeight
	}
	if overrides.MinItemWidth != nil && *overrides.MinItemWidth >= 0 {
		cfg.DefaultConstraints.MinItemWidth = *overrides.MinItemWidth
	}
	if overrides.Gap != nil && *overrides.Gap >= 0 {
		cfg.DefaultConstraints.Gap = *overrides.Gap
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if err := cfg.DefaultConstraints.Validate(); err != nil {
		return fmt.Errorf("layout constraints: %w", err)
	}
	return nil
}

// applyDuration parses raw as a duration into target, keeping the current
// value when raw is blank or malformed.
func applyDuration(raw string, target *time.Duration) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*target = d
	}
}

// envFloat reads a float environment variable. The second return value is
// false when the variable is unset, blank, or not a number.
func envFloat(name string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
