package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = "8080"
	defaultMaxContainers  = 3
	defaultMaxUploadBytes = 10 << 20
	defaultRateLimitRPS   = 10.0
	defaultRateLimitBurst = 20
	defaultLogLevel       = "info"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	DefaultStackCap      int
	MaxContainers        int
	MaxUploadBytes       int64
	RunTimeout           time.Duration
	ReportDir            string
	CatalogFile          string
	S3Bucket             string
	S3Region             string
	S3Endpoint           string
	OTLPEndpoint         string
	TraceStdout          bool
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	DefaultStackCap      *int          `yaml:"default_stack_cap"`
	MaxContainers        int           `yaml:"max_containers"`
	MaxUploadBytes       int64         `yaml:"max_upload_bytes"`
	RunTimeout           string        `yaml:"run_timeout"`
	ReportDir            string        `yaml:"report_dir"`
	CatalogFile          string        `yaml:"catalog_file"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	S3                   yamlS3        `yaml:"s3"`
	Telemetry            yamlTelemetry `yaml:"telemetry"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

type yamlS3 struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type yamlTelemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Stdout       bool   `yaml:"stdout"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	StackCap       *int
	MaxContainers  *int
	ReportDir      *string
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		DefaultStackCap:      0,
		MaxContainers:        defaultMaxContainers,
		MaxUploadBytes:       defaultMaxUploadBytes,
		RunTimeout:           30 * time.Second,
		ReportDir:            "reports",
		S3Region:             "us-east-1",
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         30 * time.Second,
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

func parseDurationField(name, raw string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.DefaultStackCap != nil {
		cfg.DefaultStackCap = *yamlCfg.DefaultStackCap
	}
	if yamlCfg.MaxContainers != 0 {
		cfg.MaxContainers = yamlCfg.MaxContainers
	}
	if yamlCfg.MaxUploadBytes != 0 {
		cfg.MaxUploadBytes = yamlCfg.MaxUploadBytes
	}
	if yamlCfg.ReportDir != "" {
		cfg.ReportDir = yamlCfg.ReportDir
	}
	if yamlCfg.CatalogFile != "" {
		cfg.CatalogFile = yamlCfg.CatalogFile
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"run_timeout", yamlCfg.RunTimeout, &cfg.RunTimeout},
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if err := parseDurationField(d.name, d.raw, d.dst); err != nil {
			return err
		}
	}

	if yamlCfg.S3.Bucket != "" {
		cfg.S3Bucket = yamlCfg.S3.Bucket
	}
	if yamlCfg.S3.Region != "" {
		cfg.S3Region = yamlCfg.S3.Region
	}
	if yamlCfg.S3.Endpoint != "" {
		cfg.S3Endpoint = yamlCfg.S3.Endpoint
	}
	if yamlCfg.Telemetry.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = yamlCfg.Telemetry.OTLPEndpoint
	}
	if yamlCfg.Telemetry.Stdout {
		cfg.TraceStdout = true
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}
	if v := env("STACK_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DefaultStackCap = n
		}
	}
	if v := env("MAX_CONTAINERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxContainers = n
		}
	}
	if v := env("REPORT_DIR"); v != "" {
		cfg.ReportDir = v
	}
	if v := env("CATALOG_FILE"); v != "" {
		cfg.CatalogFile = v
	}
	if v := env("REPORT_BUCKET"); v != "" {
		cfg.S3Bucket = v
	}
	if v := env("AWS_REGION"); v != "" {
		cfg.S3Region = v
	}
	if v := env("AWS_ENDPOINT_URL"); v != "" {
		cfg.S3Endpoint = v
	}
	if v := env("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}
	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.StackCap != nil && *overrides.StackCap >= 0 {
		cfg.DefaultStackCap = *overrides.StackCap
	}
	if overrides.MaxContainers != nil && *overrides.MaxContainers > 0 {
		cfg.MaxContainers = *overrides.MaxContainers
	}
	if overrides.ReportDir != nil && *overrides.ReportDir != "" {
		cfg.ReportDir = *overrides.ReportDir
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
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
	if cfg.DefaultStackCap < 0 {
		return fmt.Errorf("default stack cap must be >= 0")
	}
	if cfg.MaxContainers <= 0 {
		return fmt.Errorf("max containers must be > 0")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be > 0")
	}
	if cfg.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be > 0")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return nil
}
