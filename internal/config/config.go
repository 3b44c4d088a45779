package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the listener settings of the bridge.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// AutomationConfig controls the mail client automation.
type AutomationConfig struct {
	// Platform is a GOOS value; it selects the automation backend.
	Platform string        `yaml:"platform"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds the optional Prometheus listener.
type MetricsConfig struct {
	// Addr is the metrics listen address; empty disables the listener.
	Addr string `yaml:"addr"`
}

// TracingConfig toggles OpenTelemetry tracing. Exporter details come from the
// standard OTEL_* variables.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"serviceName"`
}

// MinIOConfig holds the optional archive bucket for copies.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"useSSL"`
	// Timeout bounds a single upload.
	Timeout time.Duration `yaml:"timeout"`
}

// Enabled reports whether archiving was configured at all.
func (m MinIOConfig) Enabled() bool { return m.Endpoint != "" }

// AppConfig is the centralized configuration struct for the application.
// It is built once at startup and passed into constructors; nothing reads it
// from package state.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	OutputDir  string           `yaml:"outputDir"`
	Automation AutomationConfig `yaml:"automation"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	MinIO      MinIOConfig      `yaml:"minio"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *AppConfig {
	return &AppConfig{
		Server:     ServerConfig{Host: "127.0.0.1", Port: 8765},
		OutputDir:  DefaultOutputDir(),
		Automation: AutomationConfig{Platform: runtime.GOOS, Timeout: 10 * time.Second},
		Log:        LogConfig{Level: "info", Format: "text"},
		Tracing:    TracingConfig{ServiceName: "attachbridge"},
		MinIO:      MinIOConfig{Timeout: 5 * time.Second},
	}
}

// DefaultOutputDir is <home>/Desktop/businessnxtdocs.
func DefaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "Desktop", "businessnxtdocs")
}

// Load reads configuration from environment variables on top of Defaults.
// A .env file is auto-loaded by importing _ "github.com/joho/godotenv/autoload".
func Load() *AppConfig {
	cfg := Defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML file on top of Defaults, then applies environment
// variables, which take precedence. An empty path behaves like Load.
func LoadFile(path string) (*AppConfig, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)

	c.Automation.Platform = getEnv("AUTOMATION_PLATFORM", c.Automation.Platform)
	c.Automation.Timeout = getEnvDuration("AUTOMATION_TIMEOUT", c.Automation.Timeout)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)

	c.Tracing.Enabled = getEnvBool("TRACING_ENABLED", c.Tracing.Enabled)
	c.Tracing.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Tracing.ServiceName)

	c.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", c.MinIO.Endpoint)
	c.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", c.MinIO.AccessKey)
	c.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", c.MinIO.SecretKey)
	c.MinIO.Bucket = getEnv("MINIO_BUCKET", c.MinIO.Bucket)
	c.MinIO.Prefix = getEnv("MINIO_PREFIX", c.MinIO.Prefix)
	c.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", c.MinIO.UseSSL)
	c.MinIO.Timeout = getEnvDuration("MINIO_TIMEOUT", c.MinIO.Timeout)
}

// Validate reports the first configuration problem found.
func (c *AppConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir is required")
	}
	if c.Automation.Timeout <= 0 {
		return fmt.Errorf("automation timeout must be positive, got %s", c.Automation.Timeout)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.MinIO.Enabled() && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("minio archive needs access key, secret key and bucket")
	}
	if c.MinIO.Enabled() && c.MinIO.Timeout <= 0 {
		return fmt.Errorf("minio timeout must be positive, got %s", c.MinIO.Timeout)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
