package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"certificate-generator/internal/usecase"
)

// Config holds all configuration for the certificate service
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Render      RenderConfig      `yaml:"render"`
	Certificate CertificateConfig `yaml:"certificate"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig points at the jobs database; empty disables the
// application-backed endpoints
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RenderConfig holds headless browser and pipeline timing configuration
type RenderConfig struct {
	ChromePath   string        `yaml:"chrome_path"`
	TempDir      string        `yaml:"temp_dir"`
	Scale        float64       `yaml:"scale"`
	ImageTimeout time.Duration `yaml:"image_timeout"`
	FontTimeout  time.Duration `yaml:"font_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	MountTimeout time.Duration `yaml:"mount_timeout"`
	Timeout      time.Duration `yaml:"timeout"`
}

// CertificateConfig holds branding and link configuration
type CertificateConfig struct {
	Brand         string `yaml:"brand"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Render: RenderConfig{
			TempDir:      os.TempDir(),
			Scale:        usecase.DefaultScale,
			ImageTimeout: usecase.DefaultImageTimeout,
			FontTimeout:  usecase.DefaultFontTimeout,
			SettleDelay:  usecase.DefaultSettleDelay,
			MountTimeout: usecase.DefaultMountTimeout,
			Timeout:      usecase.DefaultRenderTimeout,
		},
		Certificate: CertificateConfig{
			Brand:         "Saarthix",
			PublicBaseURL: "http://localhost:3000/certificate",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Database.DSN = getEnv("JOBS_DATABASE_URL", c.Database.DSN)
	c.Render.ChromePath = getEnv("CHROME_PATH", c.Render.ChromePath)
	c.Render.TempDir = getEnv("RENDER_TEMP_DIR", c.Render.TempDir)
	c.Render.Scale = getEnvAsFloat("RENDER_SCALE", c.Render.Scale)
	c.Render.ImageTimeout = getEnvAsDuration("RENDER_IMAGE_TIMEOUT", c.Render.ImageTimeout)
	c.Render.FontTimeout = getEnvAsDuration("RENDER_FONT_TIMEOUT", c.Render.FontTimeout)
	c.Render.SettleDelay = getEnvAsDuration("RENDER_SETTLE_DELAY", c.Render.SettleDelay)
	c.Render.MountTimeout = getEnvAsDuration("RENDER_MOUNT_TIMEOUT", c.Render.MountTimeout)
	c.Render.Timeout = getEnvAsDuration("RENDER_TIMEOUT", c.Render.Timeout)
	c.Certificate.Brand = getEnv("CERT_BRAND", c.Certificate.Brand)
	c.Certificate.PublicBaseURL = getEnv("CERT_PUBLIC_BASE_URL", c.Certificate.PublicBaseURL)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Render.Scale <= 0 || c.Render.Scale > 4 {
		return fmt.Errorf("invalid render scale: %g", c.Render.Scale)
	}
	if c.Render.ImageTimeout <= 0 || c.Render.FontTimeout <= 0 {
		return errors.New("render timeouts must be positive")
	}
	if c.Render.SettleDelay < 0 {
		return fmt.Errorf("invalid settle delay: %s", c.Render.SettleDelay)
	}
	if c.Certificate.Brand == "" {
		return errors.New("certificate brand is required")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Generator converts the render section into pipeline settings.
func (c *Config) Generator() usecase.GeneratorConfig {
	return usecase.GeneratorConfig{
		Barrier: usecase.BarrierConfig{
			FontTimeout:  c.Render.FontTimeout,
			ImageTimeout: c.Render.ImageTimeout,
			SettleDelay:  c.Render.SettleDelay,
		},
		Scale:         c.Render.Scale,
		MountTimeout:  c.Render.MountTimeout,
		RenderTimeout: c.Render.Timeout,
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
