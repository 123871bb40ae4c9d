// Package config loads the permits tool settings from a YAML file, a .env
// file and PERMITS_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when neither --config nor
// PERMITS_CONFIG names one.
const DefaultPath = "permits.yaml"

const envPrefix = "PERMITS_"

// Config holds every tunable of the CLI and the web server.
type Config struct {
	Sheet       string `yaml:"sheet"`
	Port        int    `yaml:"port"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
	MaxSessions int    `yaml:"max_sessions"`
	OutputDir   string `yaml:"output_dir"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Sheet:       "Sheet1",
		Port:        8080,
		MaxUploadMB: 32,
		MaxSessions: 16,
		OutputDir:   ".",
		LogLevel:    "info",
	}
}

// Path resolves the config file location: the explicit flag value, then
// PERMITS_CONFIG, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(envPrefix + "CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path, then applies .env and environment overrides. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Variables already set in the environment win over .env.
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(envPrefix + "SHEET"); v != "" {
		c.Sheet = v
	}
	if v := os.Getenv(envPrefix + "OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(envPrefix + "PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", envPrefix, err)
		}
		c.Port = n
	}
	if v := os.Getenv(envPrefix + "MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_UPLOAD_MB: %w", envPrefix, err)
		}
		c.MaxUploadMB = n
	}
	if v := os.Getenv(envPrefix + "MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_SESSIONS: %w", envPrefix, err)
		}
		c.MaxSessions = n
	}
	return nil
}

// fillDefaults restores defaults for values a file or the environment
// blanked out.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Sheet == "" {
		c.Sheet = d.Sheet
	}
	if c.Port <= 0 {
		c.Port = d.Port
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = d.MaxUploadMB
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = d.MaxSessions
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Addr is the listen address for the web server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
