// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Scripture sources.
const (
	ScriptureFromStore = "store"
	ScriptureFromHTTP  = "http"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Store     StoreConfig
	Palette   PaletteConfig
	Scripture ScriptureConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// DataPath holds the database files (default: ~/.versemark).
	DataPath string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StoreConfig selects and tunes the record store.
type StoreConfig struct {
	Backend         string // sqlite or badger
	DeleteBatchSize int    // ids per bulk delete call (default: 100)
}

// PaletteConfig points at an optional YAML palette. Empty means the built-in palette.
type PaletteConfig struct {
	File string
}

// ScriptureConfig configures where verse text comes from.
type ScriptureConfig struct {
	Source    string // store or http
	APIURL    string // required when Source is http
	CacheSize int64  // max cached verses (default: 10000)
	// Outbound request rate against APIURL.
	RequestsPerSecond float64
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed CORS origins (default: *)
}

// RateLimitConfig holds per-client inbound request limits.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadConfig loads configuration from the process command line.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("versemark", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for database files (default: ~/.versemark)")

	// Store flags
	storeBackend := fs.String("store", "", "Record store backend: sqlite or badger (default: sqlite)")
	deleteBatchSize := fs.String("delete-batch-size", "", "Highlight ids per bulk delete call (default: 100)")

	paletteFile := fs.String("palette-file", "", "YAML palette file (default: built-in palette)")

	// Scripture flags
	scriptureSource := fs.String("scripture-source", "", "Verse text source: store or http (default: store)")
	scriptureAPIURL := fs.String("scripture-api-url", "", "Base URL of the scripture text API")
	scriptureCacheSize := fs.String("scripture-cache-size", "", "Max cached verses (default: 10000)")
	scriptureRPS := fs.String("scripture-rps", "", "Outbound scripture API requests per second (default: 5)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")

	rateLimitRPS := fs.String("rate-limit-rps", "", "Per-client requests per second (default: 20)")
	rateLimitBurst := fs.String("rate-limit-burst", "", "Per-client burst (default: 40)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:         strings.ToLower(getConfigValue(*storeBackend, "STORE_BACKEND", BackendSQLite)),
			DeleteBatchSize: getIntConfigValue(*deleteBatchSize, "STORE_DELETE_BATCH_SIZE", 100),
		},
		Palette: PaletteConfig{
			File: getConfigValue(*paletteFile, "PALETTE_FILE", ""),
		},
		Scripture: ScriptureConfig{
			Source:            strings.ToLower(getConfigValue(*scriptureSource, "SCRIPTURE_SOURCE", ScriptureFromStore)),
			APIURL:            strings.TrimRight(getConfigValue(*scriptureAPIURL, "SCRIPTURE_API_URL", ""), "/"),
			CacheSize:         int64(getIntConfigValue(*scriptureCacheSize, "SCRIPTURE_CACHE_SIZE", 10000)),
			RequestsPerSecond: getFloatConfigValue(*scriptureRPS, "SCRIPTURE_API_RPS", 5),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatConfigValue(*rateLimitRPS, "RATE_LIMIT_RPS", 20),
			Burst: getIntConfigValue(*rateLimitBurst, "RATE_LIMIT_BURST", 40),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if cfg.Palette.File != "" {
		if cfg.Palette.File, err = expandPath(cfg.Palette.File, ""); err != nil {
			return nil, fmt.Errorf("invalid palette file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.App.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	switch c.Store.Backend {
	case BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("invalid store backend: %s (must be sqlite or badger)", c.Store.Backend)
	}

	if c.Store.DeleteBatchSize <= 0 {
		return fmt.Errorf("delete batch size must be positive, got %d", c.Store.DeleteBatchSize)
	}

	switch c.Scripture.Source {
	case ScriptureFromStore:
	case ScriptureFromHTTP:
		if c.Scripture.APIURL == "" {
			return errors.New("SCRIPTURE_API_URL is required when SCRIPTURE_SOURCE is http")
		}
	default:
		return fmt.Errorf("invalid scripture source: %s (must be store or http)", c.Scripture.Source)
	}

	if c.Scripture.CacheSize < 0 {
		return fmt.Errorf("scripture cache size cannot be negative, got %d", c.Scripture.CacheSize)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}

	return nil
}

// SQLitePath is the database file used by the sqlite backend.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.App.DataPath, "versemark.db")
}

// BadgerPath is the directory used by the badger backend.
func (c *Config) BadgerPath() string {
	return filepath.Join(c.App.DataPath, "badger")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.App.DataPath, filepath.Join(homeDir, ".versemark"))
	if err != nil {
		return err
	}
	c.App.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real env vars win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
