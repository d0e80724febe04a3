// Package config provides functionality for managing configuration options
// for the client shell and the reference server using command-line flags,
// an optional JSON config file, .env files and environment variables.
//
// Precedence, lowest first: flag defaults and values, config file, environment.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCatalogPath is the catalog route template used when none is configured.
// {userId} is replaced with the session's user id.
const DefaultCatalogPath = "/api/users/{userId}/media"

// ClientOptions holds the configuration values for the client shell.
type ClientOptions struct {
	// BaseURL is the remote API root, e.g. http://localhost:8080.
	BaseURL string `json:"base_url"`

	// CatalogPath is the catalog route template relative to BaseURL.
	CatalogPath string `json:"catalog_path"`

	// SessionFile is the durable slot holding the logged-in identity.
	SessionFile string `json:"session_file"`

	// RedisAddr switches the session slot to redis when set.
	RedisAddr string `json:"redis_addr"`

	// RedisKey is the redis key used as the session slot.
	RedisKey string `json:"redis_key"`

	// CAFile optionally pins a custom CA bundle for HTTPS.
	CAFile string `json:"ca_file"`

	// Timeout bounds every API request.
	Timeout time.Duration `json:"-"`

	// RequestsPerSecond throttles API calls; zero disables the limiter.
	RequestsPerSecond float64 `json:"requests_per_second"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// ServerOptions holds the configuration values for the reference server.
type ServerOptions struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the database connection string. Empty selects the
	// in-memory store.
	DatabaseDSN string `json:"database_dsn"`

	// CleanupInterval is how often soft-deleted media are purged.
	CleanupInterval time.Duration `json:"-"`

	// Retention is how long soft-deleted media are kept.
	Retention time.Duration `json:"-"`

	// TLSCert and TLSKey switch the server to HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are not an error; existing variables are never overridden.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ParseClient parses args (without the program name) into ClientOptions.
func ParseClient(args []string) (*ClientOptions, error) {
	opts := &ClientOptions{}
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&opts.BaseURL, "url", "http://localhost:8080", "server base URL")
	fs.StringVar(&opts.CatalogPath, "catalog-path", DefaultCatalogPath, "catalog route template")
	fs.StringVar(&opts.SessionFile, "session", "currentUser.json", "path to the session file")
	fs.StringVar(&opts.RedisAddr, "redis", "", "redis address for the session slot (optional)")
	fs.StringVar(&opts.RedisKey, "redis-key", "mediakeeper:currentUser", "redis key for the session slot")
	fs.StringVar(&opts.CAFile, "ca", "", "path to a CA bundle for HTTPS (optional)")
	fs.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "API request timeout")
	fs.Float64Var(&opts.RequestsPerSecond, "rps", 5, "max API requests per second (0 = unlimited)")
	fs.StringVar(&opts.LogLevel, "log-level", "warn", "log level")
	fs.StringVar(&opts.Config, "config", "", "path to config file")
	fs.StringVar(&opts.Config, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}
	if err := readConfigFile(opts.Config, opts); err != nil {
		return nil, err
	}

	overrideString(&opts.BaseURL, "BACKEND_BASE_URL")
	overrideString(&opts.CatalogPath, "MEDIAKEEPER_CATALOG_PATH")
	overrideString(&opts.SessionFile, "MEDIAKEEPER_SESSION_FILE")
	overrideString(&opts.RedisAddr, "MEDIAKEEPER_REDIS_ADDR")
	overrideString(&opts.CAFile, "MEDIAKEEPER_CA_FILE")
	overrideString(&opts.LogLevel, "LOG_LEVEL")
	if err := overrideDuration(&opts.Timeout, "MEDIAKEEPER_TIMEOUT"); err != nil {
		return nil, err
	}
	if v := os.Getenv("MEDIAKEEPER_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse MEDIAKEEPER_RPS: %w", err)
		}
		opts.RequestsPerSecond = rps
	}

	if opts.BaseURL == "" {
		return nil, errors.New("base URL must not be empty")
	}
	return opts, nil
}

// ParseServer parses args (without the program name) into ServerOptions.
func ParseServer(args []string) (*ServerOptions, error) {
	opts := &ServerOptions{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.DurationVar(&opts.CleanupInterval, "cleanup", time.Hour, "soft-delete cleanup interval")
	fs.DurationVar(&opts.Retention, "retention", 30*24*time.Hour, "soft-delete retention")
	fs.StringVar(&opts.TLSCert, "tls-cert", "", "server certificate (PEM)")
	fs.StringVar(&opts.TLSKey, "tls-key", "", "server private key (PEM)")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&opts.Config, "config", "config.json", "path to config file")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}
	if err := readConfigFile(opts.Config, opts); err != nil {
		return nil, err
	}

	overrideString(&opts.Port, "SERVER_ADDRESS")
	overrideString(&opts.DatabaseDSN, "DATABASE_DSN")
	overrideString(&opts.TLSCert, "TLS_CERT_FILE")
	overrideString(&opts.TLSKey, "TLS_KEY_FILE")
	overrideString(&opts.LogLevel, "LOG_LEVEL")

	if (opts.TLSCert == "") != (opts.TLSKey == "") {
		return nil, errors.New("tls-cert and tls-key must be set together")
	}
	return opts, nil
}

// readConfigFile overlays the JSON file at path onto dst. A missing file is ignored.
func readConfigFile(path string, dst any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = d
	return nil
}
