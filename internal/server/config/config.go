// Package config loads server settings from command-line flags and environment.
//
// Environment variables take priority over flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/calcbread/internal/crypto"
	"github.com/iudanet/calcbread/internal/server/jwt"
)

// DefaultSecretKey небезопасный ключ подписи для локальной разработки
const DefaultSecretKey = "super-secret-key-change-in-production-123"

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ErrVersionRequested returned by Load when -version is passed
var ErrVersionRequested = errors.New("version requested")

// Config настройки сервера
type Config struct {
	Addr        string
	DatabaseURI string
	SecretKey   string
	LogLevel    string
	LogFormat   string

	TokenTTL   time.Duration
	BcryptCost int

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// Load разбирает args (без имени программы) и применяет переменные окружения через getenv
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("calcbread-server", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.Addr, "a", ":8080", "HTTP listen address (env CALC_HTTP_ADDR)")
	fs.StringVar(&cfg.DatabaseURI, "d", "calcbread.db", "SQLite file or postgres:// URI (env CALC_DATABASE_URI)")
	fs.StringVar(&cfg.SecretKey, "secret", DefaultSecretKey, "JWT signing secret (env SECRET_KEY)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", jwt.DefaultAccessTokenTTL, "access token lifetime (env CALC_TOKEN_TTL)")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", crypto.DefaultPasswordCost, "bcrypt cost factor (env CALC_BCRYPT_COST)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "debug|info|warn|error (env CALC_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", LogFormatText, "text|json (env CALC_LOG_FORMAT)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	showVersion := fs.Bool("version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	if *showVersion {
		return nil, ErrVersionRequested
	}

	cfg.ReadHeaderTimeout = 5 * time.Second
	cfg.ReadTimeout = 15 * time.Second
	cfg.WriteTimeout = 15 * time.Second
	cfg.IdleTimeout = 60 * time.Second

	env := envReader{getenv: getenv}
	cfg.Addr = env.String("CALC_HTTP_ADDR", cfg.Addr)
	cfg.DatabaseURI = env.String("CALC_DATABASE_URI", cfg.DatabaseURI)
	cfg.SecretKey = env.String("SECRET_KEY", cfg.SecretKey)
	cfg.LogLevel = env.String("CALC_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = env.String("CALC_LOG_FORMAT", cfg.LogFormat)
	cfg.TokenTTL = env.Duration("CALC_TOKEN_TTL", cfg.TokenTTL)
	cfg.BcryptCost = env.Int("CALC_BCRYPT_COST", cfg.BcryptCost)
	cfg.ReadHeaderTimeout = env.Duration("CALC_HTTP_READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout)
	cfg.ReadTimeout = env.Duration("CALC_HTTP_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = env.Duration("CALC_HTTP_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = env.Duration("CALC_HTTP_IDLE_TIMEOUT", cfg.IdleTimeout)

	if err := env.Err(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if strings.TrimSpace(c.DatabaseURI) == "" {
		errs = append(errs, errors.New("database uri is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// UsesDefaultSecret reports whether the insecure development secret is in use.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// ParseLevel converts a level name into slog.Level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// envReader читает переменные окружения и накапливает ошибки разбора
type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) lookup(key string) string {
	if e.getenv == nil {
		return ""
	}
	return strings.TrimSpace(e.getenv(key))
}

func (e *envReader) String(key, def string) string {
	if v := e.lookup(key); v != "" {
		return v
	}
	return def
}

func (e *envReader) Int(key string, def int) int {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func (e *envReader) Duration(key string, def time.Duration) time.Duration {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}

func (e *envReader) Err() error {
	return errors.Join(e.errs...)
}
