package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "calcbread.db", cfg.DatabaseURI)
	assert.Equal(t, DefaultSecretKey, cfg.SecretKey)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FlagsAndEnvPriority(t *testing.T) {
	args := []string{"-a", ":9000", "-d", "flag.db", "-secret", "flag-secret", "-token-ttl", "5m", "-log-format", "json"}

	t.Run("flags only", func(t *testing.T) {
		cfg, err := Load(args, envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Addr)
		assert.Equal(t, "flag.db", cfg.DatabaseURI)
		assert.Equal(t, "flag-secret", cfg.SecretKey)
		assert.False(t, cfg.UsesDefaultSecret())
		assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
		assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	})

	t.Run("env overrides flags", func(t *testing.T) {
		cfg, err := Load(args, envMap(map[string]string{
			"CALC_HTTP_ADDR":    ":7000",
			"CALC_DATABASE_URI": "postgres://localhost/calc",
			"SECRET_KEY":        "env-secret",
			"CALC_TOKEN_TTL":    "1h",
			"CALC_BCRYPT_COST":  "10",
			"CALC_LOG_LEVEL":    "debug",
		}))
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.Addr)
		assert.Equal(t, "postgres://localhost/calc", cfg.DatabaseURI)
		assert.Equal(t, "env-secret", cfg.SecretKey)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, 10, cfg.BcryptCost)
		assert.Equal(t, "debug", cfg.LogLevel)
	})
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		env  map[string]string
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "bad ttl env", env: map[string]string{"CALC_TOKEN_TTL": "soon"}},
		{name: "non-positive ttl", args: []string{"-token-ttl", "0s"}},
		{name: "bad bcrypt env", env: map[string]string{"CALC_BCRYPT_COST": "twelve"}},
		{name: "bcrypt cost too high", env: map[string]string{"CALC_BCRYPT_COST": "40"}},
		{name: "empty secret flag", args: []string{"-secret", ""}},
		{name: "unknown log level", env: map[string]string{"CALC_LOG_LEVEL": "loud"}},
		{name: "unknown log format", args: []string{"-log-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.args, envMap(tt.env))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_Version(t *testing.T) {
	_, err := Load([]string{"-version"}, envMap(nil))
	assert.ErrorIs(t, err, ErrVersionRequested)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
