package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func noFile(t *testing.T) []string {
	return []string{"-c", filepath.Join(t.TempDir(), "missing.json")}
}

func TestLoad_Defaults(t *testing.T) {
	opts, err := Load(noFile(t), env(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultAddress, opts.Address)
	assert.Equal(t, DefaultDriver, opts.Driver)
	assert.Equal(t, DefaultLogLevel, opts.LogLevel)
	assert.Equal(t, DefaultProbeInterval, opts.ProbeInterval)
	assert.Empty(t, opts.DatabaseDSN)
	assert.False(t, opts.TLSEnabled())
}

func TestLoad_Flags(t *testing.T) {
	args := append(noFile(t),
		"-a", "127.0.0.1:9000",
		"-d", "/tmp/erfms.db",
		"-driver", "SQLite",
		"-db-name", "erfms",
		"-log-level", "debug",
		"-probe-interval", "5s",
	)
	opts, err := Load(args, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", opts.Address)
	assert.Equal(t, "/tmp/erfms.db", opts.DatabaseDSN)
	assert.Equal(t, "sqlite", opts.Driver)
	assert.Equal(t, "erfms", opts.DatabaseName)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, 5*time.Second, opts.ProbeInterval)
}

func TestLoad_EnvOverridesFlags(t *testing.T) {
	args := append(noFile(t), "-a", ":1234", "-d", "flag-dsn")
	opts, err := Load(args, env(map[string]string{
		"PORT":          "8080",
		"DATABASE_URL":  "postgres://localhost/erfms",
		"DATABASE_NAME": "erfms",
		"LOG_LEVEL":     "warn",
		"TLS_CERT_FILE": "certs/server.crt",
		"TLS_KEY_FILE":  "certs/server.key",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", opts.Address)
	assert.Equal(t, "postgres://localhost/erfms", opts.DatabaseDSN)
	assert.Equal(t, "erfms", opts.DatabaseName)
	assert.Equal(t, "warn", opts.LogLevel)
	assert.True(t, opts.TLSEnabled())
}

func TestLoad_ServerAddressBeatsPort(t *testing.T) {
	opts, err := Load(noFile(t), env(map[string]string{
		"SERVER_ADDRESS": "0.0.0.0:7000",
		"PORT":           "8080",
	}))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", opts.Address)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"address": ":9100",
		"database_url": "file.db",
		"driver": "sqlite",
		"probe_interval": "1m"
	}`), 0o600))

	opts, err := Load(nil, env(map[string]string{
		"CONFIG":       path,
		"DATABASE_URL": "override.db",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9100", opts.Address)
	assert.Equal(t, "override.db", opts.DatabaseDSN)
	assert.Equal(t, "sqlite", opts.Driver)
	assert.Equal(t, time.Minute, opts.ProbeInterval)
	assert.Equal(t, DefaultLogLevel, opts.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{not json`), 0o600))
	badInterval := filepath.Join(dir, "interval.json")
	require.NoError(t, os.WriteFile(badInterval, []byte(`{"probe_interval":"soon"}`), 0o600))

	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"unknown flag", []string{"-nope"}, nil},
		{"unsupported driver", append(noFile(t), "-driver", "mongodb"), nil},
		{"driver from env", noFile(t), map[string]string{"STORE_DRIVER": "mysql"}},
		{"cert without key", append(noFile(t), "-tls-cert", "server.crt"), nil},
		{"zero probe interval", append(noFile(t), "-probe-interval", "0s"), nil},
		{"broken config file", []string{"-c", broken}, nil},
		{"bad probe interval in file", []string{"-c", badInterval}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, env(tt.env))
			assert.Error(t, err)
		})
	}
}
