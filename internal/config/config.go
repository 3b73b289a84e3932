// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON config
// file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"
)

// Defaults applied when neither flags, file nor environment set a value.
const (
	DefaultAddress       = ":8000"
	DefaultDriver        = "postgres"
	DefaultLogLevel      = "info"
	DefaultProbeInterval = 30 * time.Second
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// DatabaseDSN is the store connection string: a PostgreSQL URL/DSN or
	// a SQLite file path.
	DatabaseDSN string `json:"database_url"`

	// DatabaseName is the logical database name reported by diagnostics.
	DatabaseName string `json:"database_name"`

	// Driver selects the store backend, "postgres" or "sqlite".
	Driver string `json:"driver"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// LogLevel is the minimum zap level.
	LogLevel string `json:"log_level"`

	// ProbeInterval is the period of the store availability probe.
	ProbeInterval time.Duration `json:"-"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// fileOptions mirrors Options for the JSON file, where durations are strings.
type fileOptions struct {
	Options
	ProbeInterval string `json:"probe_interval"`
}

// Parse parses the command-line flags, config file and environment
// variables. Invalid configuration terminates the process.
func Parse() *Options {
	opts, err := Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return opts
}

// Load resolves options from args, then the config file, then getenv.
// Later sources override earlier ones.
func Load(args []string, getenv func(string) string) (*Options, error) {
	opts := &Options{}

	flags := flag.NewFlagSet("erfms", flag.ContinueOnError)
	flags.StringVar(&opts.Address, "a", DefaultAddress, "run on ip:port server")
	flags.StringVar(&opts.DatabaseDSN, "d", "", "store connection string")
	flags.StringVar(&opts.DatabaseName, "db-name", "", "database name")
	flags.StringVar(&opts.Driver, "driver", DefaultDriver, "store driver: postgres or sqlite")
	flags.StringVar(&opts.Config, "config", "config.json", "path to config file")
	flags.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	flags.StringVar(&opts.TLSCert, "tls-cert", "", "TLS certificate file")
	flags.StringVar(&opts.TLSKey, "tls-key", "", "TLS private key file")
	flags.StringVar(&opts.LogLevel, "log-level", DefaultLogLevel, "log level")
	flags.DurationVar(&opts.ProbeInterval, "probe-interval", DefaultProbeInterval, "store availability probe interval")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}
	if err := loadFile(opts); err != nil {
		return nil, err
	}

	if v := getenv("SERVER_ADDRESS"); v != "" {
		opts.Address = v
	} else if v := getenv("PORT"); v != "" {
		opts.Address = ":" + v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		opts.DatabaseDSN = v
	}
	if v := getenv("DATABASE_NAME"); v != "" {
		opts.DatabaseName = v
	}
	if v := getenv("STORE_DRIVER"); v != "" {
		opts.Driver = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		opts.LogLevel = v
	}
	if v := getenv("TLS_CERT_FILE"); v != "" {
		opts.TLSCert = v
	}
	if v := getenv("TLS_KEY_FILE"); v != "" {
		opts.TLSKey = v
	}

	opts.Driver = strings.ToLower(opts.Driver)
	if opts.Driver != "postgres" && opts.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}
	if (opts.TLSCert == "") != (opts.TLSKey == "") {
		return nil, errors.New("tls-cert and tls-key must be set together")
	}
	if opts.ProbeInterval <= 0 {
		return nil, fmt.Errorf("probe interval must be positive, got %s", opts.ProbeInterval)
	}
	return opts, nil
}

// loadFile overlays the JSON config file onto opts. A missing file is not
// an error.
func loadFile(opts *Options) error {
	if opts.Config == "" {
		return nil
	}
	data, err := os.ReadFile(opts.Config)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	fo := fileOptions{Options: *opts}
	if err := json.Unmarshal(data, &fo); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if fo.ProbeInterval != "" {
		d, err := time.ParseDuration(fo.ProbeInterval)
		if err != nil {
			return fmt.Errorf("error while parsing config file: probe_interval: %w", err)
		}
		fo.Options.ProbeInterval = d
	}
	*opts = fo.Options
	return nil
}

// TLSEnabled reports whether HTTPS is configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
