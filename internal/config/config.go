// Package config reads jewelbook settings from JEWELBOOK_* environment
// variables and command-line flags. Flags win over the environment.
package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Log formats.
const (
	LogText = "text"
	LogJSON = "json"
)

// Config holds runtime configuration.
type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	DBPath          string        `envconfig:"DB" default:"jewelbook.sqlite3"`
	Storage         string        `envconfig:"STORAGE" default:"sqlite"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPrefix     string        `envconfig:"REDIS_PREFIX" default:"jewelbook:"`
	LogPath         string        `envconfig:"LOG"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
	RateLimit       int           `envconfig:"RATE_LIMIT" default:"300"`
	ExportPrefix    string        `envconfig:"EXPORT_PREFIX" default:"RBS_Jewelers"`
	Seed            bool          `envconfig:"SEED"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

const usage = `Usage: jewelbook [flags]

Flags:
  -d, -db <path>          SQLite database path (default: jewelbook.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -s, -seed               add sample items when the inventory is empty
  -storage <name>         sqlite or redis (default: sqlite)
  -redis <host:port>      Redis address when -storage=redis
  -h, -help               show this help and exit

Every flag can also be set with a JEWELBOOK_* environment variable, e.g.
JEWELBOOK_DB, JEWELBOOK_ADDR, JEWELBOOK_STORAGE, JEWELBOOK_REDIS_ADDR,
JEWELBOOK_LOG_FORMAT (text or json), JEWELBOOK_RATE_LIMIT (API requests per
minute per client) and JEWELBOOK_EXPORT_PREFIX.
`

// Load reads the environment, then applies args on top. The usage text is
// written to out when asked for or when args cannot be parsed; -h returns
// flag.ErrHelp.
func Load(args []string, out io.Writer) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("jewelbook", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	fs := flag.NewFlagSet("jewelbook", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fs.BoolVar(&cfg.Seed, "seed", cfg.Seed, "")
	fs.BoolVar(&cfg.Seed, "s", cfg.Seed, "")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings can be used together.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("database path must be set for %s storage", StorageSQLite)
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address must be set for %s storage", StorageRedis)
		}
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageSQLite, StorageRedis)
	}

	if c.LogFormat != LogText && c.LogFormat != LogJSON {
		return fmt.Errorf("unknown log format %q (want %s or %s)", c.LogFormat, LogText, LogJSON)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.ExportPrefix == "" {
		return fmt.Errorf("export prefix must not be empty")
	}
	return nil
}
