// Package config loads flowscope server configuration from TOML files.
//
// Every field is optional: Load starts from Default and only overrides what
// the file sets, so an empty (or absent) file yields a working in-memory
// configuration. Durations are TOML strings in Go syntax ("15s", "1h30m").
//
// Example file:
//
//	[server]
//	addr = ":8080"
//	read_timeout = "15s"
//
//	[store]
//	backend = "postgres"
//	dsn = "postgres://flowscope@localhost:5432/flowscope"
//
//	[cache]
//	backend = "redis"
//	addr = "redis://localhost:6379/0"
//	ttl = "24h"
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/pipeline"
	"github.com/flowscope/flowscope/pkg/render"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Defaults applied by Load for fields the file leaves unset.
const (
	// DefaultAddr is the address the HTTP server binds to.
	DefaultAddr = ":8080"

	// DefaultReadTimeout bounds how long reading a request may take.
	DefaultReadTimeout = 15 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultDatabase is the Mongo database name.
	DefaultDatabase = "flowscope"
)

// Config is the full flowscope configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Cache     CacheConfig
	Render    RenderConfig
	Telemetry TelemetryConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig selects and parameterizes the graph store backend.
type StoreConfig struct {
	Backend  string // memory, mongo, or postgres
	DSN      string // postgres connection string
	URI      string // mongo connection URI
	Database string // mongo database name
}

// CacheConfig selects and parameterizes the artifact cache backend.
type CacheConfig struct {
	Backend string // none, file, or redis
	Dir     string // file cache directory; empty means the XDG default
	Addr    string // redis URL, e.g. redis://localhost:6379/0
	TTL     time.Duration
}

// RenderConfig sets server-wide render defaults. Requests may override
// direction and condition visibility per call.
type RenderConfig struct {
	Direction         string
	SubgraphDirection string
	Conditions        bool
	LayoutTimeout     time.Duration
}

// TelemetryConfig toggles OpenTelemetry hook registration.
type TelemetryConfig struct {
	Enabled bool
}

// fileConfig mirrors Config with the raw TOML field types. Durations arrive
// as strings and booleans as pointers so Load can tell "unset" from "zero".
type fileConfig struct {
	Server struct {
		Addr            string `toml:"addr"`
		ReadTimeout     string `toml:"read_timeout"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
	} `toml:"server"`
	Store struct {
		Backend  string `toml:"backend"`
		DSN      string `toml:"dsn"`
		URI      string `toml:"uri"`
		Database string `toml:"database"`
	} `toml:"store"`
	Cache struct {
		Backend string `toml:"backend"`
		Dir     string `toml:"dir"`
		Addr    string `toml:"addr"`
		TTL     string `toml:"ttl"`
	} `toml:"cache"`
	Render struct {
		Direction         string `toml:"direction"`
		SubgraphDirection string `toml:"subgraph_direction"`
		Conditions        *bool  `toml:"conditions"`
		LayoutTimeout     string `toml:"layout_timeout"`
	} `toml:"render"`
	Telemetry struct {
		Enabled *bool `toml:"enabled"`
	} `toml:"telemetry"`
}

// Default returns the configuration used when no file is given: an in-memory
// store, a file cache under the user cache directory, and LR rendering.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     DefaultReadTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Store: StoreConfig{
			Backend:  StoreMemory,
			Database: DefaultDatabase,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     pipeline.DefaultCacheTTL,
		},
		Render: RenderConfig{
			Direction:         pipeline.DefaultDirection,
			SubgraphDirection: pipeline.DefaultSubgraphDirection,
			Conditions:        true,
			LayoutTimeout:     pipeline.DefaultLayoutTimeout,
		},
	}
}

// Load reads a TOML configuration file, overlays it on Default, and
// validates the result. An empty path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	var f fileConfig
	if err := toml.Unmarshal(data, &f); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if f.Server.Addr != "" {
		cfg.Server.Addr = f.Server.Addr
	}
	if cfg.Server.ReadTimeout, err = overrideDuration(cfg.Server.ReadTimeout, f.Server.ReadTimeout, "server.read_timeout"); err != nil {
		return cfg, err
	}
	if cfg.Server.ShutdownTimeout, err = overrideDuration(cfg.Server.ShutdownTimeout, f.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		return cfg, err
	}

	if f.Store.Backend != "" {
		cfg.Store.Backend = f.Store.Backend
	}
	if f.Store.DSN != "" {
		cfg.Store.DSN = f.Store.DSN
	}
	if f.Store.URI != "" {
		cfg.Store.URI = f.Store.URI
	}
	if f.Store.Database != "" {
		cfg.Store.Database = f.Store.Database
	}

	if f.Cache.Backend != "" {
		cfg.Cache.Backend = f.Cache.Backend
	}
	if f.Cache.Dir != "" {
		cfg.Cache.Dir = f.Cache.Dir
	}
	if f.Cache.Addr != "" {
		cfg.Cache.Addr = f.Cache.Addr
	}
	if cfg.Cache.TTL, err = overrideDuration(cfg.Cache.TTL, f.Cache.TTL, "cache.ttl"); err != nil {
		return cfg, err
	}

	if f.Render.Direction != "" {
		cfg.Render.Direction = f.Render.Direction
	}
	if f.Render.SubgraphDirection != "" {
		cfg.Render.SubgraphDirection = f.Render.SubgraphDirection
	}
	if f.Render.Conditions != nil {
		cfg.Render.Conditions = *f.Render.Conditions
	}
	if cfg.Render.LayoutTimeout, err = overrideDuration(cfg.Render.LayoutTimeout, f.Render.LayoutTimeout, "render.layout_timeout"); err != nil {
		return cfg, err
	}

	if f.Telemetry.Enabled != nil {
		cfg.Telemetry.Enabled = *f.Telemetry.Enabled
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks backend names, required backend parameters, and render
// directions. It returns the first problem found as an INVALID_CONFIG error.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreMongo:
		if c.Store.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.uri is required for the mongo backend")
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.dsn is required for the postgres backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (expected memory, mongo, or postgres)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (expected none, file, or redis)", c.Cache.Backend)
	}

	if _, err := render.ParseDirection(c.Render.Direction); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.direction")
	}
	if _, err := render.ParseDirection(c.Render.SubgraphDirection); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.subgraph_direction")
	}

	return nil
}

// PipelineOptions returns the configured render defaults as pipeline
// options. Callers set Graph, Name, and Formats before execution and may
// override any of the returned fields per request.
func (r RenderConfig) PipelineOptions() pipeline.Options {
	show := r.Conditions
	return pipeline.Options{
		Direction:         r.Direction,
		SubgraphDirection: r.SubgraphDirection,
		ShowConditions:    &show,
		LayoutTimeout:     r.LayoutTimeout,
	}
}

func overrideDuration(current time.Duration, raw, key string) (time.Duration, error) {
	if raw == "" {
		return current, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s: invalid duration %q", key, raw)
	}
	if d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative", key)
	}
	return d, nil
}
