// Package config holds the server settings. Files are TOML or YAML, chosen by
// extension; keys a file sets override Default and unknown keys are errors.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/arenabot/internal/core/physics"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrInvalid           = errors.New("config: invalid value")
)

type Config struct {
	Server     Server        `toml:"server" yaml:"server"`
	Log        Log           `toml:"log" yaml:"log"`
	Tree       Tree          `toml:"tree" yaml:"tree"`
	Prediction Prediction    `toml:"prediction" yaml:"prediction"`
	Arena      physics.Arena `toml:"arena" yaml:"arena"`
	Sentry     Sentry        `toml:"sentry" yaml:"sentry"`
}

type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
	// Token, when set, must be presented by every connecting client.
	Token string `toml:"token" yaml:"token"`
	// MaxPlayers caps the bots one connection may drive.
	MaxPlayers int `toml:"max-players" yaml:"max_players"`
	// TickLimiter throttles tick packets per connection.
	TickLimiter  Limiter  `toml:"tick-limiter" yaml:"tick_limiter"`
	WriteTimeout Duration `toml:"write-timeout" yaml:"write_timeout"`
	ShutdownWait Duration `toml:"shutdown-wait" yaml:"shutdown_wait"`
}

type Log struct {
	Level    string `toml:"level" yaml:"level"`
	Encoding string `toml:"encoding" yaml:"encoding"`
}

type Tree struct {
	// File is a tree description; empty means the built-in tree.
	File string `toml:"file" yaml:"file"`
}

type Prediction struct {
	Horizon float64 `toml:"horizon" yaml:"horizon"`
	Step    float64 `toml:"step" yaml:"step"`
}

type Sentry struct {
	// DSN is empty to disable reporting.
	DSN         string `toml:"dsn" yaml:"dsn"`
	Environment string `toml:"environment" yaml:"environment"`
}

// Limiter allows N events every Every, bursting up to N.
type Limiter struct {
	Every Duration `toml:"every" yaml:"every"`
	N     int      `toml:"n" yaml:"n"`
}

// Limiter builds the rate limiter, or nil when limiting is off.
func (l Limiter) Limiter() *rate.Limiter {
	if l.N <= 0 || l.Every.Duration <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(l.Every.Duration/time.Duration(l.N)), l.N)
}

// Duration reads "250ms"-style strings.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default is a local server playing the built-in tree at 120 ticks a second.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":8765",
			MaxPlayers:   8,
			TickLimiter:  Limiter{Every: Duration{time.Second}, N: 240},
			WriteTimeout: Duration{time.Second},
			ShutdownWait: Duration{5 * time.Second},
		},
		Log:        Log{Level: "info", Encoding: "json"},
		Prediction: Prediction{Horizon: 5, Step: 1.0 / 60},
		Arena:      physics.DefaultArena(),
	}
}

// Load reads path over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			var err errUnknownKeys
			for _, key := range undecoded {
				err = append(err, key.String())
			}
			return Config{}, err
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server address is empty", ErrInvalid)
	case c.Server.MaxPlayers < 1:
		return fmt.Errorf("%w: max players %d", ErrInvalid, c.Server.MaxPlayers)
	case !(c.Prediction.Horizon > 0):
		return fmt.Errorf("%w: prediction horizon %v", ErrInvalid, c.Prediction.Horizon)
	case !(c.Prediction.Step > 0):
		return fmt.Errorf("%w: prediction step %v", ErrInvalid, c.Prediction.Step)
	case c.Arena.HalfWidth <= 0 || c.Arena.HalfLength <= 0 || c.Arena.Height <= 0:
		return fmt.Errorf("%w: arena size", ErrInvalid)
	case c.Arena.WallBounciness < 0 || c.Arena.GroundBounciness < 0:
		return fmt.Errorf("%w: negative bounciness", ErrInvalid)
	case c.Arena.SettleSpeed < 0:
		return fmt.Errorf("%w: settle speed %v", ErrInvalid, c.Arena.SettleSpeed)
	}
	return nil
}

// errUnknownKeys lists keys a TOML file set that no field reads.
type errUnknownKeys []string

func (e errUnknownKeys) Error() string {
	return "config: unknown keys: " + strings.Join(e, ", ")
}
