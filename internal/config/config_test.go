package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "arenabot.toml", `
[server]
addr = "127.0.0.1:9000"
write-timeout = "250ms"

[server.tick-limiter]
every = "1s"
n = 60

[prediction]
horizon = 3.0

[arena]
wall-bounciness = 0.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, 3.0, cfg.Prediction.Horizon)
	assert.Equal(t, 1.0/60, cfg.Prediction.Step, "unset keys keep their defaults")
	assert.Equal(t, 0.5, cfg.Arena.WallBounciness)
	assert.Equal(t, 0.6, cfg.Arena.GroundBounciness)

	lim := cfg.Server.TickLimiter.Limiter()
	require.NotNil(t, lim)
	assert.Equal(t, 60, lim.Burst())
	assert.InDelta(t, 60, float64(lim.Limit()), 1e-3)
}

func TestLoadTOMLUnknownKeys(t *testing.T) {
	path := write(t, "arenabot.toml", "[server]\naddress = \":1\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.address")
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "arenabot.yaml", `
log:
  level: debug
  encoding: console
tree:
  file: trees/striker.bt
server:
  max_players: 2
  tick_limiter:
    every: 2s
    n: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "trees/striker.bt", cfg.Tree.File)
	assert.Equal(t, 2, cfg.Server.MaxPlayers)
	assert.Equal(t, 2*time.Second, cfg.Server.TickLimiter.Every.Duration)
	assert.Equal(t, ":8765", cfg.Server.Addr)

	_, err = Load(write(t, "bad.yml", "log:\n  colour: red\n"))
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(write(t, "arenabot.ini", "x=1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(write(t, "arenabot.toml", "[prediction]\nstep = 0.0\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(write(t, "arenabot.yaml", "arena:\n  settle_speed: -1\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLimiterOff(t *testing.T) {
	assert.Nil(t, Limiter{}.Limiter())
	assert.Nil(t, Limiter{Every: Duration{time.Second}}.Limiter())
}
