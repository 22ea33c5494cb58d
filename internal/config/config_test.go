package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 600*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, "0.0.0.0:43594", cfg.Network.BindAddress)
	assert.Equal(t, int64(30000), cfg.Session.MaxPacketAgeMs)
	assert.Equal(t, uint32(1000), cfg.Session.SequenceWindow)
	assert.Equal(t, 5*time.Minute, cfg.Session.RotationBuffer)
	assert.Equal(t, 1.15, cfg.Validation.MaxSpeedMultiplier)
	assert.Equal(t, int64(580), cfg.Validation.GlobalCooldownMs)
	assert.Equal(t, 1, cfg.Validation.ThresholdCritical)
	assert.Equal(t, 4*time.Hour, cfg.Exchange.BuyLimitWindow)
	assert.Equal(t, 1.0, cfg.Server.XPRate)
	assert.True(t, cfg.Server.AutoCreateAccounts)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
name = "testshard"
xp_rate = 2.5

[network]
tick_rate = "300ms"

[session]
rotation_buffer = "2m"
sequence_window = 64

[validation]
base_walk_speed = 100.0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testshard", cfg.Server.Name)
	assert.Equal(t, 2.5, cfg.Server.XPRate)
	assert.Equal(t, 300*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, 2*time.Minute, cfg.Session.RotationBuffer)
	assert.Equal(t, uint32(64), cfg.Session.SequenceWindow)
	assert.Equal(t, 100.0, cfg.Validation.BaseWalkSpeed)

	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0:43594", cfg.Network.BindAddress)
	assert.Equal(t, int64(580), cfg.Validation.GlobalCooldownMs)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
