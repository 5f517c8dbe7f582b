package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.RelayURL)
	require.Equal(t, 4, cfg.MaxPlayers)
	require.Equal(t, 60, cfg.TickHz)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("RELAY_URL", "wss://relay.test/ws")
	t.Setenv("TICK_HZ", "30")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "wss://relay.test/ws", cfg.RelayURL)
	require.Equal(t, 30, cfg.TickHz)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_PLAYERS", "four")

	_, err := Load()
	require.Error(t, err)
}
