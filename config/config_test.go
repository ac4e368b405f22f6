package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("DISCORD_SERVERS", `[{"serverId":"g1","channelCategoryId":"cat1","loungeChannelName":"Lounge","channelNameSuffix":" MHz","channelBitrate":64000}]`)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "g1", cfg.Servers[0].ServerID)
	assert.Equal(t, "Lounge", cfg.Servers[0].LoungeChannelName)
	assert.Equal(t, 64000, cfg.Servers[0].ChannelBitrate)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.StaleThreshold)
	assert.Equal(t, 2*time.Second, cfg.LivenessInterval)
	assert.Equal(t, 10*time.Minute, cfg.PendingTTL)
	assert.False(t, cfg.EvictMoveToLounge)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("STALE_THRESHOLD", "10")
	t.Setenv("LIVENESS_INTERVAL", "1")
	t.Setenv("PENDING_TTL", "300")
	t.Setenv("EVICT_MOVE_TO_LOUNGE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.StaleThreshold)
	assert.Equal(t, time.Second, cfg.LivenessInterval)
	assert.Equal(t, 5*time.Minute, cfg.PendingTTL)
	assert.True(t, cfg.EvictMoveToLounge)
}

func TestLoadMissingServers(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("DISCORD_SERVERS", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEmptyServerList(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("DISCORD_SERVERS", "[]")

	_, err := Load()
	assert.Error(t, err)
}
