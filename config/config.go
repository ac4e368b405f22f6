package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// DiscordServer holds the per-guild settings for frequency channel management.
type DiscordServer struct {
	ServerID          string `json:"serverId"`
	ChannelCategoryID string `json:"channelCategoryId"`
	LoungeChannelName string `json:"loungeChannelName"`
	ChannelNameSuffix string `json:"channelNameSuffix"`
	ChannelBitrate    int    `json:"channelBitrate"`
}

type Config struct {
	BotToken     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Servers      []DiscordServer

	HubURL     string
	ListenAddr string

	StaleThreshold    time.Duration
	LivenessInterval  time.Duration
	PendingTTL        time.Duration
	EvictMoveToLounge bool
}

// Load reads configuration from environment variables.
// DISCORD_SERVERS is a JSON array of server entries.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:         os.Getenv("DISCORD_BOT_TOKEN"),
		ClientID:         os.Getenv("DISCORD_CLIENT_ID"),
		ClientSecret:     os.Getenv("DISCORD_CLIENT_SECRET"),
		RedirectURI:      os.Getenv("DISCORD_REDIRECT_URI"),
		HubURL:           os.Getenv("HUB_URL"),
		ListenAddr:       ":8080",
		StaleThreshold:   5 * time.Second,
		LivenessInterval: 2 * time.Second,
		PendingTTL:       10 * time.Minute,
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is not set")
	}

	serversJSON := os.Getenv("DISCORD_SERVERS")
	if serversJSON == "" {
		return nil, fmt.Errorf("DISCORD_SERVERS is not set")
	}
	if err := json.Unmarshal([]byte(serversJSON), &cfg.Servers); err != nil {
		return nil, fmt.Errorf("error parsing DISCORD_SERVERS: %v", err)
	}
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("DISCORD_SERVERS must contain at least one server")
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	cfg.StaleThreshold = secondsEnv("STALE_THRESHOLD", cfg.StaleThreshold)
	cfg.LivenessInterval = secondsEnv("LIVENESS_INTERVAL", cfg.LivenessInterval)
	cfg.PendingTTL = secondsEnv("PENDING_TTL", cfg.PendingTTL)

	if v := os.Getenv("EVICT_MOVE_TO_LOUNGE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EvictMoveToLounge = b
		}
	}

	return cfg, nil
}

func secondsEnv(name string, fallback time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
