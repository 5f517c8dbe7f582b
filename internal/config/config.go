// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	RelayURL    string
	Region      string
	Room        string
	DisplayName string
	Avatar      string
	MaxPlayers  int
	TickHz      int
	DebugAddr   string
}

// Load reads the environment. A missing .env file is fine; a malformed
// numeric variable is not.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		RelayURL:    getenv("RELAY_URL", "wss://relay.example.com/ws"),
		Region:      getenv("RELAY_REGION", "asia"),
		Room:        getenv("ROOM_NAME", "PartyRoom1"),
		DisplayName: getenv("DISPLAY_NAME", "player"),
		Avatar:      getenv("AVATAR", "FIRE"),
		DebugAddr:   getenv("DEBUG_ADDR", ":8080"),
	}

	var err error
	if cfg.MaxPlayers, err = getint("MAX_PLAYERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.TickHz, err = getint("TICK_HZ", 60); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
