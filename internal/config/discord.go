package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type DiscordConfig struct {
	Token         string `env:"DISCORD_TOKEN, required"`
	CommandPrefix string `env:"COMMAND_PREFIX, default=!"`
	EpisodeHost   string `env:"EPISODE_HOST, default=datashat.net"`
	LogLevel      string `env:"LOG_LEVEL, default=info"`
}

func NewDiscordConfigFromEnv() (*DiscordConfig, error) {
	return NewDiscordConfig(context.Background(), envconfig.OsLookuper())
}

func NewDiscordConfig(ctx context.Context, lookuper envconfig.Lookuper) (*DiscordConfig, error) {
	var cfg DiscordConfig
	if err := process(ctx, &cfg, lookuper); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN must not be blank")
	}
	if strings.ContainsAny(cfg.CommandPrefix, " \t\n") || cfg.CommandPrefix == "" {
		return nil, fmt.Errorf("COMMAND_PREFIX must be a non-empty string without whitespace, got %q", cfg.CommandPrefix)
	}

	return &cfg, nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c *DiscordConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
