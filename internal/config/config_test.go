package config_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/glizzus/mfp-bot/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
)

func TestNewDiscordConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *config.DiscordConfig
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{"DISCORD_TOKEN": "token"},
			want: &config.DiscordConfig{
				Token:         "token",
				CommandPrefix: "!",
				EpisodeHost:   "datashat.net",
				LogLevel:      "info",
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"DISCORD_TOKEN":  "token",
				"COMMAND_PREFIX": "?",
				"EPISODE_HOST":   "example.com",
				"LOG_LEVEL":      "debug",
			},
			want: &config.DiscordConfig{
				Token:         "token",
				CommandPrefix: "?",
				EpisodeHost:   "example.com",
				LogLevel:      "debug",
			},
		},
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:    "prefix with whitespace",
			env:     map[string]string{"DISCORD_TOKEN": "token", "COMMAND_PREFIX": "! "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.NewDiscordConfig(context.Background(), envconfig.MapLookuper(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiscordConfigSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		cfg := config.DiscordConfig{LogLevel: input}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestOptionalServices(t *testing.T) {
	ctx := context.Background()
	empty := envconfig.MapLookuper(map[string]string{})

	minioCfg, err := config.NewMinioConfig(ctx, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minioCfg.Enabled() {
		t.Error("expected MinIO to be disabled without an endpoint")
	}
	if minioCfg.Bucket != "mfp-episodes" {
		t.Errorf("expected default bucket, got %q", minioCfg.Bucket)
	}

	pgCfg, err := config.NewPostgresConfig(ctx, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pgCfg.Enabled() {
		t.Error("expected Postgres to be disabled without a host")
	}

	redisCfg, err := config.NewRedisConfig(ctx, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if redisCfg.Enabled() {
		t.Error("expected Redis to be disabled without an address")
	}
	if redisCfg.Stream != "track_errors" {
		t.Errorf("expected default stream, got %q", redisCfg.Stream)
	}
}

func TestNewMinioConfigRequiresCredentials(t *testing.T) {
	_, err := config.NewMinioConfig(context.Background(), envconfig.MapLookuper(map[string]string{
		"MINIO_ENDPOINT": "localhost:9000",
	}))
	if err == nil {
		t.Fatal("expected error when credentials are missing")
	}
}

func TestPostgresConfigDSN(t *testing.T) {
	cfg, err := config.NewPostgresConfig(context.Background(), envconfig.MapLookuper(map[string]string{
		"POSTGRES_HOST":     "db",
		"POSTGRES_USERNAME": "mfp",
		"POSTGRES_PASSWORD": "secret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "postgres://mfp:secret@db:5432/mfp?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
