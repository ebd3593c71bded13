package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/mfp-bot/internal/config"
	"github.com/glizzus/mfp-bot/internal/datalayer"
	"github.com/glizzus/mfp-bot/internal/episode"
	"github.com/glizzus/mfp-bot/internal/handler"
	"github.com/glizzus/mfp-bot/internal/repository"
	"github.com/glizzus/mfp-bot/internal/trackevents"
	"github.com/glizzus/mfp-bot/internal/voice"
	"github.com/redis/go-redis/v9"
)

// episodeSource plays from the MinIO cache when it is configured and
// straight from ffmpeg otherwise.
func episodeSource(ctx context.Context) (voice.Source, error) {
	cfg, err := config.NewMinioConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load minio config: %w", err)
	}
	if !cfg.Enabled() {
		slog.Info("MINIO_ENDPOINT not set, episodes will not be cached")
		return voice.FFmpegSource, nil
	}

	storage, err := datalayer.NewMinioStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure minio bucket: %w", err)
	}
	return voice.NewCachedSource(storage, voice.FFmpegSource), nil
}

func playbackRecorder(ctx context.Context) (repository.PlaybackRecorder, func(), error) {
	cfg, err := config.NewPostgresConfigFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load postgres config: %w", err)
	}
	if !cfg.Enabled() {
		slog.Info("POSTGRES_HOST not set, playback will not be recorded")
		return repository.NopRecorder{}, func() {}, nil
	}

	pool, err := datalayer.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := datalayer.MigratePostgres(pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}
	return repository.NewPostgresPlaybackRepository(pool), pool.Close, nil
}

func trackErrorRecorder(ctx context.Context) (trackevents.Recorder, func(), error) {
	cfg, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load redis config: %w", err)
	}
	if !cfg.Enabled() {
		return nil, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	closer := func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
	return trackevents.NewRedisStreamRecorder(rdb, cfg.Stream), closer, nil
}

func runBotForever() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	discordConfig, err := config.NewDiscordConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetLogLoggerLevel(discordConfig.SlogLevel())

	ctx := context.Background()

	source, err := episodeSource(ctx)
	if err != nil {
		return err
	}

	recorder, closePostgres, err := playbackRecorder(ctx)
	if err != nil {
		return err
	}
	defer closePostgres()

	trackErrors, closeRedis, err := trackErrorRecorder(ctx)
	if err != nil {
		return err
	}
	defer closeRedis()

	routerOpts := []handler.RouterOption{
		handler.WithPrefix(discordConfig.CommandPrefix),
		handler.WithPlaybackRecorder(recorder),
	}
	if trackErrors != nil {
		routerOpts = append(routerOpts, handler.WithTrackErrorRecorder(trackErrors))
	}

	// The dialer and voice state lookups need the session, which needs the
	// handlers; both are bound once the session exists.
	var manager *voice.Manager
	var router *handler.Router

	session, err := handler.NewSession(discordConfig.Token, handler.Handlers{
		Ready:            handler.ReadyLog,
		MessageCreate:    func(s *discordgo.Session, m *discordgo.MessageCreate) { router.MessageCreate(s, m) },
		VoiceStateUpdate: func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) { manager.OnVoiceStateUpdate(s, v) },
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	manager = voice.NewManager(voice.DiscordDialer(session), source)
	router = handler.NewRouter(
		manager,
		episode.NewDirectory(discordConfig.EpisodeHost),
		handler.StateVoiceFinder{State: session.State},
		routerOpts...,
	)

	go func() {
		if err := session.Open(); err != nil {
			slog.Error("failed to open session", "error", err)
		}
	}()
	defer func() {
		manager.Shutdown()
		if err := session.Close(); err != nil {
			slog.Warn("failed to close session", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sig := <-stop
	slog.Info("Shutting down", "signal", sig.String())
	return nil
}

func main() {
	if err := runBotForever(); err != nil {
		log.Fatalf("failed to run bot: %v", err)
	}
}
