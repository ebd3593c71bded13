package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/glizzus/mfp-bot/internal/config"
	"github.com/glizzus/mfp-bot/internal/datalayer"
	"github.com/glizzus/mfp-bot/internal/episode"
	"github.com/glizzus/mfp-bot/internal/presenters"
	"github.com/glizzus/mfp-bot/internal/repository"
	"github.com/glizzus/mfp-bot/internal/trackevents"
	"github.com/glizzus/mfp-bot/internal/voice"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

var hostFlag = &cli.StringFlag{
	Name:    "host",
	Usage:   "Host episodes are downloaded from",
	Value:   episode.DefaultHost,
	EnvVars: []string{"EPISODE_HOST"},
}

var episodeFlag = &cli.IntFlag{
	Name:     "episode",
	Aliases:  []string{"e"},
	Usage:    "Episode number, 1 to 70",
	Required: true,
}

func resolve(c *cli.Context) (string, error) {
	n := c.Int("episode")
	url, err := episode.NewDirectory(c.String("host")).Resolve(n)
	if err != nil {
		return "", cli.Exit(presenters.EpisodeOutOfRange(episode.Count()), 1)
	}
	return url, nil
}

func listEpisodes(c *cli.Context) error {
	dir := episode.NewDirectory(c.String("host"))
	return presenters.WriteEpisodes(c.App.Writer, episode.Entries(), dir)
}

func resolveEpisode(c *cli.Context) error {
	url, err := resolve(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, url)
	return err
}

func history(c *cli.Context) error {
	cfg, err := config.NewPostgresConfigFromEnv()
	if err != nil {
		return cli.Exit("Failed to load postgres config: "+err.Error(), 1)
	}
	if !cfg.Enabled() {
		return cli.Exit("POSTGRES_HOST is not set", 1)
	}

	pool, err := datalayer.NewPostgresPool(c.Context, cfg)
	if err != nil {
		return cli.Exit("Failed to create postgres pool: "+err.Error(), 1)
	}
	defer pool.Close()
	if err := datalayer.MigratePostgres(pool); err != nil {
		return cli.Exit("Failed to migrate postgres: "+err.Error(), 1)
	}

	repo := repository.NewPostgresPlaybackRepository(pool)
	records, err := repo.List(c.Context, c.String("guild-id"), c.Int("limit"))
	if err != nil {
		return cli.Exit("Failed to list playback: "+err.Error(), 1)
	}
	return presenters.WritePlaybackHistory(c.App.Writer, records)
}

func trackErrors(c *cli.Context) error {
	cfg, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return cli.Exit("Failed to load redis config: "+err.Error(), 1)
	}
	if !cfg.Enabled() {
		return cli.Exit("REDIS_ADDR is not set", 1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	defer rdb.Close()

	recorder := trackevents.NewRedisStreamRecorder(rdb, cfg.Stream)
	errs, err := recorder.Recent(c.Context, c.Int64("limit"))
	if err != nil {
		return cli.Exit("Failed to read track errors: "+err.Error(), 1)
	}
	return presenters.WriteTrackErrors(c.App.Writer, errs)
}

// warm encodes an episode and stores it in the cache by reading it through
// a CachedSource to the end.
func warm(c *cli.Context) error {
	url, err := resolve(c)
	if err != nil {
		return err
	}

	cfg, err := config.NewMinioConfigFromEnv()
	if err != nil {
		return cli.Exit("Failed to load minio config: "+err.Error(), 1)
	}
	if !cfg.Enabled() {
		return cli.Exit("MINIO_ENDPOINT is not set", 1)
	}

	storage, err := datalayer.NewMinioStorage(cfg)
	if err != nil {
		return cli.Exit("Failed to create minio storage: "+err.Error(), 1)
	}
	if err := storage.EnsureBucket(c.Context); err != nil {
		return cli.Exit("Failed to ensure bucket: "+err.Error(), 1)
	}

	key := voice.CacheKey(url)
	if existing, err := storage.Get(c.Context, key); err == nil {
		existing.Close()
		fmt.Fprintf(c.App.Writer, "Already cached: %s\n", key)
		return nil
	} else if !errors.Is(err, datalayer.ErrNotFound) {
		return cli.Exit("Failed to check cache: "+err.Error(), 1)
	}

	source := voice.NewCachedSource(storage, voice.FFmpegSource)
	rc, err := source.Open(c.Context, url)
	if err != nil {
		return cli.Exit("Failed to encode episode: "+err.Error(), 1)
	}
	n, copyErr := io.Copy(io.Discard, rc)
	if err := errors.Join(copyErr, rc.Close()); err != nil {
		return cli.Exit("Failed to encode episode: "+err.Error(), 1)
	}

	fmt.Fprintf(c.App.Writer, "Cached %s (%d bytes)\n", key, n)
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "mfp-cli",
		Description: "A development CLI tool for inspecting the bot without Discord",
		Flags:       []cli.Flag{hostFlag},
		Commands: []*cli.Command{
			{
				Name:   "episodes",
				Usage:  "List every episode with its download URL",
				Action: listEpisodes,
			},
			{
				Name:   "resolve",
				Usage:  "Print the download URL of an episode",
				Flags:  []cli.Flag{episodeFlag},
				Action: resolveEpisode,
			},
			{
				Name:  "history",
				Usage: "List recent playback for a guild",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "guild-id",
						Usage:    "ID of the guild to list playback for",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records",
						Value: 20,
					},
				},
				Action: history,
			},
			{
				Name:  "errors",
				Usage: "List recent track errors from the Redis stream",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "limit",
						Usage: "Maximum number of entries",
						Value: 20,
					},
				},
				Action: trackErrors,
			},
			{
				Name:   "warm",
				Usage:  "Encode an episode into the MinIO cache",
				Flags:  []cli.Flag{episodeFlag},
				Action: warm,
			},
		},
	}
}

func main() {
	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	if err := newApp().RunContext(context.Background(), os.Args); err != nil {
		slog.Error("Error running CLI", "error", err)
		os.Exit(1)
	}
}
