package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glizzus/mfp-bot/internal/config"
	"github.com/glizzus/mfp-bot/internal/trackevents"
	"github.com/redis/go-redis/v9"
)

var verbose = flag.Bool("verbose", false, "Log at debug level")

// runWorkerForever tails the track error stream and logs every entry until
// interrupted.
func runWorkerForever() error {
	flag.Parse()
	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	redisConfig, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load redis config: %w", err)
	}
	if !redisConfig.Enabled() {
		return fmt.Errorf("REDIS_ADDR is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	consumer, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to get hostname: %w", err)
	}

	receiver, err := trackevents.NewRedisStreamReceiver(ctx, rdb, redisConfig.Stream, consumer)
	if err != nil {
		return err
	}
	printer := &trackevents.LoggingRecorder{}

	slog.Info("Watching track errors", "stream", redisConfig.Stream, "consumer", consumer)
	for {
		errs, err := receiver.Receive(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to receive track errors: %w", err)
		}
		if err := printer.Record(ctx, errs...); err != nil {
			slog.Warn("failed to print track errors", "error", err)
		}
	}
}

func main() {
	if err := runWorkerForever(); err != nil {
		slog.Error("Worker encountered an error", slog.Any("error", err))
		os.Exit(1)
	}
}
