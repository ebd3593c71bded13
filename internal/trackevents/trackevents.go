// Package trackevents records playback failures outside the process log.
package trackevents

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "track_errors"

// TrackError describes a track that stopped because of an error.
type TrackError struct {
	TrackID  string
	GuildID  string
	Position time.Duration
	Loops    int
	Err      string
	At       time.Time
}

type Recorder interface {
	Record(ctx context.Context, errs ...TrackError) error
}

type LoggingRecorder struct{}

func (r *LoggingRecorder) Record(ctx context.Context, errs ...TrackError) error {
	for _, e := range errs {
		slog.InfoContext(
			ctx,
			"Track error recorded",
			slog.String("trackID", e.TrackID),
			slog.String("guildID", e.GuildID),
			slog.Duration("position", e.Position),
			slog.Int("loops", e.Loops),
			slog.String("error", e.Err),
		)
	}
	return nil
}

// RedisStreamRecorder appends track errors to a Redis stream.
type RedisStreamRecorder struct {
	client *redis.Client
	stream string
}

func NewRedisStreamRecorder(client *redis.Client, stream string) *RedisStreamRecorder {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamRecorder{client: client, stream: stream}
}

func (r *RedisStreamRecorder) Record(ctx context.Context, errs ...TrackError) error {
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range errs {
			at := e.At
			if at.IsZero() {
				at = time.Now()
			}
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: r.stream,
				Values: map[string]any{
					"trackID":  e.TrackID,
					"guildID":  e.GuildID,
					"position": e.Position.String(),
					"loops":    e.Loops,
					"error":    e.Err,
					"at":       at.UTC().Format(time.RFC3339),
				},
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", r.stream, err)
	}
	return nil
}

// Recent returns up to count entries, newest first.
func (r *RedisStreamRecorder) Recent(ctx context.Context, count int64) ([]TrackError, error) {
	msgs, err := r.client.XRevRangeN(ctx, r.stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", r.stream, err)
	}

	errs := make([]TrackError, 0, len(msgs))
	for _, msg := range msgs {
		errs = append(errs, fromValues(msg.Values))
	}
	return errs, nil
}

func fromValues(values map[string]any) TrackError {
	str := func(key string) string {
		s, _ := values[key].(string)
		return s
	}

	e := TrackError{
		TrackID: str("trackID"),
		GuildID: str("guildID"),
		Err:     str("error"),
	}
	if d, err := time.ParseDuration(str("position")); err == nil {
		e.Position = d
	}
	if _, err := fmt.Sscan(str("loops"), &e.Loops); err != nil {
		e.Loops = 0
	}
	if at, err := time.Parse(time.RFC3339, str("at")); err == nil {
		e.At = at
	}
	return e
}

// MemoryRecorder keeps track errors in memory.
type MemoryRecorder struct {
	mu   sync.Mutex
	errs []TrackError
}

func (r *MemoryRecorder) Record(_ context.Context, errs ...TrackError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, errs...)
	return nil
}

func (r *MemoryRecorder) Errors() []TrackError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TrackError(nil), r.errs...)
}

var (
	_ Recorder = (*LoggingRecorder)(nil)
	_ Recorder = (*RedisStreamRecorder)(nil)
	_ Recorder = (*MemoryRecorder)(nil)
)
