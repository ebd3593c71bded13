package trackevents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultGroup = "track_error_watchers"

// RedisStreamReceiver reads track errors from a stream as a member of a
// consumer group, so several watchers split the entries between them.
type RedisStreamReceiver struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	block    time.Duration
}

func NewRedisStreamReceiver(ctx context.Context, client *redis.Client, stream, consumer string) (*RedisStreamReceiver, error) {
	if stream == "" {
		stream = DefaultStream
	}
	err := client.XGroupCreateMkStream(ctx, stream, DefaultGroup, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &RedisStreamReceiver{
		client:   client,
		stream:   stream,
		group:    DefaultGroup,
		consumer: consumer,
		block:    5 * time.Second,
	}, nil
}

// Receive waits for new entries and acknowledges them once decoded.
// It returns an empty slice when nothing arrived before the block timeout.
func (r *RedisStreamReceiver) Receive(ctx context.Context) ([]TrackError, error) {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, ">"},
		Count:    16,
		Block:    r.block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", r.stream, err)
	}

	var errs []TrackError
	var ids []string
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			errs = append(errs, fromValues(msg.Values))
			ids = append(ids, msg.ID)
		}
	}

	if len(ids) > 0 {
		if err := r.client.XAck(ctx, r.stream, r.group, ids...).Err(); err != nil {
			return errs, fmt.Errorf("failed to acknowledge entries: %w", err)
		}
	}
	return errs, nil
}
