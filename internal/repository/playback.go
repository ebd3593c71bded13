package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaybackRecord is one accepted play request.
type PlaybackRecord struct {
	ID          uuid.UUID
	GuildID     string
	ChannelID   string
	UserID      string
	Episode     int
	Loop        bool
	RequestedAt time.Time
}

type PlaybackRecorder interface {
	Save(ctx context.Context, record PlaybackRecord) error
}

type PlaybackLister interface {
	List(ctx context.Context, guildID string, limit int) ([]PlaybackRecord, error)
}

type PostgresPlaybackRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPlaybackRepository(db *pgxpool.Pool) *PostgresPlaybackRepository {
	return &PostgresPlaybackRepository{db: db}
}

func PlaybackRecordToRowParams(record PlaybackRecord) []any {
	requestedAt := record.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = time.Now()
	}
	return []any{
		record.ID,
		record.GuildID,
		record.ChannelID,
		record.UserID,
		record.Episode,
		record.Loop,
		requestedAt.UTC(),
	}
}

func (r *PostgresPlaybackRepository) Save(ctx context.Context, record PlaybackRecord) error {
	const query = `
	INSERT INTO playback_log (id, guild_id, channel_id, user_id, episode, loop_enabled, requested_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if _, err := r.db.Exec(ctx, query, PlaybackRecordToRowParams(record)...); err != nil {
		return fmt.Errorf("failed to insert playback record: %w", err)
	}
	return nil
}

// List returns at most limit records for the guild, newest first.
func (r *PostgresPlaybackRepository) List(ctx context.Context, guildID string, limit int) ([]PlaybackRecord, error) {
	const query = `
	SELECT id, guild_id, channel_id, user_id, episode, loop_enabled, requested_at
	FROM playback_log
	WHERE guild_id = $1
	ORDER BY requested_at DESC
	LIMIT $2
	`

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := r.db.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query playback records: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PlaybackRecord, error) {
		var record PlaybackRecord
		err := row.Scan(
			&record.ID,
			&record.GuildID,
			&record.ChannelID,
			&record.UserID,
			&record.Episode,
			&record.Loop,
			&record.RequestedAt,
		)
		return record, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan playback records: %w", err)
	}
	return records, nil
}

// NopRecorder discards every record. It stands in when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Save(context.Context, PlaybackRecord) error {
	return nil
}

var (
	_ PlaybackRecorder = (*PostgresPlaybackRepository)(nil)
	_ PlaybackLister   = (*PostgresPlaybackRepository)(nil)
	_ PlaybackRecorder = NopRecorder{}
)
