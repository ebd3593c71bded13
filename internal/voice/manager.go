package voice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/mfp-bot/internal/generator"
	"github.com/google/uuid"
)

// Manager is a Registry of discordgo voice calls, one per guild.
// Calls in different guilds never wait on each other.
type Manager struct {
	dial   Dialer
	source Source
	ids    generator.Generator[uuid.UUID]

	mu    sync.RWMutex
	calls map[string]*Call
}

var _ Registry = (*Manager)(nil)

type ManagerOption func(*Manager)

// WithIDGenerator sets the generator used for track IDs.
func WithIDGenerator(ids generator.Generator[uuid.UUID]) ManagerOption {
	return func(m *Manager) {
		m.ids = ids
	}
}

// NewManager returns a Manager that connects with dial and plays audio
// opened from source.
func NewManager(dial Dialer, source Source, opts ...ManagerOption) *Manager {
	m := &Manager{
		dial:   dial,
		source: source,
		ids:    &generator.UUIDV4Generator{},
		calls:  make(map[string]*Call),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Join connects to channelID in guildID. Joining a guild that already has a
// call moves that call and keeps its event handlers and current track.
func (m *Manager) Join(ctx context.Context, guildID, channelID string) (Session, error) {
	conn, err := m.dial(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to join channel %s: %w", channelID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if call, ok := m.calls[guildID]; ok {
		call.attach(conn)
		return call, nil
	}

	call := newCall(guildID, conn, m.source, m.ids)
	m.calls[guildID] = call
	slog.Debug("Voice call created", "guildID", guildID, "channelID", channelID)
	return call, nil
}

// Get returns the call of guildID, if any.
func (m *Manager) Get(guildID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	call, ok := m.calls[guildID]
	if !ok {
		return nil, false
	}
	return call, true
}

// Remove stops playback in guildID and disconnects its call.
func (m *Manager) Remove(ctx context.Context, guildID string) error {
	m.mu.Lock()
	call, ok := m.calls[guildID]
	delete(m.calls, guildID)
	m.mu.Unlock()

	if !ok {
		return ErrNotConnected
	}
	if err := call.disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return nil
}

// Shutdown disconnects every call.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	calls := m.calls
	m.calls = make(map[string]*Call)
	m.mu.Unlock()

	for guildID, call := range calls {
		if err := call.disconnect(); err != nil {
			slog.Warn("failed to disconnect voice call", "guildID", guildID, "error", err)
		}
	}
}

// OnVoiceStateUpdate forgets the call of a guild when the bot is
// disconnected from outside, e.g. kicked from the channel.
// Register it with (*discordgo.Session).AddHandler.
func (m *Manager) OnVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || s.State == nil || s.State.User == nil {
		return
	}
	m.forgetIfDisconnected(s.State.User.ID, v.VoiceState)
}

func (m *Manager) forgetIfDisconnected(botUserID string, v *discordgo.VoiceState) {
	if v.UserID != botUserID || v.ChannelID != "" {
		return
	}

	m.mu.Lock()
	call, ok := m.calls[v.GuildID]
	delete(m.calls, v.GuildID)
	m.mu.Unlock()

	if ok {
		call.detach()
		slog.Info("Voice call ended externally", "guildID", v.GuildID)
	}
}
