package handler_test

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/mfp-bot/internal/handler"
	"github.com/glizzus/mfp-bot/internal/repository"
	"github.com/glizzus/mfp-bot/internal/voice"
	"github.com/google/uuid"
)

type sent struct {
	Reply     bool
	ChannelID string
	Content   string
	Reference *discordgo.MessageReference
}

type mockSession struct {
	Sent []sent
	Err  error
}

func (m *mockSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.Sent = append(m.Sent, sent{ChannelID: channelID, Content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, m.Err
}

func (m *mockSession) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.Sent = append(m.Sent, sent{Reply: true, ChannelID: channelID, Content: content, Reference: reference})
	return &discordgo.Message{ChannelID: channelID, Content: content}, m.Err
}

var _ handler.DiscordSession = (*mockSession)(nil)

type mockTrack struct {
	id          uuid.UUID
	loopErr     error
	loopEnabled bool
}

func (t *mockTrack) UUID() uuid.UUID { return t.id }

func (t *mockTrack) EnableLoop() error {
	if t.loopErr != nil {
		return t.loopErr
	}
	t.loopEnabled = true
	return nil
}

func (t *mockTrack) State() voice.TrackState {
	return voice.TrackState{Playing: voice.PlayModePlay, Looping: t.loopEnabled}
}

type mockVoiceSession struct {
	muted     bool
	muteCalls []bool
	muteErr   error
	deafened  bool
	deafenErr error
	played    []voice.PlaybackRequest
	handlers  []voice.TrackEventHandler
	track     *mockTrack
}

func (s *mockVoiceSession) Mute(_ context.Context, mute bool) error {
	s.muteCalls = append(s.muteCalls, mute)
	if s.muteErr != nil {
		return s.muteErr
	}
	s.muted = mute
	return nil
}

func (s *mockVoiceSession) IsMute() bool { return s.muted }

func (s *mockVoiceSession) Deafen(_ context.Context, deaf bool) error {
	if s.deafenErr != nil {
		return s.deafenErr
	}
	s.deafened = deaf
	return nil
}

func (s *mockVoiceSession) Play(req voice.PlaybackRequest) voice.TrackHandle {
	s.played = append(s.played, req)
	if s.track == nil {
		s.track = &mockTrack{id: uuid.New()}
	}
	return s.track
}

func (s *mockVoiceSession) AddGlobalEvent(h voice.TrackEventHandler) {
	s.handlers = append(s.handlers, h)
}

type joinCall struct {
	GuildID   string
	ChannelID string
}

type mockRegistry struct {
	sessions  map[string]*mockVoiceSession
	joinErr   error
	removeErr error
	joins     []joinCall
	removes   []string
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{sessions: make(map[string]*mockVoiceSession)}
}

func (r *mockRegistry) Join(_ context.Context, guildID, channelID string) (voice.Session, error) {
	r.joins = append(r.joins, joinCall{GuildID: guildID, ChannelID: channelID})
	if r.joinErr != nil {
		return nil, r.joinErr
	}
	s, ok := r.sessions[guildID]
	if !ok {
		s = &mockVoiceSession{}
		r.sessions[guildID] = s
	}
	return s, nil
}

func (r *mockRegistry) Get(guildID string) (voice.Session, bool) {
	s, ok := r.sessions[guildID]
	if !ok {
		return nil, false
	}
	return s, true
}

func (r *mockRegistry) Remove(_ context.Context, guildID string) error {
	r.removes = append(r.removes, guildID)
	if r.removeErr != nil {
		return r.removeErr
	}
	delete(r.sessions, guildID)
	return nil
}

var _ voice.Registry = (*mockRegistry)(nil)

type voiceStates map[string]string

func (v voiceStates) UserVoiceChannel(guildID, userID string) (string, bool) {
	c, ok := v[guildID+"/"+userID]
	return c, ok
}

type memoryPlayback struct {
	mu      sync.Mutex
	records []repository.PlaybackRecord
	err     error
}

func (m *memoryPlayback) Save(_ context.Context, record repository.PlaybackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}
