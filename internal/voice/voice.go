// Package voice keeps one voice call per guild and plays episodes into it.
//
// The Registry, Session and TrackHandle interfaces are what command handlers
// depend on. Manager implements them on top of discordgo voice connections.
package voice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotConnected is returned when a guild has no active call.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrTrackFinished is returned when controlling a track that has already
	// ended, errored or been stopped.
	ErrTrackFinished = errors.New("track has already finished")
)

// Registry hands out the voice call of a guild.
type Registry interface {
	Join(ctx context.Context, guildID, channelID string) (Session, error)
	Get(guildID string) (Session, bool)
	Remove(ctx context.Context, guildID string) error
}

// Session is an active voice call in a single guild.
type Session interface {
	Mute(ctx context.Context, mute bool) error
	IsMute() bool
	Deafen(ctx context.Context, deaf bool) error
	// Play stops whatever is playing and starts req in the background.
	Play(req PlaybackRequest) TrackHandle
	AddGlobalEvent(handler TrackEventHandler)
}

// TrackHandle controls one playback started by Session.Play.
type TrackHandle interface {
	UUID() uuid.UUID
	EnableLoop() error
	State() TrackState
}

// PlaybackRequest describes the audio a session should play.
type PlaybackRequest struct {
	URL  string
	Loop bool
}

type PlayMode int

const (
	PlayModePlay PlayMode = iota
	PlayModePause
	PlayModeStop
	PlayModeEnd
	PlayModeErrored
)

func (m PlayMode) String() string {
	switch m {
	case PlayModePlay:
		return "Play"
	case PlayModePause:
		return "Pause"
	case PlayModeStop:
		return "Stop"
	case PlayModeEnd:
		return "End"
	case PlayModeErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// Done reports whether a track in this mode can no longer be controlled.
func (m PlayMode) Done() bool {
	return m == PlayModeStop || m == PlayModeEnd || m == PlayModeErrored
}

// TrackState is a snapshot of a track.
type TrackState struct {
	Playing  PlayMode
	Looping  bool
	Loops    int
	Position time.Duration
	Err      error
}

// TrackEvent pairs a track with the state it was in when the event fired.
type TrackEvent struct {
	State  TrackState
	Handle TrackHandle
}

// TrackEventHandler is notified when tracks of a session fail.
// Handlers run on the track's goroutine and must not block for long.
type TrackEventHandler interface {
	HandleTrackEvents(ctx context.Context, events []TrackEvent)
}

// TrackEventHandlerFunc adapts a function to TrackEventHandler.
type TrackEventHandlerFunc func(ctx context.Context, events []TrackEvent)

func (f TrackEventHandlerFunc) HandleTrackEvents(ctx context.Context, events []TrackEvent) {
	f(ctx, events)
}
