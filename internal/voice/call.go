package voice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/glizzus/mfp-bot/internal/generator"
	"github.com/glizzus/mfp-bot/internal/opus"
	"github.com/google/uuid"
)

// Call is the voice session of one guild.
// All of its methods are safe for concurrent use.
type Call struct {
	guildID string
	source  Source
	ids     generator.Generator[uuid.UUID]

	mu       sync.Mutex
	conn     Conn
	muted    bool
	deafened bool
	handlers []TrackEventHandler
	current  *Track
}

var _ Session = (*Call)(nil)

func newCall(guildID string, conn Conn, source Source, ids generator.Generator[uuid.UUID]) *Call {
	return &Call{
		guildID: guildID,
		conn:    conn,
		source:  source,
		ids:     ids,
	}
}

// attach swaps in a freshly joined connection. Joining resets the bot's
// mute and deaf state on Discord's side, so the local flags follow.
func (c *Call) attach(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	c.muted = false
	c.deafened = false
}

// detach stops playback and drops the connection without disconnecting it.
func (c *Call) detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopCurrent()
	c.conn = nil
}

func (c *Call) disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCurrent()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Disconnect()
	c.conn = nil
	return err
}

func (c *Call) Mute(_ context.Context, mute bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.ChangeChannel(c.conn.ChannelID(), mute, c.deafened); err != nil {
		return fmt.Errorf("failed to update voice state: %w", err)
	}
	c.muted = mute
	return nil
}

func (c *Call) IsMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Call) Deafen(_ context.Context, deaf bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.ChangeChannel(c.conn.ChannelID(), c.muted, deaf); err != nil {
		return fmt.Errorf("failed to update voice state: %w", err)
	}
	c.deafened = deaf
	return nil
}

func (c *Call) AddGlobalEvent(handler TrackEventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Play stops the current track and starts a new one. It never waits for
// audio to be fetched or sent.
func (c *Call) Play(req PlaybackRequest) TrackHandle {
	id, err := c.ids.Next()
	if err != nil {
		slog.Warn("failed to generate track ID", "guildID", c.guildID, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	track := newTrack(id, req, cancel)

	c.mu.Lock()
	prev := c.current
	c.stopCurrent()
	c.current = track
	c.mu.Unlock()

	go c.run(ctx, track, prev)
	return track
}

// stopCurrent must be called with c.mu held.
func (c *Call) stopCurrent() {
	if c.current != nil {
		c.current.stop()
		c.current = nil
	}
}

// run plays t until it ends. The superseded track, if any, must release
// the connection before t starts speaking.
func (c *Call) run(ctx context.Context, t *Track, prev *Track) {
	defer close(t.done)

	if prev != nil {
		<-prev.done
	}

	for {
		err := c.playOnce(ctx, t)
		if ctx.Err() != nil {
			t.finish(PlayModeStop, nil)
			return
		}
		if err != nil {
			t.finish(PlayModeErrored, err)
			c.notify(t)
			return
		}
		if !t.restart() {
			t.finish(PlayModeEnd, nil)
			return
		}
	}
}

func (c *Call) playOnce(ctx context.Context, t *Track) error {
	src, err := c.source.Open(ctx, t.url)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	if err := conn.Speaking(true); err != nil {
		return fmt.Errorf("error setting speaking state to 'true': %w", err)
	}
	defer func() {
		if err := conn.Speaking(false); err != nil {
			slog.Debug("failed to stop speaking", "guildID", c.guildID, "error", err)
		}
	}()

	return opus.Stream(ctx, opus.NewFrameReader(src), conn.Send(), opus.StreamOptions{
		Muted:   c.IsMute,
		OnFrame: t.advance,
	})
}

func (c *Call) notify(t *Track) {
	c.mu.Lock()
	handlers := append([]TrackEventHandler(nil), c.handlers...)
	c.mu.Unlock()

	events := []TrackEvent{{State: t.State(), Handle: t}}
	for _, h := range handlers {
		h.HandleTrackEvents(context.Background(), events)
	}
}
