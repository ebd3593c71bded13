package e2e

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/glizzus/mfp-bot/internal/opus"
	"github.com/glizzus/mfp-bot/internal/voice"
)

// LoopbackConn is a voice connection that accepts and counts frames.
type LoopbackConn struct {
	mu        sync.Mutex
	channelID string
	mute      bool
	deaf      bool
	frames    int
	send      chan []byte
}

func (c *LoopbackConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

func (c *LoopbackConn) ChangeChannel(channelID string, mute, deaf bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelID, c.mute, c.deaf = channelID, mute, deaf
	return nil
}

func (c *LoopbackConn) Speaking(bool) error { return nil }

func (c *LoopbackConn) Send() chan<- []byte { return c.send }

func (c *LoopbackConn) Disconnect() error { return nil }

// State reports the mute and deaf flags last sent to Discord.
func (c *LoopbackConn) State() (mute, deaf bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mute, c.deaf
}

// LoopbackDialer creates LoopbackConns and keeps the latest one per guild.
type LoopbackDialer struct {
	mu    sync.Mutex
	conns map[string]*LoopbackConn
}

func NewLoopbackDialer() *LoopbackDialer {
	return &LoopbackDialer{conns: make(map[string]*LoopbackConn)}
}

func (d *LoopbackDialer) Dial(_ context.Context, guildID, channelID string) (voice.Conn, error) {
	conn := &LoopbackConn{channelID: channelID, send: make(chan []byte)}
	go func() {
		for range conn.send {
			conn.mu.Lock()
			conn.frames++
			conn.mu.Unlock()
		}
	}()

	d.mu.Lock()
	d.conns[guildID] = conn
	d.mu.Unlock()
	return conn, nil
}

func (d *LoopbackDialer) Conn(guildID string) *LoopbackConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[guildID]
}

// SilenceSource plays a fixed number of silent Opus frames for any URL.
type SilenceSource struct {
	Frames int

	mu     sync.Mutex
	opened []string
}

var silence = []byte{0xF8, 0xFF, 0xFE}

func (s *SilenceSource) Open(_ context.Context, url string) (io.ReadCloser, error) {
	s.mu.Lock()
	s.opened = append(s.opened, url)
	s.mu.Unlock()

	var buf bytes.Buffer
	for range s.Frames {
		if err := opus.WriteFrame(&buf, silence); err != nil {
			return nil, err
		}
	}
	return io.NopCloser(&buf), nil
}

func (s *SilenceSource) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}
