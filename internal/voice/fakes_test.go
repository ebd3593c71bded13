package voice_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/glizzus/mfp-bot/internal/datalayer"
	"github.com/glizzus/mfp-bot/internal/opus"
	"github.com/glizzus/mfp-bot/internal/voice"
)

type stateChange struct {
	ChannelID string
	Mute      bool
	Deaf      bool
}

type fakeConn struct {
	mu           sync.Mutex
	channelID    string
	changes      []stateChange
	changeErr    error
	disconnected bool
	received     int
	speaking     []bool
	// releaseDelay slows down Speaking(false) calls.
	releaseDelay time.Duration

	send chan []byte
}

func newFakeConn(channelID string) *fakeConn {
	c := &fakeConn{channelID: channelID, send: make(chan []byte)}
	go func() {
		for range c.send {
			c.mu.Lock()
			c.received++
			c.mu.Unlock()
		}
	}()
	return c
}

func (c *fakeConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

func (c *fakeConn) ChangeChannel(channelID string, mute, deaf bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.changeErr != nil {
		return c.changeErr
	}
	c.channelID = channelID
	c.changes = append(c.changes, stateChange{ChannelID: channelID, Mute: mute, Deaf: deaf})
	return nil
}

func (c *fakeConn) Speaking(on bool) error {
	c.mu.Lock()
	delay := c.releaseDelay
	c.mu.Unlock()
	if !on {
		time.Sleep(delay)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.speaking = append(c.speaking, on)
	return nil
}

func (c *fakeConn) SetReleaseDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseDelay = d
}

func (c *fakeConn) SpeakingLog() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.speaking...)
}

func (c *fakeConn) Send() chan<- []byte {
	return c.send
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func (c *fakeConn) Changes() []stateChange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]stateChange(nil), c.changes...)
}

func (c *fakeConn) Received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received
}

func (c *fakeConn) Disconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

// fakeDialer hands out a new fakeConn per dial and remembers them.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	err   error
}

func (d *fakeDialer) Dial(_ context.Context, _, channelID string) (voice.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	conn := newFakeConn(channelID)
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) Last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1]
}

func encodeFrames(t *testing.T, n int) []byte {
	t.Helper()
	var buf bytes.Buffer
	for i := range n {
		if err := opus.WriteFrame(&buf, []byte{byte(i), 0xF8, 0xFF, 0xFE}); err != nil {
			t.Fatalf("failed to write frame: %v", err)
		}
	}
	return buf.Bytes()
}

// scriptedSource returns the next result every time it is opened and
// keeps returning the last one.
type scriptedSource struct {
	mu      sync.Mutex
	results []sourceResult
	opened  []string
}

type sourceResult struct {
	data []byte
	err  error
}

func (s *scriptedSource) Open(_ context.Context, url string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, url)
	r := s.results[min(len(s.opened), len(s.results))-1]
	if r.err != nil {
		return nil, r.err
	}
	return io.NopCloser(bytes.NewReader(r.data)), nil
}

func (s *scriptedSource) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}

// blockingSource produces no audio until the track is cancelled.
type blockingSource struct{}

func (blockingSource) Open(ctx context.Context, _ string) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	go func() {
		<-ctx.Done()
		pw.CloseWithError(ctx.Err())
	}()
	return pr, nil
}

type memoryBlobs struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	puts   chan string
	opts   []datalayer.PutOptions
	getErr error
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{blobs: make(map[string][]byte), puts: make(chan string, 8)}
}

func (m *memoryBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.blobs[key]
	if !ok {
		return nil, datalayer.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryBlobs) Put(_ context.Context, key string, data io.Reader, opts datalayer.PutOptions) error {
	m.mu.Lock()
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[key] = b
	m.mu.Unlock()
	m.puts <- key
	return nil
}

func (m *memoryBlobs) PutOptions() []datalayer.PutOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]datalayer.PutOptions(nil), m.opts...)
}

func (m *memoryBlobs) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}

type eventRecorder struct {
	mu     sync.Mutex
	events []voice.TrackEvent
}

func (r *eventRecorder) HandleTrackEvents(_ context.Context, events []voice.TrackEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *eventRecorder) Events() []voice.TrackEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]voice.TrackEvent(nil), r.events...)
}

func waitDone(t *testing.T, handle voice.TrackHandle) *voice.Track {
	t.Helper()
	track, ok := handle.(*voice.Track)
	if !ok {
		t.Fatalf("expected *voice.Track, got %T", handle)
	}
	select {
	case <-track.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("track did not finish in time")
	}
	return track
}

var errBoom = errors.New("boom")
