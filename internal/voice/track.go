package voice

import (
	"context"
	"sync"
	"time"

	"github.com/glizzus/mfp-bot/internal/opus"
	"github.com/google/uuid"
)

// Track is a single playback inside a Call.
type Track struct {
	id     uuid.UUID
	url    string
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	mode    PlayMode
	looping bool
	loops   int
	frames  int64
	err     error
}

var _ TrackHandle = (*Track)(nil)

func newTrack(id uuid.UUID, req PlaybackRequest, cancel context.CancelFunc) *Track {
	return &Track{
		id:      id,
		url:     req.URL,
		cancel:  cancel,
		done:    make(chan struct{}),
		mode:    PlayModePlay,
		looping: req.Loop,
	}
}

func (t *Track) UUID() uuid.UUID {
	return t.id
}

// EnableLoop makes the track start over whenever it reaches the end.
func (t *Track) EnableLoop() error {
	return t.setLoop(true)
}

func (t *Track) setLoop(loop bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode.Done() {
		return ErrTrackFinished
	}
	t.looping = loop
	return nil
}

// Stop ends the track. Stopping a finished track returns ErrTrackFinished.
func (t *Track) Stop() error {
	t.mu.Lock()
	done := t.mode.Done()
	t.mu.Unlock()
	if done {
		return ErrTrackFinished
	}
	t.stop()
	return nil
}

// Done is closed once the track's goroutine has returned.
func (t *Track) Done() <-chan struct{} {
	return t.done
}

func (t *Track) State() TrackState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TrackState{
		Playing:  t.mode,
		Looping:  t.looping,
		Loops:    t.loops,
		Position: time.Duration(t.frames) * opus.FrameDuration,
		Err:      t.err,
	}
}

func (t *Track) stop() {
	t.mu.Lock()
	if !t.mode.Done() {
		t.mode = PlayModeStop
	}
	t.mu.Unlock()
	t.cancel()
}

func (t *Track) advance() {
	t.mu.Lock()
	t.frames++
	t.mu.Unlock()
}

// restart reports whether the track loops, rewinding it if so.
func (t *Track) restart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.looping || t.mode.Done() {
		return false
	}
	t.loops++
	t.frames = 0
	return true
}

func (t *Track) finish(mode PlayMode, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == PlayModePlay || t.mode == PlayModePause {
		t.mode = mode
	}
	t.err = err
	t.cancel()
}
