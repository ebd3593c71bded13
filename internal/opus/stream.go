package opus

import (
	"context"
	"errors"
	"io"
	"time"
)

// FrameDuration is the playback length of one frame produced by Encode.
const FrameDuration = 20 * time.Millisecond

var ErrVoiceConnClosed = errors.New("voice connection send timeout")

// StreamOptions tune Stream. The zero value sends every frame and waits up to
// a minute for the connection to accept each one.
type StreamOptions struct {
	// Muted reports whether the next frame should be dropped instead of sent.
	// Dropped frames still take FrameDuration so the track keeps its pace.
	Muted func() bool

	// OnFrame is called after each frame is sent or dropped.
	OnFrame func()

	SendTimeout time.Duration
}

// Stream reads Opus frames from source and sends them to send, which is
// usually a discordgo.VoiceConnection's OpusSend channel. It blocks until all
// frames are sent, ctx is done, or an error occurs.
// Returns nil on clean EOF.
func Stream(ctx context.Context, source *FrameReader, send chan<- []byte, opts StreamOptions) error {
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := source.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}

		if opts.Muted != nil && opts.Muted() {
			if err := sleep(ctx, FrameDuration); err != nil {
				return err
			}
		} else if err := sendFrame(ctx, send, frame, timeout); err != nil {
			return err
		}

		if opts.OnFrame != nil {
			opts.OnFrame()
		}
	}
}

func sendFrame(ctx context.Context, send chan<- []byte, frame []byte, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case send <- frame:
		return nil
	case <-timer.C:
		return ErrVoiceConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
