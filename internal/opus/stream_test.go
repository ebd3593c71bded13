package opus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glizzus/mfp-bot/internal/opus"
	"github.com/google/go-cmp/cmp"
)

func TestStreamSendsAllFrames(t *testing.T) {
	want := [][]byte{{1}, {2, 2}, {3, 3, 3}}
	source := opus.NewFrameReader(encodeFrames(t, want...))

	send := make(chan []byte, len(want))
	var counted int
	err := opus.Stream(context.Background(), source, send, opus.StreamOptions{
		OnFrame: func() { counted++ },
	})
	if err != nil {
		t.Fatalf("Stream() returned error: %v", err)
	}
	close(send)

	var got [][]byte
	for frame := range send {
		got = append(got, frame)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sent frames mismatch (-want +got):\n%s", diff)
	}
	if counted != len(want) {
		t.Errorf("OnFrame called %d times; want %d", counted, len(want))
	}
}

func TestStreamDropsFramesWhileMuted(t *testing.T) {
	source := opus.NewFrameReader(encodeFrames(t, []byte{1}, []byte{2}))

	send := make(chan []byte, 2)
	var counted int
	err := opus.Stream(context.Background(), source, send, opus.StreamOptions{
		Muted:   func() bool { return true },
		OnFrame: func() { counted++ },
	})
	if err != nil {
		t.Fatalf("Stream() returned error: %v", err)
	}
	if len(send) != 0 {
		t.Errorf("expected no frames sent while muted, got %d", len(send))
	}
	if counted != 2 {
		t.Errorf("OnFrame called %d times; want 2", counted)
	}
}

func TestStreamSendTimeout(t *testing.T) {
	source := opus.NewFrameReader(encodeFrames(t, []byte{1}))

	err := opus.Stream(context.Background(), source, make(chan []byte), opus.StreamOptions{
		SendTimeout: 10 * time.Millisecond,
	})
	if !errors.Is(err, opus.ErrVoiceConnClosed) {
		t.Errorf("Stream() error = %v; want ErrVoiceConnClosed", err)
	}
}

func TestStreamCancelled(t *testing.T) {
	source := opus.NewFrameReader(encodeFrames(t, []byte{1}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- opus.Stream(ctx, source, make(chan []byte), opus.StreamOptions{})
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Stream() error = %v; want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Stream() did not return after cancellation")
	}
}
