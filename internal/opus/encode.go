package opus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/jonas747/ogg"
)

// FFmpegPath is the binary used for transcoding.
var FFmpegPath = "ffmpeg"

func ffmpegArgs(input ...string) []string {
	return append(input,
		"-vn",
		"-map", "0:a",
		"-acodec", "libopus",
		"-f", "ogg",
		"-vbr", "on",
		"-compression_level", "10",
		"-ar", "48000",
		"-ac", "2",
		"-b:a", "64000",
		"-application", "audio",
		"-frame_duration", "20",
		"-packet_loss", "1",
		"-threads", "0",
		"-loglevel", "error",
		"pipe:1",
	)
}

// EncodeURL lets FFmpeg fetch audio from url and transcode it to Opus. The
// returned reader produces length-prefixed frames and must be closed to clean
// up the FFmpeg process. Cancelling ctx kills the process.
func EncodeURL(ctx context.Context, url string) (io.ReadCloser, error) {
	ffmpeg := exec.CommandContext(ctx, FFmpegPath, ffmpegArgs(
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-i", url,
	)...)
	return start(ffmpeg)
}

func start(ffmpeg *exec.Cmd) (io.ReadCloser, error) {
	stdout, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := ffmpeg.Start(); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()

	go func() {
		err := demux(ogg.NewPacketDecoder(ogg.NewDecoder(stdout)), pw)
		if waitErr := ffmpeg.Wait(); err == nil && waitErr != nil {
			err = fmt.Errorf("ffmpeg exited: %w", waitErr)
		}
		// A nil error closes the pipe with io.EOF.
		pw.CloseWithError(err)
	}()

	return &encodeCloser{ReadCloser: pr, cmd: ffmpeg}, nil
}

// demux copies every Opus packet after the two OGG header packets to w as a
// length-prefixed frame.
func demux(decoder *ogg.PacketDecoder, w io.Writer) error {
	skip := 2
	for {
		packet, _, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
		if skip > 0 {
			skip--
			continue
		}

		if err := WriteFrame(w, packet); err != nil {
			return err
		}
	}
}

// encodeCloser wraps the pipe reader and ensures the FFmpeg process is cleaned up.
type encodeCloser struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (e *encodeCloser) Close() error {
	err := e.ReadCloser.Close()
	// Kill FFmpeg if still running (e.g. pipe closed early).
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
	return err
}
