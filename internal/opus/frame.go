package opus

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// FrameReader reads length-prefixed Opus frames from an io.Reader.
type FrameReader struct {
	r io.Reader
}

// NewFrameReader returns a new FrameReader that reads from r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// ReadFrame reads and returns the next raw Opus frame.
// Returns io.EOF when there are no more frames.
func (f *FrameReader) ReadFrame() ([]byte, error) {
	var size uint16
	if err := binary.Read(f.r, binary.LittleEndian, &size); err != nil {
		return nil, err
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(f.r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// WriteFrame writes a single length-prefixed frame to w.
func WriteFrame(w io.Writer, frame []byte) error {
	if len(frame) > math.MaxUint16 {
		return fmt.Errorf("frame of %d bytes exceeds the maximum frame size", len(frame))
	}

	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(frame)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}

// FrameTracker follows the frame layout of bytes written to it so a
// producer can tell whether a stream stopped between frames.
type FrameTracker struct {
	header    [2]byte
	headerLen int
	remaining int
}

func (t *FrameTracker) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if t.remaining > 0 {
			skip := min(t.remaining, len(p))
			t.remaining -= skip
			p = p[skip:]
			continue
		}
		t.header[t.headerLen] = p[0]
		t.headerLen++
		p = p[1:]
		if t.headerLen == len(t.header) {
			t.remaining = int(binary.LittleEndian.Uint16(t.header[:]))
			t.headerLen = 0
		}
	}
	return n, nil
}

// AtBoundary reports whether everything written so far forms whole frames.
func (t *FrameTracker) AtBoundary() bool {
	return t.headerLen == 0 && t.remaining == 0
}
