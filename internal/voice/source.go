package voice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/glizzus/mfp-bot/internal/datalayer"
	"github.com/glizzus/mfp-bot/internal/opus"
)

// Source opens a stream of length-prefixed Opus frames for an audio URL.
type Source interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, url string) (io.ReadCloser, error)

func (f SourceFunc) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	return f(ctx, url)
}

// FFmpegSource transcodes audio straight from its URL.
var FFmpegSource Source = SourceFunc(opus.EncodeURL)

// BlobStore is where CachedSource keeps encoded audio.
type BlobStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, data io.Reader, opts datalayer.PutOptions) error
}

// CachedSource serves encoded audio from a BlobStore and falls back to
// another Source on a miss. Audio read from the fallback is written through
// to the store once it has been read to the end.
type CachedSource struct {
	blobs    BlobStore
	fallback Source
}

func NewCachedSource(blobs BlobStore, fallback Source) *CachedSource {
	return &CachedSource{blobs: blobs, fallback: fallback}
}

var _ Source = (*CachedSource)(nil)

// CacheKey is the blob key encoded audio for rawURL is stored under.
func CacheKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "episodes/" + strings.TrimPrefix(path.Clean("/"+rawURL), "/") + ".opus"
	}
	file := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	return "episodes/" + u.Host + "/" + file + ".opus"
}

func (s *CachedSource) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	key := CacheKey(rawURL)

	cached, err := s.blobs.Get(ctx, key)
	if err == nil {
		slog.Debug("Episode cache hit", "key", key)
		return cached, nil
	}
	if !errors.Is(err, datalayer.ErrNotFound) {
		slog.Warn("failed to read episode cache", "key", key, "error", err)
	}

	src, err := s.fallback.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return newWriteThrough(ctx, s.blobs, key, src), nil
}

var errIncompleteRead = errors.New("audio was not read to the end")

// cachePartSize is the multipart chunk size for episode uploads.
const cachePartSize = 16 << 20

// writeThrough copies everything read from src into the blob store. The
// upload is committed only if src was read to EOF and ended on a frame
// boundary; otherwise it is aborted.
type writeThrough struct {
	src    io.ReadCloser
	key    string
	pw     *io.PipeWriter
	upload chan error
	frames opus.FrameTracker

	eof    bool
	failed bool
}

func newWriteThrough(ctx context.Context, blobs BlobStore, key string, src io.ReadCloser) *writeThrough {
	pr, pw := io.Pipe()
	w := &writeThrough{
		src:    src,
		key:    key,
		pw:     pw,
		upload: make(chan error, 1),
	}

	go func() {
		err := blobs.Put(context.WithoutCancel(ctx), key, pr, datalayer.PutOptions{
			Size:        -1,
			ContentType: "application/octet-stream",
			PartSize:    cachePartSize,
		})
		// Unblock the reader side if the upload gave up early.
		pr.CloseWithError(err)
		w.upload <- err
	}()

	return w
}

func (w *writeThrough) Read(p []byte) (int, error) {
	n, err := w.src.Read(p)
	if n > 0 && !w.failed {
		w.frames.Write(p[:n])
		if _, werr := w.pw.Write(p[:n]); werr != nil {
			w.failed = true
		}
	}
	if errors.Is(err, io.EOF) {
		w.eof = true
	}
	return n, err
}

func (w *writeThrough) Close() error {
	err := w.src.Close()

	if w.eof && !w.failed && w.frames.AtBoundary() {
		w.pw.Close()
	} else {
		w.pw.CloseWithError(errIncompleteRead)
	}

	if uploadErr := <-w.upload; uploadErr != nil {
		if !errors.Is(uploadErr, errIncompleteRead) {
			slog.Warn("failed to cache episode", "key", w.key, "error", uploadErr)
		}
	} else {
		slog.Info("Episode cached", "key", w.key)
	}
	return err
}
