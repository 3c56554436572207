// Package staging materializes incoming upload streams as temporary files so
// they can be handed to the media uploader as seekable bodies.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const maxExtLen = 10

// Stager creates temp files under a single directory.
type Stager struct {
	dir string
}

// New returns a Stager writing into dir. An empty dir means os.TempDir().
func New(dir string) *Stager {
	return &Stager{dir: dir}
}

// File is a staged upload. Release must be called exactly once by the owner;
// extra calls are harmless.
type File struct {
	f    *os.File
	path string
	size int64

	once       sync.Once
	releaseErr error
}

// Stage copies r into a new temp file. On failure no file is left behind.
func (s *Stager) Stage(ctx context.Context, r io.Reader, ext string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o700); err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
	}

	f, err := os.CreateTemp(s.dir, "upload-*"+SanitizeExt(ext))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	staged := &File{f: f, path: f.Name()}

	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		if relErr := staged.Release(); relErr != nil {
			slog.Warn("failed to remove partial staged file", "path", staged.path, "error", relErr)
		}
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	staged.size = n

	return staged, nil
}

// Path returns the location of the temp file.
func (f *File) Path() string { return f.path }

// Size returns the number of bytes staged.
func (f *File) Size() int64 { return f.size }

// Reader rewinds the file and returns it for reading.
func (f *File) Reader() (io.ReadSeeker, error) {
	if _, err := f.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind staged file: %w", err)
	}
	return f.f, nil
}

// Release closes and deletes the temp file. Only the first call does work.
func (f *File) Release() error {
	f.once.Do(func() {
		closeErr := f.f.Close()
		if closeErr != nil && errors.Is(closeErr, os.ErrClosed) {
			closeErr = nil
		}
		removeErr := os.Remove(f.path)
		if removeErr != nil && errors.Is(removeErr, os.ErrNotExist) {
			removeErr = nil
		}
		f.releaseErr = errors.Join(closeErr, removeErr)
	})
	return f.releaseErr
}

// SanitizeExt keeps a short lowercase alphanumeric extension (with its dot)
// and drops anything else.
func SanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || len(ext) > maxExtLen {
		return ""
	}
	for _, c := range ext {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return "." + ext
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
