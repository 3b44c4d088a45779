package naming

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"attachbridge/internal/model"
)

const timestampLayout = "20060102-150405"

// Clock makes the timestamp source replaceable in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Engine creates uniquely named copies inside a fixed output directory.
// It is safe for concurrent use.
type Engine struct {
	outputDir string
	clock     Clock

	mu   sync.Mutex
	last time.Time
}

// New returns an Engine writing into outputDir. A nil clock means SystemClock.
func New(outputDir string, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{outputDir: outputDir, clock: clock}
}

// OutputDir returns the directory copies are written to.
func (e *Engine) OutputDir() string { return e.outputDir }

// CreateUniqueCopy copies sourcePath into the output directory under a
// classification-based, timestamped name and returns the descriptor.
//
// Errors are *model.Error values of kind model.ErrNotFound (source missing or
// not a regular file) or model.ErrCopyFailed (any I/O failure).
func (e *Engine) CreateUniqueCopy(ctx context.Context, sourcePath string) (*model.UniqueCopy, error) {
	_, span := otel.Tracer("attachbridge/naming").Start(ctx, "naming.CreateUniqueCopy")
	defer span.End()

	info, err := os.Stat(sourcePath)
	if err != nil || !info.Mode().IsRegular() {
		return nil, model.NewError(model.ErrNotFound, "File not found: "+sourcePath)
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, copyFailed(err)
	}

	name := filepath.Base(sourcePath)
	tag := Classify(name)
	ts := e.stamp()
	micros := fmt.Sprintf("%06d", ts.Nanosecond()/int(time.Microsecond))
	dest := filepath.Join(e.outputDir,
		fmt.Sprintf("%s-%s-%s%s", tag.BaseName(), ts.Format(timestampLayout), micros, Ext(name)))

	span.SetAttributes(
		attribute.String("attach.tag", string(tag)),
		attribute.String("attach.unique_name", filepath.Base(dest)),
	)

	if err := copyFile(sourcePath, dest, info); err != nil {
		return nil, copyFailed(err)
	}

	return &model.UniqueCopy{
		SourcePath:      sourcePath,
		DestinationPath: dest,
		Tag:             tag,
		Timestamp:       ts,
		Micros:          micros,
	}, nil
}

// stamp returns the current time at microsecond resolution, bumped forward
// when needed so that no two calls on the same engine return the same value.
func (e *Engine) stamp() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now().Truncate(time.Microsecond)
	if !now.After(e.last) {
		now = e.last.Add(time.Microsecond)
	}
	e.last = now
	return now
}

func copyFailed(err error) error {
	return model.NewError(model.ErrCopyFailed, "Error creating unique copy: "+err.Error())
}

// copyFile copies content, permission bits and modification time of src to a
// new file at dst. dst must not exist. On failure the partial copy is removed.
func copyFile(src, dst string, info os.FileInfo) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	// OpenFile's mode is filtered by the umask.
	if err = os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
