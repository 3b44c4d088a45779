package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"attachbridge/internal/logging"
	"attachbridge/internal/model"
	"attachbridge/internal/naming"
	"attachbridge/internal/storage"
)

// NamingEngine creates the uniquely named copy that gets attached.
type NamingEngine interface {
	CreateUniqueCopy(ctx context.Context, sourcePath string) (*model.UniqueCopy, error)
}

// Dispatcher opens a draft with the file attached. Failures are reported in
// the result, never as an error.
type Dispatcher interface {
	OpenMailWithAttachment(ctx context.Context, filePath string) model.AttachResult
}

// AttachService defines the attach use case.
type AttachService interface {
	// Attach copies filePath under a unique name and opens a draft with the copy
	// attached. A returned error means no copy was made; dispatcher failures
	// are reported through the outcome's Result.
	Attach(ctx context.Context, filePath string) (*model.AttachOutcome, error)
}

// Option configures optional collaborators of the attach service.
type Option func(*attachService)

// DefaultArchiveTimeout bounds one archive upload when WithArchive gets no
// positive timeout.
const DefaultArchiveTimeout = 5 * time.Second

// WithArchive mirrors every copy to store after dispatch. Each upload is cut
// off after timeout so a stalled bucket cannot hold the request.
func WithArchive(store storage.Storage, timeout time.Duration) Option {
	if timeout <= 0 {
		timeout = DefaultArchiveTimeout
	}
	return func(s *attachService) {
		s.archive = store
		s.archiveTimeout = timeout
	}
}

// WithMetrics records attach outcomes and dispatch latency.
func WithMetrics(m *Metrics) Option {
	return func(s *attachService) { s.metrics = m }
}

// WithLogger sets the logger used for archive failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *attachService) { s.logger = l }
}

type attachService struct {
	engine     NamingEngine
	dispatcher Dispatcher
	archive    storage.Storage
	metrics    *Metrics
	logger     *slog.Logger

	archiveTimeout time.Duration
}

// NewAttachService constructs a new AttachService.
func NewAttachService(engine NamingEngine, dispatcher Dispatcher, opts ...Option) AttachService {
	s := &attachService{engine: engine, dispatcher: dispatcher, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *attachService) Attach(ctx context.Context, filePath string) (*model.AttachOutcome, error) {
	ctx, span := otel.Tracer("attachbridge/service").Start(ctx, "service.Attach")
	defer span.End()

	cp, err := s.engine.CreateUniqueCopy(ctx, filePath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.metrics.observeAttach(string(naming.Classify(filepath.Base(filePath))), false)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("attach.tag", string(cp.Tag)),
		attribute.String("attach.copy", filepath.Base(cp.DestinationPath)),
	)

	start := time.Now()
	res := s.dispatcher.OpenMailWithAttachment(ctx, cp.DestinationPath)
	s.metrics.observeDispatch(time.Since(start))
	s.metrics.observeAttach(string(cp.Tag), res.Success)
	if !res.Success {
		span.SetStatus(codes.Error, res.Message)
	}

	if s.archive != nil {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.archiveTimeout)
		err := s.archiveCopy(actx, cp)
		cancel()
		if err != nil {
			s.logger.Warn("archive copy failed",
				slog.String(logging.KeyUnique, filepath.Base(cp.DestinationPath)),
				logging.Err(err),
			)
		}
	}

	return &model.AttachOutcome{Copy: *cp, Result: res}, nil
}

func (s *attachService) archiveCopy(ctx context.Context, cp *model.UniqueCopy) error {
	ctx, span := otel.Tracer("attachbridge/service").Start(ctx, "service.archiveCopy")
	defer span.End()

	f, err := os.Open(cp.DestinationPath)
	if err != nil {
		return fmt.Errorf("open copy: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat copy: %w", err)
	}

	name := filepath.Base(cp.DestinationPath)
	_, err = s.archive.Put(ctx, ArchiveKey(cp), f, storage.PutObjectOptions{
		Size:        info.Size(),
		ContentType: contentType(name),
		Metadata:    map[string]string{"original-filename": filepath.Base(cp.SourcePath)},
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("archive %s: %w", name, err)
	}
	return nil
}

// ArchiveKey is <tag>/<unique filename>.
func ArchiveKey(cp *model.UniqueCopy) string {
	return path.Join(string(cp.Tag), filepath.Base(cp.DestinationPath))
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(naming.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
