// Package pipeline turns a Document into a response envelope: it runs the
// strategy chain, renders the optional preview beside it and assembles the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diyagk01/blii-pdf-service/internal/capability"
	"github.com/diyagk01/blii-pdf-service/internal/extract"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/preview"
	"go.uber.org/zap"
)

// Failure messages returned in the envelope's error field.
const (
	GenericFailureMessage   = "All extraction methods failed. PDF may be corrupted or unsupported format."
	EncryptedFailureMessage = "PDF is password protected. Remove the password and try again."
)

// DefaultPreviewTimeout bounds the preview side path.
const DefaultPreviewTimeout = 30 * time.Second

// Options are per-request settings.
type Options struct {
	GeneratePreview bool
}

// Service is safe for concurrent use; every field is read-only after New.
type Service struct {
	registry       *capability.Registry
	chain          *extract.Chain
	preview        *preview.Renderer
	previewTimeout time.Duration
	logger         *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPreview enables thumbnails rendered by r.
func WithPreview(r *preview.Renderer) Option {
	return func(s *Service) { s.preview = r }
}

// WithPreviewTimeout limits how long a preview may take. A preview that is not
// ready in time is dropped; the extraction result is returned without it.
func WithPreviewTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.previewTimeout = d
		}
	}
}

// New returns a Service running chain. registry decides whether previews can be rendered.
func New(registry *capability.Registry, chain *extract.Chain, opts ...Option) *Service {
	s := &Service{
		registry:       registry,
		chain:          chain,
		previewTimeout: DefaultPreviewTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capabilities returns the availability of every backend.
func (s *Service) Capabilities() models.CapabilitySet {
	return s.registry.Snapshot()
}

// Registry returns the capability registry the service was built with.
func (s *Service) Registry() *capability.Registry {
	return s.registry
}

// Extract runs the strategy chain on doc. It never returns nil; failures are
// reported through the envelope. The preview, when requested, is rendered
// concurrently and dropped if extraction fails.
func (s *Service) Extract(ctx context.Context, doc *models.Document, opts Options) *models.Envelope {
	var (
		previewCh chan string
		pctx      context.Context
	)
	cancelPreview := context.CancelFunc(func() {})
	if opts.GeneratePreview && s.previewUsable(doc) {
		pctx, cancelPreview = context.WithTimeout(ctx, s.previewTimeout)
		defer cancelPreview()
		previewCh = make(chan string, 1)
		go func() { previewCh <- s.renderPreview(pctx, doc) }()
	}

	res, _, err := s.chain.Run(ctx, doc)
	if err != nil {
		cancelPreview()
		s.awaitPreview(pctx, previewCh, doc)
		msg := FailureMessage(err)
		s.logger.Warn("extraction failed",
			zap.String("filename", doc.Filename),
			zap.Int("bytes", len(doc.Data)),
			zap.Error(err))
		return models.NewFailureEnvelope(msg)
	}

	uri := s.awaitPreview(pctx, previewCh, doc)
	s.logger.Info("extraction succeeded",
		zap.String("filename", doc.Filename),
		zap.String("method", res.Method),
		zap.Int("pages", res.Metadata.PageCount),
		zap.Int("words", res.Metadata.WordCount),
		zap.Bool("preview", uri != ""))
	return models.NewSuccessEnvelope(res, uri)
}

func (s *Service) previewUsable(doc *models.Document) bool {
	if s.preview == nil || !s.registry.Has(capability.Preview) {
		return false
	}
	return extract.IsPDF(doc.Data)
}

// awaitPreview waits for the preview goroutine until its context ends. A
// renderer that ignores cancellation is abandoned; its buffered send never blocks.
func (s *Service) awaitPreview(pctx context.Context, previewCh <-chan string, doc *models.Document) string {
	if previewCh == nil {
		return ""
	}
	select {
	case uri := <-previewCh:
		return uri
	case <-pctx.Done():
		select {
		case uri := <-previewCh:
			return uri
		default:
		}
		if errors.Is(pctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("preview dropped",
				zap.String("filename", doc.Filename),
				zap.Duration("timeout", s.previewTimeout),
				zap.Error(extract.ErrPreviewGenerationFailed))
		}
		return ""
	}
}

// renderPreview returns "" on any failure.
func (s *Service) renderPreview(ctx context.Context, doc *models.Document) string {
	uri, err := s.preview.Render(ctx, doc.Data)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("preview skipped",
				zap.String("filename", doc.Filename),
				zap.Error(fmt.Errorf("%w: %w", extract.ErrPreviewGenerationFailed, err)))
		}
		return ""
	}
	return uri
}

// FailureMessage returns the user-facing message for a failed extraction.
func FailureMessage(err error) string {
	var ce *extract.ChainError
	if errors.As(err, &ce) && ce.OnlyEncrypted() {
		return EncryptedFailureMessage
	}
	return GenericFailureMessage
}
