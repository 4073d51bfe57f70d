// Package fetch resolves a document reference (http(s) URL, file:// URL or
// local path) into the bytes of a Document.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/diyagk01/blii-pdf-service/internal/config"
	"github.com/diyagk01/blii-pdf-service/internal/extract"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"go.uber.org/zap"
)

// Resolution failures. Each is also wrapped with extract.ErrSourceUnavailable.
var (
	ErrMissingReference  = errors.New("file_path or pdf_url is required")
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrLocalDenied       = errors.New("local file paths are not accessible from the server, upload the file instead")
	ErrEmpty             = errors.New("downloaded file is empty")
	ErrTooLarge          = errors.New("document exceeds size limit")
)

// Resolver downloads or reads documents. The zero value is usable: one
// attempt, no size limit and no local file access.
type Resolver struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// Timeout bounds each HTTP request.
	Timeout    time.Duration
	MaxBytes   int64
	AllowLocal bool
	Logger     *zap.Logger

	// retryDelay is the base of the linear backoff between attempts.
	retryDelay time.Duration
}

// NewResolver returns a Resolver configured from cfg.
func NewResolver(cfg config.FetchConfig, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		UserAgent:   cfg.UserAgent,
		MaxAttempts: cfg.MaxAttempts,
		Timeout:     cfg.Timeout,
		MaxBytes:    cfg.MaxBytes,
		AllowLocal:  cfg.AllowLocalOrDefault(),
		Logger:      logger,
		retryDelay:  200 * time.Millisecond,
	}
}

// Resolve returns the document behind ref. filename names the document; when
// empty it is taken from ref.
func (r *Resolver) Resolve(ctx context.Context, ref, filename string) (*models.Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: %w", extract.ErrSourceUnavailable, ErrMissingReference)
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// No scheme, or a Windows drive letter.
		return r.local(ref, filename)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		data, err := r.download(ctx, u.String())
		if err != nil {
			return nil, err
		}
		return models.NewDocument(nameOr(filename, path.Base(u.Path)), data), nil
	case "file":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		return r.local(p, filename)
	default:
		return nil, fmt.Errorf("%w: %w: %q", extract.ErrSourceUnavailable, ErrUnsupportedScheme, u.Scheme)
	}
}

func (r *Resolver) local(p, filename string) (*models.Document, error) {
	if !r.AllowLocal {
		return nil, fmt.Errorf("%w: %w", extract.ErrSourceUnavailable, ErrLocalDenied)
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s", extract.ErrSourceUnavailable, ErrNotFound, p)
		}
		return nil, fmt.Errorf("%w: %w", extract.ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", extract.ErrSourceUnavailable, p)
	}
	if r.MaxBytes > 0 && info.Size() > r.MaxBytes {
		return nil, fmt.Errorf("%w: %w: %d bytes", extract.ErrSourceUnavailable, ErrTooLarge, info.Size())
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", extract.ErrSourceUnavailable, p, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty: %s", extract.ErrSourceUnavailable, p)
	}
	return models.NewDocument(nameOr(filename, filepath.Base(p)), data), nil
}

// download issues a GET with bounded retry on 5xx responses and timeouts.
func (r *Resolver) download(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		data, err := r.tryOnce(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 || ctx.Err() != nil {
			break
		}
		logger.Debug("download retry", zap.String("url", rawURL), zap.Int("attempt", i+1), zap.Error(err))
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
		case <-time.After(time.Duration(i+1) * r.retryDelay):
			continue
		}
		break
	}
	if errors.Is(lastErr, ErrEmpty) || errors.Is(lastErr, ErrTooLarge) {
		return nil, fmt.Errorf("%w: %w", extract.ErrSourceUnavailable, lastErr)
	}
	return nil, fmt.Errorf("%w: failed to download: %w", extract.ErrSourceUnavailable, lastErr)
}

// statusError is a non-2xx HTTP response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, http.StatusText(e.code))
}

func (r *Resolver) tryOnce(ctx context.Context, rawURL string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{code: resp.StatusCode}
	}

	body := io.Reader(resp.Body)
	if r.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, r.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if r.MaxBytes > 0 && int64(len(data)) > r.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, r.MaxBytes)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if ct := resp.Header.Get("Content-Type"); !extract.IsPDF(data) && strings.Contains(ct, "pdf") {
		r.logWarn("content type says PDF but body has no PDF header", rawURL, ct)
	}
	return data, nil
}

func (r *Resolver) logWarn(msg, rawURL, contentType string) {
	if r.Logger != nil {
		r.Logger.Warn(msg, zap.String("url", rawURL), zap.String("content_type", contentType))
	}
}

// isTransient treats 5xx responses and timeouts as worth retrying.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 && se.code <= 599
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// nameOr returns name, or base when name is empty. Bases without an extension
// are not useful as filenames and yield models.DefaultFilename.
func nameOr(name, base string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if base == "" || base == "." || base == "/" || path.Ext(base) == "" {
		return models.DefaultFilename
	}
	return base
}
