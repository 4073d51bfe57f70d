package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/diyagk01/blii-pdf-service/internal/fileid"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/pipeline"
	"go.uber.org/zap"
)

// Extractor is the part of pipeline.Service the hot folder uses.
type Extractor interface {
	Extract(ctx context.Context, doc *models.Document, opts pipeline.Options) *models.Envelope
}

// HotFolder extracts dropped documents and writes one <filename>.json
// envelope per document into its output directory. Documents below a watched
// root keep their relative directory under the output directory.
type HotFolder struct {
	extractor Extractor
	outputDir string
	opts      pipeline.Options
	maxBytes  int64
	roots     []string
	logger    *zap.Logger

	mu   sync.Mutex
	seen map[string]string // source path -> content ID of the last envelope written
}

// HotFolderOption configures a HotFolder.
type HotFolderOption func(*HotFolder)

// WithRoots sets the watched directories output names are made relative to.
func WithRoots(roots ...string) HotFolderOption {
	return func(h *HotFolder) {
		for _, r := range roots {
			h.roots = append(h.roots, filepath.Clean(r))
		}
	}
}

// NewHotFolder returns a HotFolder writing to outputDir. Files larger than
// maxBytes (when positive) are reported as failures without being read.
func NewHotFolder(ex Extractor, outputDir string, opts pipeline.Options, maxBytes int64, logger *zap.Logger, options ...HotFolderOption) *HotFolder {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &HotFolder{
		extractor: ex,
		outputDir: outputDir,
		opts:      opts,
		maxBytes:  maxBytes,
		logger:    logger,
		seen:      make(map[string]string),
	}
	for _, o := range options {
		o(h)
	}
	return h
}

// OutputPath returns where the envelope for path is written: the path relative
// to its watched root, prefixed by the root's name when several roots are
// watched, plus ".json". Paths outside every root use their base name.
func (h *HotFolder) OutputPath(path string) string {
	path = filepath.Clean(path)
	for _, root := range h.roots {
		if !inDir(root, path) {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			break
		}
		if len(h.roots) > 1 {
			rel = filepath.Join(filepath.Base(root), rel)
		}
		return filepath.Join(h.outputDir, rel+".json")
	}
	return filepath.Join(h.outputDir, filepath.Base(path)+".json")
}

// Process extracts path and writes its envelope, success or failure. It
// returns a nil envelope and nil error when path's content is unchanged since
// its envelope was last written.
func (h *HotFolder) Process(ctx context.Context, path string) (*models.Envelope, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	out := h.OutputPath(path)
	if h.maxBytes > 0 && info.Size() > h.maxBytes {
		env := models.NewFailureEnvelope(fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
		return env, h.write(path, out, "", env)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	id := fileid.ContentID(data)
	if h.unchanged(path, out, id) {
		h.logger.Debug("hot folder skipped unchanged file", zap.String("path", path), zap.String("content_id", id))
		return nil, nil
	}
	env := h.extractor.Extract(ctx, models.NewDocument(filepath.Base(path), data), h.opts)
	return env, h.write(path, out, id, env)
}

func (h *HotFolder) unchanged(path, out, id string) bool {
	h.mu.Lock()
	prev := h.seen[path]
	h.mu.Unlock()
	if prev != id {
		return false
	}
	_, err := os.Stat(out)
	return err == nil
}

func (h *HotFolder) write(path, out, id string, env *models.Envelope) error {
	if err := writeJSON(out, env); err != nil {
		return err
	}
	h.mu.Lock()
	h.seen[path] = id
	h.mu.Unlock()
	h.logger.Info("hot folder processed",
		zap.String("path", path),
		zap.String("output", out),
		zap.Bool("success", env.Success),
		zap.String("method", env.Method))
	return nil
}

// Remove deletes the envelope written for path, if any.
func (h *HotFolder) Remove(path string) error {
	h.mu.Lock()
	delete(h.seen, path)
	h.mu.Unlock()
	err := os.Remove(h.OutputPath(path))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// writeJSON replaces path atomically so readers never see a partial envelope.
func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".envelope-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
