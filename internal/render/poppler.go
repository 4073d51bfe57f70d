package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ledongthuc/pdf"
)

// PopplerRasterizer renders pages with the pdftoppm binary from poppler-utils.
type PopplerRasterizer struct {
	binary string
}

// NewPoppler returns a rasterizer that runs pdftoppm from PATH.
func NewPoppler() *PopplerRasterizer {
	return &PopplerRasterizer{binary: "pdftoppm"}
}

func (r *PopplerRasterizer) Name() string { return string(KindPoppler) }

// Probe checks that pdftoppm is on PATH.
func (r *PopplerRasterizer) Probe() error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return fmt.Errorf("%s not found: install poppler-utils: %w", r.binary, err)
	}
	return nil
}

// Open copies data into a private temporary directory that Close removes.
func (r *PopplerRasterizer) Open(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, ErrEncrypted
		}
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	dir, err := os.MkdirTemp("", "blii-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, data, 0600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("write temp PDF: %w", err)
	}
	return &popplerDocument{
		binary: r.binary,
		dir:    dir,
		input:  input,
		pages:  reader.NumPage(),
	}, nil
}

type popplerDocument struct {
	binary string
	dir    string
	input  string
	pages  int
}

func (d *popplerDocument) NumPage() int { return d.pages }

func (d *popplerDocument) RenderPage(ctx context.Context, index int, dpi float64) (image.Image, error) {
	if index < 0 || index >= d.pages {
		return nil, fmt.Errorf("page %d out of range (1-%d)", index+1, d.pages)
	}
	n := strconv.Itoa(index + 1)
	prefix := filepath.Join(d.dir, "page-"+n)
	cmd := exec.CommandContext(ctx, d.binary,
		"-png", "-r", strconv.FormatFloat(dpi, 'f', -1, 64),
		"-f", n, "-l", n, "-singlefile",
		d.input, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdftoppm page %s: %w: %s", n, err, bytes.TrimSpace(stderr.Bytes()))
	}
	out := prefix + ".png"
	defer os.Remove(out)
	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("open rendered page %s: %w", n, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page %s: %w", n, err)
	}
	return img, nil
}

func (d *popplerDocument) Close() error {
	return os.RemoveAll(d.dir)
}
