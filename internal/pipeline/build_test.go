package pipeline

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/diyagk01/blii-pdf-service/internal/capability"
	"github.com/diyagk01/blii-pdf-service/internal/config"
	"github.com/diyagk01/blii-pdf-service/internal/extract"
	"github.com/diyagk01/blii-pdf-service/internal/fixtures"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/ocr"
	"go.uber.org/zap"
)

type fakeRecognizer struct{ err error }

func (f fakeRecognizer) Name() string { return "fake" }
func (f fakeRecognizer) Probe() error { return f.err }
func (f fakeRecognizer) Recognize(context.Context, image.Image, ocr.Options) (string, error) {
	return "", f.err
}

func TestProbes(t *testing.T) {
	off := false
	tests := []struct {
		name       string
		disabled   []string
		previewOff bool
		rastErr    error
		recErr     error
		want       map[string]bool
	}{
		{
			name: "all available",
			want: map[string]bool{capability.NativeText: true, capability.OCR: true, capability.Structural: true, capability.Preview: true},
		},
		{
			name:   "no recognizer",
			recErr: ocr.ErrUnavailable,
			want:   map[string]bool{capability.NativeText: true, capability.OCR: false, capability.Structural: true, capability.Preview: true},
		},
		{
			name:    "no rasterizer",
			rastErr: errors.New("pdftoppm not found"),
			want:    map[string]bool{capability.NativeText: true, capability.OCR: false, capability.Structural: true, capability.Preview: false},
		},
		{
			name:       "disabled in config",
			disabled:   []string{"native", " Structural "},
			previewOff: true,
			want:       map[string]bool{capability.NativeText: false, capability.OCR: true, capability.Structural: false, capability.Preview: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Extraction.Disabled = tt.disabled
			if tt.previewOff {
				cfg.Preview.Enabled = &off
			}
			reg := capability.Detect(zap.NewNop(), Probes(cfg, &fakeRasterizer{fail: tt.rastErr}, fakeRecognizer{err: tt.recErr})...)
			for name, want := range tt.want {
				if got := reg.Has(name); got != want {
					t.Errorf("%s: got %v, want %v", name, got, want)
				}
			}
			if len(tt.disabled) > 0 && !strings.Contains(reg.Reason(capability.NativeText), ErrDisabled.Error()) {
				t.Errorf("reason: %q", reg.Reason(capability.NativeText))
			}
		})
	}
}

func TestBuild_unknownBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Extraction.Rasterizer = "ghostscript"
	if _, err := Build(cfg, nil); err == nil {
		t.Error("expected error for unknown rasterizer")
	}
	cfg = config.Default()
	cfg.Extraction.OCR.Engine = "easyocr"
	if _, err := Build(cfg, nil); err == nil {
		t.Error("expected error for unknown OCR engine")
	}
}

func TestBuild_nativeText(t *testing.T) {
	cfg := config.Default()
	off := false
	cfg.Preview.Enabled = &off
	svc, err := Build(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := models.NewDocument("letter.pdf", fixtures.TextPDF("Dear customer, your order has shipped."))
	env := svc.Extract(context.Background(), doc, Options{GeneratePreview: true})
	if !env.Success {
		t.Fatalf("expected success: %q", env.Error)
	}
	if env.Method != extract.MethodNative {
		t.Errorf("method: got %q", env.Method)
	}
	if !strings.Contains(env.Content, "your order has shipped") {
		t.Errorf("content: %q", env.Content)
	}
	if env.PreviewImage != "" {
		t.Error("preview is disabled in config")
	}
}

func TestBuild_disabledStrategiesFallThrough(t *testing.T) {
	cfg := config.Default()
	cfg.Extraction.Disabled = []string{"native", "ocr"}
	svc, err := Build(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := models.NewDocument("agenda.docx", fixtures.Docx("Quarterly planning agenda", "Budget review"))
	env := svc.Extract(context.Background(), doc, Options{GeneratePreview: true})
	if !env.Success {
		t.Fatalf("expected success: %q", env.Error)
	}
	if env.Method != extract.MethodStructural {
		t.Errorf("method: got %q", env.Method)
	}
	if env.PreviewImage != "" {
		t.Error("no preview for a non-PDF document")
	}
	if svc.Capabilities()[capability.NativeText] {
		t.Error("native_text should be reported unavailable")
	}
}
