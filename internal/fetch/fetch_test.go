package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diyagk01/blii-pdf-service/internal/config"
	"github.com/diyagk01/blii-pdf-service/internal/extract"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"go.uber.org/zap"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")

func testResolver() *Resolver {
	cfg := config.Default().Fetch
	r := NewResolver(cfg, zap.NewNop())
	r.retryDelay = time.Millisecond
	return r
}

func TestResolve_download(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotUA = req.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdfBody)
	}))
	defer srv.Close()

	doc, err := testResolver().Resolve(context.Background(), srv.URL+"/files/invoice-42.pdf", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if doc.Filename != "invoice-42.pdf" {
		t.Errorf("filename: got %q", doc.Filename)
	}
	if string(doc.Data) != string(pdfBody) {
		t.Errorf("data mismatch")
	}
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Errorf("user agent not set: %q", gotUA)
	}
}

func TestResolve_explicitFilenameWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write(pdfBody)
	}))
	defer srv.Close()
	doc, err := testResolver().Resolve(context.Background(), srv.URL+"/download?id=7", "Lease Agreement.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if doc.Filename != "Lease Agreement.pdf" {
		t.Errorf("filename: got %q", doc.Filename)
	}
}

func TestResolve_retriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(pdfBody)
	}))
	defer srv.Close()

	doc, err := testResolver().Resolve(context.Background(), srv.URL+"/doc", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2", calls.Load())
	}
	if doc.Filename != models.DefaultFilename {
		t.Errorf("filename: got %q", doc.Filename)
	}
}

func TestResolve_clientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		http.NotFound(w, req)
	}))
	defer srv.Close()

	_, err := testResolver().Resolve(context.Background(), srv.URL+"/missing.pdf", "")
	if !errors.Is(err, extract.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("a remote 404 is a download failure, not a missing local file")
	}
	if calls.Load() != 1 {
		t.Errorf("calls: got %d, want 1", calls.Load())
	}
}

func TestResolve_givesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := testResolver()
	r.MaxAttempts = 2
	if _, err := r.Resolve(context.Background(), srv.URL, ""); !errors.Is(err, extract.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2", calls.Load())
	}
}

func TestResolve_emptyDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {}))
	defer srv.Close()

	_, err := testResolver().Resolve(context.Background(), srv.URL+"/empty.pdf", "")
	if !errors.Is(err, ErrEmpty) || !errors.Is(err, extract.ErrSourceUnavailable) {
		t.Fatalf("expected empty download error, got %v", err)
	}
}

func TestResolve_tooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write(pdfBody)
	}))
	defer srv.Close()

	r := testResolver()
	r.MaxBytes = 8
	if _, err := r.Resolve(context.Background(), srv.URL+"/big.pdf", ""); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestResolve_localFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(p, pdfBody, 0600); err != nil {
		t.Fatal(err)
	}
	r := testResolver()
	for _, ref := range []string{p, "file://" + p} {
		doc, err := r.Resolve(context.Background(), ref, "")
		if err != nil {
			t.Fatalf("Resolve(%q): %v", ref, err)
		}
		if doc.Filename != "scan.pdf" || len(doc.Data) != len(pdfBody) {
			t.Errorf("Resolve(%q): filename=%q size=%d", ref, doc.Filename, len(doc.Data))
		}
	}
}

func TestResolve_localFileMissing(t *testing.T) {
	_, err := testResolver().Resolve(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), "")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, extract.ErrSourceUnavailable) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_localDenied(t *testing.T) {
	r := testResolver()
	r.AllowLocal = false
	if _, err := r.Resolve(context.Background(), "file:///etc/hosts", ""); !errors.Is(err, ErrLocalDenied) {
		t.Fatalf("expected ErrLocalDenied, got %v", err)
	}
}

func TestResolve_rejectedReferences(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want error
	}{
		{"empty", "   ", ErrMissingReference},
		{"ftp", "ftp://example.com/a.pdf", ErrUnsupportedScheme},
		{"s3", "s3://bucket/key.pdf", ErrUnsupportedScheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testResolver().Resolve(context.Background(), tt.ref, "")
			if !errors.Is(err, tt.want) || !errors.Is(err, extract.ErrSourceUnavailable) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNameOr(t *testing.T) {
	tests := []struct {
		name, base, want string
	}{
		{"given.pdf", "other.pdf", "given.pdf"},
		{"", "report.pdf", "report.pdf"},
		{"", "download", models.DefaultFilename},
		{"", "/", models.DefaultFilename},
		{" ", "", models.DefaultFilename},
	}
	for _, tt := range tests {
		if got := nameOr(tt.name, tt.base); got != tt.want {
			t.Errorf("nameOr(%q, %q) = %q, want %q", tt.name, tt.base, got, tt.want)
		}
	}
}
