package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/diyagk01/blii-pdf-service/internal/fixtures"
	"github.com/diyagk01/blii-pdf-service/internal/models"
)

func TestNative_textLayer(t *testing.T) {
	doc := models.NewDocument("hello.pdf", fixtures.TextPDF("Hello world. This is page one."))
	res, err := NewNative().Attempt(context.Background(), doc)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Method != MethodNative || res.Metadata.ExtractionMethod != MethodNative {
		t.Errorf("method: got %q / %q", res.Method, res.Metadata.ExtractionMethod)
	}
	if res.Confidence != 0.95 {
		t.Errorf("confidence: got %v", res.Confidence)
	}
	if res.Metadata.PageCount != 1 {
		t.Errorf("page_count: got %d", res.Metadata.PageCount)
	}
	if !strings.HasPrefix(res.Content, "--- Page 1 ---") {
		t.Errorf("content should start with the page marker: %q", res.Content)
	}
	if !strings.Contains(res.Content, "Hello world. This is page one.") {
		t.Errorf("content: %q", res.Content)
	}
	if res.Title != "Hello world. This is page one." {
		t.Errorf("title: got %q", res.Title)
	}
	if res.Metadata.HasTables || res.Metadata.HasImages {
		t.Error("native results do not report tables or images")
	}
	if res.Metadata.Filename != "hello.pdf" {
		t.Errorf("filename: got %q", res.Metadata.Filename)
	}
}

func TestNative_skipsEmptyPages(t *testing.T) {
	doc := models.NewDocument("mixed.pdf", fixtures.TextPDF("First page text here", "", "Third page text here"))
	res, err := NewNative().Attempt(context.Background(), doc)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Metadata.PageCount != 3 {
		t.Errorf("page_count: got %d", res.Metadata.PageCount)
	}
	if strings.Contains(res.Content, "--- Page 2 ---") {
		t.Errorf("empty page should have no marker: %q", res.Content)
	}
	if !strings.Contains(res.Content, "--- Page 3 ---") {
		t.Errorf("missing page 3 marker: %q", res.Content)
	}
}

func TestNative_imageOnlyPage(t *testing.T) {
	doc := models.NewDocument("scan.pdf", fixtures.PDF(fixtures.Page{Image: true}))
	_, err := NewNative().Attempt(context.Background(), doc)
	if !errors.Is(err, ErrNoExtractableText) {
		t.Fatalf("got %v, want ErrNoExtractableText", err)
	}
}

func TestNative_notPDF(t *testing.T) {
	doc := models.NewDocument("notes.txt", []byte("just some text"))
	_, err := NewNative().Attempt(context.Background(), doc)
	if !errors.Is(err, ErrUnsupportedOrCorrupt) {
		t.Fatalf("got %v, want ErrUnsupportedOrCorrupt", err)
	}
}

func TestNative_corrupt(t *testing.T) {
	doc := models.NewDocument("broken.pdf", []byte("%PDF-1.4\nthis is not really a pdf"))
	_, err := NewNative().Attempt(context.Background(), doc)
	if !errors.Is(err, ErrUnsupportedOrCorrupt) {
		t.Fatalf("got %v, want ErrUnsupportedOrCorrupt", err)
	}
}

func TestNative_encryptedMarker(t *testing.T) {
	doc := models.NewDocument("locked.pdf", []byte("%PDF-1.4\n1 0 obj << /Filter /Standard >> endobj\ntrailer << /Encrypt 1 0 R >>"))
	_, err := NewNative().Attempt(context.Background(), doc)
	if !errors.Is(err, ErrEncrypted) {
		t.Fatalf("got %v, want ErrEncrypted", err)
	}
}
