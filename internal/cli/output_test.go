package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/diyagk01/blii-pdf-service/internal/models"
)

func sampleEnvelope() *models.Envelope {
	return models.NewSuccessEnvelope(&models.ExtractionResult{
		Method:  "ocr",
		Title:   "Scanned Invoice 42",
		Content: "--- Page 1 ---\nScanned Invoice 42",
		RawText: "--- Page 1 ---\nScanned Invoice 42\n",
		Metadata: models.Metadata{
			WordCount: 3, PageCount: 1, ExtractionMethod: "ocr", Filename: "invoice.pdf",
		},
		Confidence: 0.85,
	}, "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAA")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{" content ", OutputContent, false},
		{"compact", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteEnvelope_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEnvelope(&buf, sampleEnvelope(), OutputJSON); err != nil {
		t.Fatalf("WriteEnvelope(json): %v", err)
	}
	var decoded models.Envelope
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if !decoded.Success || decoded.Method != "ocr" || decoded.Metadata.PageCount != 1 {
		t.Errorf("decoded: %+v", decoded)
	}
}

func TestWriteEnvelope_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEnvelope(&buf, sampleEnvelope(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Title:      Scanned Invoice 42",
		"Method:     ocr (confidence 0.85)",
		"Extracted 3 words from 1 pages",
		"--- Page 1 ---",
		"Preview:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "iVBORw0KGgoAAAANSUhEUgAA") {
		t.Error("preview data should be truncated in text output")
	}
}

func TestWriteEnvelope_Failure(t *testing.T) {
	env := models.NewFailureEnvelope("All extraction methods failed. PDF may be corrupted or unsupported format.")
	for _, f := range []OutputFormat{OutputText, OutputContent} {
		var buf bytes.Buffer
		if err := WriteEnvelope(&buf, env, f); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "All extraction methods failed") {
			t.Errorf("%s output: %q", f, buf.String())
		}
	}
}

func TestWriteEnvelope_Content(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEnvelope(&buf, sampleEnvelope(), OutputContent); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "--- Page 1 ---\nScanned Invoice 42\n" {
		t.Errorf("content output: %q", buf.String())
	}
}

func TestWriteCapabilities(t *testing.T) {
	caps := models.CapabilitySet{"ocr": false, "native_text": true}
	var buf bytes.Buffer
	if err := WriteCapabilities(&buf, caps, OutputText); err != nil {
		t.Fatal(err)
	}
	want := "native_text: available\nocr:         unavailable\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteCapabilities(&buf, caps, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]bool
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || !decoded["native_text"] {
		t.Errorf("json: %v %v", decoded, err)
	}
}
