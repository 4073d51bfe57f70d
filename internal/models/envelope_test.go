package models

import (
	"encoding/json"
	"testing"
)

func TestNewFailureEnvelope_onlyErrorFields(t *testing.T) {
	env := NewFailureEnvelope("boom")
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("failure envelope keys: got %v, want success and error only", out)
	}
	if out["success"] != false || out["error"] != "boom" {
		t.Errorf("got %v", out)
	}
}

func TestNewFailureEnvelope_emptyMessage(t *testing.T) {
	if NewFailureEnvelope("").Error == "" {
		t.Error("failure envelope must carry a non-empty error")
	}
}

func TestNewSuccessEnvelope(t *testing.T) {
	res := &ExtractionResult{
		Method:     "native",
		Title:      "Hello",
		Content:    "Hello world.",
		RawText:    " Hello world. ",
		Confidence: 0.95,
		Metadata:   Metadata{WordCount: 2, PageCount: 1, ExtractionMethod: "native", Filename: "a.pdf"},
	}
	env := NewSuccessEnvelope(res, "")
	if !env.Success || env.Error != "" {
		t.Fatalf("unexpected discriminant: %+v", env)
	}
	b, _ := json.Marshal(env)
	var out map[string]interface{}
	_ = json.Unmarshal(b, &out)
	if _, ok := out["preview_image"]; ok {
		t.Error("preview_image should be omitted when empty")
	}
	md, ok := out["metadata"].(map[string]interface{})
	if !ok {
		t.Fatalf("metadata missing: %v", out)
	}
	if md["has_tables"] != false || md["page_count"] != float64(1) {
		t.Errorf("metadata: %v", md)
	}
	res.Metadata.WordCount = 99
	if env.Metadata.WordCount != 2 {
		t.Error("envelope metadata should not alias the result")
	}
}

func TestDocument_StemAndExt(t *testing.T) {
	d := NewDocument("", nil)
	if d.Filename != DefaultFilename {
		t.Errorf("default filename: got %q", d.Filename)
	}
	d = NewDocument("reports/Q1 Summary.PDF", nil)
	if d.Ext() != ".pdf" {
		t.Errorf("Ext: got %q", d.Ext())
	}
	if d.Stem() != "Q1 Summary" {
		t.Errorf("Stem: got %q", d.Stem())
	}
}
