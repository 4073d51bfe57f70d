package fileid

import (
	"strings"
	"testing"
)

func TestContentID(t *testing.T) {
	id1 := ContentID([]byte("%PDF-1.4 invoice"))
	id2 := ContentID([]byte("%PDF-1.4 invoice"))
	if id1 != id2 {
		t.Errorf("same content should give same ID: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, prefix) || len(id1) != len(prefix)+64 {
		t.Errorf("unexpected ID format: %q", id1)
	}
}

func TestContentID_differentContent(t *testing.T) {
	if ContentID([]byte("a")) == ContentID([]byte("b")) {
		t.Error("different content should give different IDs")
	}
}

func TestContentID_empty(t *testing.T) {
	// SHA-256 of the empty input.
	want := prefix + "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := ContentID(nil); got != want {
		t.Errorf("ContentID(nil) = %q, want %q", got, want)
	}
}
