package extract

import (
	"fmt"
	"os"

	"github.com/lu4p/cat"
)

// catText extracts plain text from an ODT or RTF document. The reader only
// accepts paths, so the bytes go through a private temporary file that is
// removed before returning.
func catText(content []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "blii-doc-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	text, err := cat.File(f.Name())
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", ext, ErrUnsupportedOrCorrupt, err)
	}
	return text, nil
}
