package extract

import (
	"bytes"

	"github.com/diyagk01/blii-pdf-service/internal/models"
)

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with a PDF header. Readers tolerate up to
// 1 KiB of junk before it, so the search does too.
func IsPDF(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, pdfMagic)
}

func isPDF(doc *models.Document) bool {
	return IsPDF(doc.Data)
}

// looksEncrypted reports whether a PDF declares an /Encrypt dictionary. It is
// used to classify backend errors that do not expose a typed password error.
func looksEncrypted(data []byte) bool {
	return bytes.Contains(data, []byte("/Encrypt"))
}
