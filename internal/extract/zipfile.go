package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// maxZipEntry bounds how much of a single archive member is read.
const maxZipEntry = 64 << 20

// openZip opens an OOXML or OpenDocument package held in memory.
func openZip(format string, content []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: not a zip: %v", format, ErrUnsupportedOrCorrupt, err)
	}
	return zr, nil
}

// readZipFile returns the contents of name, or nil if the archive has no such member.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxZipEntry))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return data, nil
	}
	return nil, nil
}
