package polyglot

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Signature is the zip local-file-header marker every injected archive starts with.
var Signature = []byte{0x50, 0x4B, 0x03, 0x04}

// Build returns host followed by a zip archive holding payload as entryName.
// The archive is Deflate compressed at the best compression level.
func Build(host []byte, entryName string, payload io.Reader, modified time.Time) ([]byte, error) {
	entryName = filepath.Base(entryName)
	if entryName == "." || entryName == string(filepath.Separator) {
		return nil, fmt.Errorf("archive entry name is empty")
	}

	// Directory offsets are relative to the archive start, so the blob is
	// built separately and appended.
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	header := &zip.FileHeader{Name: entryName, Method: zip.Deflate}
	if !modified.IsZero() {
		header.Modified = modified
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("create archive entry: %w", err)
	}
	if _, err := io.Copy(w, payload); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}
	out := make([]byte, 0, len(host)+archive.Len())
	out = append(out, host...)
	return append(out, archive.Bytes()...), nil
}

// LastSignatureOffset returns the index of the rightmost Signature in data, or
// -1 when absent.
func LastSignatureOffset(data []byte) int {
	return bytes.LastIndex(data, Signature)
}
