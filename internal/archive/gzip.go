package archive

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"time"
)

// Compress wraps data in a single gzip member. name is stored in the
// header; a zero modTime leaves the header timestamp unset so that equal
// inputs produce equal bytes.
func Compress(w io.Writer, name string, modTime time.Time, data []byte) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("gzip writer: %w", err)
	}
	zw.Name = name
	zw.ModTime = modTime
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("gzip close: %w", err)
	}
	return nil
}

// Decompress reads a gzip stream and returns its contents.
func Decompress(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, fmt.Errorf("gzip read: %w", err)
	}
	return buf.Bytes(), nil
}
