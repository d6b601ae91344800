package ir

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrMissingSchemaVersion is returned by Read when schema_version is absent.
	ErrMissingSchemaVersion = errors.New("schema_version is missing")

	// ErrUnsupportedSchema is returned by Read for an unknown major version.
	ErrUnsupportedSchema = errors.New("unsupported schema version")
)

// Read decodes a document and checks its schema version. Unknown fields
// are ignored so that newer minor versions remain readable.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ir: %w", err)
	}
	if doc.SchemaVersion == "" {
		return nil, ErrMissingSchemaVersion
	}
	major, _, _ := strings.Cut(doc.SchemaVersion, ".")
	if major != SchemaMajor {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchema, doc.SchemaVersion)
	}
	return &doc, nil
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Write encodes doc as UTF-8 JSON, indented with two spaces when pretty
// is set. Non-ASCII text is written as-is.
func Write(w io.Writer, doc *Document, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode ir: %w", err)
	}
	return nil
}

// FilterName turns an arbitrary label into a program, frame or tool key:
// letters, digits, '_' and '-' are kept and everything else becomes '_'.
// Input is NFC-normalized first so composed and decomposed accents map to
// the same key.
func FilterName(name string) string {
	name = norm.NFC.String(name)
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
