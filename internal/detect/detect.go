// Package detect guesses which catalog model a program file targets.
//
// Detection is a heuristic. It never fails: when nothing matches, the
// result is the empty string and the caller falls back to a user choice
// or the brand default.
package detect

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/script"
)

const (
	// MaxLines is how many leading lines of a script are scanned.
	MaxLines = 100

	// MaxChars is how many leading characters of raw text are scanned.
	MaxChars = 5000
)

// Detector finds the first of keys mentioned in text.
type Detector interface {
	Detect(text string, keys []string) string
}

// WordDetector matches a key only as a whole word, ignoring case.
type WordDetector struct{}

// Detect implements Detector.
func (WordDetector) Detect(text string, keys []string) string {
	for _, k := range keys {
		rx, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
		if err != nil {
			continue
		}
		if rx.MatchString(text) {
			return k
		}
	}
	return ""
}

// SubstringDetector matches a key anywhere in the text, ignoring case.
type SubstringDetector struct{}

// Detect implements Detector.
func (SubstringDetector) Detect(text string, keys []string) string {
	upper := strings.ToUpper(text)
	for _, k := range keys {
		if strings.Contains(upper, strings.ToUpper(k)) {
			return k
		}
	}
	return ""
}

// For returns the detector of the given kind. Unknown kinds get the
// substring detector.
func For(kind catalog.DetectorKind) Detector {
	if kind == catalog.DetectWord {
		return WordDetector{}
	}
	return SubstringDetector{}
}

// FromDocument matches the document's robot name against the brand's model
// keys: an exact match first, then the first key contained in the name,
// ignoring case.
func FromDocument(doc *ir.Document, cat *catalog.Catalog, brand string) string {
	if doc == nil {
		return ""
	}
	keys := cat.ModelKeys(brand)
	name := doc.Robot.Name
	for _, k := range keys {
		if k == name {
			return k
		}
	}
	return SubstringDetector{}.Detect(name, keys)
}

// FromLines scans the first MaxLines lines with the brand's detector.
func FromLines(lines []string, cat *catalog.Catalog, brand string) string {
	if len(lines) > MaxLines {
		lines = lines[:MaxLines]
	}
	return detectText(strings.Join(lines, "\n"), cat, brand)
}

// FromText scans the first MaxChars characters with the brand's detector.
func FromText(text string, cat *catalog.Catalog, brand string) string {
	n := 0
	for i := range text {
		if n == MaxChars {
			text = text[:i]
			break
		}
		n++
	}
	return detectText(text, cat, brand)
}

func detectText(text string, cat *catalog.Catalog, brand string) string {
	keys := cat.ModelKeys(brand)
	if len(keys) == 0 {
		return ""
	}
	return For(cat.Detector(brand)).Detect(text, keys)
}

// FromFile detects the model of the file at path. IR documents are matched
// by robot name and everything else is scanned as script text. Unreadable
// files detect nothing.
func FromFile(path string, cat *catalog.Catalog, brand string) string {
	if strings.EqualFold(filepath.Ext(path), ".ruki") {
		doc, err := ir.ReadFile(path)
		if err != nil {
			return ""
		}
		return FromDocument(doc, cat, brand)
	}
	lines, err := script.ReadFile(path)
	if err != nil {
		return ""
	}
	return FromLines(lines, cat, brand)
}
