// Package emit renders programs in the controller formats.
//
// Emitters are pure: they take an IR document or parsed script commands
// plus catalog data and return the output bytes with a Summary of what was
// written. File naming, directories and user messages belong to the
// caller.
//
// Partial data is handled per emitter. The script emitter drops moves it
// cannot express, the archive emitters count them in Summary.Skipped, and
// an archive with nothing in it is an error (ErrNoCommands).
package emit

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoCommands is returned when an archive would contain no moves and no
// IO writes.
var ErrNoCommands = errors.New("no commands found")

// DefaultProgramName is used for documents without a program name.
const DefaultProgramName = "programa"

// Summary counts what an emitter wrote.
type Summary struct {
	Moves   int `json:"moves"`
	IOs     int `json:"ios"`
	Skipped int `json:"skipped"`
}

// joinFloats formats values with prec decimals separated by sep.
func joinFloats(values []float64, prec int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', prec, 64)
	}
	return strings.Join(parts, sep)
}
