// Package script extracts motion and IO commands from URScript text.
//
// The parser is deliberately shallow: it recognizes a handful of call
// shapes line by line and ignores everything else. Numeric argument lists
// are parsed with a small participle grammar; a list that does not parse
// yields no value, and the caller decides what to do without it.
package script

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/Borbofruto/Ruki/internal/pose"
)

// Kind distinguishes move commands from IO commands.
type Kind string

const (
	KindMove Kind = "move"
	KindIO   Kind = "io"
)

// Motion is the move type of a move command.
type Motion string

const (
	MoveJ Motion = "MoveJ"
	MoveL Motion = "MoveL"
)

// maxValues caps every parsed list; extra values are dropped.
const maxValues = 6

// radianLimit is the magnitude below which a whole list is taken as radians.
const radianLimit = 7.0

// Command is one recognized instruction.
type Command struct {
	Kind   Kind
	Motion Motion

	// Joints in degrees, nil when unknown.
	Joints []float64

	// Pose as written in the script (metres, axis-angle radians), nil when
	// absent or unparsable. Only MoveL commands carry a pose.
	Pose []float64

	// Index and Value describe a digital output write.
	Index int
	Value bool
}

// HasJoints reports whether the command carries joint values.
func (c Command) HasJoints() bool { return len(c.Joints) > 0 }

// HasPose reports whether the command carries a full 6-value pose.
func (c Command) HasPose() bool { return len(c.Pose) == maxValues }

var (
	rxJointsComment  = regexp.MustCompile(`(?i)#\s*JOINTS\s*:\s*\[\s*([^\])]+)\s*[\])]`)
	rxMoveJ          = regexp.MustCompile(`(?i)movej\s*\(\s*\[\s*([^\]]+)\s*\]`)
	rxMoveLPose      = regexp.MustCompile(`(?i)movel\s*\(\s*p\s*\[\s*([^\]]+)\s*\]`)
	rxMoveLPoseTrans = regexp.MustCompile(`(?i)movel\s*\(.*?p\s*\[\s*([^\]]+)\s*\]`)
	rxMoveLArray     = regexp.MustCompile(`(?i)movel\s*\(\s*\[\s*([^\]]+)\s*\]`)
	rxDigitalOut     = regexp.MustCompile(`(?i)set_standard_digital_out\s*\(\s*(\d+)\s*,\s*(True|False|1|0)`)
)

// numberList is a comma-separated list of numbers.
type numberList struct {
	Values []float64 `@Number ( "," @Number )*`
}

// numberLexer tokenizes numeric argument lists.
var numberLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var numberParser = participle.MustBuild[numberList](
	participle.Lexer(numberLexer),
	participle.Elide("Whitespace"),
)

// ParseNumbers parses "a, b, c" and keeps at most the first six values.
// It reports false when any element is not a number.
func ParseNumbers(s string) ([]float64, bool) {
	list, err := numberParser.ParseString("", s)
	if err != nil || len(list.Values) == 0 {
		return nil, false
	}
	if len(list.Values) > maxValues {
		list.Values = list.Values[:maxValues]
	}
	return list.Values, true
}

// LooksLikeRadians reports whether every value is under 7 in magnitude.
// Joint lists in degrees almost always exceed that range; a degree list
// that happens to stay within ±7 is misclassified.
func LooksLikeRadians(values []float64) bool {
	for _, v := range values {
		if math.Abs(v) >= radianLimit {
			return false
		}
	}
	return true
}

// toDegrees returns values in degrees when they look like radians.
func toDegrees(values []float64) []float64 {
	if !LooksLikeRadians(values) {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = pose.Rad2Deg(v)
	}
	return out
}

// skipLine reports whether a trimmed line carries no command.
func skipLine(ls string) bool {
	if ls == "" || strings.HasPrefix(ls, "def ") || strings.HasPrefix(ls, "global ") || strings.HasPrefix(ls, "end") {
		return true
	}
	return strings.HasPrefix(ls, "#") && !strings.Contains(strings.ToUpper(ls), "#JOINTS")
}

// Parse returns the commands found in lines, in order.
//
// A "#JOINTS: [...]" annotation on the line is the preferred joint source
// for both move types. A MoveL without it keeps only its pose, and a MoveL
// with neither a pose nor an annotation is dropped.
func Parse(lines []string) []Command {
	var cmds []Command
	for _, line := range lines {
		ls := strings.TrimSpace(line)
		if skipLine(ls) {
			continue
		}

		var commentJoints []float64
		if m := rxJointsComment.FindStringSubmatch(ls); m != nil {
			if vals, ok := ParseNumbers(m[1]); ok {
				commentJoints = toDegrees(vals)
			}
		}

		if m := rxMoveJ.FindStringSubmatch(ls); m != nil {
			vals, ok := ParseNumbers(m[1])
			if !ok {
				continue
			}
			joints := toDegrees(vals)
			if commentJoints != nil {
				joints = commentJoints
			}
			cmds = append(cmds, Command{Kind: KindMove, Motion: MoveJ, Joints: joints})
			continue
		}

		m := rxMoveLPose.FindStringSubmatch(ls)
		if m == nil {
			m = rxMoveLPoseTrans.FindStringSubmatch(ls)
		}
		if m == nil {
			m = rxMoveLArray.FindStringSubmatch(ls)
		}
		if m != nil {
			poseVals, _ := ParseNumbers(m[1])
			switch {
			case commentJoints != nil:
				cmds = append(cmds, Command{Kind: KindMove, Motion: MoveL, Joints: commentJoints, Pose: poseVals})
			case poseVals != nil:
				cmds = append(cmds, Command{Kind: KindMove, Motion: MoveL, Pose: poseVals})
			}
			continue
		}

		if m := rxDigitalOut.FindStringSubmatch(ls); m != nil {
			idx, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			v := strings.ToLower(m[2])
			cmds = append(cmds, Command{Kind: KindIO, Index: idx, Value: v == "true" || v == "1"})
		}
	}
	return cmds
}

// SplitLines splits text on line breaks, accepting \n, \r\n and \r.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Counts tallies moves and IO writes in cmds.
func Counts(cmds []Command) (moves, ios int) {
	for _, c := range cmds {
		switch c.Kind {
		case KindMove:
			moves++
		case KindIO:
			ios++
		}
	}
	return moves, ios
}
