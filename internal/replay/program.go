// Package replay drives the IR builder from a recorded host session.
//
// A session is the sequence of calls an offline-programming host makes
// while it walks a program: start, moves, frame and tool changes, speed
// settings, IO and so on. Sessions are written either as YAML (a list of
// steps) or as a Starlark script calling one builtin per instruction.
// Both forms run through the same Apply, so they build identical
// documents.
//
// Poses are [x, y, z, rx, ry, rz] in millimetres with an axis-angle
// rotation in degrees. Joints are in degrees.
package replay

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Borbofruto/Ruki/internal/builder"
	"github.com/Borbofruto/Ruki/internal/ir"
)

// Program is a YAML session.
type Program struct {
	// Name is the main program name passed to the first start.
	Name string `yaml:"name"`

	// PostProcessor is recorded in the document metadata.
	PostProcessor string `yaml:"post_processor,omitempty"`

	Robot Robot `yaml:"robot"`

	// Steps are applied in order. A leading start and a trailing finish
	// for Name are implied.
	Steps []Step `yaml:"steps"`
}

// Robot describes the robot the session targets.
type Robot struct {
	Name       string   `yaml:"name"`
	NativeName string   `yaml:"native_name,omitempty"`
	Axes       int      `yaml:"axes,omitempty"`
	AxesType   []string `yaml:"axes_type,omitempty"`
	IPAddress  string   `yaml:"ip_address,omitempty"`
}

// LoadProgram reads and parses a YAML session.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}
	return ParseProgram(data)
}

// ParseProgram parses a YAML session.
func ParseProgram(data []byte) (*Program, error) {
	var p Program
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateProgram(&p); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	return &p, nil
}

func validateProgram(p *Program) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Robot.Name == "" {
		return fmt.Errorf("robot.name is required")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, s := range p.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

// Build replays the session and returns the document. Robot and
// post-processor fields of opts are taken from the session; the rest
// (clock, software) are kept.
func (p *Program) Build(opts builder.Options) (*ir.Document, error) {
	opts.PostProcessor = p.PostProcessor
	opts.RobotName = p.Robot.Name
	opts.NativeName = p.Robot.NativeName
	opts.AxesCount = p.Robot.Axes
	opts.AxesType = p.Robot.AxesType
	opts.IPAddress = p.Robot.IPAddress

	b := builder.New(opts)
	b.StartProgram(p.Name)
	for i, s := range p.Steps {
		if err := Apply(b, s); err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, s.Op, err)
		}
	}
	b.FinishProgram(p.Name)
	return b.Document(), nil
}
