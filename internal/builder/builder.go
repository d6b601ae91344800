// Package builder assembles an IR document incrementally while a host
// replays a source program.
//
// The host calls StartProgram, then one method per instruction (MoveJ,
// SetFrame, SetDO, ...), then FinishProgram, and finally Document. Every
// instruction becomes one step carrying the interpreter state immediately
// before and after it, so any step can be replayed on its own.
//
// A Builder is not safe for concurrent use. Each conversion owns its own.
package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/pose"
)

// ErrEmptyTarget is returned when a target has neither a pose nor joints.
var ErrEmptyTarget = errors.New("target has neither pose nor joints")

// Generator identifies this builder in document metadata.
const Generator = "Ruki-E (Extractor)"

// createdLayout formats metadata.created in UTC with a trailing Z.
const createdLayout = "2006-01-02T15:04:05.000000Z07:00"

// Options describe the robot and the host driving the builder.
type Options struct {
	// PostProcessor is recorded as metadata.source.post_processor.
	PostProcessor string

	// Software is recorded as metadata.source.software (default "RoboDK").
	Software string

	RobotName    string
	NativeName   string // defaults to RobotName
	AxesCount    int    // defaults to 6
	AxesType     []string
	IPAddress    string
	PulsesPerDeg []float64

	// TurntableOffset and RailOffset are fixed external-axis offsets.
	TurntableOffset *pose.Matrix
	RailOffset      *pose.Matrix

	// OmitMatrices drops pose_matrix from targets, frames and tools.
	OmitMatrices bool

	// Now supplies metadata.created. Defaults to time.Now.
	Now func() time.Time
}

// TargetInput is the data a host passes for one waypoint.
type TargetInput struct {
	Pose   *pose.Matrix
	Joints []float64
	Config []int
	Name   string
}

// Builder accumulates frames, tools, targets, IO references and steps.
type Builder struct {
	opts Options

	frames  map[string]ir.Frame
	tools   map[string]ir.Tool
	targets []ir.Target
	ioMap   map[string]ir.IORef
	steps   []ir.Step

	targetCounter int
	index         int

	state        ir.State
	initialState *ir.State

	programName string
	programs    []string
	subprograms []string
	ranges      map[string]ir.Range
	current     string

	trackPose     *pose.Matrix
	turntablePose *pose.Matrix
}

// New creates a builder holding only the implicit world frame and tool0.
func New(opts Options) *Builder {
	if opts.Software == "" {
		opts.Software = "RoboDK"
	}
	if opts.NativeName == "" {
		opts.NativeName = opts.RobotName
	}
	if opts.AxesCount == 0 {
		opts.AxesCount = 6
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	implicit := &ir.Meta{Kind: "implicit", Source: "ruki_default"}
	zeroMass := 0.0
	return &Builder{
		opts: opts,
		frames: map[string]ir.Frame{
			ir.WorldFrame: {
				Pose:       []float64{0, 0, 0, 0, 0, 0},
				PoseFormat: ir.PoseFormat,
				Meta:       implicit,
			},
		},
		tools: map[string]ir.Tool{
			ir.BaseTool: {
				TCPPose:     []float64{0, 0, 0, 0, 0, 0},
				PoseFormat:  ir.PoseFormat,
				PayloadMass: &zeroMass,
				PayloadCOG:  []float64{0, 0, 0},
				Meta:        implicit,
			},
		},
		ioMap:  map[string]ir.IORef{},
		ranges: map[string]ir.Range{},
		state:  ir.DefaultState(),
	}
}

// StartProgram opens a program. The first call names the main program and
// captures the initial state; later calls open subprograms.
func (b *Builder) StartProgram(name string) {
	b.programName = ir.FilterName(name)
	b.programs = append(b.programs, b.programName)

	if b.initialState == nil {
		snapshot := b.state
		b.initialState = &snapshot
	}

	if len(b.programs) > 1 {
		b.current = b.programName
		if _, seen := b.ranges[b.programName]; !seen {
			b.subprograms = append(b.subprograms, b.programName)
		}
		b.ranges[b.programName] = ir.Range{StartStep: b.index + 1}
	}
}

// FinishProgram closes the open subprogram, recording its last step.
func (b *Builder) FinishProgram(string) {
	if b.current == "" {
		return
	}
	r := b.ranges[b.current]
	r.EndStep = b.index
	b.ranges[b.current] = r
	b.current = ""
}

// SetExternalPoses sets the external-axis poses attached to the targets
// created after this call. Nil clears a pose.
func (b *Builder) SetExternalPoses(track, turntable *pose.Matrix) {
	b.trackPose = track
	b.turntablePose = turntable
}

// AddTarget appends a waypoint and returns its id ("T001", "T002", ...).
// A target with neither pose nor joints is rejected with ErrEmptyTarget and
// does not consume an id.
func (b *Builder) AddTarget(p *pose.Matrix, joints []float64, config []int, name string) (string, error) {
	if p == nil && len(joints) == 0 {
		return "", ErrEmptyTarget
	}

	b.targetCounter++
	id := fmt.Sprintf("T%03d", b.targetCounter)
	if name == "" {
		name = fmt.Sprintf("Target_%d", b.targetCounter)
	}

	t := ir.Target{
		ID:            id,
		Name:          name,
		IsJointTarget: p == nil,
		Joints:        cloneFloats(joints),
		JointsUnit:    ir.JointsUnit,
		Pose:          xyzrpw(p),
		PoseFormat:    ir.PoseFormat,
		Context: ir.Context{
			Frame:   b.state.ActiveFrame,
			FrameID: b.state.ActiveFrameID,
			Tool:    b.state.ActiveTool,
			ToolID:  b.state.ActiveToolID,
		},
		ExternalAxes: ir.ExternalPoses{
			TrackPose:     xyzrpw(b.trackPose),
			TurntablePose: xyzrpw(b.turntablePose),
		},
	}
	if config != nil {
		t.ConfigRLF = append([]int(nil), config...)
	}
	if p != nil && !b.opts.OmitMatrices {
		t.PoseMatrix = p.Rows()
	}

	b.targets = append(b.targets, t)
	return id, nil
}

// AddStep appends a step of the given type. Index and state snapshots are
// filled in here; payload supplies only the type-specific fields. SET_*
// steps update the running state.
func (b *Builder) AddStep(typ ir.StepType, payload ir.Step) ir.Step {
	b.index++

	step := payload
	step.Index = b.index
	step.Type = typ
	step.StateBefore = b.state

	switch typ {
	case ir.StepSetFrame:
		if payload.Frame != "" {
			b.state.ActiveFrame = payload.Frame
		}
		b.state.ActiveFrameID = intOr(payload.FrameID, -1)
	case ir.StepSetTool:
		if payload.Tool != "" {
			b.state.ActiveTool = payload.Tool
		}
		b.state.ActiveToolID = intOr(payload.ToolID, -1)
	case ir.StepSetSpeed:
		if payload.SpeedLinear != nil {
			b.state.SpeedLinear = *payload.SpeedLinear
		}
		if payload.SpeedJoints != nil {
			b.state.SpeedJoints = *payload.SpeedJoints
		}
	case ir.StepSetAccel:
		if payload.AccelLinear != nil {
			b.state.AccelLinear = *payload.AccelLinear
		}
		if payload.AccelJoints != nil {
			b.state.AccelJoints = *payload.AccelJoints
		}
	case ir.StepSetRounding:
		b.state.Rounding = floatOr(payload.Rounding, 0)
	}

	step.StateAfter = b.state
	b.steps = append(b.steps, step)
	return step
}

// Document returns the program built so far. The builder may keep
// receiving instructions afterwards; the returned document does not alias
// its internal slices or maps.
func (b *Builder) Document() *ir.Document {
	doc := &ir.Document{
		SchemaVersion: ir.SchemaVersion,
		RukiVersion:   ir.RukiVersion,
		Metadata: ir.Metadata{
			ProgramName:      b.programName,
			Created:          b.opts.Now().UTC().Format(createdLayout),
			Generator:        Generator,
			GeneratorVersion: ir.RukiVersion,
			Source: ir.Source{
				Software:      b.opts.Software,
				PostProcessor: b.opts.PostProcessor,
			},
			Units:                ir.DefaultUnits(),
			TransformConventions: ir.DefaultTransformConventions(),
		},
		Robot: ir.Robot{
			Name:         b.opts.RobotName,
			NativeName:   b.opts.NativeName,
			AxesCount:    b.opts.AxesCount,
			AxesType:     b.opts.AxesType,
			IPAddress:    b.opts.IPAddress,
			PulsesPerDeg: b.opts.PulsesPerDeg,
			ExternalAxes: ir.RobotExternalAxes{
				TurntableOffset: xyzrpw(b.opts.TurntableOffset),
				RailOffset:      xyzrpw(b.opts.RailOffset),
			},
		},
		Frames:  make(map[string]ir.Frame, len(b.frames)),
		Tools:   make(map[string]ir.Tool, len(b.tools)),
		Targets: append([]ir.Target{}, b.targets...),
		IOMap:   make(map[string]ir.IORef, len(b.ioMap)),
	}
	for k, v := range b.frames {
		doc.Frames[k] = v
	}
	for k, v := range b.tools {
		doc.Tools[k] = v
	}
	for k, v := range b.ioMap {
		doc.IOMap[k] = v
	}

	main := b.programName
	if len(b.programs) > 0 {
		main = b.programs[0]
	}
	initial := b.state
	if b.initialState != nil {
		initial = *b.initialState
	}
	doc.Program = ir.Program{
		Main:         main,
		Subprograms:  append([]string{}, b.subprograms...),
		InitialState: &initial,
		Steps:        append([]ir.Step{}, b.steps...),
	}
	if len(b.ranges) > 0 {
		doc.Program.SubprogramRanges = make(map[string]ir.Range, len(b.ranges))
		for k, v := range b.ranges {
			doc.Program.SubprogramRanges[k] = v
		}
	}

	doc.Statistics = ir.ComputeStatistics(doc)
	return doc
}

// State returns the current interpreter state.
func (b *Builder) State() ir.State { return b.state }

func xyzrpw(p *pose.Matrix) []float64 {
	if p == nil {
		return nil
	}
	v := pose.MatrixToXYZRPW(*p)
	return v[:]
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64{}, v...)
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
