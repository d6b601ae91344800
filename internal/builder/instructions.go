package builder

import (
	"fmt"

	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/pose"
)

// IO types used in io_ref names.
const (
	DigitalOut = "DO"
	DigitalIn  = "DI"
	AnalogOut  = "AO"
	AnalogIn   = "AI"
)

// MoveJ adds a joint move to a new target and returns the target id.
func (b *Builder) MoveJ(in TargetInput) (string, error) {
	return b.move(ir.StepMoveJ, in)
}

// MoveL adds a linear move to a new target and returns the target id.
func (b *Builder) MoveL(in TargetInput) (string, error) {
	return b.move(ir.StepMoveL, in)
}

func (b *Builder) move(typ ir.StepType, in TargetInput) (string, error) {
	id, err := b.AddTarget(in.Pose, in.Joints, in.Config, in.Name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", typ, err)
	}
	b.AddStep(typ, ir.Step{Target: id, TargetName: in.Name})
	return id, nil
}

// MoveC adds a circular move through via to end. Both targets are checked
// before either is added, so a failure leaves the builder unchanged.
func (b *Builder) MoveC(via, end TargetInput) error {
	if via.Pose == nil && len(via.Joints) == 0 {
		return fmt.Errorf("%s via: %w", ir.StepMoveC, ErrEmptyTarget)
	}
	if end.Pose == nil && len(end.Joints) == 0 {
		return fmt.Errorf("%s end: %w", ir.StepMoveC, ErrEmptyTarget)
	}
	viaID, _ := b.AddTarget(via.Pose, via.Joints, via.Config, via.Name)
	endID, _ := b.AddTarget(end.Pose, end.Joints, end.Config, end.Name)
	b.AddStep(ir.StepMoveC, ir.Step{
		TargetVia:     viaID,
		TargetViaName: via.Name,
		TargetEnd:     endID,
		TargetEndName: end.Name,
	})
	return nil
}

// SetFrame defines (or redefines) a frame and makes it active. p is
// T_world→frame. An unnamed frame is keyed "frame_<id>".
func (b *Builder) SetFrame(p pose.Matrix, id int, name string) string {
	key := ir.FilterName(name)
	if name == "" {
		key = fmt.Sprintf("frame_%d", id)
	}
	parent := ir.WorldFrame
	frame := ir.Frame{
		Parent:       &parent,
		Pose:         xyzrpw(&p),
		PoseFormat:   ir.PoseFormat,
		FrameID:      &id,
		OriginalName: name,
		Meta:         &ir.Meta{Kind: "explicit", Source: "setFrame"},
	}
	if !b.opts.OmitMatrices {
		frame.PoseMatrix = p.Rows()
	}
	b.frames[key] = frame

	b.AddStep(ir.StepSetFrame, ir.Step{Frame: key, FrameID: &id, FrameName: name})
	return key
}

// SetTool defines (or redefines) a tool and makes it active. p is
// T_flange→tcp. An unnamed tool is keyed "tool_<id>".
func (b *Builder) SetTool(p pose.Matrix, id int, name string) string {
	key := ir.FilterName(name)
	if name == "" {
		key = fmt.Sprintf("tool_%d", id)
	}
	tool := ir.Tool{
		TCPPose:      xyzrpw(&p),
		PoseFormat:   ir.PoseFormat,
		ToolID:       &id,
		OriginalName: name,
		Meta:         &ir.Meta{Kind: "explicit", Source: "setTool"},
	}
	if !b.opts.OmitMatrices {
		tool.PoseMatrix = p.Rows()
	}
	b.tools[key] = tool

	b.AddStep(ir.StepSetTool, ir.Step{Tool: key, ToolID: &id, ToolName: name})
	return key
}

// SetSpeed sets the linear speed in mm/s.
func (b *Builder) SetSpeed(mmPerS float64) {
	b.AddStep(ir.StepSetSpeed, ir.Step{SpeedLinear: &mmPerS})
}

// SetSpeedJoints sets the joint speed in deg/s.
func (b *Builder) SetSpeedJoints(degPerS float64) {
	b.AddStep(ir.StepSetSpeed, ir.Step{SpeedJoints: &degPerS})
}

// SetAcceleration sets the linear acceleration in mm/s².
func (b *Builder) SetAcceleration(mmPerS2 float64) {
	b.AddStep(ir.StepSetAccel, ir.Step{AccelLinear: &mmPerS2})
}

// SetAccelerationJoints sets the joint acceleration in deg/s².
func (b *Builder) SetAccelerationJoints(degPerS2 float64) {
	b.AddStep(ir.StepSetAccel, ir.Step{AccelJoints: &degPerS2})
}

// SetRounding sets the blend radius in mm.
func (b *Builder) SetRounding(mm float64) {
	b.AddStep(ir.StepSetRounding, ir.Step{Rounding: &mm})
}

// ioRef returns the io_map key for (ioType, index), creating the entry on
// first use. Entries are never removed.
func (b *Builder) ioRef(index ir.IOIndex, ioType string) string {
	ref := fmt.Sprintf("%s_%s", ioType, index)
	if _, ok := b.ioMap[ref]; !ok {
		b.ioMap[ref] = ir.IORef{Type: ioType, Index: index}
	}
	return ref
}

// SetIO writes an output of any IO type.
func (b *Builder) SetIO(index ir.IOIndex, ioType string, value any) {
	idx := index
	b.AddStep(ir.StepSetIO, ir.Step{
		IORef:   b.ioRef(index, ioType),
		IOType:  ioType,
		IOIndex: &idx,
		Value:   value,
	})
}

// SetDO sets a digital output. Numeric values are stored as booleans.
func (b *Builder) SetDO(index ir.IOIndex, value any) {
	b.SetIO(index, DigitalOut, digitalValue(value))
}

// SetAO sets an analog output.
func (b *Builder) SetAO(index ir.IOIndex, value float64) {
	b.SetIO(index, AnalogOut, value)
}

// WaitIO waits for an input to reach value. A positive timeoutMS is stored
// as timeout_s; zero or negative means wait forever.
func (b *Builder) WaitIO(index ir.IOIndex, ioType string, value any, timeoutMS float64) {
	idx := index
	step := ir.Step{
		IORef:   b.ioRef(index, ioType),
		IOType:  ioType,
		IOIndex: &idx,
		Value:   value,
	}
	if timeoutMS > 0 {
		s := timeoutMS / 1000.0
		step.TimeoutS = &s
	}
	b.AddStep(ir.StepWaitIO, step)
}

// WaitDI waits for a digital input.
func (b *Builder) WaitDI(index ir.IOIndex, value any, timeoutMS float64) {
	b.WaitIO(index, DigitalIn, digitalValue(value), timeoutMS)
}

// Pause waits timeMS milliseconds. A negative time is a user pause.
func (b *Builder) Pause(timeMS float64) {
	step := ir.Step{IsUserPause: boolPtr(timeMS < 0)}
	if timeMS > 0 {
		s := timeMS / 1000.0
		step.DurationS = &s
	}
	b.AddStep(ir.StepPause, step)
}

// RunCode records raw controller code or a function call.
func (b *Builder) RunCode(code string, isFunctionCall bool) {
	b.AddStep(ir.StepRunCode, ir.Step{Code: code, IsFunctionCall: boolPtr(isFunctionCall)})
}

// Message records an operator message, or a comment when isComment is set.
func (b *Builder) Message(text string, isComment bool) {
	b.AddStep(ir.StepMessage, ir.Step{Text: text, IsComment: boolPtr(isComment)})
}

func digitalValue(v any) any {
	switch val := v.(type) {
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return v
	}
}

func boolPtr(v bool) *bool { return &v }
