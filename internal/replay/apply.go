package replay

import (
	"errors"
	"fmt"

	"github.com/Borbofruto/Ruki/internal/builder"
	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/pose"
)

// Op names a host call.
type Op string

// Host calls.
const (
	OpStart                 Op = "start"
	OpFinish                Op = "finish"
	OpMoveJ                 Op = "move_j"
	OpMoveL                 Op = "move_l"
	OpMoveC                 Op = "move_c"
	OpSetFrame              Op = "set_frame"
	OpSetTool               Op = "set_tool"
	OpSetSpeed              Op = "set_speed"
	OpSetSpeedJoints        Op = "set_speed_joints"
	OpSetAcceleration       Op = "set_acceleration"
	OpSetAccelerationJoints Op = "set_acceleration_joints"
	OpSetRounding           Op = "set_rounding"
	OpSetDO                 Op = "set_do"
	OpSetAO                 Op = "set_ao"
	OpWaitDI                Op = "wait_di"
	OpPause                 Op = "pause"
	OpRunCode               Op = "run_code"
	OpMessage               Op = "message"
)

var errUnknownOp = errors.New("unknown op")

// Point is a waypoint given by pose, joints or both.
type Point struct {
	Pose   []float64 `yaml:"pose,omitempty"`
	Joints []float64 `yaml:"joints,omitempty"`
	Config []int     `yaml:"config,omitempty"`
	Name   string    `yaml:"name,omitempty"`
}

// Step is one host call. Only the fields of its Op are read.
type Step struct {
	Op Op `yaml:"op"`

	// move_j, move_l
	Point `yaml:",inline"`

	// move_c
	Via *Point `yaml:"via,omitempty"`
	End *Point `yaml:"end,omitempty"`

	// start, finish: Program. set_frame, set_tool: ID and Pose; Name is
	// shared with Point.
	Program string `yaml:"program,omitempty"`
	ID      *int   `yaml:"id,omitempty"`

	// set_speed*, set_acceleration*, set_rounding, set_ao
	Value any `yaml:"value,omitempty"`

	// set_do, set_ao, wait_di
	Index     any      `yaml:"index,omitempty"`
	TimeoutMS *float64 `yaml:"timeout_ms,omitempty"`

	// pause; negative waits for the operator
	MS *float64 `yaml:"ms,omitempty"`

	// run_code
	Code string `yaml:"code,omitempty"`
	Call bool   `yaml:"call,omitempty"`

	// message
	Text    string `yaml:"text,omitempty"`
	Comment bool   `yaml:"comment,omitempty"`
}

func (s Step) validate() error {
	switch s.Op {
	case OpStart, OpFinish:
		if s.Program == "" {
			return fmt.Errorf("%s: program is required", s.Op)
		}
	case OpMoveJ, OpMoveL:
		return s.Point.validate()
	case OpMoveC:
		if s.Via == nil || s.End == nil {
			return fmt.Errorf("move_c: via and end are required")
		}
		if err := s.Via.validate(); err != nil {
			return fmt.Errorf("via: %w", err)
		}
		if err := s.End.validate(); err != nil {
			return fmt.Errorf("end: %w", err)
		}
	case OpSetFrame, OpSetTool:
		if len(s.Pose) != 6 {
			return fmt.Errorf("%s: pose must have 6 values", s.Op)
		}
	case OpSetSpeed, OpSetSpeedJoints, OpSetAcceleration, OpSetAccelerationJoints, OpSetRounding:
		if _, ok := number(s.Value); !ok {
			return fmt.Errorf("%s: numeric value is required", s.Op)
		}
	case OpSetDO, OpWaitDI:
		if _, ok := ioIndex(s.Index); !ok {
			return fmt.Errorf("%s: index is required", s.Op)
		}
	case OpSetAO:
		if _, ok := ioIndex(s.Index); !ok {
			return fmt.Errorf("set_ao: index is required")
		}
		if _, ok := number(s.Value); !ok {
			return fmt.Errorf("set_ao: numeric value is required")
		}
	case OpPause:
		if s.MS == nil {
			return fmt.Errorf("pause: ms is required")
		}
	case OpRunCode:
		if s.Code == "" {
			return fmt.Errorf("run_code: code is required")
		}
	case OpMessage:
	default:
		return fmt.Errorf("%w %q", errUnknownOp, s.Op)
	}
	return nil
}

func (p Point) validate() error {
	if p.Pose == nil && len(p.Joints) == 0 {
		return builder.ErrEmptyTarget
	}
	if p.Pose != nil && len(p.Pose) != 6 {
		return fmt.Errorf("pose must have 6 values, got %d", len(p.Pose))
	}
	return nil
}

func (p Point) input() builder.TargetInput {
	in := builder.TargetInput{Joints: p.Joints, Config: p.Config, Name: p.Name}
	if len(p.Pose) == 6 {
		m := toMatrix(p.Pose)
		in.Pose = &m
	}
	return in
}

func toMatrix(v []float64) pose.Matrix {
	var p pose.XYZRPW
	copy(p[:], v)
	return pose.XYZRPWToMatrix(p)
}

// Apply performs one host call on b.
func Apply(b *builder.Builder, s Step) error {
	if err := s.validate(); err != nil {
		return err
	}

	switch s.Op {
	case OpStart:
		b.StartProgram(s.Program)
	case OpFinish:
		b.FinishProgram(s.Program)
	case OpMoveJ:
		_, err := b.MoveJ(s.Point.input())
		return err
	case OpMoveL:
		_, err := b.MoveL(s.Point.input())
		return err
	case OpMoveC:
		return b.MoveC(s.Via.input(), s.End.input())
	case OpSetFrame:
		b.SetFrame(toMatrix(s.Pose), intOr(s.ID, -1), s.Name)
	case OpSetTool:
		b.SetTool(toMatrix(s.Pose), intOr(s.ID, -1), s.Name)
	case OpSetSpeed:
		v, _ := number(s.Value)
		b.SetSpeed(v)
	case OpSetSpeedJoints:
		v, _ := number(s.Value)
		b.SetSpeedJoints(v)
	case OpSetAcceleration:
		v, _ := number(s.Value)
		b.SetAcceleration(v)
	case OpSetAccelerationJoints:
		v, _ := number(s.Value)
		b.SetAccelerationJoints(v)
	case OpSetRounding:
		v, _ := number(s.Value)
		b.SetRounding(v)
	case OpSetDO:
		idx, _ := ioIndex(s.Index)
		b.SetDO(idx, s.Value)
	case OpSetAO:
		idx, _ := ioIndex(s.Index)
		v, _ := number(s.Value)
		b.SetAO(idx, v)
	case OpWaitDI:
		idx, _ := ioIndex(s.Index)
		timeout := -1.0
		if s.TimeoutMS != nil {
			timeout = *s.TimeoutMS
		}
		b.WaitDI(idx, s.Value, timeout)
	case OpPause:
		b.Pause(*s.MS)
	case OpRunCode:
		b.RunCode(s.Code, s.Call)
	case OpMessage:
		b.Message(s.Text, s.Comment)
	}
	return nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// number accepts the numeric types YAML and Starlark decode to.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ioIndex accepts an integer or a symbolic IO variable name.
func ioIndex(v any) (ir.IOIndex, bool) {
	switch x := v.(type) {
	case int:
		return ir.IntIndex(x), true
	case int64:
		return ir.IntIndex(int(x)), true
	case string:
		if x == "" {
			return "", false
		}
		return ir.IOIndex(x), true
	default:
		return "", false
	}
}
