package replay

import (
	"errors"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/Borbofruto/Ruki/internal/builder"
	"github.com/Borbofruto/Ruki/internal/ir"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// RunStarlark executes a Starlark session and returns the document it
// builds. The script calls start and finish itself; every other builtin
// maps to one Step.
func RunStarlark(filename string, src []byte, opts builder.Options) (*ir.Document, error) {
	b := builder.New(opts)
	thread := &starlark.Thread{
		Name:  filename,
		Print: func(*starlark.Thread, string) {},
	}
	if _, err := starlark.ExecFileOptions(fileOptions, thread, filename, src, builtins(b)); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return nil, fmt.Errorf("%s", evalErr.Backtrace())
		}
		return nil, err
	}
	return b.Document(), nil
}

type stepFunc func(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error)

func builtins(b *builder.Builder) starlark.StringDict {
	fns := map[string]stepFunc{
		"start":  programStep(OpStart),
		"finish": programStep(OpFinish),
		"move_j": moveStep(OpMoveJ),
		"move_l": moveStep(OpMoveL),
		"move_c": moveCircular,

		"set_frame": placementStep(OpSetFrame),
		"set_tool":  placementStep(OpSetTool),

		"set_speed":               valueStep(OpSetSpeed),
		"set_speed_joints":        valueStep(OpSetSpeedJoints),
		"set_acceleration":        valueStep(OpSetAcceleration),
		"set_acceleration_joints": valueStep(OpSetAccelerationJoints),
		"set_rounding":            valueStep(OpSetRounding),

		"set_do":  ioStep(OpSetDO),
		"set_ao":  ioStep(OpSetAO),
		"wait_di": ioStep(OpWaitDI),

		"pause":    pauseStep,
		"run_code": runCodeStep,
		"message":  messageStep,
	}

	env := starlark.StringDict{
		"point": starlark.NewBuiltin("point", pointBuiltin),
	}
	for name, fn := range fns {
		env[name] = starlark.NewBuiltin(name, func(_ *starlark.Thread, bi *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			s, err := fn(args, kwargs)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", bi.Name(), err)
			}
			if err := Apply(b, s); err != nil {
				return nil, fmt.Errorf("%s: %w", bi.Name(), err)
			}
			return starlark.None, nil
		})
	}
	return env
}

func programStep(op Op) stepFunc {
	return func(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
		var name string
		if err := starlark.UnpackArgs(string(op), args, kwargs, "name", &name); err != nil {
			return Step{}, err
		}
		return Step{Op: op, Program: name}, nil
	}
}

func moveStep(op Op) stepFunc {
	return func(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
		p, err := unpackPoint(string(op), args, kwargs)
		if err != nil {
			return Step{}, err
		}
		return Step{Op: op, Point: p}, nil
	}
}

// point(pose=None, joints=None, config=None, name="") returns a dict that
// move_c accepts for its via and end waypoints.
func pointBuiltin(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var poseV, jointsV, configV starlark.Value = starlark.None, starlark.None, starlark.None
	var name string
	if err := starlark.UnpackArgs("point", args, kwargs,
		"pose?", &poseV, "joints?", &jointsV, "config?", &configV, "name?", &name); err != nil {
		return nil, err
	}
	d := starlark.NewDict(4)
	_ = d.SetKey(starlark.String("pose"), poseV)
	_ = d.SetKey(starlark.String("joints"), jointsV)
	_ = d.SetKey(starlark.String("config"), configV)
	_ = d.SetKey(starlark.String("name"), starlark.String(name))
	return d, nil
}

func moveCircular(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
	var via, end *starlark.Dict
	if err := starlark.UnpackArgs("move_c", args, kwargs, "via", &via, "end", &end); err != nil {
		return Step{}, err
	}
	vp, err := dictPoint(via)
	if err != nil {
		return Step{}, fmt.Errorf("via: %w", err)
	}
	ep, err := dictPoint(end)
	if err != nil {
		return Step{}, fmt.Errorf("end: %w", err)
	}
	return Step{Op: OpMoveC, Via: &vp, End: &ep}, nil
}

func dictPoint(d *starlark.Dict) (Point, error) {
	var args []starlark.Tuple
	for _, item := range d.Items() {
		args = append(args, starlark.Tuple{item[0], item[1]})
	}
	return unpackPoint("point", nil, args)
}

func unpackPoint(fn string, args starlark.Tuple, kwargs []starlark.Tuple) (Point, error) {
	var poseV, jointsV, configV starlark.Value = starlark.None, starlark.None, starlark.None
	var name string
	if err := starlark.UnpackArgs(fn, args, kwargs,
		"pose?", &poseV, "joints?", &jointsV, "config?", &configV, "name?", &name); err != nil {
		return Point{}, err
	}

	var p Point
	var err error
	if p.Pose, err = floats(poseV); err != nil {
		return p, fmt.Errorf("pose: %w", err)
	}
	if p.Joints, err = floats(jointsV); err != nil {
		return p, fmt.Errorf("joints: %w", err)
	}
	if p.Config, err = ints(configV); err != nil {
		return p, fmt.Errorf("config: %w", err)
	}
	p.Name = name
	return p, nil
}

func placementStep(op Op) stepFunc {
	return func(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
		var poseV starlark.Value
		id := -1
		var name string
		if err := starlark.UnpackArgs(string(op), args, kwargs,
			"pose", &poseV, "id?", &id, "name?", &name); err != nil {
			return Step{}, err
		}
		values, err := floats(poseV)
		if err != nil {
			return Step{}, fmt.Errorf("pose: %w", err)
		}
		s := Step{Op: op, ID: &id}
		s.Pose = values
		s.Name = name
		return s, nil
	}
}

func valueStep(op Op) stepFunc {
	return func(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
		var v starlark.Value
		if err := starlark.UnpackArgs(string(op), args, kwargs, "value", &v); err != nil {
			return Step{}, err
		}
		return Step{Op: op, Value: fromStarlarkValue(v)}, nil
	}
}

func ioStep(op Op) stepFunc {
	return func(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
		var index, value starlark.Value
		timeout := -1.0
		if err := starlark.UnpackArgs(string(op), args, kwargs,
			"index", &index, "value", &value, "timeout_ms?", &timeout); err != nil {
			return Step{}, err
		}
		s := Step{Op: op, Index: fromStarlarkValue(index), Value: fromStarlarkValue(value)}
		if op == OpWaitDI {
			s.TimeoutMS = &timeout
		}
		return s, nil
	}
}

func pauseStep(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
	var ms float64
	if err := starlark.UnpackArgs("pause", args, kwargs, "ms", &ms); err != nil {
		return Step{}, err
	}
	return Step{Op: OpPause, MS: &ms}, nil
}

func runCodeStep(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
	var code string
	var call bool
	if err := starlark.UnpackArgs("run_code", args, kwargs, "code", &code, "call?", &call); err != nil {
		return Step{}, err
	}
	return Step{Op: OpRunCode, Code: code, Call: call}, nil
}

func messageStep(args starlark.Tuple, kwargs []starlark.Tuple) (Step, error) {
	var text string
	var comment bool
	if err := starlark.UnpackArgs("message", args, kwargs, "text", &text, "comment?", &comment); err != nil {
		return Step{}, err
	}
	return Step{Op: OpMessage, Text: text, Comment: comment}, nil
}

func fromStarlarkValue(v starlark.Value) any {
	switch v := v.(type) {

	case starlark.NoneType:
		return nil

	case starlark.Bool:
		return bool(v)

	case starlark.String:
		return string(v)

	case starlark.Int:
		if n, ok := v.Int64(); ok {
			return n
		}
		f, _ := starlark.AsFloat(v)
		return f

	case starlark.Float:
		return float64(v)

	}
	return v.String()
}

// floats converts a list or tuple of numbers. None yields nil.
func floats(v starlark.Value) ([]float64, error) {
	if v == starlark.None {
		return nil, nil
	}
	seq, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("got %s, want list", v.Type())
	}
	out := make([]float64, seq.Len())
	for i := range seq.Len() {
		f, ok := starlark.AsFloat(seq.Index(i))
		if !ok {
			return nil, fmt.Errorf("element %d: got %s, want number", i, seq.Index(i).Type())
		}
		out[i] = f
	}
	return out, nil
}

func ints(v starlark.Value) ([]int, error) {
	if v == starlark.None {
		return nil, nil
	}
	seq, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("got %s, want list", v.Type())
	}
	out := make([]int, seq.Len())
	for i := range seq.Len() {
		var n int
		if err := starlark.AsInt(seq.Index(i), &n); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}
