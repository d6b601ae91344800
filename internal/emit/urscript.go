package emit

import (
	"fmt"
	"strings"

	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/pose"
)

// ProgramName returns the document's program name or DefaultProgramName.
func ProgramName(doc *ir.Document) string {
	if doc.Metadata.ProgramName == "" {
		return DefaultProgramName
	}
	return doc.Metadata.ProgramName
}

// URScript renders doc as a URScript program.
//
// Motion parameters are declared once as globals from the initial state
// and referenced by every move. MOVE_J needs joints and MOVE_L needs a
// pose; steps without them are left out and counted as skipped. Only
// SET_IO and comment MESSAGE steps are emitted besides moves.
func URScript(doc *ir.Document) ([]byte, Summary) {
	name := ProgramName(doc)
	ini := doc.EffectiveInitialState()
	targets := doc.TargetIndex()

	lines := []string{
		fmt.Sprintf("def %s():", name),
		fmt.Sprintf("  global speed_ms = %.3f", ini.SpeedLinear/1000),
		fmt.Sprintf("  global speed_rads = %.3f", pose.Deg2Rad(ini.SpeedJoints)),
		fmt.Sprintf("  global accel_mss = %.3f", ini.AccelLinear/1000),
		fmt.Sprintf("  global accel_radss = %.3f", pose.Deg2Rad(ini.AccelJoints)),
		fmt.Sprintf("  global blend_radius_m = %.3f", ini.Rounding/1000),
		"",
	}

	var sum Summary
	for _, step := range doc.Program.Steps {
		switch step.Type {
		case ir.StepMoveJ:
			t := targets[step.Target]
			if t == nil || len(t.Joints) == 0 {
				sum.Skipped++
				continue
			}
			lines = append(lines, fmt.Sprintf("  movej([%s],accel_radss,speed_rads,0,blend_radius_m)",
				joinFloats(jointsRad(t.Joints), 6, ",")))
			sum.Moves++
		case ir.StepMoveL:
			p, ok := URPose(targets[step.Target])
			if !ok {
				sum.Skipped++
				continue
			}
			lines = append(lines, fmt.Sprintf("  movel(p[%s],accel_mss,speed_ms,0,blend_radius_m)",
				joinFloats(p, 6, ",")))
			sum.Moves++
		case ir.StepSetIO:
			lines = append(lines, fmt.Sprintf("  set_standard_digital_out(%s, %s)",
				ioIndex(step), pyBool(ir.Truthy(step.Value))))
			sum.IOs++
		case ir.StepMessage:
			if step.Comment() {
				lines = append(lines, "  # "+step.Text)
			}
		}
	}

	lines = append(lines, "end", "", name+"()")
	return []byte(strings.Join(lines, "\n")), sum
}

func ioIndex(step ir.Step) string {
	if step.IOIndex == nil || *step.IOIndex == "" {
		return "0"
	}
	return string(*step.IOIndex)
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
