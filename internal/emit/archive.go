package emit

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Borbofruto/Ruki/internal/archive"
	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/script"
)

// DefaultArchiveVersion is the controller software version stamped into
// archives.
const DefaultArchiveVersion = "5.25.0"

const zeroPose = "0.0, 0.0, 0.0, 0.0, 0.0, 0.0"

// ArchiveOptions tune archive output.
type ArchiveOptions struct {
	// Version fills createdIn and lastSavedIn. Empty means
	// DefaultArchiveVersion.
	Version string

	// ModTime is stored in the gzip header. The zero time keeps output
	// byte-identical across runs.
	ModTime time.Time
}

func (o ArchiveOptions) version() string {
	if o.Version == "" {
		return DefaultArchiveVersion
	}
	return o.Version
}

// ArchiveFromDocument renders doc as a compressed program archive for
// model. Moves whose target has no joints are skipped.
func ArchiveFromDocument(doc *ir.Document, model catalog.Model, opts ArchiveOptions) ([]byte, Summary, error) {
	name := ProgramName(doc)
	targets := doc.TargetIndex()
	ab := newArchiveBuilder(name, model.Archive, opts.version())

	for _, step := range doc.Program.Steps {
		switch step.Type {
		case ir.StepMoveJ, ir.StepMoveL:
			t := targets[step.Target]
			if t == nil || len(t.Joints) == 0 {
				ab.sum.Skipped++
				continue
			}
			motion := script.MoveJ
			if step.Type == ir.StepMoveL {
				motion = script.MoveL
			}
			ab.move(motion, t.Joints)
		case ir.StepSetIO:
			ab.set(ioIndex(step), ir.Truthy(step.Value))
		}
	}
	return ab.finish(name+".urp", opts.ModTime)
}

// ArchiveFromCommands renders parsed script commands as a compressed
// program archive named name. Waypoints need joints, so moves known only
// by their pose are skipped.
func ArchiveFromCommands(name string, cmds []script.Command, model catalog.Model, opts ArchiveOptions) ([]byte, Summary, error) {
	ab := newArchiveBuilder(name, model.Archive, opts.version())

	for _, c := range cmds {
		switch c.Kind {
		case script.KindMove:
			if !c.HasJoints() {
				ab.sum.Skipped++
				continue
			}
			ab.move(c.Motion, c.Joints)
		case script.KindIO:
			ab.set(fmt.Sprint(c.Index), c.Value)
		}
	}
	return ab.finish(name+".urp", opts.ModTime)
}

// archiveBuilder assembles the URProgram tree. The first Move and the
// first Set name their referenced object; later ones point back to the
// first by relative path.
type archiveBuilder struct {
	params catalog.ArchiveParams
	root   *archive.Element
	main   *archive.Element
	sum    Summary
}

func newArchiveBuilder(name string, params catalog.ArchiveParams, version string) *archiveBuilder {
	root := archive.NewElement("URProgram",
		archive.A("name", name),
		archive.A("installation", "default"),
		archive.A("directory", "/programs"),
		archive.A("createdIn", version),
		archive.A("lastSavedIn", version),
	)
	addKinematics(root, "kinematics", params)

	children := root.Add("children")
	children.Add("InitVariablesNode")
	main := children.Add("MainProgram",
		archive.A("runOnlyOnce", "false"),
		archive.A("InitVariablesNode", "true"),
	).Add("children")

	return &archiveBuilder{params: params, root: root, main: main}
}

func addKinematics(parent *archive.Element, name string, params catalog.ArchiveParams) {
	kin := parent.Add(name, archive.A("status", "NOT_INITIALIZED"), archive.A("validChecksum", "false"))
	for _, f := range params.Fields() {
		kin.Add(f[0], archive.A("value", f[1]))
	}
}

func (ab *archiveBuilder) move(motion script.Motion, jointsDeg []float64) {
	move := ab.main.Add("Move",
		archive.A("motionType", string(motion)),
		archive.A("speed", "1.0"),
		archive.A("acceleration", "1.2"),
		archive.A("useActiveTCP", "true"),
		archive.A("positionType", "CartesianPose"),
	)
	feat := move.Add("feature", archive.A("class", "GeomFeatureReference"))
	if ab.sum.Moves == 0 {
		feat.Set("referencedName", "Joint_0_name")
	} else {
		feat.Set("reference", "../../Move/feature")
	}

	wp := move.Add("children").Add("Waypoint",
		archive.A("type", "Fixed"),
		archive.A("name", fmt.Sprintf("Waypoint_%d", ab.sum.Moves+1)),
		archive.A("kinematicsFlags", "4"),
	)
	wp.Add("motionParameters")
	pos := wp.Add("position")
	pos.Add("JointAngles", archive.A("angles", joinFloats(jointsRad(jointsDeg), 6, ", ")))
	pos.Add("TCPOffset", archive.A("pose", zeroPose))
	addKinematics(pos, "Kinematics", ab.params)
	wp.Add("BaseToFeature", archive.A("pose", zeroPose))

	ab.sum.Moves++
}

func (ab *archiveBuilder) set(index string, value bool) {
	set := ab.main.Add("Set", archive.A("type", "DigitalOutput"))
	pin := set.Add("pin")
	if ab.sum.IOs == 0 {
		pin.Set("referencedName", fmt.Sprintf("digital_out[%s]", index))
	} else {
		pin.Set("reference", "../../Set/pin")
	}
	dv := set.Add("digitalValue")
	dv.Text = "0"
	if value {
		dv.Text = "1"
	}
	ab.sum.IOs++
}

func (ab *archiveBuilder) finish(fileName string, modTime time.Time) ([]byte, Summary, error) {
	if ab.sum.Moves == 0 && ab.sum.IOs == 0 {
		return nil, ab.sum, ErrNoCommands
	}
	var buf bytes.Buffer
	if err := archive.Compress(&buf, fileName, modTime, archive.Marshal(ab.root)); err != nil {
		return nil, ab.sum, err
	}
	return buf.Bytes(), ab.sum, nil
}
