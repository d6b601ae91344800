package ir

import "encoding/json"

// StepType tags a program step.
type StepType string

// Step types in the order they appear in the schema.
const (
	StepMoveJ       StepType = "MOVE_J"
	StepMoveL       StepType = "MOVE_L"
	StepMoveC       StepType = "MOVE_C"
	StepSetFrame    StepType = "SET_FRAME"
	StepSetTool     StepType = "SET_TOOL"
	StepSetSpeed    StepType = "SET_SPEED"
	StepSetAccel    StepType = "SET_ACCEL"
	StepSetRounding StepType = "SET_ROUNDING"
	StepSetIO       StepType = "SET_IO"
	StepWaitIO      StepType = "WAIT_IO"
	StepPause       StepType = "PAUSE"
	StepRunCode     StepType = "RUN_CODE"
	StepMessage     StepType = "MESSAGE"
)

// ValidStepTypes lists every step type the schema allows.
var ValidStepTypes = map[StepType]bool{
	StepMoveJ:       true,
	StepMoveL:       true,
	StepMoveC:       true,
	StepSetFrame:    true,
	StepSetTool:     true,
	StepSetSpeed:    true,
	StepSetAccel:    true,
	StepSetRounding: true,
	StepSetIO:       true,
	StepWaitIO:      true,
	StepPause:       true,
	StepRunCode:     true,
	StepMessage:     true,
}

// Document is a complete .ruki program.
type Document struct {
	SchemaVersion string           `json:"schema_version"`
	RukiVersion   string           `json:"ruki_version,omitempty"`
	Metadata      Metadata         `json:"metadata"`
	Robot         Robot            `json:"robot"`
	Frames        map[string]Frame `json:"frames"`
	Tools         map[string]Tool  `json:"tools"`
	Targets       []Target         `json:"targets"`
	IOMap         map[string]IORef `json:"io_map"`
	Program       Program          `json:"program"`
	Statistics    Statistics       `json:"statistics"`
}

// Metadata describes where and when the document was produced.
type Metadata struct {
	ProgramName          string               `json:"program_name"`
	Created              string               `json:"created"`
	Generator            string               `json:"generator"`
	GeneratorVersion     string               `json:"generator_version"`
	Source               Source               `json:"source"`
	Units                Units                `json:"units"`
	TransformConventions TransformConventions `json:"transform_conventions"`
}

// Source names the software that drove the builder.
type Source struct {
	Software      string `json:"software"`
	PostProcessor string `json:"post_processor"`
}

// Units is the fixed unit declaration. Values are never inferred.
type Units struct {
	Length       string `json:"length"`
	Angle        string `json:"angle"`
	LinearSpeed  string `json:"linear_speed"`
	AngularSpeed string `json:"angular_speed"`
	LinearAccel  string `json:"linear_accel"`
	AngularAccel string `json:"angular_accel"`
	Time         string `json:"time"`
}

// DefaultUnits returns the only unit declaration the schema allows.
func DefaultUnits() Units {
	return Units{
		Length:       "mm",
		Angle:        "deg",
		LinearSpeed:  "mm/s",
		AngularSpeed: "deg/s",
		LinearAccel:  "mm/s²",
		AngularAccel: "deg/s²",
		Time:         "s",
	}
}

// TransformConventions documents which transform each pose field holds.
type TransformConventions struct {
	FramePose  string `json:"frame_pose"`
	ToolPose   string `json:"tool_pose"`
	TargetPose string `json:"target_pose"`
	ConfigRLF  string `json:"config_RLF"`
}

// DefaultTransformConventions returns the conventions every builder uses.
func DefaultTransformConventions() TransformConventions {
	return TransformConventions{
		FramePose:  "T_world_to_frame",
		ToolPose:   "T_flange_to_tcp",
		TargetPose: "T_frame_to_tcp",
		ConfigRLF:  "[REAR, LOWER_ARM, FLIP] where 0=front/upper/non-flip",
	}
}

// Robot describes the robot the program was generated for.
type Robot struct {
	Name         string            `json:"name"`
	NativeName   string            `json:"native_name"`
	AxesCount    int               `json:"axes_count"`
	AxesType     []string          `json:"axes_type"`
	IPAddress    string            `json:"ip_address,omitempty"`
	PulsesPerDeg []float64         `json:"pulses_per_deg"`
	ExternalAxes RobotExternalAxes `json:"external_axes"`
}

// RobotExternalAxes holds the fixed offsets of external axes.
type RobotExternalAxes struct {
	TurntableOffset []float64 `json:"turntable_offset"`
	RailOffset      []float64 `json:"rail_offset"`
}

// Meta records how a frame or tool came to exist.
type Meta struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
}

// Frame is a reference coordinate system. Pose is T_world→frame.
type Frame struct {
	Parent       *string     `json:"parent"`
	Pose         []float64   `json:"pose"`
	PoseFormat   string      `json:"pose_format"`
	FrameID      *int        `json:"frame_id,omitempty"`
	OriginalName string      `json:"original_name,omitempty"`
	PoseMatrix   [][]float64 `json:"pose_matrix,omitempty"`
	Meta         *Meta       `json:"_meta,omitempty"`
}

// Tool is a TCP definition. TCPPose is T_flange→tcp.
type Tool struct {
	TCPPose      []float64   `json:"tcp_pose"`
	PoseFormat   string      `json:"pose_format"`
	ToolID       *int        `json:"tool_id,omitempty"`
	OriginalName string      `json:"original_name,omitempty"`
	PayloadMass  *float64    `json:"payload_mass"`
	PayloadCOG   []float64   `json:"payload_cog"`
	PoseMatrix   [][]float64 `json:"pose_matrix,omitempty"`
	Meta         *Meta       `json:"_meta,omitempty"`
}

// Target is a waypoint. Pose is T_frame→tcp in mm and degrees.
type Target struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	IsJointTarget bool          `json:"is_joint_target"`
	Joints        []float64     `json:"joints"`
	JointsUnit    string        `json:"joints_unit"`
	Pose          []float64     `json:"pose"`
	PoseFormat    string        `json:"pose_format"`
	ConfigRLF     []int         `json:"config_RLF"`
	Context       Context       `json:"context"`
	ExternalAxes  ExternalPoses `json:"external_axes"`
	PoseMatrix    [][]float64   `json:"pose_matrix,omitempty"`
}

// Context is the active frame and tool when a target was created.
type Context struct {
	Frame   string `json:"frame"`
	FrameID int    `json:"frame_id"`
	Tool    string `json:"tool"`
	ToolID  int    `json:"tool_id"`
}

// ExternalPoses holds external-axis poses captured with a target.
type ExternalPoses struct {
	TrackPose     []float64 `json:"track_pose"`
	TurntablePose []float64 `json:"turntable_pose"`
}

// IORef is an entry of the IO map.
type IORef struct {
	Type  string  `json:"type"`
	Index IOIndex `json:"index"`
}

// Program holds the ordered steps and the subprogram bookkeeping.
type Program struct {
	Main             string           `json:"main"`
	Subprograms      []string         `json:"subprograms"`
	SubprogramRanges map[string]Range `json:"subprogram_ranges,omitempty"`
	InitialState     *State           `json:"initial_state"`
	Steps            []Step           `json:"steps"`
}

// Range bounds the steps of a subprogram. EndStep is zero while the
// subprogram is still open.
type Range struct {
	StartStep int `json:"start_step"`
	EndStep   int `json:"end_step,omitempty"`
}

// State is the interpreter state snapshot stored around each step.
type State struct {
	ActiveFrame   string  `json:"active_frame"`
	ActiveFrameID int     `json:"active_frame_id"`
	ActiveTool    string  `json:"active_tool"`
	ActiveToolID  int     `json:"active_tool_id"`
	SpeedLinear   float64 `json:"speed_linear"`
	SpeedJoints   float64 `json:"speed_joints"`
	AccelLinear   float64 `json:"accel_linear"`
	AccelJoints   float64 `json:"accel_joints"`
	Rounding      float64 `json:"rounding"`
}

// DefaultState is the state of a freshly started program.
func DefaultState() State {
	return State{
		ActiveFrame:   WorldFrame,
		ActiveFrameID: -1,
		ActiveTool:    BaseTool,
		ActiveToolID:  -1,
		SpeedLinear:   500,
		SpeedJoints:   60,
		AccelLinear:   2000,
		AccelJoints:   180,
		Rounding:      0,
	}
}

// UnmarshalJSON fills fields missing from the input with DefaultState.
func (s *State) UnmarshalJSON(data []byte) error {
	type plain State
	p := plain(DefaultState())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = State(p)
	return nil
}

// Step is one instruction. Only the payload fields of its type are set.
type Step struct {
	Index       int      `json:"index"`
	Type        StepType `json:"type"`
	StateBefore State    `json:"state_before"`

	// MOVE_J, MOVE_L
	Target     string `json:"target,omitempty"`
	TargetName string `json:"target_name,omitempty"`

	// MOVE_C
	TargetVia     string `json:"target_via,omitempty"`
	TargetViaName string `json:"target_via_name,omitempty"`
	TargetEnd     string `json:"target_end,omitempty"`
	TargetEndName string `json:"target_end_name,omitempty"`

	// SET_FRAME, SET_TOOL
	Frame     string `json:"frame,omitempty"`
	FrameID   *int   `json:"frame_id,omitempty"`
	FrameName string `json:"frame_name,omitempty"`
	Tool      string `json:"tool,omitempty"`
	ToolID    *int   `json:"tool_id,omitempty"`
	ToolName  string `json:"tool_name,omitempty"`

	// SET_SPEED, SET_ACCEL, SET_ROUNDING
	SpeedLinear *float64 `json:"speed_linear,omitempty"`
	SpeedJoints *float64 `json:"speed_joints,omitempty"`
	AccelLinear *float64 `json:"accel_linear,omitempty"`
	AccelJoints *float64 `json:"accel_joints,omitempty"`
	Rounding    *float64 `json:"rounding,omitempty"`

	// SET_IO, WAIT_IO
	IORef    string   `json:"io_ref,omitempty"`
	IOType   string   `json:"io_type,omitempty"`
	IOIndex  *IOIndex `json:"io_index,omitempty"`
	Value    any      `json:"value,omitempty"`
	TimeoutS *float64 `json:"timeout_s,omitempty"`

	// PAUSE
	DurationS   *float64 `json:"duration_s,omitempty"`
	IsUserPause *bool    `json:"is_user_pause,omitempty"`

	// RUN_CODE
	Code           string `json:"code,omitempty"`
	IsFunctionCall *bool  `json:"is_function_call,omitempty"`

	// MESSAGE
	Text      string `json:"text,omitempty"`
	IsComment *bool  `json:"is_comment,omitempty"`

	StateAfter State `json:"state_after"`
}

// Comment reports whether a MESSAGE step is flagged as a comment.
func (s Step) Comment() bool {
	return s.IsComment != nil && *s.IsComment
}

// Statistics are derived counters, recomputed on every build.
type Statistics struct {
	TotalSteps    int `json:"total_steps"`
	TotalTargets  int `json:"total_targets"`
	MoveJCount    int `json:"move_j_count"`
	MoveLCount    int `json:"move_l_count"`
	MoveCCount    int `json:"move_c_count"`
	IOOperations  int `json:"io_operations"`
	FramesDefined int `json:"frames_defined"`
	ToolsDefined  int `json:"tools_defined"`
}

// ComputeStatistics derives Statistics from the document contents.
func ComputeStatistics(doc *Document) Statistics {
	st := Statistics{
		TotalSteps:    len(doc.Program.Steps),
		TotalTargets:  len(doc.Targets),
		FramesDefined: len(doc.Frames),
		ToolsDefined:  len(doc.Tools),
	}
	for _, s := range doc.Program.Steps {
		switch s.Type {
		case StepMoveJ:
			st.MoveJCount++
		case StepMoveL:
			st.MoveLCount++
		case StepMoveC:
			st.MoveCCount++
		case StepSetIO, StepWaitIO:
			st.IOOperations++
		}
	}
	return st
}

// TargetIndex maps target ids to targets. Later duplicates win.
func (d *Document) TargetIndex() map[string]*Target {
	idx := make(map[string]*Target, len(d.Targets))
	for i := range d.Targets {
		idx[d.Targets[i].ID] = &d.Targets[i]
	}
	return idx
}

// EffectiveInitialState returns the initial state, or DefaultState when
// the document has none.
func (d *Document) EffectiveInitialState() State {
	if d.Program.InitialState == nil {
		return DefaultState()
	}
	return *d.Program.InitialState
}
