package ir

// Version constants for the IR schema and the tools that write it.
const (
	// SchemaVersion is the IR schema version written to schema_version.
	SchemaVersion = "1.1"

	// SchemaMajor is the major schema version this package can read.
	SchemaMajor = "1"

	// RukiVersion is the version of the IR writer.
	RukiVersion = "1.1.0"

	// PoseFormat tags every xyzrpw array in the document.
	PoseFormat = "xyzrpw_mm_deg"

	// JointsUnit tags every joints array in the document.
	JointsUnit = "deg"

	// WorldFrame and BaseTool are the implicit frame and tool names.
	WorldFrame = "world"
	BaseTool   = "tool0"
)
