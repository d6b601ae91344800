package ir

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMissingSchemaVersion(t *testing.T) {
	_, err := Read(strings.NewReader(`{"metadata": {"program_name": "x"}}`))
	assert.ErrorIs(t, err, ErrMissingSchemaVersion)
}

func TestReadUnsupportedMajor(t *testing.T) {
	_, err := Read(strings.NewReader(`{"schema_version": "2.0"}`))
	assert.ErrorIs(t, err, ErrUnsupportedSchema)
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(strings.NewReader(`{"schema_version": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode ir")
}

func TestReadAcceptsMinorVersionsAndUnknownFields(t *testing.T) {
	doc, err := Read(strings.NewReader(`{"schema_version": "1.7", "future_field": true}`))
	require.NoError(t, err)
	assert.Equal(t, "1.7", doc.SchemaVersion)
}

func TestReadFillsMissingStateFields(t *testing.T) {
	doc, err := Read(strings.NewReader(`{
		"schema_version": "1.1",
		"program": {"initial_state": {"speed_linear": 250}}
	}`))
	require.NoError(t, err)

	st := doc.EffectiveInitialState()
	assert.Equal(t, 250.0, st.SpeedLinear)
	assert.Equal(t, 60.0, st.SpeedJoints)
	assert.Equal(t, 2000.0, st.AccelLinear)
	assert.Equal(t, 180.0, st.AccelJoints)
	assert.Equal(t, WorldFrame, st.ActiveFrame)
}

func TestEffectiveInitialStateDefaults(t *testing.T) {
	doc := &Document{}
	assert.Equal(t, DefaultState(), doc.EffectiveInitialState())
}

func TestWritePrettyAndCompact(t *testing.T) {
	doc := &Document{SchemaVersion: SchemaVersion}
	doc.Metadata.ProgramName = "Peça<1>"

	var pretty, compact bytes.Buffer
	require.NoError(t, Write(&pretty, doc, true))
	require.NoError(t, Write(&compact, doc, false))

	assert.Contains(t, pretty.String(), "\n  \"schema_version\": \"1.1\"")
	assert.NotContains(t, compact.String(), "\n  ")
	// Non-ASCII and HTML characters are not escaped.
	assert.Contains(t, compact.String(), `"program_name":"Peça<1>"`)

	back, err := Read(&pretty)
	require.NoError(t, err)
	assert.Equal(t, "Peça<1>", back.Metadata.ProgramName)
}

func TestIOIndexJSON(t *testing.T) {
	type wrap struct {
		Index IOIndex `json:"index"`
	}

	out, err := json.Marshal(wrap{Index: IntIndex(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index": 3}`, string(out))

	out, err = json.Marshal(wrap{Index: "tool_out[1]"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index": "tool_out[1]"}`, string(out))

	var w wrap
	require.NoError(t, json.Unmarshal([]byte(`{"index": 7}`), &w))
	n, ok := w.Index.Int()
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	require.NoError(t, json.Unmarshal([]byte(`{"index": "DO_A"}`), &w))
	_, ok = w.Index.Int()
	assert.False(t, ok)
}

func TestIOIndexKeepsLeadingZeros(t *testing.T) {
	type wrap struct {
		Index IOIndex `json:"index"`
	}

	_, ok := IOIndex("007").Int()
	assert.False(t, ok)

	out, err := json.Marshal(wrap{Index: "007"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index": "007"}`, string(out))

	var back wrap
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, IOIndex("007"), back.Index)
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(true))
	assert.True(t, Truthy(1.0))
	assert.True(t, Truthy("on"))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(0.0))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(nil))
}

func TestFilterName(t *testing.T) {
	assert.Equal(t, "Prog_1", FilterName("Prog 1"))
	assert.Equal(t, "a-b_c", FilterName("a-b_c"))
	assert.Equal(t, "Peça", FilterName("Peça"))
	assert.Equal(t, "x__y", FilterName("x.(y"))
}

func TestComputeStatistics(t *testing.T) {
	doc := &Document{
		Frames:  map[string]Frame{WorldFrame: {}},
		Tools:   map[string]Tool{BaseTool: {}},
		Targets: []Target{{ID: "T001"}, {ID: "T002"}},
		Program: Program{Steps: []Step{
			{Index: 1, Type: StepMoveJ},
			{Index: 2, Type: StepSetIO},
			{Index: 3, Type: StepMoveL},
			{Index: 4, Type: StepWaitIO},
			{Index: 5, Type: StepMoveC},
		}},
	}
	st := ComputeStatistics(doc)
	assert.Equal(t, Statistics{
		TotalSteps:    5,
		TotalTargets:  2,
		MoveJCount:    1,
		MoveLCount:    1,
		MoveCCount:    1,
		IOOperations:  2,
		FramesDefined: 1,
		ToolsDefined:  1,
	}, st)
}

func TestDigests(t *testing.T) {
	a := OutputDigest([]byte("movej"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, OutputDigest([]byte("movej")))
	assert.NotEqual(t, a, OutputDigest([]byte("movel")))

	doc := &Document{SchemaVersion: SchemaVersion}
	d1, err := DocumentDigest(doc)
	require.NoError(t, err)
	d2, err := DocumentDigest(doc)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, a)
}
