package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/testutil"
)

const pickScript = `def pick():
  global speed_ms = 0.250
  movej([0.0,-1.5708,1.5708,-1.5708,-1.5708,0.0],a=1.4,v=1.05) # JOINTS: [0, -90, 90, -90, -90, 0]
  set_standard_digital_out(1, True)
  movel(p[0.45,-0.12,0.31,0,3.1416,0],a=1.2,v=0.25)
end
`

// decode unmarshals a JSON CLIResponse and its data payload into data.
func decode(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

func TestConvertIRToScript(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "pick_place.ruki", testutil.PickAndPlace(t, "UR10e"))

	out, err := execute(t, "convert", in, "--format", "json")
	require.NoError(t, err)

	var payload ConvertOutput
	resp := decode(t, out, &payload)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ".ruki → .script", payload.Conversion, "first conversion accepting .ruki")
	assert.Equal(t, "Universal Robots", payload.Brand)
	assert.Equal(t, "UR10e", payload.Model, "model detected from robot.name")
	assert.Equal(t, filepath.Join(dir, "pick_place.script"), payload.OutputPath)
	assert.Equal(t, 3, payload.Summary.Moves, "linear moves keep their pose")
	assert.Equal(t, 2, payload.Summary.IOs)
	assert.Zero(t, payload.Summary.Skipped)
	assert.FileExists(t, payload.OutputPath)
}

func TestConvertTextOutput(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "single.ruki", testutil.SingleMoveJ(t, "UR5e"))
	outDir := filepath.Join(dir, "build")

	out, err := execute(t, "convert", in, "-c", ".ruki → .urp", "-o", outDir)
	require.NoError(t, err)

	want := filepath.Join(outDir, "single.urp")
	assert.Contains(t, out, "Arquivo: "+want)
	assert.FileExists(t, want)
}

func TestConvertNoCommandsFails(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "empty.ruki", testutil.Empty(t, "UR10e"))

	out, err := execute(t, "convert", in, "-c", ".ruki → .urp", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoCommands, resp.Error.Code)
	assert.Equal(t, "Nenhum comando encontrado", resp.Error.Message)
	assert.NoFileExists(t, filepath.Join(dir, "empty.urp"))
}

func TestConvertMalformedInput(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "broken.ruki", "{not json")

	out, err := execute(t, "convert", in, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMalformed, resp.Error.Code)
}

func TestConvertCommandErrors(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "notes.txt", "hello")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown brand", []string{"convert", in, "--brand", "ABB"}, ErrCodeUnknownBrand},
		{"no conversion for extension", []string{"convert", in}, ErrCodeConversion},
		{"missing catalog", []string{"convert", in, "--catalog", filepath.Join(dir, "none.cue")}, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decode(t, out, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestConvertScriptToOffline(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "cell.script", pickScript)

	out, err := execute(t, "convert", in, "-c", ".script → .py", "--format", "json")
	require.NoError(t, err)

	var payload ConvertOutput
	decode(t, out, &payload)
	assert.Equal(t, filepath.Join(dir, "cell.py"), payload.OutputPath)
	assert.Equal(t, 2, payload.Summary.Moves)
	assert.Equal(t, 1, payload.Summary.IOs)
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	ruki := testutil.WriteDocument(t, dir, "a.ruki", testutil.SingleMoveJ(t, "UR16e"))
	plain := testutil.WriteFile(t, dir, "b.script", pickScript)

	out, err := execute(t, "detect", ruki)
	require.NoError(t, err)
	assert.Equal(t, "UR16e\n", out)

	out, err = execute(t, "detect", plain)
	require.NoError(t, err)
	assert.Equal(t, "no model detected\n", out)
}

func TestModelsAndConversions(t *testing.T) {
	out, err := execute(t, "models", "--format", "json")
	require.NoError(t, err)

	var models ModelsOutput
	decode(t, out, &models)
	assert.Equal(t, "UR10e", models.DefaultModel)
	assert.Contains(t, models.Selectable, "UR20")
	assert.Greater(t, len(models.Entries), len(models.Selectable), "entries keep separators")

	out, err = execute(t, "conversions")
	require.NoError(t, err)
	assert.Contains(t, out, ".script → .py")
	assert.Contains(t, out, ".ruki → .urp")

	_, err = execute(t, "models", "--brand", "Fanuc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBuildYAMLSession(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "pick.ruki")

	out, err := execute(t, "build", "../replay/testdata/pick_place.yaml", "-o", target, "--format", "json")
	require.NoError(t, err)

	var payload BuildOutput
	decode(t, out, &payload)
	assert.Equal(t, target, payload.OutputPath)
	assert.Equal(t, 14, payload.Statistics.TotalSteps)
	assert.NotEmpty(t, payload.Digest)

	doc, err := ir.ReadFile(target)
	require.NoError(t, err)
	digest, err := ir.DocumentDigest(doc)
	require.NoError(t, err)
	assert.Equal(t, payload.Digest, digest)
}

func TestBuildStarlarkSession(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "pick.ruki")

	_, err := execute(t, "build", "../replay/testdata/pick_place.star", "-o", target)
	require.Error(t, err, "--robot is required")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, "build", "../replay/testdata/pick_place.star", "-o", target, "--robot", "UR10e", "--compact")
	require.NoError(t, err)
	assert.Contains(t, out, target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n  ", "compact output has no indentation")
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "pick_place.ruki", testutil.PickAndPlace(t, "UR10e"))

	out, err := execute(t, "inspect", in, "--format", "json")
	require.NoError(t, err)
	var doc InspectOutput
	decode(t, out, &doc)
	require.NotNil(t, doc.Document)
	assert.Equal(t, "pick_place", doc.Document.Program)
	assert.Nil(t, doc.Archive)

	_, err = execute(t, "convert", in, "-c", ".ruki → .urp")
	require.NoError(t, err)

	out, err = execute(t, "inspect", filepath.Join(dir, "pick_place.urp"), "--format", "json")
	require.NoError(t, err)
	var arc InspectOutput
	decode(t, out, &arc)
	require.NotNil(t, arc.Archive)
	assert.Len(t, arc.Archive.Waypoints, 2)

	_, err = execute(t, "inspect", filepath.Join(dir, "missing.urp"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCatalog(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "good.cue", `
brands: [{
	name: "Acme", default_model: "A1"
	models: [{key: "A1", full_name: "A1", archive: {deltaTheta: "", a: "", d: "", alpha: "", jointChecksum: ""}}]
	conversions: []
}]
`)
	bad := testutil.WriteFile(t, dir, "bad.cue", `
brands: [{
	name: "Acme", default_model: "Z9", model_order: ["B2"]
	models: [{key: "A1", full_name: "A1", archive: {deltaTheta: "", a: "", d: "", alpha: "", jointChecksum: ""}}]
	conversions: []
}]
`)
	broken := testutil.WriteFile(t, dir, "broken.cue", `brands: [{name: `)

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, "✓ Catalog valid (1 brand(s))\n", out)

	out, err = execute(t, "validate", bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")

	_, err = execute(t, "validate", broken)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "validate", filepath.Join(dir, "none.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")
	in := testutil.WriteDocument(t, dir, "single.ruki", testutil.SingleMoveJ(t, "UR10e"))
	empty := testutil.WriteDocument(t, dir, "empty.ruki", testutil.Empty(t, "UR10e"))

	_, err := execute(t, "history")
	require.Error(t, err, "no database configured")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "history", "--history-db", db)
	require.NoError(t, err)
	assert.Equal(t, "No conversions recorded.\n", out)

	_, err = execute(t, "convert", in, "--history-db", db)
	require.NoError(t, err)
	_, err = execute(t, "convert", empty, "-c", ".ruki → .urp", "--history-db", db)
	require.Error(t, err)

	out, err = execute(t, "history", "--history-db", db, "--format", "json")
	require.NoError(t, err)
	var hist HistoryOutput
	decode(t, out, &hist)
	require.Len(t, hist.Entries, 2)

	var ok, failed int
	for _, e := range hist.Entries {
		if e.Success {
			ok++
			assert.Equal(t, 1, e.Moves)
		} else {
			failed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)

	out, err = execute(t, "history", hist.Entries[0].ID, "--history-db", db, "--format", "json")
	require.NoError(t, err)
	var one HistoryOutput
	decode(t, out, &one)
	require.Len(t, one.Entries, 1)
	assert.Equal(t, hist.Entries[0].ID, one.Entries[0].ID)

	_, err = execute(t, "history", "no-such-id", "--history-db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
