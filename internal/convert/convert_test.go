package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/emit"
	"github.com/Borbofruto/Ruki/internal/testutil"
)

const brandUR = "Universal Robots"

type recorded struct {
	req Request
	res Result
}

type fakeRecorder struct {
	calls []recorded
}

func (r *fakeRecorder) Record(_ context.Context, req Request, res Result, _ time.Time) error {
	r.calls = append(r.calls, recorded{req, res})
	return nil
}

func newEngine(t *testing.T, rec Recorder) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return New(cat, Options{Recorder: rec})
}

func TestIRToScriptSingleMove(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "single.ruki", testutil.SingleMoveJ(t, "UR10e"))
	out := filepath.Join(dir, "out")

	res := newEngine(t, nil).Convert(context.Background(), Request{
		Brand: brandUR, Conversion: ".ruki → .script", InputPath: in, Model: "UR10e", OutputDir: out,
	})
	require.True(t, res.Success, res.Message)
	assert.NoError(t, res.Err)

	want := filepath.Join(out, "single.script")
	assert.Equal(t, want, res.OutputPath)
	assert.Equal(t, "Movimentos: 1\nIOs: 0\n\nArquivo: "+want, res.Message)
	assert.Equal(t, emit.Summary{Moves: 1}, res.Summary)
	assert.NotEmpty(t, res.Digest)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	var moves int
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "movej(") {
			moves++
		}
	}
	assert.Equal(t, 1, moves)
	assert.Contains(t, string(data), "movej([0.000000,-1.570796,0.000000,-1.570796,0.000000,0.000000]")
}

func TestIRToArchiveEmptyFails(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "empty.ruki", testutil.Empty(t, "UR10e"))
	out := filepath.Join(dir, "out")

	res := newEngine(t, nil).Convert(context.Background(), Request{
		Brand: brandUR, Conversion: ".ruki → .urp", InputPath: in, Model: "UR10e", OutputDir: out,
	})
	assert.False(t, res.Success)
	assert.Equal(t, "Nenhum comando encontrado", res.Message)
	assert.ErrorIs(t, res.Err, ErrNoCommands)
	assert.Empty(t, res.OutputPath)

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no output may be written")
}

func TestIRToArchive(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "pp.ruki", testutil.PickAndPlace(t, "UR16e"))

	res := newEngine(t, nil).Convert(context.Background(), Request{
		Brand: brandUR, Conversion: ".ruki → .urp", InputPath: in, Model: "UR16e", OutputDir: dir,
	})
	require.True(t, res.Success, res.Message)
	want := filepath.Join(dir, "pick_place.urp")
	assert.Equal(t, "Modelo: Universal Robots UR16e\nMovimentos: 2\nIOs: 2\n\n⚠ 1 movimentos ignorados (sem joints)\n\nArquivo: "+want, res.Message)
	assert.Equal(t, emit.Summary{Moves: 2, IOs: 2, Skipped: 1}, res.Summary)
	assert.Equal(t, "UR16e", res.Model)
	assert.FileExists(t, want)
}

func TestScriptToArchiveReportsSkipped(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "cell 2.script", strings.Join([]string{
		"def cell():",
		"  movej([0,-1.57,1.57,-1.57,-1.57,0])",
		"  movel(p[0.5,0,0.25,0,3.14,0],a,v)",
		"  set_standard_digital_out(3, True)",
		"end",
	}, "\n"))

	res := newEngine(t, nil).Convert(context.Background(), Request{
		Brand: brandUR, Conversion: ".script → .urp", InputPath: in, Model: "UR5e", OutputDir: dir,
	})
	require.True(t, res.Success, res.Message)
	want := filepath.Join(dir, "cell 2.urp")
	assert.Equal(t, "Movimentos: 1\nIOs: 1\n\n⚠ 1 MoveL ignorados (sem #JOINTS)\nUse .script do RoboDK com output joints+cartesian\n\nArquivo: "+want, res.Message)
	assert.Equal(t, want, res.OutputPath)
}

func TestScriptToOffline(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "cell 2.script", "movej([10,20,30,40,50,60])\nset_standard_digital_out(1, False)\n")

	res := newEngine(t, nil).Convert(context.Background(), Request{
		Brand: brandUR, Conversion: ".script → .py", InputPath: in, Model: "UR20", OutputDir: dir,
	})
	require.True(t, res.Success, res.Message)
	want := filepath.Join(dir, "cell_2_RoboDK.py")
	assert.Equal(t, want, res.OutputPath)
	assert.Equal(t, "Movimentos: 1\nIOs: 1\n\nArquivo: "+want, res.Message)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Arquivo origem: cell 2.script")
	assert.Contains(t, string(data), "RDK.Item('UR20', ITEM_TYPE_ROBOT)")
	assert.Contains(t, string(data), "robot.setDO(1, 0)\n")
}

func TestScriptToOfflineNothingParsed(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "blank.script", "def blank():\nend\n")

	res := newEngine(t, nil).Convert(context.Background(), Request{
		Brand: brandUR, Conversion: ".script → .py", InputPath: in, OutputDir: dir,
	})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrNoCommands)
}

func TestUnknownBrandAndConversion(t *testing.T) {
	e := newEngine(t, nil)

	res := e.Convert(context.Background(), Request{Brand: "ABB", Conversion: ".ruki → .script"})
	assert.False(t, res.Success)
	assert.Equal(t, "Emitter não encontrado para ABB", res.Message)
	assert.ErrorIs(t, res.Err, ErrUnknownBrand)

	res = e.Convert(context.Background(), Request{Brand: brandUR, Conversion: ".urp → .ruki"})
	assert.False(t, res.Success)
	assert.Equal(t, "Conversão '.urp → .ruki' não disponível", res.Message)
	assert.ErrorIs(t, res.Err, ErrUnknownConversion)
}

func TestMalformedInput(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "bad.ruki", "{not json")

	res := newEngine(t, nil).Convert(context.Background(), Request{
		Brand: brandUR, Conversion: ".ruki → .script", InputPath: in, OutputDir: dir,
	})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrMalformedInput)
	assert.True(t, strings.HasPrefix(res.Message, "Erro: "))

	res = newEngine(t, nil).Convert(context.Background(), Request{
		Brand: brandUR, Conversion: ".script → .urp", InputPath: filepath.Join(dir, "missing.script"), OutputDir: dir,
	})
	assert.ErrorIs(t, res.Err, ErrMalformedInput)
}

func TestPanicIsRecovered(t *testing.T) {
	rec := &fakeRecorder{}
	e := newEngine(t, rec)
	e.converters[catalog.IRToScript] = func(job) (artifact, error) { panic("boom") }

	res := e.Convert(context.Background(), Request{Brand: brandUR, Conversion: ".ruki → .script"})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrInternal)
	assert.Equal(t, "Erro: internal error: boom", res.Message)
	require.Len(t, rec.calls, 1)
	assert.False(t, rec.calls[0].res.Success)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newEngine(t, nil).Convert(ctx, Request{Brand: brandUR, Conversion: ".ruki → .script"})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestRecorderSeesEveryConversion(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "single.ruki", testutil.SingleMoveJ(t, "UR10e"))
	rec := &fakeRecorder{}
	e := newEngine(t, rec)

	e.Convert(context.Background(), Request{Brand: brandUR, Conversion: ".ruki → .script", InputPath: in, OutputDir: dir})
	e.Convert(context.Background(), Request{Brand: "ABB", Conversion: "x"})

	require.Len(t, rec.calls, 2)
	assert.True(t, rec.calls[0].res.Success)
	assert.Equal(t, in, rec.calls[0].req.InputPath)
	assert.False(t, rec.calls[1].res.Success)
}

func TestConvertIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "pp.ruki", testutil.PickAndPlace(t, "UR10e"))
	e := newEngine(t, nil)
	req := Request{Brand: brandUR, Conversion: ".ruki → .urp", InputPath: in, Model: "UR10e", OutputDir: dir}

	first := e.Convert(context.Background(), req)
	require.True(t, first.Success, first.Message)
	a, err := os.ReadFile(first.OutputPath)
	require.NoError(t, err)

	second := e.Convert(context.Background(), req)
	require.True(t, second.Success, second.Message)
	b, err := os.ReadFile(second.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, first.Digest, second.Digest)
}
