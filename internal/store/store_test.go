package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Borbofruto/Ruki/internal/convert"
	"github.com/Borbofruto/Ruki/internal/emit"
	"github.com/Borbofruto/Ruki/internal/testutil"
)

func openTestStore(t *testing.T, clock *testutil.FixedClock) *Store {
	t.Helper()
	n := 0
	s, err := Open(filepath.Join(t.TempDir(), "history.db"),
		WithClock(clock.Now),
		WithIDs(func() string {
			n++
			return fmt.Sprintf("run-%03d", n)
		}),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t, testutil.NewFixedClock())

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestRecordAndGet(t *testing.T) {
	clock := testutil.NewFixedClock()
	s := openTestStore(t, clock)
	ctx := context.Background()

	started := clock.Now()
	clock.Advance(42 * time.Millisecond)

	req := convert.Request{Brand: "Universal Robots", Conversion: ".ruki → .urp", InputPath: "/in/cell.ruki", Model: "ur20", OutputDir: "/out"}
	res := convert.Result{
		Success:    true,
		Message:    "Movimentos: 2",
		OutputPath: "/out/cell.urp",
		Model:      "UR20",
		Summary:    emit.Summary{Moves: 2, IOs: 1, Skipped: 1},
		Digest:     "abc",
	}
	if err := s.Record(ctx, req, res, started); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	got, err := s.Get(ctx, "run-001")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	want := Entry{
		ID:         "run-001",
		StartedAt:  "2025-03-14T12:26:53.589793Z",
		DurationMS: 42,
		Brand:      "Universal Robots",
		Conversion: ".ruki → .urp",
		InputPath:  "/in/cell.ruki",
		Model:      "UR20",
		OutputDir:  "/out",
		OutputPath: "/out/cell.urp",
		Success:    true,
		Message:    "Movimentos: 2",
		Moves:      2,
		IOs:        1,
		Skipped:    1,
		Digest:     "abc",
	}
	if *got != want {
		t.Errorf("Get() = %+v\nwant %+v", *got, want)
	}
}

func TestRecordFailure(t *testing.T) {
	clock := testutil.NewFixedClock()
	s := openTestStore(t, clock)
	ctx := context.Background()

	res := convert.Result{Message: "Nenhum comando encontrado", Err: convert.ErrNoCommands}
	if err := s.Record(ctx, convert.Request{Brand: "Universal Robots"}, res, clock.Now()); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	got, err := s.Get(ctx, "run-001")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Success {
		t.Error("Success = true, want false")
	}
	if got.Error != convert.ErrNoCommands.Error() {
		t.Errorf("Error = %q", got.Error)
	}
}

func TestListNewestFirst(t *testing.T) {
	clock := testutil.NewFixedClock()
	s := openTestStore(t, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := convert.Request{Brand: "Universal Robots", InputPath: fmt.Sprintf("/in/%d.script", i)}
		if err := s.Record(ctx, req, convert.Result{Success: true}, clock.Now()); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
		clock.Advance(time.Second)
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d rows, want 3", len(all))
	}
	if all[0].ID != "run-003" || all[2].ID != "run-001" {
		t.Errorf("order = %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d rows", len(limited))
	}
}

func TestGetUnknown(t *testing.T) {
	s := openTestStore(t, testutil.NewFixedClock())

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStoreAsRecorder(t *testing.T) {
	clock := testutil.NewFixedClock()
	s := openTestStore(t, clock)
	var _ convert.Recorder = s

	dir := t.TempDir()
	in := testutil.WriteDocument(t, dir, "single.ruki", testutil.SingleMoveJ(t, "UR10e"))
	cat := mustCatalog(t)
	eng := convert.New(cat, convert.Options{Recorder: s, Now: clock.Now})

	res := eng.Convert(context.Background(), convert.Request{
		Brand: "Universal Robots", Conversion: ".ruki → .script", InputPath: in, OutputDir: dir,
	})
	if !res.Success {
		t.Fatalf("Convert() failed: %s", res.Message)
	}

	entries, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Digest != res.Digest || entries[0].Model != "UR10e" {
		t.Errorf("entry = %+v", entries[0])
	}
}
