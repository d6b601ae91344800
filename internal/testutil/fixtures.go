// Package testutil holds helpers shared by package tests: a manual clock
// and builders for small IR documents and script files on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Borbofruto/Ruki/internal/builder"
	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/pose"
)

// NewBuilder returns a builder stamped by clock.
func NewBuilder(clock *FixedClock, robot string) *builder.Builder {
	return builder.New(builder.Options{
		PostProcessor: "Ruki_E",
		RobotName:     robot,
		NativeName:    robot,
		Now:           clock.Now,
	})
}

// SingleMoveJ is a program with one joint move to
// [0, -90, 0, -90, 0, 0] and nothing else.
func SingleMoveJ(t testing.TB, robot string) *ir.Document {
	t.Helper()
	b := NewBuilder(NewFixedClock(), robot)
	b.StartProgram("single")
	if _, err := b.MoveJ(builder.TargetInput{Joints: []float64{0, -90, 0, -90, 0, 0}, Name: "Home"}); err != nil {
		t.Fatalf("MoveJ: %v", err)
	}
	b.FinishProgram("single")
	return b.Document()
}

// PickAndPlace is a program mixing joint and linear moves, IO writes and
// comments. The last linear target carries no joints.
func PickAndPlace(t testing.TB, robot string) *ir.Document {
	t.Helper()
	b := NewBuilder(NewFixedClock(), robot)
	b.StartProgram("pick_place")
	b.SetSpeed(250)

	must := func(_ string, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("add move: %v", err)
		}
	}
	must(b.MoveJ(builder.TargetInput{Joints: []float64{0, -90, 90, -90, -90, 0}, Name: "Home"}))
	b.Message("approach", true)

	approach := pose.XYZRPWToMatrix(pose.XYZRPW{450, -120, 310, 0, 0, 90})
	must(b.MoveL(builder.TargetInput{Pose: &approach, Joints: []float64{12.5, -75.25, 100, -115.5, -90, 30}, Name: "Approach"}))
	b.SetDO(ir.IntIndex(1), true)

	place := pose.XYZRPWToMatrix(pose.XYZRPW{500, 0, 250, 0, 0, 0})
	must(b.MoveL(builder.TargetInput{Pose: &place, Name: "Place"}))
	b.SetDO(ir.IntIndex(1), false)
	b.FinishProgram("pick_place")
	return b.Document()
}

// Empty is a started and finished program without steps.
func Empty(t testing.TB, robot string) *ir.Document {
	t.Helper()
	b := NewBuilder(NewFixedClock(), robot)
	b.StartProgram("empty")
	b.FinishProgram("empty")
	return b.Document()
}

// WriteDocument writes doc as dir/name and returns the path.
func WriteDocument(t testing.TB, dir, name string, doc *ir.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := ir.Write(f, doc, true); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteFile writes text as dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
