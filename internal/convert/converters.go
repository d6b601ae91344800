package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/emit"
	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/script"
)

// job is the input of one converter call.
type job struct {
	path    string
	model   *catalog.Model
	archive emit.ArchiveOptions
}

// artifact is a converter's output before it is written. message holds
// the counts; the output path is appended by the engine.
type artifact struct {
	name    string
	data    []byte
	summary emit.Summary
	message string
}

type converter func(job) (artifact, error)

func registry() map[catalog.ConverterID]converter {
	return map[catalog.ConverterID]converter{
		catalog.IRToScript:      irToScript,
		catalog.IRToArchive:     irToArchive,
		catalog.ScriptToArchive: scriptToArchive,
		catalog.ScriptToOffline: scriptToOffline,
	}
}

func counts(s emit.Summary) string {
	return fmt.Sprintf("Movimentos: %d\nIOs: %d", s.Moves, s.IOs)
}

func readDocument(path string) (*ir.Document, error) {
	doc, err := ir.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return doc, nil
}

func readCommands(path string) ([]script.Command, error) {
	lines, err := script.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return script.Parse(lines), nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func irToScript(j job) (artifact, error) {
	doc, err := readDocument(j.path)
	if err != nil {
		return artifact{}, err
	}
	data, sum := emit.URScript(doc)
	return artifact{
		name:    emit.ProgramName(doc) + ".script",
		data:    data,
		summary: sum,
		message: counts(sum),
	}, nil
}

func irToArchive(j job) (artifact, error) {
	if j.model == nil {
		return artifact{}, ErrCatalogMiss
	}
	doc, err := readDocument(j.path)
	if err != nil {
		return artifact{}, err
	}
	data, sum, err := emit.ArchiveFromDocument(doc, *j.model, j.archive)
	if err != nil {
		return artifact{summary: sum}, err
	}
	msg := "Modelo: " + j.model.FullName + "\n" + counts(sum)
	if sum.Skipped > 0 {
		msg += fmt.Sprintf("\n\n⚠ %d movimentos ignorados (sem joints)", sum.Skipped)
	}
	return artifact{
		name:    emit.ProgramName(doc) + ".urp",
		data:    data,
		summary: sum,
		message: msg,
	}, nil
}

func scriptToArchive(j job) (artifact, error) {
	if j.model == nil {
		return artifact{}, ErrCatalogMiss
	}
	cmds, err := readCommands(j.path)
	if err != nil {
		return artifact{}, err
	}
	name := baseName(j.path)
	data, sum, err := emit.ArchiveFromCommands(name, cmds, *j.model, j.archive)
	if err != nil {
		return artifact{summary: sum}, err
	}
	msg := counts(sum)
	if sum.Skipped > 0 {
		msg += fmt.Sprintf("\n\n⚠ %d MoveL ignorados (sem #JOINTS)\nUse .script do RoboDK com output joints+cartesian", sum.Skipped)
	}
	return artifact{name: name + ".urp", data: data, summary: sum, message: msg}, nil
}

func scriptToOffline(j job) (artifact, error) {
	cmds, err := readCommands(j.path)
	if err != nil {
		return artifact{}, err
	}
	if len(cmds) == 0 {
		return artifact{}, ErrNoCommands
	}
	data, sum := emit.Offline(filepath.Base(j.path), cmds, j.model)
	return artifact{
		name:    emit.OfflineFileName(baseName(j.path)),
		data:    data,
		summary: sum,
		message: counts(sum),
	}, nil
}
