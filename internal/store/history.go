package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Borbofruto/Ruki/internal/convert"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("conversion not found")

const timeLayout = time.RFC3339Nano

// Entry is one recorded conversion.
type Entry struct {
	ID         string `db:"id" json:"id"`
	StartedAt  string `db:"started_at" json:"started_at"`
	DurationMS int64  `db:"duration_ms" json:"duration_ms"`
	Brand      string `db:"brand" json:"brand"`
	Conversion string `db:"conversion" json:"conversion"`
	InputPath  string `db:"input_path" json:"input_path"`
	Model      string `db:"model" json:"model"`
	OutputDir  string `db:"output_dir" json:"output_dir"`
	OutputPath string `db:"output_path" json:"output_path"`
	Success    bool   `db:"success" json:"success"`
	Message    string `db:"message" json:"message"`
	Moves      int    `db:"moves" json:"moves"`
	IOs        int    `db:"ios" json:"ios"`
	Skipped    int    `db:"skipped" json:"skipped"`
	Digest     string `db:"digest" json:"digest"`
	Error      string `db:"error" json:"error,omitempty"`
}

// Record stores one conversion. It implements convert.Recorder.
func (s *Store) Record(ctx context.Context, req convert.Request, res convert.Result, started time.Time) error {
	e := Entry{
		ID:         s.newID(),
		StartedAt:  started.UTC().Format(timeLayout),
		DurationMS: s.now().Sub(started).Milliseconds(),
		Brand:      req.Brand,
		Conversion: req.Conversion,
		InputPath:  req.InputPath,
		Model:      res.Model,
		OutputDir:  req.OutputDir,
		OutputPath: res.OutputPath,
		Success:    res.Success,
		Message:    res.Message,
		Moves:      res.Summary.Moves,
		IOs:        res.Summary.IOs,
		Skipped:    res.Summary.Skipped,
		Digest:     res.Digest,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO conversions
		(id, started_at, duration_ms, brand, conversion, input_path, model, output_dir,
		 output_path, success, message, moves, ios, skipped, digest, error)
		VALUES
		(:id, :started_at, :duration_ms, :brand, :conversion, :input_path, :model, :output_dir,
		 :output_path, :success, :message, :moves, :ios, :skipped, :digest, :error)
	`, e)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

// List returns the most recent conversions, newest first. A limit of
// zero or less returns every row.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT * FROM conversions ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	entries := []Entry{}
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	return entries, nil
}

// Get returns one conversion by id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := s.db.GetContext(ctx, &e, `SELECT * FROM conversions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversion: %w", err)
	}
	return &e, nil
}
