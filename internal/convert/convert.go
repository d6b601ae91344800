// Package convert is the conversion entry point. An Engine pairs an
// immutable catalog with a registry of converters and turns a Request
// into a Result; it never panics and never returns a bare error.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/emit"
	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/logging"
)

// Request selects a conversion and its input.
type Request struct {
	Brand      string `json:"brand"`
	Conversion string `json:"conversion"`
	InputPath  string `json:"input_path"`
	Model      string `json:"model,omitempty"`
	OutputDir  string `json:"output_dir"`
}

// Result reports the outcome of a conversion. Message is the user-facing
// text, with counts on success and a diagnostic on failure. Err carries
// the typed error of a failure.
type Result struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	OutputPath string       `json:"output_path,omitempty"`
	Model      string       `json:"model,omitempty"`
	Summary    emit.Summary `json:"summary"`
	Digest     string       `json:"digest,omitempty"`
	Err        error        `json:"-"`
}

// Recorder receives every finished conversion.
type Recorder interface {
	Record(ctx context.Context, req Request, res Result, started time.Time) error
}

// Options configure an Engine.
type Options struct {
	Archive  emit.ArchiveOptions
	Logger   *slog.Logger
	Recorder Recorder
	Now      func() time.Time
}

// Engine runs conversions against one catalog. It holds no per-call state
// and may be used concurrently.
type Engine struct {
	cat        *catalog.Catalog
	opts       Options
	converters map[catalog.ConverterID]converter
}

// New creates an Engine.
func New(cat *catalog.Catalog, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{cat: cat, opts: opts, converters: registry()}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Convert runs one conversion. Output is written to req.OutputDir, which
// is created when missing. On failure no file is left behind unless the
// write itself failed part way.
func (e *Engine) Convert(ctx context.Context, req Request) (res Result) {
	started := e.opts.Now()
	log := e.opts.Logger.With(
		"brand", req.Brand,
		"conversion", req.Conversion,
		"input", req.InputPath,
	)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrInternal, r)
			res = Result{Message: message(req.Brand, req.Conversion, err), Err: err}
		}
		if res.Success {
			log.Info("conversion finished",
				"output", res.OutputPath,
				"moves", res.Summary.Moves,
				"ios", res.Summary.IOs,
				"skipped", res.Summary.Skipped)
		} else {
			log.Warn("conversion failed", "error", res.Err)
		}
		if e.opts.Recorder != nil {
			if err := e.opts.Recorder.Record(ctx, req, res, started); err != nil {
				log.Error("recording conversion", "error", err)
			}
		}
	}()

	art, model, err := e.run(ctx, req)
	if err != nil {
		return Result{Message: message(req.Brand, req.Conversion, err), Summary: art.summary, Model: model, Err: err}
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		err = fmt.Errorf("create output directory: %w", err)
		return Result{Message: message(req.Brand, req.Conversion, err), Model: model, Err: err}
	}
	path := filepath.Join(req.OutputDir, art.name)
	if err := os.WriteFile(path, art.data, 0o644); err != nil {
		err = fmt.Errorf("write output: %w", err)
		return Result{Message: message(req.Brand, req.Conversion, err), Model: model, Err: err}
	}

	return Result{
		Success:    true,
		Message:    art.message + "\n\nArquivo: " + path,
		OutputPath: path,
		Model:      model,
		Summary:    art.summary,
		Digest:     ir.OutputDigest(art.data),
	}
}

func (e *Engine) run(ctx context.Context, req Request) (artifact, string, error) {
	if err := ctx.Err(); err != nil {
		return artifact{}, "", err
	}
	if _, ok := e.cat.Brand(req.Brand); !ok {
		return artifact{}, "", fmt.Errorf("%w: %q", ErrUnknownBrand, req.Brand)
	}
	conv, ok := e.cat.Conversion(req.Brand, req.Conversion)
	if !ok {
		return artifact{}, "", fmt.Errorf("%w: %q", ErrUnknownConversion, req.Conversion)
	}
	fn, ok := e.converters[conv.Converter]
	if !ok {
		return artifact{}, "", fmt.Errorf("%w: converter %q is not registered", ErrUnknownConversion, conv.Converter)
	}

	var model *catalog.Model
	if m, ok := e.cat.Resolve(req.Brand, req.Model); ok {
		model = &m
	} else if conv.RequiresModel {
		return artifact{}, "", fmt.Errorf("%w: %s %q", ErrCatalogMiss, req.Brand, req.Model)
	}

	art, err := fn(job{path: req.InputPath, model: model, archive: e.opts.Archive})
	key := ""
	if model != nil {
		key = model.Key
	}
	return art, key, err
}
