package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/convert"
	"github.com/Borbofruto/Ruki/internal/emit"
	"github.com/Borbofruto/Ruki/internal/store"
)

// LoadError represents an error that occurred while preparing a command.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// loadCatalog returns the configured catalog, or the built-in one.
func (o *RootOptions) loadCatalog() (*catalog.Catalog, error) {
	path := o.settings().CatalogPath
	if path == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, convertCatalogError(err)
		}
		return cat, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog not found: %s", path)}
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, convertCatalogError(err)
	}
	o.logger().Debug("catalog loaded", "path", path, "brands", len(cat.Brands()))
	return cat, nil
}

// convertCatalogError converts a catalog error to a LoadError with position info.
func convertCatalogError(err error) *LoadError {
	var compileErr *catalog.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{Code: ErrCodeCatalog, Message: compileErr.Message, Pos: compileErr.Pos}
	}
	var ve catalog.ValidationError
	if errors.As(err, &ve) {
		return &LoadError{Code: ve.Code, Message: fmt.Sprintf("%s: %s", ve.Field, ve.Message)}
	}
	return &LoadError{Code: ErrCodeCatalog, Message: err.Error()}
}

// openHistory opens the history store, or returns nil when none is
// configured.
func (o *RootOptions) openHistory() (*store.Store, error) {
	path := o.settings().HistoryDB
	if path == "" {
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeHistory, Message: err.Error()}
	}
	return st, nil
}

// newEngine builds a conversion engine from the configuration. The
// returned close func releases the history store, if any.
func (o *RootOptions) newEngine() (*convert.Engine, func(), error) {
	cat, err := o.loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	st, err := o.openHistory()
	if err != nil {
		return nil, nil, err
	}

	engOpts := convert.Options{
		Archive: emit.ArchiveOptions{Version: o.settings().ArchiveVersion},
		Logger:  o.logger(),
	}
	closeFn := func() {}
	if st != nil {
		engOpts.Recorder = st
		closeFn = func() {
			if err := st.Close(); err != nil {
				o.logger().Error("error closing history", "error", err)
			}
		}
	}
	return convert.New(cat, engOpts), closeFn, nil
}

// loadErrorExit reports err through f and wraps it as a command error.
func loadErrorExit(f *OutputFormatter, message string, err error) error {
	code := ErrCodeGeneric
	var le *LoadError
	if errors.As(err, &le) {
		code = le.Code
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, message, err)
}

// resultCode maps a failed conversion to an error code.
func resultCode(err error) string {
	switch {
	case errors.Is(err, convert.ErrUnknownBrand):
		return ErrCodeUnknownBrand
	case errors.Is(err, convert.ErrUnknownConversion):
		return ErrCodeConversion
	case errors.Is(err, convert.ErrCatalogMiss):
		return ErrCodeCatalogMiss
	case errors.Is(err, convert.ErrMalformedInput):
		return ErrCodeMalformed
	case errors.Is(err, convert.ErrNoCommands):
		return ErrCodeNoCommands
	case errors.Is(err, convert.ErrInternal):
		return ErrCodeInternal
	default:
		return ErrCodeGeneric
	}
}
