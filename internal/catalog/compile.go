package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

//go:embed universal_robots.cue
var defaultSource []byte

// Default returns the embedded catalog. It is compiled once per process.
var Default = sync.OnceValues(func() (*Catalog, error) {
	return Load("universal_robots.cue", defaultSource)
})

// LoadFile compiles a catalog from a CUE file on disk.
func LoadFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(path, src)
}

// Load compiles CUE source into a Catalog. The source is unified with the
// catalog schema before any value is read, so type errors carry the
// position of the offending field.
func Load(filename string, src []byte) (*Catalog, error) {
	brands, err := compile(filename, src)
	if err != nil {
		return nil, err
	}
	return New(brands...)
}

// CheckFile compiles a catalog file and returns every validation error
// instead of stopping at the first. The error result is reserved for
// files that cannot be read or do not compile.
func CheckFile(path string) ([]ValidationError, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	brands, err := compile(path, src)
	if err != nil {
		return nil, err
	}
	return Validate(brands), nil
}

func compile(filename string, src []byte) ([]Brand, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	return compileBrands(unified.LookupPath(cue.ParsePath("brands")))
}

func compileBrands(v cue.Value) ([]Brand, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: "brands", Message: "brands is required", Pos: v.Pos()}
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var brands []Brand
	for iter.Next() {
		b, err := compileBrand(iter.Value())
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, nil
}

// compileBrand reads one brand struct. Optional fields that are absent
// keep their zero value.
func compileBrand(v cue.Value) (Brand, error) {
	var b Brand
	var err error

	if b.Name, err = stringField(v, "name"); err != nil {
		return b, err
	}
	if b.DefaultModel, err = stringField(v, "default_model"); err != nil {
		return b, err
	}
	if dv := v.LookupPath(cue.ParsePath("detector")); dv.Exists() {
		s, err := dv.String()
		if err != nil {
			return b, formatCUEError(err)
		}
		b.Detector = DetectorKind(s)
	}
	if b.ModelOrder, err = stringList(v.LookupPath(cue.ParsePath("model_order"))); err != nil {
		return b, err
	}

	models, err := v.LookupPath(cue.ParsePath("models")).List()
	if err != nil {
		return b, formatCUEError(err)
	}
	for models.Next() {
		m, err := compileModel(models.Value())
		if err != nil {
			return b, err
		}
		b.Models = append(b.Models, m)
	}

	convs, err := v.LookupPath(cue.ParsePath("conversions")).List()
	if err != nil {
		return b, formatCUEError(err)
	}
	for convs.Next() {
		c, err := compileConversion(convs.Value())
		if err != nil {
			return b, err
		}
		b.Conversions = append(b.Conversions, c)
	}

	return b, nil
}

func compileModel(v cue.Value) (Model, error) {
	var m Model
	var err error

	if m.Key, err = stringField(v, "key"); err != nil {
		return m, err
	}
	if m.FullName, err = stringField(v, "full_name"); err != nil {
		return m, err
	}
	if m.Aliases, err = stringList(v.LookupPath(cue.ParsePath("aliases"))); err != nil {
		return m, err
	}
	if m.OfflineName, err = optionalString(v, "offline_name"); err != nil {
		return m, err
	}
	if m.OfflineFrame, err = optionalString(v, "offline_frame"); err != nil {
		return m, err
	}

	av := v.LookupPath(cue.ParsePath("archive"))
	if !av.Exists() {
		return m, &CompileError{Field: "archive", Message: fmt.Sprintf("model %q has no archive parameters", m.Key), Pos: v.Pos()}
	}
	if err := av.Decode(&m.Archive); err != nil {
		return m, formatCUEError(err)
	}
	return m, nil
}

func compileConversion(v cue.Value) (Conversion, error) {
	var c Conversion
	var err error

	if c.Name, err = stringField(v, "name"); err != nil {
		return c, err
	}
	conv, err := stringField(v, "converter")
	if err != nil {
		return c, err
	}
	c.Converter = ConverterID(conv)
	if c.Inputs, err = stringList(v.LookupPath(cue.ParsePath("inputs"))); err != nil {
		return c, err
	}
	if c.Description, err = optionalString(v, "description"); err != nil {
		return c, err
	}
	c.RequiresModel = true
	if rv := v.LookupPath(cue.ParsePath("requires_model")); rv.Exists() {
		if c.RequiresModel, err = rv.Bool(); err != nil {
			return c, formatCUEError(err)
		}
	}
	return c, nil
}

func stringField(v cue.Value, name string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", &CompileError{Field: name, Message: name + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, name string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func stringList(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a catalog compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
