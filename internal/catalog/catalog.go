// Package catalog holds the robot parameter catalog: brands, their models,
// the per-model data the emitters need, and each brand's conversion table.
//
// A Catalog is built once (from CUE with Load, or from Go values with New)
// and never modified afterwards, so it may be shared by concurrent
// conversions. Accessors return copies.
package catalog

import (
	"strings"
)

// SeparatorPrefix marks non-selectable entries of a brand's model order.
const SeparatorPrefix = "──"

// ConverterID names one of the built-in converters.
type ConverterID string

// Built-in converters.
const (
	IRToScript      ConverterID = "ir_to_script"
	IRToArchive     ConverterID = "ir_to_archive"
	ScriptToArchive ConverterID = "script_to_archive"
	ScriptToOffline ConverterID = "script_to_offline"
)

// ValidConverters lists the converter ids a conversion table may use.
var ValidConverters = map[ConverterID]bool{
	IRToScript:      true,
	IRToArchive:     true,
	ScriptToArchive: true,
	ScriptToOffline: true,
}

// DetectorKind selects how model keys are searched for in script text.
type DetectorKind string

const (
	// DetectSubstring matches a model key anywhere in the text.
	DetectSubstring DetectorKind = "substring"

	// DetectWord matches a model key only as a whole word.
	DetectWord DetectorKind = "word"
)

// Conversion is one entry of a brand's conversion table.
type Conversion struct {
	Name          string      `json:"name"`
	Converter     ConverterID `json:"converter"`
	Inputs        []string    `json:"inputs"`
	Description   string      `json:"description"`
	RequiresModel bool        `json:"requires_model"`
}

// ArchiveParams are the kinematics values copied verbatim into program
// archives. Each is a comma-separated list of six numbers.
type ArchiveParams struct {
	DeltaTheta    string `json:"deltaTheta"`
	A             string `json:"a"`
	D             string `json:"d"`
	Alpha         string `json:"alpha"`
	JointChecksum string `json:"jointChecksum"`
}

// Fields returns the parameters as (element name, value) pairs in archive
// order.
func (p ArchiveParams) Fields() [][2]string {
	return [][2]string{
		{"deltaTheta", p.DeltaTheta},
		{"a", p.A},
		{"d", p.D},
		{"alpha", p.Alpha},
		{"jointChecksum", p.JointChecksum},
	}
}

// Model is one robot model of a brand.
type Model struct {
	Key          string        `json:"key"`
	FullName     string        `json:"full_name"`
	Aliases      []string      `json:"aliases,omitempty"`
	OfflineName  string        `json:"offline_name"`
	OfflineFrame string        `json:"offline_frame"`
	Archive      ArchiveParams `json:"archive"`
}

// Brand groups the models and conversions of one manufacturer.
type Brand struct {
	Name         string       `json:"name"`
	DefaultModel string       `json:"default_model"`
	Detector     DetectorKind `json:"detector,omitempty"`
	ModelOrder   []string     `json:"model_order"`
	Models       []Model      `json:"models"`
	Conversions  []Conversion `json:"conversions"`
}

// Catalog is an immutable set of brands.
type Catalog struct {
	brands []Brand
	byName map[string]int
}

// New validates brands and builds a Catalog from them. Empty offline
// names default to the model key and empty offline frames to
// "<offline name> Base".
func New(brands ...Brand) (*Catalog, error) {
	if errs := Validate(brands); len(errs) > 0 {
		return nil, errs[0]
	}

	c := &Catalog{byName: make(map[string]int, len(brands))}
	for _, b := range brands {
		b = cloneBrand(b)
		for i := range b.Models {
			m := &b.Models[i]
			if m.OfflineName == "" {
				m.OfflineName = m.Key
			}
			if m.OfflineFrame == "" {
				m.OfflineFrame = m.OfflineName + " Base"
			}
		}
		c.byName[b.Name] = len(c.brands)
		c.brands = append(c.brands, b)
	}
	return c, nil
}

// Brands returns brand names in declaration order.
func (c *Catalog) Brands() []string {
	names := make([]string, len(c.brands))
	for i, b := range c.brands {
		names[i] = b.Name
	}
	return names
}

// Brand returns a copy of the named brand.
func (c *Catalog) Brand(name string) (Brand, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Brand{}, false
	}
	return cloneBrand(c.brands[i]), true
}

func (c *Catalog) brand(name string) *Brand {
	i, ok := c.byName[name]
	if !ok {
		return nil
	}
	return &c.brands[i]
}

// Resolve returns the parameters for (brand, model). The model is looked
// up by key, then by alias (case-insensitive), and finally the brand's
// default model is used. It reports false when the brand is unknown or the
// fallback also fails.
func (c *Catalog) Resolve(brand, model string) (Model, bool) {
	b := c.brand(brand)
	if b == nil {
		return Model{}, false
	}
	if m, ok := findModel(b, model); ok {
		return m, true
	}
	for _, m := range b.Models {
		for _, alias := range m.Aliases {
			if model != "" && strings.EqualFold(alias, model) {
				return cloneModel(m), true
			}
		}
	}
	return findModel(b, b.DefaultModel)
}

func findModel(b *Brand, key string) (Model, bool) {
	for _, m := range b.Models {
		if m.Key == key {
			return cloneModel(m), true
		}
	}
	return Model{}, false
}

// ListModels returns the brand's model order as declared, separators
// included. Callers offering a choice must filter with IsSeparator. When
// the brand declares no order, model keys are returned.
func (c *Catalog) ListModels(brand string) []string {
	b := c.brand(brand)
	if b == nil {
		return nil
	}
	if len(b.ModelOrder) > 0 {
		return append([]string{}, b.ModelOrder...)
	}
	return c.ModelKeys(brand)
}

// ModelKeys returns the brand's model keys in declaration order.
func (c *Catalog) ModelKeys(brand string) []string {
	b := c.brand(brand)
	if b == nil {
		return nil
	}
	keys := make([]string, len(b.Models))
	for i, m := range b.Models {
		keys[i] = m.Key
	}
	return keys
}

// Detector returns the brand's text detector kind.
func (c *Catalog) Detector(brand string) DetectorKind {
	b := c.brand(brand)
	if b == nil || b.Detector == "" {
		return DetectSubstring
	}
	return b.Detector
}

// Conversions returns the brand's conversion table.
func (c *Catalog) Conversions(brand string) []Conversion {
	b := c.brand(brand)
	if b == nil {
		return nil
	}
	out := make([]Conversion, len(b.Conversions))
	for i, conv := range b.Conversions {
		out[i] = conv
		out[i].Inputs = append([]string{}, conv.Inputs...)
	}
	return out
}

// Conversion looks up one entry of the brand's conversion table by name.
func (c *Catalog) Conversion(brand, name string) (Conversion, bool) {
	for _, conv := range c.Conversions(brand) {
		if conv.Name == name {
			return conv, true
		}
	}
	return Conversion{}, false
}

// IsSeparator reports whether a model order entry is a separator marker.
func IsSeparator(name string) bool {
	return strings.HasPrefix(name, SeparatorPrefix)
}

func cloneModel(m Model) Model {
	m.Aliases = append([]string(nil), m.Aliases...)
	return m
}

func cloneBrand(b Brand) Brand {
	b.ModelOrder = append([]string(nil), b.ModelOrder...)
	models := make([]Model, len(b.Models))
	for i, m := range b.Models {
		models[i] = cloneModel(m)
	}
	b.Models = models
	convs := make([]Conversion, len(b.Conversions))
	for i, conv := range b.Conversions {
		conv.Inputs = append([]string(nil), conv.Inputs...)
		convs[i] = conv
	}
	b.Conversions = convs
	return b
}
