package catalog

import (
	"fmt"
)

// Catalog validation error codes (E200-E219)
const (
	// Brand errors (E200-E204)
	ErrBrandNameEmpty  = "E200" // brand name is required
	ErrDuplicateBrand  = "E201" // brand declared twice
	ErrBrandNoModels   = "E202" // at least one model required
	ErrUnknownDefault  = "E203" // default_model is not a model key
	ErrUnknownDetector = "E204" // detector is not word or substring

	// Model errors (E210-E214)
	ErrModelKeyEmpty     = "E210" // model key is required
	ErrDuplicateModel    = "E211" // model key declared twice
	ErrUnknownOrderEntry = "E212" // model_order names an unknown model

	// Conversion errors (E215-E219)
	ErrUnknownConverter    = "E215" // converter id is not built in
	ErrDuplicateConversion = "E216" // conversion name declared twice
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks brands for structural problems.
// Returns all errors found (does not fail-fast).
func Validate(brands []Brand) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(brands))

	for i, b := range brands {
		field := fmt.Sprintf("brands[%d]", i)
		if b.Name == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "brand name is required", Code: ErrBrandNameEmpty})
		} else {
			field = fmt.Sprintf("brands[%q]", b.Name)
		}
		if seen[b.Name] {
			errs = append(errs, ValidationError{Field: field, Message: "brand declared more than once", Code: ErrDuplicateBrand})
		}
		seen[b.Name] = true

		errs = append(errs, validateBrand(field, b)...)
	}
	return errs
}

func validateBrand(field string, b Brand) []ValidationError {
	var errs []ValidationError

	if len(b.Models) == 0 {
		errs = append(errs, ValidationError{Field: field + ".models", Message: "at least one model is required", Code: ErrBrandNoModels})
	}
	switch b.Detector {
	case "", DetectWord, DetectSubstring:
	default:
		errs = append(errs, ValidationError{
			Field:   field + ".detector",
			Message: fmt.Sprintf("unknown detector %q", b.Detector),
			Code:    ErrUnknownDetector,
		})
	}

	keys := make(map[string]bool, len(b.Models))
	for i, m := range b.Models {
		if m.Key == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s.models[%d].key", field, i), Message: "model key is required", Code: ErrModelKeyEmpty})
			continue
		}
		if keys[m.Key] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s.models[%d]", field, i), Message: fmt.Sprintf("model %q declared more than once", m.Key), Code: ErrDuplicateModel})
		}
		keys[m.Key] = true
	}

	if len(b.Models) > 0 && !keys[b.DefaultModel] {
		errs = append(errs, ValidationError{
			Field:   field + ".default_model",
			Message: fmt.Sprintf("default model %q is not declared", b.DefaultModel),
			Code:    ErrUnknownDefault,
		})
	}

	for _, name := range b.ModelOrder {
		if IsSeparator(name) || keys[name] {
			continue
		}
		errs = append(errs, ValidationError{
			Field:   field + ".model_order",
			Message: fmt.Sprintf("model %q is not declared", name),
			Code:    ErrUnknownOrderEntry,
		})
	}

	names := make(map[string]bool, len(b.Conversions))
	for i, conv := range b.Conversions {
		if !ValidConverters[conv.Converter] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.conversions[%d].converter", field, i),
				Message: fmt.Sprintf("unknown converter %q", conv.Converter),
				Code:    ErrUnknownConverter,
			})
		}
		if names[conv.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.conversions[%d]", field, i),
				Message: fmt.Sprintf("conversion %q declared more than once", conv.Name),
				Code:    ErrDuplicateConversion,
			})
		}
		names[conv.Name] = true
	}

	return errs
}
