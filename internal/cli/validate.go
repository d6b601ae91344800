package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/catalog"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                      `json:"valid"`
	Brands []string                  `json:"brands,omitempty"`
	Errors []catalog.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog.cue>",
		Short: "Validate a robot catalog without converting anything",
		Long: `Validate a CUE robot catalog.

Checks the file against the catalog schema, then runs the structural
checks (unknown default model, duplicate keys, unknown converters, ...)
and reports every problem found rather than only the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("catalog not found: %s", path), nil)
	}

	formatter.VerboseLog("Validating %s", path)
	errs, err := catalog.CheckFile(path)
	if err != nil {
		le := convertCatalogError(err)
		var details any
		if le.Pos.IsValid() {
			details = map[string]any{"file": le.Pos.Filename(), "line": le.Pos.Line(), "column": le.Pos.Column()}
		}
		return outputValidateError(formatter, le.Code, le.Message, details)
	}
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		return outputValidateError(formatter, ErrCodeCatalog, err.Error(), nil)
	}
	return outputValidateSuccess(formatter, cat.Brands())
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, brands []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Brands: brands})
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid (%d brand(s))\n", len(brands))
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Unreadable catalogs are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []catalog.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
