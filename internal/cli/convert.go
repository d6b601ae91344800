package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/catalog"
	"github.com/Borbofruto/Ruki/internal/convert"
	"github.com/Borbofruto/Ruki/internal/detect"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Brand      string
	Conversion string
	Model      string
	OutputDir  string
}

// ConvertOutput is the payload of a successful conversion.
type ConvertOutput struct {
	convert.Result
	Brand      string `json:"brand"`
	Conversion string `json:"conversion"`
}

// Text renders the user-facing message.
func (o ConvertOutput) Text() string { return o.Message }

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert a program file",
		Long: `Convert a robot program using one entry of a brand's conversion table.

When --conversion is omitted, the first conversion accepting the input's
extension is used. When --model is omitted, the model is detected from the
input and otherwise falls back to the brand's default model.

Exit codes:
  0 - Conversion succeeded
  1 - Conversion failed (message explains why)
  2 - Command error (unreadable catalog, no matching conversion, etc.)

Examples:
  ruki convert pick.ruki
  ruki convert pick.ruki --conversion ".ruki → .urp" --model UR16e --out build/
  ruki convert cell.script --conversion ".script → .py" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Brand, "brand", "b", "", "robot brand (default: first catalog brand)")
	cmd.Flags().StringVarP(&opts.Conversion, "conversion", "c", "", "conversion name from the brand's table")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "robot model key or alias")
	cmd.Flags().StringVarP(&opts.OutputDir, "out", "o", "", "output directory (default: input directory)")

	return cmd
}

func runConvert(opts *ConvertOptions, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	engine, closeEngine, err := opts.newEngine()
	if err != nil {
		return loadErrorExit(formatter, "failed to prepare conversion", err)
	}
	defer closeEngine()
	cat := engine.Catalog()

	brand, err := resolveBrand(cat, opts.Brand)
	if err != nil {
		return loadErrorExit(formatter, "failed to resolve brand", err)
	}

	conversion := opts.Conversion
	if conversion == "" {
		conversion, err = conversionFor(cat, brand, input)
		if err != nil {
			return loadErrorExit(formatter, "failed to select conversion", err)
		}
		formatter.VerboseLog("Using conversion %q", conversion)
	}

	model := opts.Model
	if model == "" {
		model = detect.FromFile(input, cat, brand)
		if model != "" {
			formatter.VerboseLog("Detected model %s", model)
		}
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(input)
	}

	res := engine.Convert(cmd.Context(), convert.Request{
		Brand:      brand,
		Conversion: conversion,
		InputPath:  input,
		Model:      model,
		OutputDir:  outDir,
	})
	if !res.Success {
		_ = formatter.Error(resultCode(res.Err), res.Message, errDetails(res.Err))
		return WrapExitError(ExitFailure, "conversion failed", res.Err)
	}
	return formatter.Success(ConvertOutput{Result: res, Brand: brand, Conversion: conversion})
}

func errDetails(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

// resolveBrand returns name when the catalog has it, or the first brand
// when name is empty.
func resolveBrand(cat *catalog.Catalog, name string) (string, error) {
	brands := cat.Brands()
	if name == "" {
		if len(brands) == 0 {
			return "", &LoadError{Code: ErrCodeUnknownBrand, Message: "catalog has no brands"}
		}
		return brands[0], nil
	}
	if !slices.Contains(brands, name) {
		return "", &LoadError{Code: ErrCodeUnknownBrand, Message: fmt.Sprintf("unknown brand %q (available: %s)", name, strings.Join(brands, ", "))}
	}
	return name, nil
}

// conversionFor picks the brand's first conversion that accepts the
// input's extension.
func conversionFor(cat *catalog.Catalog, brand, input string) (string, error) {
	ext := strings.ToLower(filepath.Ext(input))
	for _, c := range cat.Conversions(brand) {
		if slices.Contains(c.Inputs, ext) {
			return c.Name, nil
		}
	}
	return "", &LoadError{Code: ErrCodeConversion, Message: fmt.Sprintf("no conversion of %s accepts %q files", brand, ext)}
}
