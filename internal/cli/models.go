package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/catalog"
)

// ModelsOutput lists a brand's models. Entries keeps the declared order
// with separators; Selectable holds only model keys.
type ModelsOutput struct {
	Brand        string   `json:"brand"`
	DefaultModel string   `json:"default_model"`
	Entries      []string `json:"entries"`
	Selectable   []string `json:"selectable"`
}

// Text renders one entry per line, indenting models under separators.
func (o ModelsOutput) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (default %s)", o.Brand, o.DefaultModel)
	for _, e := range o.Entries {
		if catalog.IsSeparator(e) {
			fmt.Fprintf(&sb, "\n%s", e)
			continue
		}
		fmt.Fprintf(&sb, "\n  %s", e)
	}
	return sb.String()
}

// NewModelsCommand creates the models command.
func NewModelsCommand(rootOpts *RootOptions) *cobra.Command {
	var brand string

	cmd := &cobra.Command{
		Use:           "models",
		Short:         "List the models of a brand",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			cat, err := rootOpts.loadCatalog()
			if err != nil {
				return loadErrorExit(formatter, "failed to load catalog", err)
			}
			b, err := resolveBrand(cat, brand)
			if err != nil {
				return loadErrorExit(formatter, "failed to resolve brand", err)
			}
			info, _ := cat.Brand(b)
			return formatter.Success(ModelsOutput{
				Brand:        b,
				DefaultModel: info.DefaultModel,
				Entries:      cat.ListModels(b),
				Selectable:   cat.ModelKeys(b),
			})
		},
	}

	cmd.Flags().StringVarP(&brand, "brand", "b", "", "robot brand (default: first catalog brand)")

	return cmd
}

// ConversionsOutput lists a brand's conversion table.
type ConversionsOutput struct {
	Brand       string               `json:"brand"`
	Conversions []catalog.Conversion `json:"conversions"`
}

// Text renders one conversion per line.
func (o ConversionsOutput) Text() string {
	var sb strings.Builder
	sb.WriteString(o.Brand)
	for _, c := range o.Conversions {
		fmt.Fprintf(&sb, "\n  %-18s %s", c.Name, c.Description)
		if c.RequiresModel {
			sb.WriteString(" [model]")
		}
	}
	return sb.String()
}

// NewConversionsCommand creates the conversions command.
func NewConversionsCommand(rootOpts *RootOptions) *cobra.Command {
	var brand string

	cmd := &cobra.Command{
		Use:           "conversions",
		Short:         "List the conversions offered for a brand",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			cat, err := rootOpts.loadCatalog()
			if err != nil {
				return loadErrorExit(formatter, "failed to load catalog", err)
			}
			b, err := resolveBrand(cat, brand)
			if err != nil {
				return loadErrorExit(formatter, "failed to resolve brand", err)
			}
			return formatter.Success(ConversionsOutput{Brand: b, Conversions: cat.Conversions(b)})
		},
	}

	cmd.Flags().StringVarP(&brand, "brand", "b", "", "robot brand (default: first catalog brand)")

	return cmd
}
