package cli

import (
	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/detect"
)

// DetectOutput reports the model found in a file.
type DetectOutput struct {
	Input string `json:"input"`
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// Text renders the model, or a placeholder when none matched.
func (o DetectOutput) Text() string {
	if o.Model == "" {
		return "no model detected"
	}
	return o.Model
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(rootOpts *RootOptions) *cobra.Command {
	var brand string

	cmd := &cobra.Command{
		Use:   "detect <input>",
		Short: "Detect the robot model of a program file",
		Long: `Detect the robot model a .ruki or script file was written for.

IR files are matched on robot.name; script files on the model keys found
in their first lines. Detection never fails: when nothing matches the
model is empty and the command still exits 0.`,
		Args:          cobra.ExactArgs(1),
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
			return formatter.Success(DetectOutput{
				Input: args[0],
				Brand: b,
				Model: detect.FromFile(args[0], cat, b),
			})
		},
	}

	cmd.Flags().StringVarP(&brand, "brand", "b", "", "robot brand (default: first catalog brand)")

	return cmd
}
