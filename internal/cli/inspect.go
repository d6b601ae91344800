package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/archive"
	"github.com/Borbofruto/Ruki/internal/ir"
)

// DocumentSummary describes a .ruki document.
type DocumentSummary struct {
	Program       string        `json:"program"`
	Robot         string        `json:"robot"`
	SchemaVersion string        `json:"schema_version"`
	Created       string        `json:"created"`
	Subprograms   []string      `json:"subprograms"`
	Statistics    ir.Statistics `json:"statistics"`
	Digest        string        `json:"digest"`
}

// InspectOutput holds either an archive or a document summary.
type InspectOutput struct {
	Input    string           `json:"input"`
	Archive  *archive.Info    `json:"archive,omitempty"`
	Document *DocumentSummary `json:"document,omitempty"`
}

// Text renders the summary.
func (o InspectOutput) Text() string {
	var sb strings.Builder
	if a := o.Archive; a != nil {
		fmt.Fprintf(&sb, "archive %s (created in %s)\n", a.Name, a.CreatedIn)
		fmt.Fprintf(&sb, "  waypoints: %d\n  outputs:   %d", len(a.Waypoints), len(a.Outputs))
		for _, w := range a.Waypoints {
			fmt.Fprintf(&sb, "\n  %-12s %-6s %v", w.Name, w.Motion, w.Angles)
		}
		return sb.String()
	}
	d := o.Document
	fmt.Fprintf(&sb, "program %s for %s (schema %s)\n", d.Program, d.Robot, d.SchemaVersion)
	fmt.Fprintf(&sb, "  steps:   %d (MoveJ %d, MoveL %d, MoveC %d, IO %d)\n",
		d.Statistics.TotalSteps, d.Statistics.MoveJCount, d.Statistics.MoveLCount,
		d.Statistics.MoveCCount, d.Statistics.IOOperations)
	fmt.Fprintf(&sb, "  targets: %d\n  digest:  %s", d.Statistics.TotalTargets, d.Digest)
	return sb.String()
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inspect <file.urp|file.ruki>",
		Short:         "Summarize a program archive or IR document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			out, err := inspectFile(args[0])
			if err != nil {
				code := ErrCodeMalformed
				if os.IsNotExist(err) {
					code = ErrCodeNotFound
				}
				_ = formatter.Error(code, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to inspect file", err)
			}
			return formatter.Success(out)
		},
	}

	return cmd
}

func inspectFile(path string) (InspectOutput, error) {
	out := InspectOutput{Input: path}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".urp":
		f, err := os.Open(path)
		if err != nil {
			return out, err
		}
		defer f.Close()
		info, err := archive.Inspect(f)
		if err != nil {
			return out, err
		}
		out.Archive = info
	case ".ruki":
		doc, err := ir.ReadFile(path)
		if err != nil {
			return out, err
		}
		digest, err := ir.DocumentDigest(doc)
		if err != nil {
			return out, err
		}
		out.Document = &DocumentSummary{
			Program:       doc.Program.Main,
			Robot:         doc.Robot.Name,
			SchemaVersion: doc.SchemaVersion,
			Created:       doc.Metadata.Created,
			Subprograms:   doc.Program.Subprograms,
			Statistics:    ir.ComputeStatistics(doc),
			Digest:        digest,
		}
	default:
		return out, fmt.Errorf("unsupported file type %q (want .urp or .ruki)", filepath.Ext(path))
	}
	return out, nil
}
