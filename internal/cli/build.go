package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/builder"
	"github.com/Borbofruto/Ruki/internal/ir"
	"github.com/Borbofruto/Ruki/internal/replay"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output        string
	Robot         string
	PostProcessor string
	Compact       bool
}

// BuildOutput describes a written IR document.
type BuildOutput struct {
	OutputPath string        `json:"output_path"`
	Program    string        `json:"program"`
	Digest     string        `json:"digest"`
	Statistics ir.Statistics `json:"statistics"`
}

// Text renders a short summary.
func (o BuildOutput) Text() string {
	return fmt.Sprintf("✓ %s: %d steps, %d targets\n  %s",
		o.Program, o.Statistics.TotalSteps, o.Statistics.TotalTargets, o.OutputPath)
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <session.yaml|session.star>",
		Short: "Build a .ruki document from a host session",
		Long: `Replay a recorded host session and write the resulting IR document.

YAML sessions carry their own program name and robot. Starlark sessions
call start/finish themselves and take the robot from --robot.

Examples:
  ruki build pick.yaml
  ruki build pick.star --robot UR10e -o build/pick.ruki`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: <program>.ruki next to the session)")
	cmd.Flags().StringVar(&opts.Robot, "robot", "", "robot name for Starlark sessions")
	cmd.Flags().StringVar(&opts.PostProcessor, "post-processor", "", "post-processor name for Starlark sessions")
	cmd.Flags().BoolVar(&opts.Compact, "compact", false, "write compact JSON (overrides $RUKI_PRETTY_IR)")

	return cmd
}

func runBuild(opts *BuildOptions, session string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := buildSession(opts, formatter, session)
	if err != nil {
		_ = formatter.Error(ErrCodeBuildFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "build failed", err)
	}

	out := opts.Output
	if out == "" {
		out = filepath.Join(filepath.Dir(session), doc.Program.Main+".ruki")
	}

	pretty := !opts.Compact && opts.settings().PrettyIR
	var buf bytes.Buffer
	if err := ir.Write(&buf, doc, pretty); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to encode document", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write document", err)
	}

	digest, err := ir.DocumentDigest(doc)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest document", err)
	}
	opts.logger().Info("document built", "session", session, "output", out, "steps", doc.Statistics.TotalSteps)

	return formatter.Success(BuildOutput{
		OutputPath: out,
		Program:    doc.Program.Main,
		Digest:     digest,
		Statistics: doc.Statistics,
	})
}

func buildSession(opts *BuildOptions, formatter *OutputFormatter, session string) (*ir.Document, error) {
	switch strings.ToLower(filepath.Ext(session)) {
	case ".yaml", ".yml":
		p, err := replay.LoadProgram(session)
		if err != nil {
			return nil, err
		}
		formatter.VerboseLog("Replaying %d step(s) of %s", len(p.Steps), p.Name)
		return p.Build(builder.Options{})
	case ".star":
		src, err := os.ReadFile(session)
		if err != nil {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}
		if opts.Robot == "" {
			return nil, fmt.Errorf("--robot is required for Starlark sessions")
		}
		return replay.RunStarlark(filepath.Base(session), src, builder.Options{
			RobotName:     opts.Robot,
			PostProcessor: opts.PostProcessor,
		})
	default:
		return nil, fmt.Errorf("unsupported session type %q (want .yaml or .star)", filepath.Ext(session))
	}
}
