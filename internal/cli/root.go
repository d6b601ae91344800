package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/config"
	"github.com/Borbofruto/Ruki/internal/logging"
)

// RootOptions holds global flags for all commands, plus the configuration
// resolved from the environment before any command runs.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	Catalog   string
	HistoryDB string
	EnvFile   string

	Config config.Config
	Logger *slog.Logger

	configured bool
	logFile    io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the Ruki CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ruki",
		Short: "Ruki - robot program converter",
		Long: `Convert robot programs between the Ruki IR (.ruki), URScript (.script),
Polyscope program archives (.urp) and RoboDK Python (.py).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.teardown()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "CUE robot catalog (default: built-in, or $"+config.EnvCatalog+")")
	cmd.PersistentFlags().StringVar(&opts.HistoryDB, "history-db", "", "SQLite conversion history (default: $"+config.EnvHistoryDB+")")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file read before the environment")

	// Add subcommands
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewDetectCommand(opts))
	cmd.AddCommand(NewModelsCommand(opts))
	cmd.AddCommand(NewConversionsCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// setup resolves configuration and the logger. Flags given on the command
// line win over the environment.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogPath = o.Catalog
	}
	if cmd.Flags().Changed("history-db") {
		cfg.HistoryDB = o.HistoryDB
	}
	if o.Verbose {
		cfg.LogLevel = logging.LevelDebug
	}
	o.Config = cfg
	o.configured = true

	logOpts := logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	}
	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		o.logFile = f
		logOpts.File = f
	}
	o.Logger = logging.New(logOpts)
	return nil
}

func (o *RootOptions) teardown() error {
	if o.logFile == nil {
		return nil
	}
	err := o.logFile.Close()
	o.logFile = nil
	return err
}

// settings returns the resolved configuration. Before setup (commands
// executed directly in tests) it is the defaults plus the global flags.
func (o *RootOptions) settings() config.Config {
	if o.configured {
		return o.Config
	}
	cfg := config.Default()
	cfg.CatalogPath = o.Catalog
	cfg.HistoryDB = o.HistoryDB
	return cfg
}

// logger returns the configured logger, or a discarding one when setup
// has not run (commands executed directly in tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// formatter returns an OutputFormatter bound to the command's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
