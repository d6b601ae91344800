package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/store"
)

// HistoryOutput lists recorded conversions, newest first.
type HistoryOutput struct {
	Entries []store.Entry `json:"entries"`
}

// Text renders one conversion per line.
func (o HistoryOutput) Text() string {
	if len(o.Entries) == 0 {
		return "No conversions recorded."
	}
	var sb strings.Builder
	for i, e := range o.Entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		status := "✓"
		if !e.Success {
			status = "✗"
		}
		fmt.Fprintf(&sb, "%s %s %s  %s  %s", status, e.StartedAt, e.ID, e.Conversion, e.InputPath)
		if e.Model != "" {
			fmt.Fprintf(&sb, " (%s)", e.Model)
		}
	}
	return sb.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show recorded conversions",
		Long: `Show conversions recorded in the history database.

Recording is enabled by --history-db or $RUKI_HISTORY_DB. Without an id the
most recent conversions are listed; with an id that entry is shown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			st, err := rootOpts.openHistory()
			if err != nil {
				return loadErrorExit(formatter, "failed to open history", err)
			}
			if st == nil {
				err := &LoadError{Code: ErrCodeHistory, Message: "no history database configured (use --history-db)"}
				return loadErrorExit(formatter, "history unavailable", err)
			}
			defer st.Close()

			if len(args) == 1 {
				e, err := st.Get(cmd.Context(), args[0])
				if errors.Is(err, store.ErrNotFound) {
					_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("no conversion with id %s", args[0]), nil)
					return WrapExitError(ExitFailure, "entry not found", err)
				}
				if err != nil {
					return loadErrorExit(formatter, "failed to read history", err)
				}
				return formatter.Success(HistoryOutput{Entries: []store.Entry{*e}})
			}

			entries, err := st.List(cmd.Context(), limit)
			if err != nil {
				return loadErrorExit(formatter, "failed to read history", err)
			}
			if entries == nil {
				entries = []store.Entry{}
			}
			return formatter.Success(HistoryOutput{Entries: entries})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")

	return cmd
}
