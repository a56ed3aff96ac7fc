package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/AngelCh415/campaign-dashboard/internal/tui"
)

func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	var (
		source    string
		logFile   string
		altScreen bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(os.Stdout.Fd()) {
				return NewExitError(ExitCommandError, "tui needs an interactive terminal; use report instead")
			}
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if source != "" {
				cfg.SnapshotURL = source
			}

			// the screen belongs to the UI, logs go to a file or nowhere
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return WrapExitError(ExitCommandError, "open log file", err)
				}
				defer f.Close()
				w = f
			}
			logger := textLogger(w, cfg.LogLevel)

			if err := tui.Run(cmd.Context(), newApp(cfg, logger).dash, logger, altScreen); err != nil {
				return WrapExitError(ExitFailure, "tui", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "snapshot URL, file:// URL or path (overrides SNAPSHOT_URL)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	cmd.Flags().BoolVar(&altScreen, "alt-screen", true, "use the terminal alternate screen buffer")
	return cmd
}
