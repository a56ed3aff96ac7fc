package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/campaign-dashboard/internal/config"
	"github.com/AngelCh415/campaign-dashboard/internal/dashboard"
	"github.com/AngelCh415/campaign-dashboard/internal/ingest"
	"github.com/AngelCh415/campaign-dashboard/internal/memo"
	"github.com/AngelCh415/campaign-dashboard/internal/pipeline"
	"github.com/AngelCh415/campaign-dashboard/internal/report"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
	"github.com/AngelCh415/campaign-dashboard/internal/telemetry"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Campaign performance dashboard",
		Long: `Load a campaign performance snapshot and explore it: filter by channel,
search, sort and page through the records, with KPI totals, a spend-by-channel
chart and the top performing channels.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := report.ParseFormat(opts.Format); err != nil {
				return WrapExitError(ExitCommandError, "invalid --format", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file (environment variables win)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}

func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

func textLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// app is one fully wired dashboard.
type app struct {
	tel  *telemetry.Telemetry
	dash *dashboard.Dashboard
}

func newApp(cfg config.Config, log *slog.Logger) *app {
	tel := telemetry.New()
	st := store.NewStore(cfg.PageSize)
	loader := ingest.NewLoader(ingest.NewHTTPClient(cfg.HTTPTimeout), st, log, cfg, tel)
	return &app{
		tel:  tel,
		dash: dashboard.New(st, pipeline.New(memo.WithObserver(tel)), loader),
	}
}
