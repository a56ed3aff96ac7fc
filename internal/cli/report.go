package cli

import (
	"github.com/spf13/cobra"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/report"
)

type reportOptions struct {
	source   string
	search   string
	channels []string
	sort     string
	desc     bool
	page     int
}

func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print one dashboard view and exit",
		Long: `Load the snapshot once, apply the given view parameters in order
(search, channels, sort, page) and print the resulting dashboard.`,
		Example: `  dashboard report --source ./campaigns.json --channel Search --channel Email --sort spend --desc
  dashboard report --search soc --page 2 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "snapshot URL, file:// URL or path (overrides SNAPSHOT_URL)")
	cmd.Flags().StringVarP(&opts.search, "search", "q", "", "case-insensitive channel search")
	cmd.Flags().StringArrayVar(&opts.channels, "channel", nil, "toggle a channel filter (repeatable)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort column (channel|region|spend|impressions|clicks|conversions|id)")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending (requires --sort)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number")
	return cmd
}

func runReport(cmd *cobra.Command, rootOpts *RootOptions, opts *reportOptions) error {
	format, err := report.ParseFormat(rootOpts.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --format", err)
	}
	var key models.SortKey
	if opts.sort != "" {
		if key, err = models.ParseSortKey(opts.sort); err != nil {
			return WrapExitError(ExitCommandError, "invalid --sort", err)
		}
	}
	if opts.desc && key == models.SortNone {
		return NewExitError(ExitCommandError, "--desc requires --sort")
	}

	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	if opts.source != "" {
		cfg.SnapshotURL = opts.source
	}
	logger := textLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	d := newApp(cfg, logger).dash
	if err := d.Load(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "load snapshot", err)
	}

	if opts.search != "" {
		d.SetSearchTerm(opts.search)
	}
	for _, ch := range opts.channels {
		d.ToggleChannel(ch)
	}
	if key != models.SortNone {
		d.SetSortKey(key)
		if opts.desc {
			d.SetSortKey(key)
		}
	}
	d.SetCurrentPage(opts.page)

	return report.Render(cmd.OutOrStdout(), d.Snapshot(), format)
}
