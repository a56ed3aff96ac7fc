package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/campaign-dashboard/internal/httpx"
)

const shutdownGrace = 5 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard as a JSON API",
		Long: `Load the configured snapshot in the background and serve the dashboard
views and mutations over HTTP, with Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
			slog.SetDefault(logger)

			ln, err := net.Listen("tcp", ":"+cfg.Port)
			if err != nil {
				return WrapExitError(ExitCommandError, "listen", err)
			}
			return serve(cmd.Context(), ln, newApp(cfg, logger), logger)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

// serve runs until ctx is done, then drains in-flight requests.
func serve(ctx context.Context, ln net.Listener, a *app, logger *slog.Logger) error {
	go func() {
		if err := a.dash.Load(ctx); err != nil {
			logger.Warn("initial snapshot load failed; POST /snapshot/load to retry", slog.String("err", err.Error()))
		}
	}()

	srv := &http.Server{
		Handler:           httpx.NewRouter(logger, a.dash, a.tel.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info("starting server", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return WrapExitError(ExitFailure, "shutdown", err)
	}
	return nil
}
