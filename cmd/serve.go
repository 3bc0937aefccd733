package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/chartfm/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chart form and charts over HTTP",
	Long: `Start an HTTP server with the chart request form, table and grid chart
pages, image downloads and a small JSON API:

  GET  /                    request form, prefilled with the last request
  POST /                    submit the form
  GET  /chart               table chart
  GET  /grid                grid chart
  GET  /views/:id/image     download a loaded chart as an image
  GET  /api/user            user profile as JSON
  GET  /api/chart           chart items as JSON

The server shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if err := requireConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(server.Config{
		Addr:          cfg.Server.Addr,
		RedirectDelay: cfg.Server.RedirectDelay,
		ViewTTL:       cfg.Server.ViewTTL,
		TableLimit:    cfg.Chart.TableLimit,
	}, a.views, a.snapshots, a.source, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting chartfm server")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info().Msg("Server stopped")
	return nil
}

