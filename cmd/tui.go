package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/chartfm/internal/config"
	"github.com/jfmyers9/chartfm/internal/tui"
)

var tuiOutDir string

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse charts in a terminal UI",
	Long: `Open a terminal UI with the chart request form. The form starts with the
last request filled in.

On the chart page:
  d       download the chart as an image
  r       reload the chart
  b, Esc  back to the form
  q       quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiOutDir, "out", ".", "Directory downloaded images are written to")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := requireConfig(); err != nil {
		return err
	}

	// the terminal belongs to the UI, so logs go to a file
	if cfg.Log.File == "" {
		logger = setupLogger(filepath.Join(config.GetConfigDir(), "tui.log"), cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	tuiCfg := tui.DefaultConfig()
	tuiCfg.OutDir = tuiOutDir
	if cfg.Server.RedirectDelay > 0 {
		tuiCfg.RedirectDelay = cfg.Server.RedirectDelay
	}

	app := tui.New(a.views, a.snapshots, tuiCfg, logger)
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
