package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/chartfm/internal/config"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	configFile string
	logLevel   string
	logFile    string
	dataDir    string

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chartfm",
	Short: "Last.fm listening charts with change tracking",
	Long: `chartfm builds charts of a Last.fm user's top albums, artists or tracks
over a time period, either as a table or as a grid of cover art.

Every chart is compared with the previous chart for the same user, type
and period, so each item shows whether it is new, unchanged, or how many
plays it gained since the last look.

Charts can be printed, exported as images, browsed in a terminal UI or
served over HTTP.`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/chartfm/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory for snapshots (default: ~/.config/chartfm/data)")
}

// loadConfig reads configuration and sets up logging before any command
// runs. Flags override the config file.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Read(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFile != "" {
		c.Log.File = logFile
	}
	if dataDir != "" {
		c.Storage.DataDir = dataDir
	}

	cfg = c
	logger = setupLogger(cfg.Log.File, cfg.Log.Level)
	return nil
}

// requireConfig validates the loaded config for commands that talk to
// Last.fm.
func requireConfig() error {
	if cfg.LastFM.APIKey == "" {
		return fmt.Errorf("Last.fm API key not configured. Run 'chartfm auth' or set CHARTFM_LASTFM_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
