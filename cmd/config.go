package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/chartfm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFile
		if path == "" {
			path = filepath.Join(config.GetConfigDir(), "config.yaml")
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		key := "(not set)"
		if cfg.LastFM.APIKey != "" {
			key = "…" + keySuffix(cfg.LastFM.APIKey)
		}
		fmt.Fprintf(out, "lastfm.api_key:      %s\n", key)
		fmt.Fprintf(out, "lastfm.timeout:      %s\n", cfg.LastFM.Timeout)
		fmt.Fprintf(out, "storage.driver:      %s\n", cfg.Storage.Driver)
		fmt.Fprintf(out, "storage.data_dir:    %s\n", cfg.Storage.DataDir)
		if cfg.Storage.Driver == "redis" {
			fmt.Fprintf(out, "storage.redis.addr:  %s\n", cfg.Storage.Redis.Addr)
			fmt.Fprintf(out, "storage.redis.db:    %d\n", cfg.Storage.Redis.DB)
		}
		fmt.Fprintf(out, "server.addr:         %s\n", cfg.Server.Addr)
		fmt.Fprintf(out, "render.scale:        %g\n", cfg.Render.Scale)
		fmt.Fprintf(out, "render.encoding:     %s\n", cfg.Render.Encoding)
		fmt.Fprintf(out, "chart.table_limit:   %d\n", cfg.Chart.TableLimit)
		fmt.Fprintf(out, "log.level:           %s\n", cfg.Log.Level)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}
