package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/chartfm/internal/chart"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user <username>",
	Short: "Show a Last.fm user's profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runUser,
}

func init() {
	rootCmd.AddCommand(userCmd)
}

func runUser(cmd *cobra.Command, args []string) error {
	if err := requireConfig(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.source.GetUser(ctx, args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", chart.Message(err), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", user.Name)
	fmt.Fprintf(out, "  Scrobbles: %d\n", user.Playcount)
	fmt.Fprintf(out, "  Profile:   %s\n", user.URL)
	if user.ImageURL != "" {
		fmt.Fprintf(out, "  Avatar:    %s\n", user.ImageURL)
	}
	return nil
}
