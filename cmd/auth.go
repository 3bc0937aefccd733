package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jfmyers9/chartfm/internal/config"
	"github.com/jfmyers9/chartfm/pkg/lastfm"
)

var (
	authCheckUser string
	authNoVerify  bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Configure the Last.fm API key",
	Long: `Store a Last.fm API key in the config file.

chartfm only reads public profile data, so an API key is all it needs:
no secret and no session. The key is checked against Last.fm by looking
up a known user before it is saved.

You can get an API key from: https://www.last.fm/api/account/create`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().StringVar(&authCheckUser, "check-user", "rj", "User looked up to verify the key")
	authCmd.Flags().BoolVar(&authNoVerify, "no-verify", false, "Save the key without checking it")
}

func runAuth(cmd *cobra.Command, args []string) error {
	fmt.Println("Last.fm API Key")
	fmt.Println("===============")
	fmt.Println()
	fmt.Println("You can get an API key from: https://www.last.fm/api/account/create")
	fmt.Println()

	if cfg.LastFM.APIKey != "" {
		fmt.Printf("Replacing existing key ending in %s\n\n", keySuffix(cfg.LastFM.APIKey))
	}

	apiKey, err := readAPIKey()
	if err != nil {
		return err
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required")
	}

	if !authNoVerify {
		fmt.Println("Checking key...")
		if err := verifyAPIKey(cmd.Context(), apiKey, authCheckUser); err != nil {
			return err
		}
	}

	path, err := saveAPIKey(configFile, apiKey)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	cfg.LastFM.APIKey = apiKey

	fmt.Printf("\n✓ API key saved to %s\n", path)
	fmt.Println("\nTry 'chartfm chart <username>' next.")
	return nil
}

// saveAPIKey rereads the config file so flag overrides are not persisted,
// then writes it back with apiKey. It returns the path written.
func saveAPIKey(configFile, apiKey string) (string, error) {
	stored, err := config.Read(configFile)
	if err != nil && configFile == "" {
		return "", err
	}
	if err != nil {
		// --config may name a file that does not exist yet
		if stored, err = config.Read(""); err != nil {
			return "", err
		}
	}
	stored.LastFM.APIKey = apiKey

	path := config.Path(configFile)
	if err := stored.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// readAPIKey prompts for the key without echo when stdin is a terminal
func readAPIKey() (string, error) {
	fmt.Print("Enter your Last.fm API Key: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		key, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(key)), nil
	}

	key, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && key == "" {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(key), nil
}

// verifyAPIKey looks up user with apiKey, retrying temporary failures
func verifyAPIKey(ctx context.Context, apiKey, user string) error {
	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:  apiKey,
		BaseURL: cfg.LastFM.BaseURL,
	})
	if err != nil {
		return err
	}

	maxRetries := 3
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		_, err = client.User().GetInfo(ctx, user)
		if err == nil || !isTemporary(err) {
			break
		}
		if i < maxRetries-1 {
			fmt.Printf("Last.fm unavailable (attempt %d/%d). Retrying in %v...\n", i+1, maxRetries, retryDelay)
			time.Sleep(retryDelay)
		}
	}

	var apiErr *lastfm.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr) && apiErr.Code == lastfm.ErrCodeInvalidAPIKey:
		return fmt.Errorf("Last.fm rejected the API key")
	case lastfm.IsNotFound(err):
		// the key works, the check user does not exist
		return nil
	default:
		return fmt.Errorf("failed to verify API key: %w", err)
	}
}

func isTemporary(err error) bool {
	var apiErr *lastfm.Error
	return errors.As(err, &apiErr) && apiErr.Temporary()
}

func keySuffix(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
