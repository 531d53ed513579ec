package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [token]",
	Short: "Verify a Plex token against plex.tv",
	Long:  "Checks a Plex token by asking the server to validate it upstream. Reads PLEX_TOKEN when no argument is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVerifyCmd,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	token := os.Getenv("PLEX_TOKEN")
	if len(args) > 0 {
		token = args[0]
	}
	if token == "" {
		return fmt.Errorf("no token: pass one as an argument or set PLEX_TOKEN")
	}

	client := NewClient(serverURL, resolveAPIKey())
	result, err := client.VerifyToken(token)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if jsonOutput {
		printJSON(result)
		return nil
	}

	if !result.Valid {
		fmt.Println("Token is invalid")
		return fmt.Errorf("token rejected by plex.tv")
	}

	fmt.Printf("Token is valid\n")
	fmt.Printf("  Account:  %s\n", result.Username)
	if result.Email != "" {
		fmt.Printf("  Email:    %s\n", result.Email)
	}
	return nil
}
