package main

import (
	"fmt"
	"os"

	"github.com/brightpath/opsconsole/backend/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Terminal client for the project board",
	Long: `boardctl talks to the ops console API and mirrors the project
board in the terminal. Moves apply locally first and reconcile with the
server's answer, the same way the web board behaves.

Examples:
  boardctl show --server http://localhost:8080 --token $TOKEN
  boardctl move 42 FIFTY_PERCENT`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init("warn")
		if authToken == "" {
			authToken = os.Getenv("OPSCONSOLE_TOKEN")
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "API base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Bearer token (defaults to OPSCONSOLE_TOKEN)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(moveCmd)
}
