// Package main implements the helpctl CLI for manual operations against the
// codehelperd HTTP server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the codehelperd HTTP server
	serverURL string
	// sessionID pins commands to one conversation
	sessionID string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "helpctl",
	Short: "CLI for codehelperd HTTP server operations",
	Long: `helpctl is a command-line interface for interacting with the codehelperd HTTP server.
It provides an interactive chat mode plus one-shot commands for questions,
session memory inspection, and server health.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "codehelperd server URL")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "session ID (generated when empty)")
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(healthCmd)
}
