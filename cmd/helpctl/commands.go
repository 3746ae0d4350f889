package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var memoryMaxChars int

func init() {
	memoryCmd.Flags().IntVar(&memoryMaxChars, "max-chars", 100, "truncate each message to this many characters (0 for full content)")
}

// askCmd sends a single question without entering interactive mode.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Ask a single question or explain a piece of code without an interactive session.

Examples:
  # Ask a question
  helpctl ask "what is a goroutine?"

  # Explain code from stdin
  cat main.py | helpctl ask -

  # Continue an existing conversation
  helpctl ask --session my-session "now improve it"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// memoryCmd shows a session's conversation history.
var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Show a session's conversation history",
	Long: `Show the windowed conversation history of a session.

Examples:
  helpctl memory --session my-session
  helpctl memory --session my-session --max-chars 0`,
	RunE: runMemory,
}

// statsCmd shows server-wide session statistics.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server session statistics",
	RunE:  runStats,
}

// clearCmd empties session memory.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear session memory",
	Long: `Clear one session's memory, or every session when no --session is given.

Examples:
  helpctl clear --session my-session
  helpctl clear`,
	RunE: runClear,
}

// healthCmd checks server health.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check codehelperd server health",
	Long: `Check the health status of the codehelperd HTTP server.

Examples:
  helpctl health
  helpctl health --server http://localhost:9090`,
	RunE: runHealth,
}

func runAsk(cmd *cobra.Command, args []string) error {
	input := args[0]
	if input == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		input = string(content)
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("no question to ask")
	}

	session := sessionID
	if session == "" {
		session = uuid.NewString()
	}

	client := newAPIClient(serverURL)
	resp, err := client.Chat(input, session)
	if err != nil {
		return err
	}

	renderChat(cmd.OutOrStdout(), resp)
	return nil
}

func runMemory(cmd *cobra.Command, args []string) error {
	if sessionID == "" {
		return fmt.Errorf("--session is required")
	}

	client := newAPIClient(serverURL)
	resp, err := client.Memory(sessionID, memoryMaxChars)
	if err != nil {
		return err
	}

	renderMemory(cmd.OutOrStdout(), resp)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	client := newAPIClient(serverURL)
	resp, err := client.Stats()
	if err != nil {
		return err
	}

	renderStats(cmd.OutOrStdout(), resp)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	client := newAPIClient(serverURL)
	resp, err := client.Clear(sessionID)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := newAPIClient(serverURL)
	resp, err := client.Health()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to reach %s: %v\n", serverURL, err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Server Status: %s\n", resp.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "Server URL: %s\n", serverURL)
	return nil
}
