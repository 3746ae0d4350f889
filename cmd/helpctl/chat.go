package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session against the codehelperd server.

Paste code or ask programming questions. The session keeps conversation
history on the server, so follow-ups like "improve this" work.

Slash commands inside the session:
  /clear    clear this session's memory
  /memory   show this session's memory
  /stats    show server session statistics
  /help     show available commands
  /quit     exit

Examples:
  # Start a chat with a generated session
  helpctl chat

  # Resume a named session on a different server
  helpctl chat --server http://localhost:9090 --session my-session`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	client := newAPIClient(serverURL)

	session := sessionID
	if session == "" {
		session = uuid.NewString()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connected to %s (session %s)\n", serverURL, session)
	fmt.Fprintln(out, "Type a question or paste code. /help for commands, /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			done, err := runSlashCommand(out, client, session, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			if done {
				return nil
			}
			continue
		}

		resp, err := client.Chat(input, session)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Fprintln(out)
		renderChat(out, resp)
	}
}

// runSlashCommand executes one in-session command. It returns true when the
// session should end.
func runSlashCommand(out io.Writer, client *apiClient, session, input string) (bool, error) {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit":
		fmt.Fprintln(out, "Goodbye.")
		return true, nil
	case "/clear":
		resp, err := client.Clear(session)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "%s\n", resp.Status)
		return false, nil
	case "/memory":
		resp, err := client.Memory(session, 100)
		if err != nil {
			return false, err
		}
		renderMemory(out, resp)
		return false, nil
	case "/stats":
		resp, err := client.Stats()
		if err != nil {
			return false, err
		}
		renderStats(out, resp)
		return false, nil
	case "/help":
		fmt.Fprintln(out, "Commands: /clear /memory /stats /help /quit")
		return false, nil
	default:
		fmt.Fprintf(out, "Unknown command %q. Try /help.\n", input)
		return false, nil
	}
}
