package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Structured payload shapes match internal/schema.

type explanationPayload struct {
	Language            string   `json:"language"`
	DetailedExplanation string   `json:"detailed_explanation"`
	KeyConcepts         []string `json:"key_concepts"`
}

type improvementPayload struct {
	OriginalIssues []string `json:"original_issues"`
	Suggestions    []string `json:"suggestions"`
	ImprovedCode   string   `json:"improved_code"`
	Explanation    string   `json:"explanation"`
}

// renderChat writes a chat response in a readable terminal form. Unknown
// types and malformed payloads degrade to raw JSON rather than failing.
func renderChat(w io.Writer, resp *ChatResponse) {
	switch resp.Type {
	case "code_explanation":
		var p explanationPayload
		if err := json.Unmarshal(resp.Response, &p); err == nil {
			renderExplanation(w, p)
			return
		}
	case "code_improvement":
		var p improvementPayload
		if err := json.Unmarshal(resp.Response, &p); err == nil {
			renderImprovement(w, p)
			return
		}
	case "text":
		var text string
		if err := json.Unmarshal(resp.Response, &text); err == nil {
			fmt.Fprintln(w, text)
			return
		}
	}
	fmt.Fprintln(w, string(resp.Response))
}

func renderExplanation(w io.Writer, p explanationPayload) {
	fmt.Fprintf(w, "Language: %s\n\n", p.Language)
	fmt.Fprintf(w, "Explanation:\n%s\n", p.DetailedExplanation)
	if len(p.KeyConcepts) > 0 {
		fmt.Fprintf(w, "\nKey Concepts:\n%s", bulletList(p.KeyConcepts))
	}
}

func renderImprovement(w io.Writer, p improvementPayload) {
	if len(p.OriginalIssues) > 0 {
		fmt.Fprintf(w, "Issues Found:\n%s\n", bulletList(p.OriginalIssues))
	}
	if len(p.Suggestions) > 0 {
		fmt.Fprintf(w, "Suggestions:\n%s\n", bulletList(p.Suggestions))
	}
	if p.ImprovedCode != "" {
		fmt.Fprintf(w, "Improved Code:\n%s\n\n", p.ImprovedCode)
	}
	fmt.Fprintf(w, "Explanation:\n%s\n", p.Explanation)
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "  - %s\n", item)
	}
	return b.String()
}

// renderMemory writes a session's history with role markers.
func renderMemory(w io.Writer, resp *MemoryResponse) {
	if resp.MessageCount == 0 {
		fmt.Fprintf(w, "No messages in session %s\n", resp.SessionID)
		return
	}
	fmt.Fprintf(w, "Session %s (%d messages):\n", resp.SessionID, resp.MessageCount)
	for _, msg := range resp.Messages {
		marker := "AI"
		if msg.Type == "human" {
			marker = "You"
		}
		fmt.Fprintf(w, "  [%s] %s\n", marker, msg.Content)
	}
}

// renderStats writes server-wide session statistics.
func renderStats(w io.Writer, resp *StatsResponse) {
	fmt.Fprintf(w, "Active Sessions: %d\n", resp.ActiveSessions)
	fmt.Fprintf(w, "Total Messages:  %d\n", resp.TotalMessages)
	if len(resp.SessionIDs) > 0 {
		fmt.Fprintf(w, "Sessions:\n%s", bulletList(resp.SessionIDs))
	}
}
