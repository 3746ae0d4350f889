package llm

import (
	"github.com/tmc/langchaingo/llms"

	"github.com/fyrsmithlabs/codehelperd/internal/session"
)

// PromptMessages assembles the standard prompt layout: system instructions,
// then the windowed session history, then the current input.
func PromptMessages(system string, history []session.Message, input string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		if msg.Role == session.RoleAI {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, msg.Content))
	}
	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, input))
}
