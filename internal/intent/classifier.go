// Package intent classifies a user turn into the pipeline that should
// handle it. Classification is total: it always yields a valid intent and
// never returns an error, falling back through label normalization, a
// keyword heuristic, and finally a hard default.
package intent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codehelperd/internal/llm"
	"github.com/fyrsmithlabs/codehelperd/internal/session"
)

// Intent is the classified purpose of a user turn.
type Intent string

const (
	CodeExplanation Intent = "code_explanation"
	CodeImprovement Intent = "code_improvement"
	GeneralQuestion Intent = "general_question"
)

// intents lists every valid category, in match-priority order.
var intents = []Intent{CodeExplanation, CodeImprovement, GeneralQuestion}

const classifierPrompt = `You are an intent classifier. Analyze the user's input and the conversation history, then classify it into ONE of these categories:
- code_explanation: the user wants to understand what code does, including references to previously discussed code
- code_improvement: the user wants suggestions to improve code, including "improve this" or "fix this" referencing prior code
- general_question: the user asks a general programming question

If the user refers to "this code", "the code", "it", and so on, use the conversation history to understand what they mean.

Respond with ONLY the category name, nothing else.`

var (
	explanationKeywords = []string{"explain", "what does", "how does"}
	improvementKeywords = []string{"improve", "better", "optimize", "refactor"}
)

// Classifier resolves intents by asking the completion service, with the
// session's windowed history available for reference resolution.
type Classifier struct {
	client  llm.Client
	invoker *llm.Invoker
	store   *session.Store
	logger  *zap.Logger
}

// NewClassifier creates a classifier.
func NewClassifier(client llm.Client, invoker *llm.Invoker, store *session.Store, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		client:  client,
		invoker: invoker,
		store:   store,
		logger:  logger,
	}
}

// Classify returns the intent for the given input. The remote call goes
// through the invoker; if it still fails, classification degrades to
// GeneralQuestion rather than aborting the request.
func (c *Classifier) Classify(ctx context.Context, input, sessionID string) Intent {
	messages := llm.PromptMessages(classifierPrompt, c.store.History(sessionID), input)

	label, err := c.invoker.Do(ctx, func() (string, error) {
		return c.client.Generate(ctx, messages)
	})
	if err != nil {
		c.logger.Error("intent classification failed, defaulting to general_question",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return GeneralQuestion
	}

	if in, ok := matchLabel(label); ok {
		c.logger.Debug("classified intent",
			zap.String("session_id", sessionID),
			zap.String("intent", string(in)))
		return in
	}

	fallback := keywordFallback(input)
	c.logger.Warn("unrecognized intent label, using keyword fallback",
		zap.String("label", strings.TrimSpace(label)),
		zap.String("intent", string(fallback)))
	return fallback
}

// matchLabel normalizes the model's label and checks membership. Both the
// category token and its space-separated variant are accepted anywhere in
// the text.
func matchLabel(label string) (Intent, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for _, in := range intents {
		token := string(in)
		if strings.Contains(normalized, token) ||
			strings.Contains(normalized, strings.ReplaceAll(token, "_", " ")) {
			return in, true
		}
	}
	return "", false
}

// keywordFallback applies the deterministic heuristic over the current
// input only, never over model output.
func keywordFallback(input string) Intent {
	lower := strings.ToLower(input)
	for _, kw := range explanationKeywords {
		if strings.Contains(lower, kw) {
			return CodeExplanation
		}
	}
	for _, kw := range improvementKeywords {
		if strings.Contains(lower, kw) {
			return CodeImprovement
		}
	}
	return GeneralQuestion
}
