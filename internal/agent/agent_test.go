package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codehelperd/internal/llm"
	"github.com/fyrsmithlabs/codehelperd/internal/session"
)

type scriptedReply struct {
	content string
	err     error
}

// scriptedClient returns queued replies in order; once the queue drains it
// returns repeatErr if set, otherwise fails the sequence.
type scriptedClient struct {
	mu        sync.Mutex
	replies   []scriptedReply
	repeatErr error
	calls     [][]llms.MessageContent
}

func (c *scriptedClient) Generate(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, messages)
	if len(c.replies) == 0 {
		if c.repeatErr != nil {
			return "", c.repeatErr
		}
		return "", fmt.Errorf("unexpected call %d", len(c.calls))
	}
	next := c.replies[0]
	c.replies = c.replies[1:]
	return next.content, next.err
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func newTestAgent(t *testing.T, client llm.Client) (*Agent, *session.Store) {
	t.Helper()
	store := session.NewStore(session.DefaultWindow, zap.NewNop())
	invoker := llm.NewInvoker(3, []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}, zap.NewNop())
	a := New(Options{
		Client:  client,
		Invoker: invoker,
		Store:   store,
		Logger:  zap.NewNop(),
	})
	return a, store
}

const validExplanationJSON = `{
  "language": "Python",
  "detailed_explanation": "Defines a recursive factorial function.",
  "key_concepts": ["recursion", "base case"]
}`

func TestRunExplanationPipeline(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{content: "code_explanation"},
		{content: validExplanationJSON},
	}}
	a, store := newTestAgent(t, client)

	input := "def factorial(n):\n    return 1 if n <= 1 else n * factorial(n - 1)"
	res, err := a.Run(context.Background(), input, "s1")
	require.NoError(t, err)

	assert.Equal(t, ResultExplanation, res.Type)
	require.NotNil(t, res.Explanation)
	assert.Equal(t, "Python", res.Explanation.Language)
	assert.NotEmpty(t, res.Explanation.KeyConcepts)

	history := store.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, session.RoleHuman, history[0].Role)
	assert.Equal(t, input, history[0].Content)
	assert.Equal(t, session.RoleAI, history[1].Role)
}

func TestRunExplanationEnrichesCodeInput(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{content: "code_explanation"},
		{content: validExplanationJSON},
	}}
	a, store := newTestAgent(t, client)

	input := "def add(a, b):\n    return a + b"
	_, err := a.Run(context.Background(), input, "s1")
	require.NoError(t, err)

	// The structured call (second) carries the analysis block; history
	// keeps the original input untouched.
	require.Len(t, client.calls, 2)
	pipelineMsgs := client.calls[1]
	last := pipelineMsgs[len(pipelineMsgs)-1]
	text, ok := last.Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "[Code Analysis]:")
	assert.Contains(t, text.Text, "Language: Python")

	history := store.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, input, history[0].Content)
}

func TestRunImprovementParseFallback(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{content: "code_improvement"},
		{content: "here are some thoughts, not JSON"},
		{content: "A free-text answer about improving the code."},
	}}
	a, store := newTestAgent(t, client)

	input := "please improve this function for me today"
	res, err := a.Run(context.Background(), input, "s1")
	require.NoError(t, err)

	// Exactly one extra request: classify, structured attempt, fallback.
	assert.Equal(t, 3, client.callCount())
	assert.Equal(t, ResultText, res.Type)
	assert.Equal(t, "A free-text answer about improving the code.", res.Text)

	history := store.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, input, history[0].Content)
	assert.NotContains(t, history[0].Content, "no structured formatting")
}

func TestRunApologyWhenFallbackFails(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{content: "code_explanation"},
		{content: "still not JSON"},
		{err: errors.New("model unavailable")},
	}}
	a, store := newTestAgent(t, client)

	res, err := a.Run(context.Background(), "explain this snippet please", "s1")
	require.NoError(t, err)

	assert.Equal(t, ResultText, res.Type)
	assert.Contains(t, res.Text, "1.")
	assert.Contains(t, strings.ToLower(res.Text), "rephras")
	assert.Empty(t, store.History("s1"))
}

func TestRunRateLimitAdvisory(t *testing.T) {
	client := &scriptedClient{repeatErr: fmt.Errorf("429: %w", llm.ErrRateLimited)}
	a, store := newTestAgent(t, client)

	res, err := a.Run(context.Background(), "hello there", "s1")
	require.NoError(t, err)

	// Classification exhausts its retries and degrades to the general
	// pipeline, which exhausts its own: 4 attempts each.
	assert.Equal(t, 8, client.callCount())
	assert.Equal(t, ResultText, res.Type)
	assert.Contains(t, res.Text, "rate-limited")
	assert.Empty(t, store.History("s1"))
}

func TestRunEmptyInput(t *testing.T) {
	client := &scriptedClient{}
	a, _ := newTestAgent(t, client)

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := a.Run(context.Background(), input, "s1")
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Equal(t, 0, client.callCount())
}

func TestRunGeneralQuestion(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{content: "general_question"},
		{content: "A list comprehension builds a list from an iterable."},
	}}
	a, store := newTestAgent(t, client)

	res, err := a.Run(context.Background(), "what is a list comprehension?", "s1")
	require.NoError(t, err)

	assert.Equal(t, ResultText, res.Type)
	assert.Equal(t, "A list comprehension builds a list from an iterable.", res.Text)
	assert.Len(t, store.History("s1"), 2)
}

func TestRunUnexpectedErrorWraps(t *testing.T) {
	cause := errors.New("connection refused")
	client := &scriptedClient{replies: []scriptedReply{
		{content: "general_question"},
		{err: cause},
	}}
	a, _ := newTestAgent(t, client)

	_, err := a.Run(context.Background(), "what is a goroutine?", "s1")
	require.Error(t, err)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, cause)
}

func TestRunHistoryIsolatedPerSession(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{content: "general_question"},
		{content: "answer one"},
		{content: "general_question"},
		{content: "answer two"},
	}}
	a, store := newTestAgent(t, client)

	_, err := a.Run(context.Background(), "first question", "alpha")
	require.NoError(t, err)
	_, err = a.Run(context.Background(), "second question", "beta")
	require.NoError(t, err)

	assert.Len(t, store.History("alpha"), 2)
	assert.Len(t, store.History("beta"), 2)
	assert.Equal(t, "first question", store.History("alpha")[0].Content)
	assert.Equal(t, "second question", store.History("beta")[0].Content)
}

func TestGetMemoryTruncation(t *testing.T) {
	client := &scriptedClient{}
	a, store := newTestAgent(t, client)

	store.AppendExchange("s1", strings.Repeat("x", 300), "short reply")

	memory := a.GetMemory("s1", 100)
	require.Len(t, memory, 2)
	assert.Equal(t, "human", memory[0].Type)
	assert.Len(t, memory[0].Content, 103)
	assert.True(t, strings.HasSuffix(memory[0].Content, "..."))
	assert.Equal(t, "short reply", memory[1].Content)

	full := a.GetMemory("s1", 0)
	assert.Len(t, full[0].Content, 300)
}

func TestGetMemoryTruncatesOnRuneBoundary(t *testing.T) {
	client := &scriptedClient{}
	a, store := newTestAgent(t, client)

	store.AppendExchange("s1", strings.Repeat("日本語", 50), "reply")

	memory := a.GetMemory("s1", 100)
	require.Len(t, memory, 2)
	assert.True(t, utf8.ValidString(memory[0].Content))
	assert.Equal(t, 103, utf8.RuneCountInString(memory[0].Content))
	assert.True(t, strings.HasSuffix(memory[0].Content, "..."))
}

func TestClearMemoryAndStats(t *testing.T) {
	client := &scriptedClient{}
	a, store := newTestAgent(t, client)

	store.AppendExchange("s1", "q1", "a1")
	store.AppendExchange("s2", "q2", "a2")

	stats := a.GetStats()
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.Equal(t, 4, stats.TotalMessages)

	a.ClearMemory("s1")
	assert.Empty(t, store.History("s1"))
	assert.Len(t, store.History("s2"), 2)

	a.ClearAllSessions()
	assert.Equal(t, 0, a.GetStats().ActiveSessions)
}

func TestEnrichSkipsShortAndPlainInputs(t *testing.T) {
	client := &scriptedClient{}
	a, _ := newTestAgent(t, client)

	assert.Equal(t, "def f(): pass", a.enrichWithAnalysis("def f(): pass"))
	plain := "explain how binary search trees work in detail"
	assert.Equal(t, plain, a.enrichWithAnalysis(plain))
}
