// Package agent is the conversational orchestration engine. It classifies
// each user turn, routes it to the matching pipeline, enriches code-bearing
// prompts with static analysis, parses structured model output with a
// free-text fallback, and keeps per-session history bounded.
package agent

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codehelperd/internal/analyzer"
	"github.com/fyrsmithlabs/codehelperd/internal/intent"
	"github.com/fyrsmithlabs/codehelperd/internal/llm"
	"github.com/fyrsmithlabs/codehelperd/internal/schema"
	"github.com/fyrsmithlabs/codehelperd/internal/session"
)

// Thresholds for deciding when a turn carries enough code to be worth
// analyzing before prompting.
const (
	analysisMinInputLen = 20
)

// codeKeywords indicate the input likely contains code.
var codeKeywords = []string{"def ", "function", "class "}

// Agent glues the session store, classifier, pipelines, and invoker into
// the single Run entry point.
//
// Append policy: a successful pipeline call appends exactly one human/ai
// pair (the original input and the model's raw reply) to the session. The
// classifier only reads history. The apology and rate-limit advisory paths
// append nothing, so failed attempts never pollute history.
type Agent struct {
	client     llm.Client
	invoker    *llm.Invoker
	store      *session.Store
	classifier *intent.Classifier
	logger     *zap.Logger
}

// Options configures a new Agent.
type Options struct {
	Client     llm.Client
	Invoker    *llm.Invoker
	Store      *session.Store
	Classifier *intent.Classifier
	Logger     *zap.Logger
}

// New creates an agent from options. Logger defaults to a nop logger; a
// nil classifier is built from the other options.
func New(opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = intent.NewClassifier(opts.Client, opts.Invoker, opts.Store, logger.Named("intent"))
	}
	return &Agent{
		client:     opts.Client,
		invoker:    opts.Invoker,
		store:      opts.Store,
		classifier: classifier,
		logger:     logger,
	}
}

// Run processes one user turn for a session.
//
// Error contract: empty input returns ErrEmptyInput; anything unexpected
// returns *ExecutionError. Rate limiting that survived every retry and
// structured-output failures never surface as errors; they degrade to
// advisory or fallback text results.
func (a *Agent) Run(ctx context.Context, input, sessionID string) (Result, error) {
	if strings.TrimSpace(input) == "" {
		return Result{}, ErrEmptyInput
	}

	a.logger.Info("processing request", zap.String("session_id", sessionID))

	in := a.classifier.Classify(ctx, input, sessionID)
	RequestsTotal.WithLabelValues(string(in)).Inc()

	var (
		res Result
		err error
	)
	switch in {
	case intent.CodeExplanation:
		res, err = a.runExplanation(ctx, input, sessionID)
	case intent.CodeImprovement:
		res, err = a.runImprovement(ctx, input, sessionID)
	default:
		res, err = a.runGeneral(ctx, input, sessionID)
	}

	if err != nil {
		if llm.IsRateLimit(err) {
			RateLimitAdvisoriesTotal.Inc()
			a.logger.Error("rate limit persisted after retries",
				zap.String("session_id", sessionID),
				zap.Error(err))
			return Result{Type: ResultText, Text: rateLimitAdvisory}, nil
		}
		a.logger.Error("pipeline execution failed",
			zap.String("session_id", sessionID),
			zap.String("intent", string(in)),
			zap.Error(err))
		return Result{}, &ExecutionError{Cause: err}
	}

	a.logger.Info("request processed",
		zap.String("session_id", sessionID),
		zap.String("intent", string(in)),
		zap.String("result_type", string(res.Type)))
	return res, nil
}

// runExplanation executes the explanation pipeline.
func (a *Agent) runExplanation(ctx context.Context, input, sessionID string) (Result, error) {
	raw, err := a.generateStructured(ctx, sessionID,
		explanationSystemPrompt+"\n\n"+schema.ExplanationFormatInstructions,
		a.enrichWithAnalysis(input))
	if err != nil {
		return Result{}, err
	}

	exp, perr := schema.ParseExplanation(raw)
	if perr != nil {
		return a.fallbackFreeText(ctx, input, sessionID, perr)
	}

	a.store.AppendExchange(sessionID, input, raw)
	return Result{Type: ResultExplanation, Explanation: exp}, nil
}

// runImprovement executes the improvement pipeline.
func (a *Agent) runImprovement(ctx context.Context, input, sessionID string) (Result, error) {
	raw, err := a.generateStructured(ctx, sessionID,
		improvementSystemPrompt+"\n\n"+schema.ImprovementFormatInstructions,
		a.enrichWithAnalysis(input))
	if err != nil {
		return Result{}, err
	}

	imp, perr := schema.ParseImprovement(raw)
	if perr != nil {
		return a.fallbackFreeText(ctx, input, sessionID, perr)
	}

	a.store.AppendExchange(sessionID, input, raw)
	return Result{Type: ResultImprovement, Improvement: imp}, nil
}

// runGeneral executes the free-text pipeline.
func (a *Agent) runGeneral(ctx context.Context, input, sessionID string) (Result, error) {
	messages := llm.PromptMessages(generalSystemPrompt, a.store.History(sessionID), input)

	raw, err := a.invoker.Do(ctx, func() (string, error) {
		return a.client.Generate(ctx, messages)
	})
	if err != nil {
		return Result{}, err
	}

	a.store.AppendExchange(sessionID, input, raw)
	return Result{Type: ResultText, Text: raw}, nil
}

// generateStructured issues a JSON-mode completion for a structured
// pipeline, with the session's windowed history as context.
func (a *Agent) generateStructured(ctx context.Context, sessionID, system, input string) (string, error) {
	messages := llm.PromptMessages(system, a.store.History(sessionID), input)
	return a.invoker.Do(ctx, func() (string, error) {
		return a.client.Generate(ctx, messages, llms.WithJSONMode())
	})
}

// fallbackFreeText re-issues a single free-text request after a structured
// parse failure. If that also fails, the caller gets the apology text; in
// neither failure case does the failed structured attempt reach history.
func (a *Agent) fallbackFreeText(ctx context.Context, input, sessionID string, cause error) (Result, error) {
	ParseFallbacksTotal.Inc()
	a.logger.Warn("structured output failed validation, falling back to free text",
		zap.String("session_id", sessionID),
		zap.Error(cause))

	messages := llm.PromptMessages(generalSystemPrompt, a.store.History(sessionID), input+fallbackSuffix)

	raw, err := a.invoker.Do(ctx, func() (string, error) {
		return a.client.Generate(ctx, messages)
	})
	if err != nil {
		ApologiesTotal.Inc()
		a.logger.Error("free-text fallback failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return Result{Type: ResultText, Text: apologyText}, nil
	}

	// History records the original input, not the augmented fallback query.
	a.store.AppendExchange(sessionID, input, raw)
	return Result{Type: ResultText, Text: raw}, nil
}

// enrichWithAnalysis appends analyzer output to code-bearing inputs. The
// analyzer is a pure function invoked directly; there is no failure path to
// swallow.
func (a *Agent) enrichWithAnalysis(input string) string {
	if len(input) <= analysisMinInputLen {
		return input
	}
	lower := strings.ToLower(input)
	for _, kw := range codeKeywords {
		if strings.Contains(lower, kw) {
			report := analyzer.Analyze(input)
			a.logger.Debug("enriched input with code analysis",
				zap.String("language", string(report.Language)),
				zap.Int("lines", report.LineCount))
			return input + "\n\n[Code Analysis]:\n" + report.String()
		}
	}
	return input
}

// MemoryMessage is one history entry formatted for callers, with content
// truncated to the requested length.
type MemoryMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ClearMemory empties one session's history.
func (a *Agent) ClearMemory(sessionID string) {
	a.store.Clear(sessionID)
}

// ClearAllSessions empties every session.
func (a *Agent) ClearAllSessions() {
	a.store.ClearAll()
}

// GetMemory returns a session's windowed history with per-message content
// truncated to maxChars. A non-positive maxChars disables truncation.
func (a *Agent) GetMemory(sessionID string, maxChars int) []MemoryMessage {
	history := a.store.History(sessionID)
	out := make([]MemoryMessage, 0, len(history))
	for _, msg := range history {
		out = append(out, MemoryMessage{
			Type:    string(msg.Role),
			Content: truncateRunes(msg.Content, maxChars),
		})
	}
	return out
}

// truncateRunes cuts s to maxChars characters on a rune boundary so the
// result stays valid UTF-8. Non-positive maxChars returns s unchanged.
func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "..."
}

// GetStats reports current store statistics.
func (a *Agent) GetStats() session.Stats {
	return a.store.Stats()
}
