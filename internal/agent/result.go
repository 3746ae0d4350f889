package agent

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/codehelperd/internal/schema"
)

// ResultType discriminates the variants of a pipeline result.
type ResultType string

const (
	ResultText        ResultType = "text"
	ResultExplanation ResultType = "code_explanation"
	ResultImprovement ResultType = "code_improvement"
)

// Result is the tagged union returned by Run: exactly one of Text,
// Explanation, or Improvement is populated, per Type.
type Result struct {
	Type        ResultType
	Text        string
	Explanation *schema.Explanation
	Improvement *schema.Improvement
}

// Payload returns the value to serialize toward the caller.
func (r Result) Payload() any {
	switch r.Type {
	case ResultExplanation:
		return r.Explanation
	case ResultImprovement:
		return r.Improvement
	default:
		return r.Text
	}
}

// ErrEmptyInput rejects empty or whitespace-only input before any remote
// call is made.
var ErrEmptyInput = errors.New("empty input provided")

// ExecutionError wraps any unexpected failure. It is the only error class
// Run lets escape; validation and transient upstream failures are converted
// to results instead.
type ExecutionError struct {
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("agent execution failed: %v", e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }
