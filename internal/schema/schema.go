// Package schema defines the structured result shapes the model must emit
// for the explanation and improvement pipelines, plus the parsing that
// validates model output against them.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Explanation is the structured result of the code explanation pipeline.
type Explanation struct {
	Language            string   `json:"language"`
	DetailedExplanation string   `json:"detailed_explanation"`
	KeyConcepts         []string `json:"key_concepts"`
}

// Improvement is the structured result of the code improvement pipeline.
type Improvement struct {
	OriginalIssues []string `json:"original_issues"`
	Suggestions    []string `json:"suggestions"`
	ImprovedCode   string   `json:"improved_code"`
	Explanation    string   `json:"explanation"`
}

// ParseError reports model output that failed schema validation. It carries
// the raw output for diagnostics; callers use it to decide on the free-text
// fallback rather than surfacing the failure.
type ParseError struct {
	Schema string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s payload: %v", e.Schema, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Validate checks that every required field is present.
func (e *Explanation) Validate() error {
	switch {
	case e.Language == "":
		return fmt.Errorf("missing required field: language")
	case e.DetailedExplanation == "":
		return fmt.Errorf("missing required field: detailed_explanation")
	case len(e.KeyConcepts) == 0:
		return fmt.Errorf("missing required field: key_concepts")
	}
	return nil
}

// Validate checks that every required field is present.
func (i *Improvement) Validate() error {
	switch {
	case len(i.OriginalIssues) == 0:
		return fmt.Errorf("missing required field: original_issues")
	case len(i.Suggestions) == 0:
		return fmt.Errorf("missing required field: suggestions")
	case i.ImprovedCode == "":
		return fmt.Errorf("missing required field: improved_code")
	case i.Explanation == "":
		return fmt.Errorf("missing required field: explanation")
	}
	return nil
}

// ParseExplanation parses and validates model output as an Explanation.
func ParseExplanation(raw string) (*Explanation, error) {
	var out Explanation
	if err := unmarshalPayload(raw, &out); err != nil {
		return nil, &ParseError{Schema: "explanation", Raw: raw, Err: err}
	}
	if err := out.Validate(); err != nil {
		return nil, &ParseError{Schema: "explanation", Raw: raw, Err: err}
	}
	return &out, nil
}

// ParseImprovement parses and validates model output as an Improvement.
func ParseImprovement(raw string) (*Improvement, error) {
	var out Improvement
	if err := unmarshalPayload(raw, &out); err != nil {
		return nil, &ParseError{Schema: "improvement", Raw: raw, Err: err}
	}
	if err := out.Validate(); err != nil {
		return nil, &ParseError{Schema: "improvement", Raw: raw, Err: err}
	}
	return &out, nil
}

// unmarshalPayload strips markdown code fences before decoding. Models wrap
// JSON in fences often enough that rejecting fenced output would defeat the
// structured pipelines.
func unmarshalPayload(raw string, v any) error {
	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	return json.Unmarshal([]byte(content), v)
}

// ExplanationFormatInstructions tells the model exactly what payload shape
// the explanation pipeline expects.
const ExplanationFormatInstructions = `Respond with a JSON object containing exactly these fields:
{
  "language": "<programming language detected>",
  "detailed_explanation": "<detailed explanation of what the code does>",
  "key_concepts": ["<key programming concept>", "..."]
}
All fields are required. key_concepts must be a non-empty array of strings.`

// ImprovementFormatInstructions tells the model exactly what payload shape
// the improvement pipeline expects.
const ImprovementFormatInstructions = `Respond with a JSON object containing exactly these fields:
{
  "original_issues": ["<issue found in the original code>", "..."],
  "suggestions": ["<specific improvement suggestion>", "..."],
  "improved_code": "<the improved version of the code>",
  "explanation": "<explanation of the improvements made>"
}
All fields are required. original_issues and suggestions must be non-empty arrays of strings.`
