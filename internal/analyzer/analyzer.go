// Package analyzer provides static metadata extraction for code snippets.
// It guesses the language, counts structural elements, and flags complexity
// so pipelines can enrich prompts with context the model would otherwise
// have to infer.
package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

// Language is a detected source language.
type Language string

const (
	LanguagePython     Language = "Python"
	LanguageJavaScript Language = "JavaScript"
	LanguageJava       Language = "Java"
	LanguageC          Language = "C/C++"
	LanguageGo         Language = "Go"
	LanguageUnknown    Language = "unknown"
)

// Report summarizes the structure of a code snippet.
type Report struct {
	Language        Language `json:"language"`
	LineCount       int      `json:"line_count"`
	FunctionCount   int      `json:"function_count"`
	ClassCount      int      `json:"class_count"`
	ComplexityHints []string `json:"complexity_hints,omitempty"`
}

const (
	largeSnippetLines   = 50
	loopHintThreshold   = 3
	branchHintThreshold = 5
)

var (
	functionPattern = regexp.MustCompile(`\bdef\s+\w+|\bfunction\s+\w+|\bfn\s+\w+|\bfunc\s+\w+`)
	classPattern    = regexp.MustCompile(`\bclass\s+\w+`)
)

// Analyze extracts metadata from a code snippet. It is a pure function:
// no I/O, no state, and it never fails.
func Analyze(code string) Report {
	trimmed := strings.TrimSpace(code)

	report := Report{
		Language:      detectLanguage(code),
		LineCount:     len(strings.Split(trimmed, "\n")),
		FunctionCount: len(functionPattern.FindAllString(code, -1)),
		ClassCount:    len(classPattern.FindAllString(code, -1)),
	}

	if report.LineCount > largeSnippetLines {
		report.ComplexityHints = append(report.ComplexityHints,
			fmt.Sprintf("Large code block (>%d lines)", largeSnippetLines))
	}
	if strings.Count(code, "for ")+strings.Count(code, "while ") > loopHintThreshold {
		report.ComplexityHints = append(report.ComplexityHints, "Multiple loops detected")
	}
	if strings.Count(code, "if ") > branchHintThreshold {
		report.ComplexityHints = append(report.ComplexityHints, "High branching complexity")
	}

	return report
}

// detectLanguage guesses the language from characteristic keywords.
// Checks run in order of pattern specificity; the first match wins.
func detectLanguage(code string) Language {
	switch {
	case strings.Contains(code, "func ") && strings.Contains(code, "package "):
		return LanguageGo
	case strings.Contains(code, "def ") || strings.Contains(code, "import ") || strings.Contains(code, "class "):
		return LanguagePython
	case strings.Contains(code, "function") || strings.Contains(code, "const ") ||
		strings.Contains(code, "let ") || strings.Contains(code, "=>"):
		return LanguageJavaScript
	case strings.Contains(code, "public class") || strings.Contains(code, "private ") ||
		strings.Contains(code, "void "):
		return LanguageJava
	case strings.Contains(code, "#include") || strings.Contains(code, "int main"):
		return LanguageC
	default:
		return LanguageUnknown
	}
}

// String renders the report as prompt-ready auxiliary context.
func (r Report) String() string {
	hints := "Simple structure"
	if len(r.ComplexityHints) > 0 {
		hints = strings.Join(r.ComplexityHints, ", ")
	}

	var b strings.Builder
	b.WriteString("Code Analysis:\n")
	fmt.Fprintf(&b, "- Language: %s\n", r.Language)
	fmt.Fprintf(&b, "- Lines: %d\n", r.LineCount)
	fmt.Fprintf(&b, "- Functions: %d\n", r.FunctionCount)
	fmt.Fprintf(&b, "- Classes: %d\n", r.ClassCount)
	fmt.Fprintf(&b, "- Complexity hints: %s\n", hints)
	return b.String()
}
