package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned by Into when no rule recovered a JSON value.
var ErrNoJSON = errors.New("no json value found in text")

// Rule identifies which heuristic recovered the value.
type Rule string

const (
	RuleDirect Rule = "direct"
	RuleArray  Rule = "array"
	RuleObject Rule = "object"
)

// Match is a recovered JSON value together with where it was found.
// Start and End are byte offsets into the original text; for RuleDirect
// they cover the whole input.
type Match struct {
	Value any
	Start int
	End   int
	Rule  Rule
}

// Extract recovers a JSON value from free-form model output.
//
// Rules are tried in order and the first one that parses wins:
//  1. strip every "```json" and "```" marker, trim, parse the rest
//  2. parse the original text from the first '[' to the last ']'
//  3. parse the original text from the first '{' to the last '}'
//
// Nothing is repaired. When no rule parses, ok is false.
func Extract(text string) (any, bool) {
	m, ok := ExtractMatch(text)
	if !ok {
		return nil, false
	}
	return m.Value, true
}

// ExtractMatch is Extract with the matched span and rule reported.
func ExtractMatch(text string) (Match, bool) {
	if text == "" {
		return Match{}, false
	}

	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var v any
	if err := json.Unmarshal([]byte(clean), &v); err == nil {
		return Match{Value: v, Start: 0, End: len(text), Rule: RuleDirect}, true
	}

	if m, ok := between(text, '[', ']', RuleArray); ok {
		return m, true
	}
	return between(text, '{', '}', RuleObject)
}

// Into decodes the recovered value into target.
func Into(text string, target any) error {
	m, ok := ExtractMatch(text)
	if !ok {
		return ErrNoJSON
	}

	raw, err := json.Marshal(m.Value)
	if err != nil {
		return fmt.Errorf("re-encode %s match: %w", m.Rule, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s match: %w", m.Rule, err)
	}
	return nil
}

func between(text string, open, closing byte, rule Rule) (Match, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)
	if start == -1 || end == -1 || end <= start {
		return Match{}, false
	}

	var v any
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return Match{}, false
	}
	return Match{Value: v, Start: start, End: end + 1, Rule: rule}, true
}
