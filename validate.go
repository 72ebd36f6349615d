package rft

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError is returned when a challenge fails admission. Guidance
// carries the user-facing text a front end can show directly.
type ValidationError struct {
	Reason   string
	Guidance string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var structuralEquation = regexp.MustCompile(`(?i)([a-z0-9_)\]]+\s*[=≈]\s*[a-z0-9_(\[])|(\d+\s*[+\-*/^]\s*\d+)`)

// dataRequestKeywords satisfy the structural requirement for challenges
// phrased as imperatives instead of questions.
var dataRequestKeywords = []string{
	"explain", "describe", "analyze", "calculate", "compute",
	"show", "compare", "derive", "estimate", "evaluate",
}

// validate enforces the admission rules: rune length bounds and a structural
// requirement (question mark, equation pattern, or data-request keyword).
func (engine *Engine) validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &ValidationError{
			Reason:   "empty challenge",
			Guidance: "Submit a question or request for the engine to render.",
		}
	}

	minRunes, maxRunes := engine.validationBounds()
	runes := utf8.RuneCountInString(trimmed)
	if runes < minRunes {
		return &ValidationError{
			Reason:   fmt.Sprintf("challenge too short: %d runes, minimum %d", runes, minRunes),
			Guidance: fmt.Sprintf("Expand the challenge to at least %d characters so features can be extracted.", minRunes),
		}
	}
	if runes > maxRunes {
		return &ValidationError{
			Reason:   fmt.Sprintf("challenge too long: %d runes, maximum %d", runes, maxRunes),
			Guidance: fmt.Sprintf("Shorten the challenge to at most %d characters.", maxRunes),
		}
	}

	if !hasStructure(trimmed) {
		return &ValidationError{
			Reason:   "challenge has no recognizable structure",
			Guidance: "Phrase the challenge as a question, include an equation, or ask for an analysis.",
		}
	}
	return nil
}

func hasStructure(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	if strings.ContainsAny(text, "ΩχΔφΥτ") {
		return true
	}
	if structuralEquation.MatchString(text) {
		return true
	}
	lowered := strings.ToLower(text)
	for _, keyword := range dataRequestKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func (engine *Engine) validationBounds() (int, int) {
	minRunes, maxRunes := 10, 1000
	if engine.Config != nil {
		if engine.Config.MinChallengeRunes > 0 {
			minRunes = engine.Config.MinChallengeRunes
		}
		if engine.Config.MaxChallengeRunes > 0 {
			maxRunes = engine.Config.MaxChallengeRunes
		}
	}
	return minRunes, maxRunes
}
