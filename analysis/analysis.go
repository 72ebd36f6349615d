// Package analysis extracts the features of a challenge text that parameter
// derivation runs on: type classification, complexity, semantic density,
// discipline, entropy, urgency, and key concepts. Extraction is deterministic;
// the same text always yields the same features.
package analysis

import (
	"math"
	"regexp"
	"strings"

	"github.com/omegalab/rft/domain"
)

// entropyCeiling normalizes Shannon character entropy into [0, 1]. English
// prose tops out around 4.5 bits per character.
const entropyCeiling = 4.5

var equationPattern = regexp.MustCompile(`(?i)([a-z0-9_)\]]+\s*[=≈]\s*[a-z0-9_(\[])|(\d+\s*[+\-*/^]\s*\d+)`)

// frameworkSymbols are the core equation symbols, matched literally or by name.
var frameworkSymbols = []string{"Ω", "χ", "Δφ", "Υ", "τ", "omega", "chi", "delta phi", "upsilon", "tau"}

// Extract computes all features for a challenge text. Identity fields
// (ID, ObserverID, SubmittedAt) are left for the caller to fill.
func Extract(text string) domain.Challenge {
	lowered := strings.ToLower(text)
	words := strings.Fields(lowered)

	return domain.Challenge{
		Text:            text,
		Type:            classifyType(lowered),
		Complexity:      complexity(text, words),
		SemanticDensity: semanticDensity(words),
		Discipline:      classifyDiscipline(lowered),
		Entropy:         normalizedEntropy(text),
		IsQuestion:      isQuestion(lowered, words),
		HasEquation:     equationPattern.MatchString(text),
		HasSymbols:      hasFrameworkSymbols(lowered, text),
		Urgency:         urgency(lowered, text),
		KeyConcepts:     keyConcepts(words),
		ObserverFocus:   observerFocus(words),
		WordCount:       len(words),
	}
}

// classifyType picks the challenge type with the most keyword hits.
// Types are walked in a fixed order so ties resolve deterministically.
func classifyType(lowered string) string {
	bestType := "general"
	bestScore := 0

	for _, challengeType := range []string{
		"ai_alignment", "cognitive", "consciousness", "observer",
		"perceptual", "quantum", "reality", "synchronization",
		"temporal", "theoretical",
	} {
		score := 0
		for _, keyword := range typeKeywords[challengeType] {
			if strings.Contains(lowered, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestType = challengeType
		}
	}

	return bestType
}

// classifyDiscipline picks the discipline with the most keyword hits,
// defaulting to general.
func classifyDiscipline(lowered string) string {
	bestDiscipline := "general"
	bestScore := 0

	for _, discipline := range []string{
		"computer_science", "mathematics", "neuroscience",
		"philosophy", "physics", "psychology",
	} {
		score := 0
		for _, keyword := range disciplineKeywords[discipline] {
			if strings.Contains(lowered, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestDiscipline = discipline
		}
	}

	return bestDiscipline
}

// complexity scores a text in [0, 1] from its length, indicator words,
// clause structure, and vocabulary richness.
func complexity(text string, words []string) float64 {
	if len(words) == 0 {
		return 0
	}

	lengthFactor := math.Min(float64(len(words))/40.0, 1.0)

	indicators := 0
	lowered := strings.ToLower(text)
	for _, indicator := range complexityIndicators {
		if strings.Contains(lowered, indicator) {
			indicators++
		}
	}
	indicatorFactor := math.Min(float64(indicators)*0.2, 1.0)

	clauses := strings.Count(text, ",") + strings.Count(text, ";")
	clauseFactor := math.Min(float64(clauses)*0.15, 1.0)

	unique := make(map[string]bool, len(words))
	for _, word := range words {
		unique[word] = true
	}
	richness := float64(len(unique)) / float64(len(words))

	score := 0.35*lengthFactor + 0.25*indicatorFactor + 0.15*clauseFactor + 0.25*richness
	return math.Min(score, 1.0)
}

// semanticDensity is the ratio of non-stop-words to total words.
func semanticDensity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}

	meaningful := 0
	for _, word := range words {
		if !stopWords[trimWord(word)] {
			meaningful++
		}
	}

	return float64(meaningful) / float64(len(words))
}

// normalizedEntropy is the Shannon entropy of the character distribution,
// normalized into [0, 1].
func normalizedEntropy(text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}

	counts := make(map[rune]int, len(runes))
	for _, r := range runes {
		counts[r]++
	}

	entropy := 0.0
	total := float64(len(runes))
	for _, count := range counts {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}

	return math.Min(entropy/entropyCeiling, 1.0)
}

// isQuestion reports whether the text is structured as a question.
func isQuestion(lowered string, words []string) bool {
	if strings.Contains(lowered, "?") {
		return true
	}
	if len(words) == 0 {
		return false
	}

	first := trimWord(words[0])
	for _, opener := range questionOpeners {
		if first == opener {
			return true
		}
	}
	return false
}

// hasFrameworkSymbols reports whether the text references the core equation
// symbols, literally or by name.
func hasFrameworkSymbols(lowered string, text string) bool {
	for _, symbol := range frameworkSymbols {
		if strings.ContainsAny(symbol, "ΩχΔφΥτ") {
			if strings.Contains(text, symbol) {
				return true
			}
			continue
		}
		if strings.Contains(lowered, symbol) {
			return true
		}
	}
	return false
}

// urgency scores a text in [0, 1] around a neutral baseline of 0.5, pushed up
// by urgent phrasing and punctuation and down by hedging words.
func urgency(lowered string, text string) float64 {
	score := 0.5
	for _, word := range highUrgencyWords {
		if strings.Contains(lowered, word) {
			score += 0.2
		}
	}
	for _, word := range lowUrgencyWords {
		if strings.Contains(lowered, word) {
			score -= 0.1
		}
	}
	score += math.Min(float64(strings.Count(text, "?"))*0.1, 0.2)
	score += math.Min(float64(strings.Count(text, "!"))*0.15, 0.3)
	return math.Min(math.Max(score, 0.0), 1.0)
}

// keyConcepts returns up to five unique non-stop-words longer than four
// characters, in order of first appearance.
func keyConcepts(words []string) []string {
	concepts := make([]string, 0, 5)
	seen := make(map[string]bool)

	for _, word := range words {
		trimmed := trimWord(word)
		if len(trimmed) <= 4 || stopWords[trimmed] || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		concepts = append(concepts, trimmed)
		if len(concepts) == 5 {
			break
		}
	}

	return concepts
}

// observerFocus reports whether the text talks about the observer themselves.
func observerFocus(words []string) bool {
	for _, word := range words {
		trimmed := trimWord(word)
		for _, pronoun := range observerPronouns {
			if trimmed == pronoun {
				return true
			}
		}
	}
	return false
}

// trimWord strips surrounding punctuation from an already lowercased word.
func trimWord(word string) string {
	return strings.Trim(word, ".,;:!?\"'()[]{}")
}
