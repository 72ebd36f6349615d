package rft

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	engine := &Engine{Config: &Config{}}

	tests := []struct {
		name     string
		text     string
		rejected bool
	}{
		{"should accept a question", "How does the frame stabilize over time?", false},
		{"should accept an equation", "Given that omega = 1.618 the frame holds steady", false},
		{"should accept an arithmetic expression", "Consider the series 3 + 4 and its render impact", false},
		{"should accept a data-request keyword", "Explain the phase drift across recent frames", false},
		{"should accept framework symbols", "I keep seeing Ω referenced in the render output", false},
		{"should reject empty text", "", true},
		{"should reject whitespace only", "   \n\t  ", true},
		{"should reject text below the minimum length", "Why me?", true},
		{"should reject text above the maximum length", "Why? " + strings.Repeat("a", 1000), true},
		{"should reject text with no structure", "the frame held steady all afternoon today", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := engine.validate(test.text)
			if test.rejected && err == nil {
				t.Fatalf("\nwanted:\nrejection\ngot:\nnil")
			}
			if !test.rejected && err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
			if test.rejected {
				var rejection *ValidationError
				if !errors.As(err, &rejection) {
					t.Fatalf("\nwanted:\nValidationError\ngot:\n%T", err)
				}
				if rejection.Guidance == "" {
					t.Errorf("\nwanted:\nguidance text\ngot:\nempty")
				}
			}
		})
	}

	t.Run("should honor configured bounds", func(t *testing.T) {
		bounded := &Engine{Config: &Config{MinChallengeRunes: 3, MaxChallengeRunes: 20}}

		if err := bounded.validate("Why me?"); err != nil {
			t.Errorf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := bounded.validate("Why does this challenge run so long?"); err == nil {
			t.Errorf("\nwanted:\nrejection\ngot:\nnil")
		}
	})
}
