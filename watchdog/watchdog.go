// Package watchdog implements the rule system that screens challenge text for
// attempts to extract the core equation or probe engine internals. Rules are
// regular expressions grouped by class; a match raises an alert upstream but
// never blocks the pipeline.
package watchdog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule represents a single screening rule.
// It contains a compiled regular expression and the alert class it belongs to.
type Rule struct {
	Pattern *regexp.Regexp // Compiled regular expression pattern
	Class   string         // Alert class raised on match, e.g. "equation_theft"
}

// Watchdog holds the active and exempt rule sets. Exempt rules are checked
// first; text matching one is never flagged regardless of the active rules.
type Watchdog struct {
	Rules       map[string]Rule // Map of active rules, key format: "pattern|class"
	ExemptRules map[string]Rule // Map of exemption rules, key format: "pattern|class"
	Enabled     bool            // Whether scanning is active at all
}

// New creates a Watchdog preloaded with the default equation-theft and
// internals-probe rules.
func New() *Watchdog {
	watchdog := &Watchdog{
		Rules:       make(map[string]Rule),
		ExemptRules: make(map[string]Rule),
		Enabled:     true,
	}

	defaults := map[string]string{
		`(?i)(give|tell|show|send)\s+(me\s+)?(the\s+)?(full\s+|complete\s+|exact\s+)?(formula|equation|derivation)`: "equation_theft",
		`(?i)how\s+(is|do you|does one)\s+(Ω|omega)\s*(=|calculated|derived|computed)`:                              "equation_theft",
		`(?i)(Ω|omega)\W{0,10}(χ|chi)\W{0,10}(Δφ|delta\s*phi)`:                                                      "equation_theft",
		`(?i)(source|internal)\s+(code|constants|parameters)`:                                                       "probe",
		`(?i)(dump|leak|reveal)\s+(your|the)\s+(config|configuration|settings|state)`:                               "probe",
	}

	for pattern, class := range defaults {
		// Default patterns are static and known to compile.
		watchdog.AddRule(pattern, class, false)
	}

	return watchdog
}

// ClearRules clears all active and exemption rules from the watchdog.
func (w *Watchdog) ClearRules() {
	w.Rules = make(map[string]Rule)
	w.ExemptRules = make(map[string]Rule)
}

// AddRule adds a rule to the watchdog.
func (w *Watchdog) AddRule(pattern, class string, exempt bool) error {
	class = strings.ToLower(strings.TrimSpace(class))
	if class == "" {
		return fmt.Errorf("empty rule class")
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	rule := Rule{
		Pattern: compiled,
		Class:   class,
	}
	key := fmt.Sprintf("%s|%s", compiled.String(), class)

	if exempt {
		if _, exists := w.ExemptRules[key]; exists {
			return fmt.Errorf("rule already exists in exempt list")
		}
		w.ExemptRules[key] = rule
	} else {
		if _, exists := w.Rules[key]; exists {
			return fmt.Errorf("rule already exists in active list")
		}
		w.Rules[key] = rule
	}

	return nil
}

// RemoveRule removes a rule from the watchdog.
func (w *Watchdog) RemoveRule(pattern, class string, exempt bool) error {
	class = strings.ToLower(strings.TrimSpace(class))
	key := fmt.Sprintf("%s|%s", pattern, class)

	if exempt {
		if _, exists := w.ExemptRules[key]; !exists {
			return fmt.Errorf("rule not found in exempt list")
		}
		delete(w.ExemptRules, key)
	} else {
		if _, exists := w.Rules[key]; !exists {
			return fmt.Errorf("rule not found in active list")
		}
		delete(w.Rules, key)
	}

	return nil
}

// Scan returns the sorted, deduplicated alert classes the text triggers.
// A disabled watchdog or a matching exemption rule yields no classes.
func (w *Watchdog) Scan(text string) []string {
	if !w.Enabled {
		return nil
	}

	for _, rule := range w.ExemptRules {
		if rule.Pattern.MatchString(text) {
			return nil
		}
	}

	classes := make(map[string]bool)
	for _, rule := range w.Rules {
		if rule.Pattern.MatchString(text) {
			classes[rule.Class] = true
		}
	}

	if len(classes) == 0 {
		return nil
	}

	matched := make([]string, 0, len(classes))
	for class := range classes {
		matched = append(matched, class)
	}
	sort.Strings(matched)

	return matched
}

// Matches reports whether the text triggers any active rule.
func (w *Watchdog) Matches(text string) bool {
	return len(w.Scan(text)) > 0
}
