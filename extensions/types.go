package extensions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
	"github.com/omegalab/rft/domain"
	"github.com/omegalab/rft/watchdog"
)

// RegisterType creates a new metatable in the Lua state and associates it with a name.
// It registers a set of functions as methods for the type and a `__tostring` metamethod.
// This is a generic helper for exposing Go types to Lua.
func RegisterType(l *lua.State, name string, functions map[string]lua.Function, toString func(l *lua.State) int) {
	lua.NewMetaTable(l, name)
	l.PushGoFunction(FunctionIndex(functions))
	l.SetField(-2, "__index")
	l.PushGoFunction(toString)
	l.SetField(-2, "__tostring")
	l.Pop(1)
}

// FunctionIndex returns a Lua function that acts as an `__index` metamethod.
// It looks up a field name in the provided functions map and pushes the corresponding
// function onto the stack if found.
func FunctionIndex(functions map[string]lua.Function) func(l *lua.State) int {
	return func(l *lua.State) int {
		field := lua.CheckString(l, 2)
		if function, ok := functions[field]; ok {
			l.PushGoFunction(function)
		} else {
			l.PushNil()
		}
		return 1
	}
}

// RegisterChallengeType registers the `domain.Challenge` type and its methods
// with the Lua state. Extensions receive a challenge in their on_challenge
// handler and can read its features and attach annotations.
func RegisterChallengeType(extension *Runtime) {
	funcs := make(map[string]lua.Function)

	// id returns the challenge's unique ID.
	//
	// @return string The challenge ID.
	funcs["id"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushString(challenge.ID.String())
		return 1
	}

	// observer_id returns the identity of the observer who submitted the challenge.
	//
	// @return string The observer identity.
	funcs["observer_id"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushString(challenge.ObserverID)
		return 1
	}

	// text returns the raw challenge text.
	//
	// @return string The challenge text.
	funcs["text"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushString(challenge.Text)
		return 1
	}

	// type returns the classified challenge type.
	//
	// @return string The challenge type (e.g., "quantum", "temporal").
	funcs["type"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushString(challenge.Type)
		return 1
	}

	// discipline returns the detected discipline.
	//
	// @return string The discipline (e.g., "physics").
	funcs["discipline"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushString(challenge.Discipline)
		return 1
	}

	// complexity returns the complexity score.
	//
	// @return number The complexity in [0, 1].
	funcs["complexity"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushNumber(challenge.Complexity)
		return 1
	}

	// semantic_density returns the semantic density score.
	//
	// @return number The semantic density in [0, 1].
	funcs["semantic_density"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushNumber(challenge.SemanticDensity)
		return 1
	}

	// entropy returns the normalized character entropy.
	//
	// @return number The entropy in [0, 1].
	funcs["entropy"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushNumber(challenge.Entropy)
		return 1
	}

	// urgency returns the urgency score.
	//
	// @return number The urgency in [0, 1].
	funcs["urgency"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushNumber(challenge.Urgency)
		return 1
	}

	// word_count returns the number of words in the challenge.
	//
	// @return number The word count.
	funcs["word_count"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushInteger(challenge.WordCount)
		return 1
	}

	// is_question reports whether the challenge is phrased as a question.
	//
	// @return boolean True if the challenge is a question.
	funcs["is_question"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushBoolean(challenge.IsQuestion)
		return 1
	}

	// has_equation reports whether the challenge contains an equation.
	//
	// @return boolean True if an equation was detected.
	funcs["has_equation"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushBoolean(challenge.HasEquation)
		return 1
	}

	// has_symbols reports whether the challenge references framework symbols.
	//
	// @return boolean True if framework symbols were detected.
	funcs["has_symbols"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushBoolean(challenge.HasSymbols)
		return 1
	}

	// observer_focus reports whether the challenge is focused on the observer.
	//
	// @return boolean True if the text is observer-focused.
	funcs["observer_focus"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		l.PushBoolean(challenge.ObserverFocus)
		return 1
	}

	// key_concepts returns the extracted key concepts.
	//
	// @return table A table of key concept strings.
	funcs["key_concepts"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		util.DeepPush(l, challenge.KeyConcepts)
		return 1
	}

	// annotations returns the annotations attached so far.
	//
	// @return table The annotation table.
	funcs["annotations"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		util.DeepPush(l, challenge.Annotations)
		return 1
	}

	// set_annotation attaches an annotation to the challenge. Annotations are
	// merged into the rendering's metadata when the frame is recorded.
	//
	// @param key string The annotation key.
	// @param value any The annotation value.
	funcs["set_annotation"] = func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)
		key := lua.CheckString(l, 2)

		if key == "" {
			lua.ArgumentError(l, 2, "annotation key cannot be empty")
			return 0
		}

		challenge.Annotate(key, goValue(l, 3))
		return 0
	}

	RegisterType(extension.LuaState, "challenge", funcs, func(l *lua.State) int {
		challenge := lua.CheckUserData(l, 1, "challenge").(*domain.Challenge)

		l.PushString(fmt.Sprintf(
			"Challenge { ID: %s, Observer: %s, Type: %s, Words: %d }",
			challenge.ID,
			challenge.ObserverID,
			challenge.Type,
			challenge.WordCount,
		))
		return 1
	})
}

// RegisterFrameType registers the `domain.Frame` type and its methods with
// the Lua state. Extensions receive the rendered frame in their on_frame
// handler.
func RegisterFrameType(extension *Runtime) {
	funcs := make(map[string]lua.Function)

	// omega returns the frame's rendering stability index.
	//
	// @return number The omega value.
	funcs["omega"] = func(l *lua.State) int {
		frame := lua.CheckUserData(l, 1, "frame").(*domain.Frame)
		l.PushNumber(frame.Omega)
		return 1
	}

	// frame_type returns the frame's coherence classification.
	//
	// @return string The frame type (e.g., "stable").
	funcs["frame_type"] = func(l *lua.State) int {
		frame := lua.CheckUserData(l, 1, "frame").(*domain.Frame)
		l.PushString(frame.FrameType)
		return 1
	}

	// stability returns the frame's stability score.
	//
	// @return number The stability in [0, 1].
	funcs["stability"] = func(l *lua.State) int {
		frame := lua.CheckUserData(l, 1, "frame").(*domain.Frame)
		l.PushNumber(frame.Stability)
		return 1
	}

	// confidence returns the frame's confidence score.
	//
	// @return number The confidence in [0, 1].
	funcs["confidence"] = func(l *lua.State) int {
		frame := lua.CheckUserData(l, 1, "frame").(*domain.Frame)
		l.PushNumber(frame.Confidence)
		return 1
	}

	// quality returns the frame's quality grade.
	//
	// @return string The quality (e.g., "excellent").
	funcs["quality"] = func(l *lua.State) int {
		frame := lua.CheckUserData(l, 1, "frame").(*domain.Frame)
		l.PushString(frame.Quality)
		return 1
	}

	RegisterType(extension.LuaState, "frame", funcs, func(l *lua.State) int {
		frame := lua.CheckUserData(l, 1, "frame").(*domain.Frame)

		l.PushString(fmt.Sprintf(
			"Frame { Omega: %.4f, Type: %s, Stability: %.4f, Confidence: %.4f, Quality: %s }",
			frame.Omega,
			frame.FrameType,
			frame.Stability,
			frame.Confidence,
			frame.Quality,
		))
		return 1
	})
}

// RegisterWatchdogType registers the `watchdog.Watchdog` type and its methods
// with the Lua state. This allows Lua scripts to manage the engine's
// screening rules. A pattern prefixed with "-" targets the exemption list.
func RegisterWatchdogType(extension *Runtime) {
	funcs := map[string]lua.Function{
		// add_rule adds a new screening rule to the watchdog.
		//
		// @param pattern string The regular expression pattern.
		// @param class string The alert class raised on match.
		"add_rule": func(l *lua.State) int {
			dog := lua.CheckUserData(l, 1, "watchdog").(*watchdog.Watchdog)
			pattern := lua.CheckString(l, 2)
			class := lua.CheckString(l, 3)
			isExempt := strings.HasPrefix(pattern, "-")

			err := dog.AddRule(strings.TrimPrefix(pattern, "-"), class, isExempt)
			if err != nil {
				lua.Errorf(l, fmt.Sprintf("adding rule : %s", err.Error()))
				return 0
			}

			return 0
		},
		// remove_rule removes a screening rule from the watchdog.
		//
		// @param pattern string The regular expression pattern.
		// @param class string The rule's alert class.
		"remove_rule": func(l *lua.State) int {
			dog := lua.CheckUserData(l, 1, "watchdog").(*watchdog.Watchdog)
			pattern := lua.CheckString(l, 2)
			class := lua.CheckString(l, 3)
			isExempt := strings.HasPrefix(pattern, "-")

			err := dog.RemoveRule(strings.TrimPrefix(pattern, "-"), class, isExempt)
			if err != nil {
				lua.Errorf(l, fmt.Sprintf("removing rule : %s", err.Error()))
				return 0
			}
			return 0
		},
		// scan returns the alert classes the text triggers.
		//
		// @param text string The text to scan.
		// @return table|nil The triggered alert classes, or nil when clean.
		"scan": func(l *lua.State) int {
			dog := lua.CheckUserData(l, 1, "watchdog").(*watchdog.Watchdog)
			text := lua.CheckString(l, 2)

			classes := dog.Scan(text)
			if classes == nil {
				l.PushNil()
				return 1
			}

			util.DeepPush(l, classes)
			return 1
		},
		// matches checks whether the text triggers any active rule.
		//
		// @param text string The text to check.
		// @return boolean True if any rule matches.
		"matches": func(l *lua.State) int {
			dog := lua.CheckUserData(l, 1, "watchdog").(*watchdog.Watchdog)
			text := lua.CheckString(l, 2)

			l.PushBoolean(dog.Matches(text))
			return 1
		},
		// set_enabled toggles scanning on or off.
		//
		// @param enabled boolean True to enable scanning.
		"set_enabled": func(l *lua.State) int {
			dog := lua.CheckUserData(l, 1, "watchdog").(*watchdog.Watchdog)
			dog.Enabled = l.ToBoolean(2)
			return 0
		},
		// clear_rules removes all rules from the watchdog.
		"clear_rules": func(l *lua.State) int {
			dog := lua.CheckUserData(l, 1, "watchdog").(*watchdog.Watchdog)
			dog.ClearRules()
			return 0
		},
	}

	RegisterType(extension.LuaState, "watchdog", funcs, func(l *lua.State) int {
		dog := lua.CheckUserData(l, 1, "watchdog").(*watchdog.Watchdog)

		state := "Disabled"
		if dog.Enabled {
			state = "Enabled"
		}

		l.PushString(fmt.Sprintf(
			"Watchdog (%s)\n  Rules: %d\n  Exempt Rules: %d",
			state,
			len(dog.Rules),
			len(dog.ExemptRules),
		))
		return 1
	})
}

// RegisterRegexType registers the `regexp.Regexp` type and its methods with the Lua state.
// This allows Lua scripts to perform regular expression matching, searching, and replacement.
func RegisterRegexType(extension *Runtime) {
	funcs := make(map[string]lua.Function)

	// match checks if the regex matches a string.
	//
	// @param input string The string to match against.
	// @return boolean True if the regex matches.
	funcs["match"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		input := lua.CheckString(l, 2)
		matched := re.MatchString(input)

		l.PushBoolean(matched)
		return 1
	}

	// is_anchored_match checks if the regex matches the entire string.
	//
	// @param input string The string to match against.
	// @return boolean True if the regex matches the entire string.
	funcs["is_anchored_match"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		input := lua.CheckString(l, 2)

		loc := re.FindStringIndex(input)
		isAnchored := loc != nil && loc[0] == 0 && loc[1] == len(input)

		l.PushBoolean(isAnchored)
		return 1
	}

	// find returns the first match in a string.
	//
	// @param input string The string to search in.
	// @return string The first match, or an empty string if no match.
	funcs["find"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		input := lua.CheckString(l, 2)
		match := re.FindString(input)

		l.PushString(match)
		return 1
	}

	// find_all returns all non-overlapping matches in a string.
	//
	// @param input string The string to search in.
	// @return table A table of all matches, or nil if no match.
	funcs["find_all"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		input := lua.CheckString(l, 2)
		matches := re.FindAllString(input, -1)

		if matches == nil {
			l.PushNil()
			return 1
		}

		util.DeepPush(l, matches)
		return 1
	}

	// find_submatch returns the first match and its submatches.
	//
	// @param input string The string to search in.
	// @return table A table of the match and its submatches, or nil if no match.
	funcs["find_submatch"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		input := lua.CheckString(l, 2)
		submatches := re.FindStringSubmatch(input)

		if submatches == nil {
			l.PushNil()
			return 1
		}

		util.DeepPush(l, submatches)
		return 1
	}

	// find_named_submatch returns a table of named submatches.
	//
	// @param input string The string to search in.
	// @return table A table of named submatches, or nil if no match.
	funcs["find_named_submatch"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		input := lua.CheckString(l, 2)
		submatches := re.FindStringSubmatch(input)

		if submatches == nil {
			l.PushNil()
			return 1
		}

		result := make(map[string]string)
		names := re.SubexpNames()

		for i, name := range names {
			if i > 0 && name != "" {
				result[name] = submatches[i]
			}
		}

		util.DeepPush(l, result)
		return 1
	}

	// replace replaces all matches in a string with a replacement string.
	//
	// @param input string The string to search in.
	// @param replacement string The replacement string.
	// @return string The new string.
	funcs["replace"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		input := lua.CheckString(l, 2)
		replacement := lua.CheckString(l, 3)
		result := re.ReplaceAllString(input, replacement)

		l.PushString(result)
		return 1
	}

	// split splits a string by the regex.
	//
	// @param input string The string to split.
	// @return table A table of the split parts.
	funcs["split"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		input := lua.CheckString(l, 2)
		parts := re.Split(input, -1)
		util.DeepPush(l, parts)
		return 1
	}

	// pattern returns the regex pattern as a string.
	//
	// @return string The regex pattern.
	funcs["pattern"] = func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		l.PushString(re.String())
		return 1
	}

	RegisterType(extension.LuaState, "regexp", funcs, func(l *lua.State) int {
		re := lua.CheckUserData(l, 1, "regexp").(*regexp.Regexp)
		l.PushString(fmt.Sprintf("Regexp { Pattern: %s, Subexpressions: %d }", re.String(), re.NumSubexp()))
		return 1
	})
}
