package extensions

import (
	"time"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
	"github.com/google/uuid"
	"github.com/omegalab/rft/analysis"
)

func registerUtilsLibrary(l *lua.State) {
	l.Global("rft")

	if l.IsNil(-1) {
		l.Pop(1)
		return
	}

	lua.NewLibrary(l, utilsLibrary())

	l.SetField(-2, "utils")
	l.Pop(1)
}

// utilsLibrary returns a list of Lua functions that provide utility
// functionalities. These functions are available under the `rft.utils`
// table in Lua scripts.
func utilsLibrary() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// uuid generates a new UUIDv7 and returns it as a string.
		//
		// @return string The new UUID.
		{Name: "uuid", Function: func(l *lua.State) int {
			id, err := uuid.NewV7()
			if err != nil {
				lua.Errorf(l, "generating uuid: %s", err.Error())
				return 0
			}
			l.PushString(id.String())
			return 1
		}},
		// timestamp returns the current time as a Unix timestamp in milliseconds.
		//
		// @return number The current timestamp.
		{Name: "timestamp", Function: func(l *lua.State) int {
			l.PushNumber(float64(time.Now().UnixMilli()))
			return 1
		}},
		// sleep pauses the execution for a given number of milliseconds.
		//
		// @param milliseconds int The number of milliseconds to sleep.
		// @param limit int (optional) The maximum number of milliseconds to sleep.
		{Name: "sleep", Function: func(l *lua.State) int {
			milliseconds := lua.CheckInteger(l, 2)
			limit := lua.OptInteger(l, 3, 60000)

			if milliseconds < limit {
				time.Sleep(time.Duration(milliseconds) * time.Millisecond)
			}
			return 0
		}},
		// features runs linguistic feature extraction on a piece of text and
		// returns the scores, without touching any engine state.
		//
		// @param text string The text to analyze.
		// @return table The extracted features.
		{Name: "features", Function: func(l *lua.State) int {
			text := lua.CheckString(l, 2)
			challenge := analysis.Extract(text)

			util.DeepPush(l, map[string]any{
				"type":             challenge.Type,
				"discipline":       challenge.Discipline,
				"complexity":       challenge.Complexity,
				"semantic_density": challenge.SemanticDensity,
				"entropy":          challenge.Entropy,
				"urgency":          challenge.Urgency,
				"word_count":       challenge.WordCount,
				"is_question":      challenge.IsQuestion,
				"has_equation":     challenge.HasEquation,
				"has_symbols":      challenge.HasSymbols,
				"observer_focus":   challenge.ObserverFocus,
				"key_concepts":     challenge.KeyConcepts,
			})
			return 1
		}},
	}
}
