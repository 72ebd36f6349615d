package extensions

import (
	"fmt"
	"regexp"

	"github.com/Shopify/go-lua"
	"github.com/google/uuid"
	"github.com/omegalab/rft/core"
)

// registerEngineLibrary registers the `rft` global library and its
// sub-libraries into the Lua state. This is the main entry point for exposing
// the engine's functionality to Lua scripts.
func registerEngineLibrary(l *lua.State, service EngineService) {
	funcs := []lua.RegistryFunction{
		// log writes a message to the engine's log.
		//
		// @param message string The message to log.
		// @param level string (optional) The log level (e.g., "INFO", "WARN", "ERROR").
		// Defaults to "INFO".
		{Name: "log", Function: func(l *lua.State) int {
			message := lua.CheckString(l, 2)
			level := lua.OptString(l, 3, "INFO")
			if extID := getExtensionID(l); extID != uuid.Nil {
				err := service.WriteLog(level, message, core.LogWithExtensionID(extID))
				if err != nil {
					lua.Errorf(l, fmt.Sprintf("writing log : %s", err.Error()))
					return 0
				}
			} else {
				err := service.WriteLog(level, message)
				if err != nil {
					lua.Errorf(l, fmt.Sprintf("writing log : %s", err.Error()))
					return 0
				}
			}
			return 0
		}},
		// config returns the path to the engine's configuration directory.
		//
		// @return string The configuration directory path.
		{Name: "config", Function: func(l *lua.State) int {
			config, err := service.GetConfigDir()
			if err != nil {
				l.PushString("")
				return 1
			}
			l.PushString(config)
			return 1
		}},
		// watchdog returns the engine's watchdog.
		//
		// @return Watchdog The watchdog object.
		{Name: "watchdog", Function: func(l *lua.State) int {
			dog, err := service.GetWatchdog()
			if err != nil {
				lua.Errorf(l, fmt.Sprintf("getting watchdog : %s", err.Error()))
				return 0
			}
			l.PushUserData(dog)
			lua.SetMetaTableNamed(l, "watchdog")
			return 1
		}},
		// compile compiles a regular expression pattern.
		//
		// @param pattern string The pattern to compile.
		// @return Regexp The compiled regular expression.
		{Name: "compile", Function: func(l *lua.State) int {
			pattern := lua.CheckString(l, 2)

			re, err := regexp.Compile(pattern)
			if err != nil {
				lua.Errorf(l, fmt.Sprintf("compiling pattern : %s", err.Error()))
				return 0
			}

			l.PushUserData(re)
			lua.SetMetaTableNamed(l, "regexp")
			return 1
		}},
		// quote_meta escapes special regex characters in a string.
		//
		// @param input string The string to escape.
		// @return string The escaped string.
		{Name: "quote_meta", Function: func(l *lua.State) int {
			input := lua.CheckString(l, 2)
			l.PushString(regexp.QuoteMeta(input))
			return 1
		}},
	}

	lua.NewLibrary(l, funcs)
	l.SetGlobal("rft")

	registerSettingsLibrary(l, service)
	registerRenderingsLibrary(l, service)
	registerEncodingLibrary(l)
	registerCryptoLibrary(l)
	registerUtilsLibrary(l)
	registerStringsLibrary(l)
	registerRandomLibrary(l)
	registerMathLibrary(l)
}
