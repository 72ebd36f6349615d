// Package extensions provides the Lua-based extension system for the engine.
// It includes the runtime for executing Lua scripts and defines the Go functions
// and types that are exposed to the Lua environment, allowing extensions to
// inspect challenges, annotate frames, and manage watchdog rules.
package extensions
