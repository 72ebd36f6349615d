package extensions

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Shopify/go-lua"
	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
	"github.com/omegalab/rft/watchdog"
)

// registryExtensionID is the Lua registry key under which the running
// extension's UUID is stored.
const registryExtensionID = "rft_extension_id"

// EngineService is the surface of the engine that extensions are allowed to
// touch. The engine itself satisfies this interface.
type EngineService interface {
	GetConfigDir() (string, error)
	GetWatchdog() (*watchdog.Watchdog, error)
	GetExtensionRepo() (domain.ExtensionRepository, error)
	GetRenderRepo() (domain.RenderRepository, error)
	WriteLog(level string, message string, options ...func(log *domain.Log) error) error
}

// ExtensionLog is a single line captured from an extension's print output.
type ExtensionLog struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Runtime wraps a loaded extension together with its sandboxed Lua state.
// The mutex guards the Lua state, which is not safe for concurrent use.
type Runtime struct {
	Data     *domain.Extension         // Extension record as stored in the repository
	LuaState *lua.State                // Sandboxed Lua state
	Mu       sync.Mutex                // Guards LuaState
	Logs     []ExtensionLog            // Captured print output
	OnLog    func(ExtensionLog) error  // Called for every captured print line
}

// ExtensionWithLogHandler sets the handler invoked for every line an
// extension prints.
func ExtensionWithLogHandler(handler func(ExtensionLog) error) func(*Runtime) error {
	return func(runtime *Runtime) error {
		if runtime.OnLog != nil {
			return errors.New("extension already has a log handler defined")
		}
		runtime.OnLog = handler
		return nil
	}
}

// restrictedGlobals are removed from every extension state. Extensions get
// math, table and bit32 plus the rft library, nothing that can reach the
// filesystem or load code.
var restrictedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"package",
	"debug",
	"collectgarbage",
	"os",
	"io",
	"string",
}

// PrepareState builds the sandboxed Lua state for the extension, registers
// the engine types and libraries, and runs the extension's Lua content.
func (runtime *Runtime) PrepareState(service EngineService, options []func(*Runtime) error) error {
	for _, option := range options {
		if err := option(runtime); err != nil {
			return fmt.Errorf("applying extension option : %w", err)
		}
	}

	if runtime.OnLog == nil {
		runtime.OnLog = func(ExtensionLog) error { return nil }
	}

	l := lua.NewState()

	lua.Require(l, "_G", lua.BaseOpen, true)
	l.Pop(1)
	lua.Require(l, "math", lua.MathOpen, true)
	l.Pop(1)
	lua.Require(l, "table", lua.TableOpen, true)
	l.Pop(1)
	lua.Require(l, "bit32", lua.Bit32Open, true)
	l.Pop(1)

	for _, global := range restrictedGlobals {
		l.PushNil()
		l.SetGlobal(global)
	}

	l.PushString(runtime.Data.ID.String())
	l.SetField(lua.RegistryIndex, registryExtensionID)

	runtime.LuaState = l

	RegisterChallengeType(runtime)
	RegisterFrameType(runtime)
	RegisterWatchdogType(runtime)
	RegisterRegexType(runtime)

	registerEngineLibrary(l, service)
	registerCustomPrint(runtime)

	if runtime.Data.LuaContent != "" {
		if err := runtime.ExecuteLua(runtime.Data.LuaContent); err != nil {
			return fmt.Errorf("loading extension %s : %w", runtime.Data.Name, err)
		}
	}

	return nil
}

// ExecuteLua runs a chunk of Lua code in the extension's state. Return values
// are left on the Lua stack.
func (runtime *Runtime) ExecuteLua(code string) error {
	if err := lua.DoString(runtime.LuaState, code); err != nil {
		return fmt.Errorf("executing lua : %w", err)
	}
	return nil
}

// OnChallenge calls the extension's on_challenge handler with the extracted
// challenge, if the extension defines one.
func (runtime *Runtime) OnChallenge(challenge *domain.Challenge) error {
	runtime.Mu.Lock()
	defer runtime.Mu.Unlock()

	l := runtime.LuaState
	l.Global("on_challenge")
	if !l.IsFunction(-1) {
		l.Pop(1)
		return nil
	}

	l.PushUserData(challenge)
	lua.SetMetaTableNamed(l, "challenge")

	if err := l.ProtectedCall(1, 0, 0); err != nil {
		return fmt.Errorf("calling on_challenge : %w", err)
	}
	return nil
}

// OnFrame calls the extension's on_frame handler with the rendered frame and
// the challenge it was rendered from, if the extension defines one.
func (runtime *Runtime) OnFrame(frame *domain.Frame, challenge *domain.Challenge) error {
	runtime.Mu.Lock()
	defer runtime.Mu.Unlock()

	l := runtime.LuaState
	l.Global("on_frame")
	if !l.IsFunction(-1) {
		l.Pop(1)
		return nil
	}

	l.PushUserData(frame)
	lua.SetMetaTableNamed(l, "frame")
	l.PushUserData(challenge)
	lua.SetMetaTableNamed(l, "challenge")

	if err := l.ProtectedCall(2, 0, 0); err != nil {
		return fmt.Errorf("calling on_frame : %w", err)
	}
	return nil
}

// CheckGlobalFlag returns the value of a global boolean. Globals of any other
// type report false.
func (runtime *Runtime) CheckGlobalFlag(name string) bool {
	l := runtime.LuaState
	l.Global(name)
	defer l.Pop(1)

	if !l.IsBoolean(-1) {
		return false
	}
	return l.ToBoolean(-1)
}

// GetGlobalString returns the value of a global string, or an error when the
// global is missing or not a string.
func (runtime *Runtime) GetGlobalString(name string) (string, error) {
	l := runtime.LuaState
	l.Global(name)
	defer l.Pop(1)

	if l.TypeOf(-1) != lua.TypeString {
		return "", fmt.Errorf("global %s is not a string", name)
	}

	value, _ := l.ToString(-1)
	return value, nil
}

// CheckGlobalFunction reports whether the extension defines a global function
// with the given name.
func (runtime *Runtime) CheckGlobalFunction(name string) bool {
	l := runtime.LuaState
	l.Global(name)
	defer l.Pop(1)

	return l.IsFunction(-1)
}

// registerCustomPrint overrides the default Lua print function. Output is
// captured into the runtime's log slice and forwarded to the OnLog handler.
func registerCustomPrint(runtime *Runtime) {
	printFunc := func(l *lua.State) int {
		n := l.Top()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			switch {
			case l.IsNil(i):
				parts = append(parts, "nil")
			case l.IsBoolean(i):
				parts = append(parts, fmt.Sprintf("%t", l.ToBoolean(i)))
			case l.IsString(i):
				part, _ := l.ToString(i)
				parts = append(parts, part)
			default:
				if part, ok := lua.ToStringMeta(l, i); ok {
					parts = append(parts, part)
				} else {
					parts = append(parts, lua.TypeNameOf(l, i))
				}
			}
		}

		entry := ExtensionLog{Time: time.Now(), Text: strings.Join(parts, "\t")}
		runtime.Logs = append(runtime.Logs, entry)

		if err := runtime.OnLog(entry); err != nil {
			lua.Errorf(l, fmt.Sprintf("handling print output : %s", err.Error()))
			return 0
		}
		return 0
	}
	runtime.LuaState.Register("print", printFunc)
}

// getExtensionID reads the running extension's UUID back out of the Lua
// registry. Returns uuid.Nil when the state has no extension ID.
func getExtensionID(l *lua.State) uuid.UUID {
	l.Field(lua.RegistryIndex, registryExtensionID)
	defer l.Pop(1)

	idString, ok := l.ToString(-1)
	if !ok {
		return uuid.Nil
	}

	id, err := uuid.Parse(idString)
	if err != nil {
		return uuid.Nil
	}
	return id
}
