package extensions

import (
	"strconv"

	"github.com/Shopify/go-lua"
)

// goValue converts the Lua value at the given index into a Go value.
// Tables become []any or map[string]any, userdata is returned as-is, and
// functions map to nil.
func goValue(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeNil:
		return nil
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeNumber:
		number, _ := l.ToNumber(index)
		return number
	case lua.TypeString:
		value, _ := l.ToString(index)
		return value
	case lua.TypeTable:
		return parseTable(l, index, goValue)
	case lua.TypeUserData:
		return l.ToUserData(index)
	default:
		return nil
	}
}

// parseTable walks the Lua table at the given index. A table with contiguous
// integer keys starting at 1 becomes a []any; everything else becomes a
// map[string]any with integer keys stringified.
func parseTable(l *lua.State, index int, convert func(*lua.State, int) any) any {
	index = l.AbsIndex(index)

	entries := make(map[string]any)
	arrayLen := 0
	isArray := true

	l.PushNil()
	for l.Next(index) {
		var key string
		switch l.TypeOf(-2) {
		case lua.TypeNumber:
			number, _ := l.ToNumber(-2)
			if number != float64(int(number)) || int(number) != arrayLen+1 {
				isArray = false
			} else {
				arrayLen++
			}
			key = strconv.Itoa(int(number))
		case lua.TypeString:
			key, _ = l.ToString(-2)
			isArray = false
		default:
			isArray = false
			key = lua.TypeNameOf(l, -2)
		}

		entries[key] = convert(l, -1)
		l.Pop(1)
	}

	if isArray {
		result := make([]any, arrayLen)
		for i := range arrayLen {
			result[i] = entries[strconv.Itoa(i+1)]
		}
		return result
	}

	return entries
}

// asMap casts a converted Lua value to a map. Empty Lua tables convert to
// empty slices, which callers treat as empty maps.
func asMap(value any) map[string]any {
	switch val := value.(type) {
	case map[string]any:
		return val
	case []any:
		if len(val) == 0 {
			return make(map[string]any)
		}
		return nil
	default:
		return nil
	}
}
