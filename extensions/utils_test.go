package extensions

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUtilsLibrary(t *testing.T) {
	t.Run("should generate a parseable uuid", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		if err := ext.ExecuteLua(`return rft.utils:uuid()`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, ok := goValue(ext.LuaState, -1).(string)
		if !ok {
			t.Fatalf("\nwanted:\nstring\ngot:\n%T", goValue(ext.LuaState, -1))
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("\nwanted:\nvalid uuid\ngot:\n%v", got)
		}
	})

	t.Run("should generate distinct uuids", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		luaCode := `return rft.utils:uuid() == rft.utils:uuid()`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got := goValue(ext.LuaState, -1); got != false {
			t.Errorf("\nwanted:\nfalse\ngot:\n%v", got)
		}
	})

	t.Run("should return the current timestamp in milliseconds", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		before := time.Now().UnixMilli()
		if err := ext.ExecuteLua(`return rft.utils:timestamp()`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		after := time.Now().UnixMilli()

		got, ok := goValue(ext.LuaState, -1).(float64)
		if !ok || int64(got) < before || int64(got) > after {
			t.Errorf("\nwanted:\ntimestamp between %d and %d\ngot:\n%v", before, after, got)
		}
	})

	t.Run("should skip sleeps beyond the limit", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		start := time.Now()
		if err := ext.ExecuteLua(`rft.utils:sleep(5000, 100)`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if time.Since(start) > time.Second {
			t.Errorf("\nwanted:\nimmediate return\ngot:\n%v", time.Since(start))
		}
	})

	t.Run("should extract features from text", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		luaCode := `return rft.utils:features("How does quantum superposition collapse?")`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, ok := goValue(ext.LuaState, -1).(map[string]any)
		if !ok {
			t.Fatalf("\nwanted:\nmap\ngot:\n%T", goValue(ext.LuaState, -1))
		}

		if got["type"] != "quantum" {
			t.Errorf("\nwanted:\nquantum\ngot:\n%v", got["type"])
		}
		if got["is_question"] != true {
			t.Errorf("\nwanted:\ntrue\ngot:\n%v", got["is_question"])
		}
		if got["word_count"] != 5.0 {
			t.Errorf("\nwanted:\n5\ngot:\n%v", got["word_count"])
		}
	})
}
