package extensions

import (
	"reflect"
	"testing"
)

func TestStringsLibrary(t *testing.T) {
	t.Run("should run basic string operations", func(t *testing.T) {
		tests := []struct {
			name    string
			luaCode string
			want    any
		}{
			{"upper", `return rft.strings:upper("omega")`, "OMEGA"},
			{"lower", `return rft.strings:lower("OMEGA")`, "omega"},
			{"reverse", `return rft.strings:reverse("frame")`, "emarf"},
			{"reverse multibyte", `return rft.strings:reverse("Ωχ")`, "χΩ"},
			{"len", `return rft.strings:len("frame")`, 5.0},
			{"replace all", `return rft.strings:replace("a-b-c", "-", "+")`, "a+b+c"},
			{"replace limited", `return rft.strings:replace("a-b-c", "-", "+", 1)`, "a+b-c"},
			{"contains", `return rft.strings:contains("rendered frame", "frame")`, true},
			{"has_prefix", `return rft.strings:has_prefix("omega_obs", "omega")`, true},
			{"has_suffix", `return rft.strings:has_suffix("omega_obs", "obs")`, true},
			{"trim", `return rft.strings:trim("  drift  ")`, "drift"},
			{"substring", `return rft.strings:substring("coherence", 0, 2)`, "co"},
			{"substring open end", `return rft.strings:substring("coherence", 5)`, "ence"},
			{"substring clamped", `return rft.strings:substring("chi", 10, 20)`, ""},
		}

		for _, tt := range tests {
			ext, _ := setupTestExtension(t, "")

			if err := ext.ExecuteLua(tt.luaCode); err != nil {
				t.Fatalf("%s : %v", tt.name, err)
			}

			got := goValue(ext.LuaState, -1)
			if got != tt.want {
				t.Errorf("\nwanted:\n%v\ngot:\n%v for %s", tt.want, got, tt.name)
			}
		}
	})

	t.Run("should split into a table", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		if err := ext.ExecuteLua(`return rft.strings:split("omega,chi,upsilon", ",")`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		want := []any{"omega", "chi", "upsilon"}
		got := goValue(ext.LuaState, -1)
		if !reflect.DeepEqual(want, got) {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})
}
