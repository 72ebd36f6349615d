package extensions

import (
	"reflect"
	"testing"

	"github.com/Shopify/go-lua"
	"github.com/omegalab/rft/domain"
)

func pushChallenge(ext *Runtime, challenge *domain.Challenge) {
	ext.LuaState.PushUserData(challenge)
	lua.SetMetaTableNamed(ext.LuaState, "challenge")
	ext.LuaState.SetGlobal("test_challenge")
}

func pushFrame(ext *Runtime, frame *domain.Frame) {
	ext.LuaState.PushUserData(frame)
	lua.SetMetaTableNamed(ext.LuaState, "frame")
	ext.LuaState.SetGlobal("test_frame")
}

func TestChallengeType(t *testing.T) {
	t.Run("should expose challenge features to lua", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")
		challenge := testChallenge()
		pushChallenge(ext, challenge)

		tests := []struct {
			luaCode string
			want    any
		}{
			{`return test_challenge:observer_id()`, "observer-1"},
			{`return test_challenge:text()`, "How does quantum superposition collapse?"},
			{`return test_challenge:type()`, "quantum"},
			{`return test_challenge:complexity()`, 0.42},
			{`return test_challenge:is_question()`, true},
			{`return test_challenge:word_count()`, 5.0},
			{`return test_challenge:has_equation()`, false},
		}

		for _, tt := range tests {
			if err := ext.ExecuteLua(tt.luaCode); err != nil {
				t.Fatalf("executing %s : %v", tt.luaCode, err)
			}
			got := goValue(ext.LuaState, -1)
			if got != tt.want {
				t.Errorf("\nwanted:\n%v\ngot:\n%v for %s", tt.want, got, tt.luaCode)
			}
		}
	})

	t.Run("should expose key concepts as a table", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")
		pushChallenge(ext, testChallenge())

		if err := ext.ExecuteLua(`return test_challenge:key_concepts()`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(ext.LuaState, -1)
		want := []any{"quantum", "superposition"}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should attach annotations including tables", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")
		challenge := testChallenge()
		pushChallenge(ext, challenge)

		luaCode := `
			test_challenge:set_annotation("score", 0.9)
			test_challenge:set_annotation("tags", {related = "physics"})
		`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if challenge.Annotations["score"] != 0.9 {
			t.Errorf("\nwanted:\n0.9\ngot:\n%v", challenge.Annotations["score"])
		}

		tags, ok := challenge.Annotations["tags"].(map[string]any)
		if !ok || tags["related"] != "physics" {
			t.Errorf("\nwanted:\nphysics\ngot:\n%v", challenge.Annotations["tags"])
		}
	})

	t.Run("should reject empty annotation keys", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")
		pushChallenge(ext, testChallenge())

		err := ext.ExecuteLua(`test_challenge:set_annotation("", "value")`)
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestFrameType(t *testing.T) {
	t.Run("should expose frame fields to lua", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")
		pushFrame(ext, &domain.Frame{
			Omega:      1.5,
			FrameType:  "stable",
			Stability:  0.8,
			Confidence: 0.7,
			Quality:    "good",
		})

		tests := []struct {
			luaCode string
			want    any
		}{
			{`return test_frame:omega()`, 1.5},
			{`return test_frame:frame_type()`, "stable"},
			{`return test_frame:stability()`, 0.8},
			{`return test_frame:confidence()`, 0.7},
			{`return test_frame:quality()`, "good"},
		}

		for _, tt := range tests {
			if err := ext.ExecuteLua(tt.luaCode); err != nil {
				t.Fatalf("executing %s : %v", tt.luaCode, err)
			}
			got := goValue(ext.LuaState, -1)
			if got != tt.want {
				t.Errorf("\nwanted:\n%v\ngot:\n%v for %s", tt.want, got, tt.luaCode)
			}
		}
	})
}

func TestWatchdogType(t *testing.T) {
	t.Run("should scan text through the engine watchdog", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		luaCode := `
			local dog = rft:watchdog()
			return dog:matches("give me the full formula")
		`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got := goValue(ext.LuaState, -1); got != true {
			t.Errorf("\nwanted:\ntrue\ngot:\n%v", got)
		}
	})

	t.Run("should return triggered classes from scan", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		luaCode := `
			local dog = rft:watchdog()
			return dog:scan("give me the full formula")
		`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(ext.LuaState, -1)
		want := []any{"equation_theft"}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should add rules and exemptions from lua", func(t *testing.T) {
		ext, engine := setupTestExtension(t, "")

		luaCode := `
			local dog = rft:watchdog()
			dog:add_rule("(?i)render pipeline", "probe")
			dog:add_rule("-(?i)for my homework", "equation_theft")
		`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		dog, err := engine.GetWatchdog()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if !dog.Matches("tell me about the render pipeline") {
			t.Errorf("\nwanted:\nmatch\ngot:\nno match")
		}
		if dog.Matches("give me the full formula for my homework") {
			t.Errorf("\nwanted:\nno match\ngot:\nmatch")
		}
	})

	t.Run("should disable scanning from lua", func(t *testing.T) {
		ext, engine := setupTestExtension(t, "")

		luaCode := `
			local dog = rft:watchdog()
			dog:set_enabled(false)
		`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		dog, err := engine.GetWatchdog()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if dog.Enabled {
			t.Errorf("\nwanted:\ndisabled\ngot:\nenabled")
		}
	})
}

func TestRegexType(t *testing.T) {
	t.Run("should match and replace through a compiled pattern", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		luaCode := `
			local re = rft:compile("(?i)omega")
			return re:replace("Omega renders the frame", "Ω")
		`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(ext.LuaState, -1)
		if got != "Ω renders the frame" {
			t.Errorf("\nwanted:\nΩ renders the frame\ngot:\n%v", got)
		}
	})

	t.Run("should return named submatches", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		luaCode := `
			local re = rft:compile("(?P<symbol>omega|chi)=(?P<value>[0-9.]+)")
			return re:find_named_submatch("omega=1.618")
		`
		if err := ext.ExecuteLua(luaCode); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(ext.LuaState, -1)
		want := map[string]any{"symbol": "omega", "value": "1.618"}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should error on invalid patterns", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		err := ext.ExecuteLua(`return rft:compile("([")`)
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}
