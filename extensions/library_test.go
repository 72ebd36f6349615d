package extensions

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

func TestEngineLibrary_Log(t *testing.T) {
	t.Run("should write a log tagged with the extension ID", func(t *testing.T) {
		var capturedLevel string
		var capturedMessage string
		var capturedExtensionID *uuid.UUID

		ext, engine := setupTestExtension(t, "")
		engine.WriteLogFunc = func(level string, message string, options ...func(log *domain.Log) error) error {
			capturedLevel = level
			capturedMessage = message
			log := &domain.Log{}
			for _, option := range options {
				if err := option(log); err != nil {
					return err
				}
			}
			capturedExtensionID = log.ExtensionID
			return nil
		}

		if err := ext.ExecuteLua(`rft:log("frame rendered", "WARN")`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if capturedLevel != "WARN" {
			t.Errorf("\nwanted:\nWARN\ngot:\n%v", capturedLevel)
		}
		if capturedMessage != "frame rendered" {
			t.Errorf("\nwanted:\nframe rendered\ngot:\n%v", capturedMessage)
		}
		if capturedExtensionID == nil || *capturedExtensionID != ext.Data.ID {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", ext.Data.ID, capturedExtensionID)
		}
	})

	t.Run("should default the log level to INFO", func(t *testing.T) {
		var capturedLevel string

		ext, engine := setupTestExtension(t, "")
		engine.WriteLogFunc = func(level string, message string, options ...func(log *domain.Log) error) error {
			capturedLevel = level
			return nil
		}

		if err := ext.ExecuteLua(`rft:log("frame rendered")`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if capturedLevel != "INFO" {
			t.Errorf("\nwanted:\nINFO\ngot:\n%v", capturedLevel)
		}
	})
}

func TestEngineLibrary_Config(t *testing.T) {
	t.Run("should return the configuration directory", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		if err := ext.ExecuteLua(`return rft:config()`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(ext.LuaState, -1)
		if got != "/tmp/rft-test" {
			t.Errorf("\nwanted:\n/tmp/rft-test\ngot:\n%v", got)
		}
	})
}

func TestEngineLibrary_QuoteMeta(t *testing.T) {
	t.Run("should escape regex metacharacters", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		if err := ext.ExecuteLua(`return rft:quote_meta("omega (obs)")`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(ext.LuaState, -1)
		if got != `omega \(obs\)` {
			t.Errorf("\nwanted:\nomega \\(obs\\)\ngot:\n%v", got)
		}
	})
}

func TestMathLibrary(t *testing.T) {
	t.Run("should simulate the coherence for a frame", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		if err := ext.ExecuteLua(`return rft.math:simulate(3.0, 1.5)`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(ext.LuaState, -1)
		if got != 2.0 {
			t.Errorf("\nwanted:\n2.0\ngot:\n%v", got)
		}
	})

	t.Run("should error on a zero render time", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		err := ext.ExecuteLua(`return rft.math:simulate(3.0, 0)`)
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should compute the render delay at a redshift", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		if err := ext.ExecuteLua(`return rft.math:render_delay(1.0)`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, ok := goValue(ext.LuaState, -1).(float64)
		want := 1.38 * math.Log(2)
		if !ok || math.Abs(got-want) > 1e-9 {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should reject redshifts below the horizon", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		err := ext.ExecuteLua(`return rft.math:render_delay(-1.0)`)
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should classify a magnetic field vector", func(t *testing.T) {
		ext, _ := setupTestExtension(t, "")

		if err := ext.ExecuteLua(`return rft.math:magnetic(30000, 0, 40000)`); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, ok := goValue(ext.LuaState, -1).(map[string]any)
		if !ok {
			t.Fatalf("\nwanted:\nmap\ngot:\n%T", goValue(ext.LuaState, -1))
		}

		if got["magnitude"] != 50000.0 {
			t.Errorf("\nwanted:\n50000\ngot:\n%v", got["magnitude"])
		}
		if got["class"] != "nominal" {
			t.Errorf("\nwanted:\nnominal\ngot:\n%v", got["class"])
		}
		if got["declination"] != 0.0 {
			t.Errorf("\nwanted:\n0\ngot:\n%v", got["declination"])
		}
	})
}
