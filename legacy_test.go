package rft

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/omegalab/rft/domain"
)

const legacyArray = `[
	{"observer": "observer-1", "text": "How does the frame stabilize?", "omega": 1.5, "frame_type": "stable", "response": "rendered", "timestamp": 1718452800},
	{"observer": "observer-2", "text": "Why does the phase drift?", "omega": 0.3, "response": "rendered", "timestamp": 1718452900},
	{"observer": "", "text": "orphaned entry", "omega": 1.0, "timestamp": 1718453000}
]`

func writeLegacyFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("writing legacy file : %v", err)
	}
	return path
}

func TestImportLegacyLog(t *testing.T) {
	t.Run("should import a JSON array and skip incomplete entries", func(t *testing.T) {
		repo := newMockRepository()
		engine := &Engine{Config: &Config{}, Repo: repo, rng: rand.New(rand.NewSource(1))}

		imported, err := engine.ImportLegacyLog(writeLegacyFile(t, "render.log", []byte(legacyArray)))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if imported != 2 {
			t.Fatalf("\nwanted:\n2 imported\ngot:\n%d", imported)
		}
		if len(repo.renderings) != 2 {
			t.Fatalf("\nwanted:\n2 renderings\ngot:\n%d", len(repo.renderings))
		}

		first := repo.renderings[0]
		if first.ObserverID != "observer-1" || first.Frame.FrameType != "stable" {
			t.Errorf("\nwanted:\nobserver-1 stable\ngot:\n%v %v", first.ObserverID, first.Frame.FrameType)
		}
		if first.Metadata["legacy_import"] != true {
			t.Errorf("\nwanted:\nlegacy_import marker\ngot:\n%v", first.Metadata)
		}
		if first.Challenge.WordCount == 0 {
			t.Errorf("\nwanted:\nre-extracted features\ngot:\nzero word count")
		}

		// The importer has to create the observers its renderings reference,
		// or the inserts fail the foreign key.
		for _, id := range []string{"observer-1", "observer-2"} {
			if _, ok := repo.observers[id]; !ok {
				t.Errorf("\nwanted:\nobserver %s created\ngot:\nnone", id)
			}
		}
	})

	t.Run("should derive the frame type from omega when absent", func(t *testing.T) {
		repo := newMockRepository()
		engine := &Engine{Config: &Config{}, Repo: repo, rng: rand.New(rand.NewSource(1))}

		if _, err := engine.ImportLegacyLog(writeLegacyFile(t, "render.log", []byte(legacyArray))); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		second := repo.renderings[1]
		if second.Frame.FrameType != domain.FrameLowCoherence {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", domain.FrameLowCoherence, second.Frame.FrameType)
		}
	})

	t.Run("should import newline-delimited entries", func(t *testing.T) {
		ndjson := `{"observer": "observer-1", "text": "How does the frame stabilize?", "omega": 1.5, "timestamp": 1718452800}
{"observer": "observer-1", "text": "Why does the phase drift?", "omega": 0.8, "timestamp": 1718452900}
`
		repo := newMockRepository()
		engine := &Engine{Config: &Config{}, Repo: repo, rng: rand.New(rand.NewSource(1))}

		imported, err := engine.ImportLegacyLog(writeLegacyFile(t, "render.ndjson", []byte(ndjson)))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if imported != 2 {
			t.Fatalf("\nwanted:\n2 imported\ngot:\n%d", imported)
		}
	})

	t.Run("should decompress brotli logs", func(t *testing.T) {
		var compressed bytes.Buffer
		writer := brotli.NewWriter(&compressed)
		if _, err := writer.Write([]byte(legacyArray)); err != nil {
			t.Fatalf("compressing legacy log : %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("flushing legacy log : %v", err)
		}

		repo := newMockRepository()
		engine := &Engine{Config: &Config{}, Repo: repo, rng: rand.New(rand.NewSource(1))}

		imported, err := engine.ImportLegacyLog(writeLegacyFile(t, "render.log.br", compressed.Bytes()))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if imported != 2 {
			t.Fatalf("\nwanted:\n2 imported\ngot:\n%d", imported)
		}
	})

	t.Run("should error on a missing file", func(t *testing.T) {
		engine := &Engine{Config: &Config{}, Repo: newMockRepository()}
		if _, err := engine.ImportLegacyLog(filepath.Join(t.TempDir(), "absent.log")); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}
