package rft

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/omegalab/rft/analysis"
	"github.com/omegalab/rft/domain"
)

// legacyEntry is one record of the flat JSON append files the original
// system persisted renderings to.
type legacyEntry struct {
	Observer  string  `json:"observer"`
	Text      string  `json:"text"`
	Omega     float64 `json:"omega"`
	FrameType string  `json:"frame_type"`
	Response  string  `json:"response"`
	Timestamp int64   `json:"timestamp"`
}

// ImportLegacyLog imports a legacy flat-JSON render log into the repository.
// The file may be a plain JSON array, newline-delimited JSON objects, or a
// brotli-compressed copy of either. Returns the number of imported entries.
func (engine *Engine) ImportLegacyLog(path string) (int, error) {
	if engine.Repo == nil {
		return 0, errors.New("engine has no repository configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading legacy log %s : %w", path, err)
	}

	if !isLegacyText(mimetype.Detect(data)) {
		// Brotli carries no magic bytes, so anything unrecognizable is
		// treated as a compressed log.
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
		if err != nil {
			return 0, fmt.Errorf("decompressing legacy log %s : %w", path, err)
		}
		data = decompressed
	}

	entries, err := parseLegacyEntries(data)
	if err != nil {
		return 0, fmt.Errorf("parsing legacy log %s : %w", path, err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.Text == "" || entry.Observer == "" {
			continue
		}
		rendering, err := legacyRendering(entry)
		if err != nil {
			return imported, err
		}
		// The observer row must exist before the rendering referencing it.
		if _, err := engine.getOrCreateObserver(entry.Observer, rendering.RenderedAt); err != nil {
			return imported, fmt.Errorf("importing legacy observer : %w", err)
		}
		if err := engine.Repo.InsertRendering(rendering); err != nil {
			return imported, fmt.Errorf("inserting legacy rendering : %w", err)
		}
		imported++
	}
	if err := engine.Repo.PruneRenderings(engine.renderingCap()); err != nil {
		return imported, fmt.Errorf("pruning after import : %w", err)
	}
	return imported, nil
}

// isLegacyText reports whether the detected type, or any of its ancestors,
// is one of the uncompressed formats the importer reads. NDJSON files detect
// as application/x-ndjson rather than text/plain, so the parent chain is
// walked instead of matching leaf types.
func isLegacyText(detected *mimetype.MIME) bool {
	for mime := detected; mime != nil; mime = mime.Parent() {
		if mime.Is("application/json") || mime.Is("application/x-ndjson") || mime.Is("text/plain") {
			return true
		}
	}
	return false
}

func parseLegacyEntries(data []byte) ([]legacyEntry, error) {
	var entries []legacyEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	// Fall back to newline-delimited objects.
	decoder := json.NewDecoder(bytes.NewReader(data))
	for {
		var entry legacyEntry
		err := decoder.Decode(&entry)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding entry : %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// legacyRendering converts a flat entry into a rendering. Features are
// re-extracted from the text; parameters the legacy format never stored stay
// zero and the import is marked in the metadata.
func legacyRendering(entry legacyEntry) (*domain.Rendering, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}

	challenge := analysis.Extract(entry.Text)
	challenge.ID = id
	challenge.ObserverID = entry.Observer
	challenge.SubmittedAt = time.Unix(entry.Timestamp, 0)

	frameType := entry.FrameType
	if frameType == "" {
		frameType = frameTypeOf(entry.Omega)
	}

	return &domain.Rendering{
		ID:         id,
		ObserverID: entry.Observer,
		Challenge:  challenge,
		Frame: domain.Frame{
			Omega:     entry.Omega,
			FrameType: frameType,
		},
		Response:   entry.Response,
		Metadata:   map[string]any{"legacy_import": true},
		RenderedAt: time.Unix(entry.Timestamp, 0),
	}, nil
}
