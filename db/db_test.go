package db

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := NewEngineRepo(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

func testObserver(t *testing.T, repo *Repository, id string) *domain.Observer {
	t.Helper()

	fixedTime := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)

	observer := &domain.Observer{
		ID:            id,
		BaseCoherence: 1.0,
		SyncLevel:     1.0,
		Interactions:  0,
		Successes:     0,
		FirstSeen:     fixedTime,
		LastSeen:      fixedTime,
	}

	err := repo.UpsertObserver(observer)
	if err != nil {
		t.Fatalf("upserting observer: %v", err)
	}
	return observer
}

func testRendering(t *testing.T, repo *Repository, observerID string, deltaPhi float64, renderedAt time.Time) *domain.Rendering {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("creating uuid: %v", err)
	}

	rendering := &domain.Rendering{
		ID:         id,
		ObserverID: observerID,
		Challenge: domain.Challenge{
			ID:              id,
			ObserverID:      observerID,
			Text:            "How does the frame render under load?",
			Type:            "theoretical",
			Complexity:      0.5,
			SemanticDensity: 0.6,
			Discipline:      "physics",
			Entropy:         0.8,
			IsQuestion:      true,
			Urgency:         0.2,
			KeyConcepts:     []string{"frame", "render"},
			WordCount:       7,
			SubmittedAt:     renderedAt,
		},
		Parameters: domain.Parameters{
			OmegaObs: 1.618,
			ChiLiam:  2.718,
			DeltaPhi: deltaPhi,
			Upsilon:  1.414,
			TauEff:   1.0,
		},
		Frame: domain.Frame{
			Omega:      1.2,
			FrameType:  domain.FrameStable,
			Stability:  0.7,
			Confidence: 0.75,
			Quality:    domain.QualityGood,
		},
		Response:   "Frame rendered.",
		Metadata:   make(map[string]any),
		RenderedAt: renderedAt,
	}

	err = repo.InsertRendering(rendering)
	if err != nil {
		t.Fatalf("inserting rendering: %v", err)
	}
	return rendering
}
