package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

func insertRenderingWithMetadata(t *testing.T, repo *Repository, observerID string, metadata map[string]any) {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("creating uuid: %v", err)
	}

	rendering := &domain.Rendering{
		ID:         id,
		ObserverID: observerID,
		Challenge:  domain.Challenge{Text: "text", Type: "general"},
		Metadata:   metadata,
		RenderedAt: time.Now(),
	}

	err = repo.InsertRendering(rendering)
	if err != nil {
		t.Fatalf("inserting rendering: %v", err)
	}
}

func TestStatsRepo_CountAlerts(t *testing.T) {
	t.Run("should return 0 when no renderings are flagged", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		observer := testObserver(t, repo, "observer-1")
		insertRenderingWithMetadata(t, repo, observer.ID, nil)

		want := 0
		got, err := repo.CountAlerts()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got != want {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", want, got)
		}
	})

	t.Run("should return the correct alert count", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		observer := testObserver(t, repo, "observer-1")

		want := 2
		insertRenderingWithMetadata(t, repo, observer.ID, map[string]any{"alert": "equation_theft"})
		insertRenderingWithMetadata(t, repo, observer.ID, map[string]any{"alert": "interference", "other_data": "123"})
		insertRenderingWithMetadata(t, repo, observer.ID, nil)

		got, err := repo.CountAlerts()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got != want {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", want, got)
		}
	})
}

func TestStatsRepo_CountRejections(t *testing.T) {
	t.Run("should return 0 when no rejections were recorded", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		want := 0
		got, err := repo.CountRejections()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got != want {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", want, got)
		}
	})

	t.Run("should return the correct rejection count", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		want := 1

		logs := []*domain.Log{
			{
				ID:        uuid.MustParse("00000000-0000-0000-0000-000000000001"),
				Timestamp: time.Now(),
				Level:     "WARN",
				Message:   "challenge rejected",
				Context:   map[string]any{"rejected": true, "reason": "too_short"},
			},
			{
				ID:        uuid.MustParse("00000000-0000-0000-0000-000000000002"),
				Timestamp: time.Now(),
				Level:     "INFO",
				Message:   "frame rendered",
			},
		}

		for _, logEntry := range logs {
			if err := repo.InsertLog(logEntry); err != nil {
				t.Fatalf("inserting log: %v", err)
			}
		}

		got, err := repo.CountRejections()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got != want {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", want, got)
		}
	})
}
