package rft

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

// dramaticShiftThreshold is the similarity drop that counts as a dramatic
// shift in an observer's challenge pattern.
const dramaticShiftThreshold = 0.7

// fingerprintFeatures buckets the continuous challenge features so small
// variations hash identically.
func fingerprintFeatures(challenge *domain.Challenge) map[string]any {
	return map[string]any{
		"type":        challenge.Type,
		"discipline":  challenge.Discipline,
		"complexity":  bucket(challenge.Complexity),
		"density":     bucket(challenge.SemanticDensity),
		"entropy":     bucket(challenge.Entropy),
		"urgency":     bucket(challenge.Urgency),
		"is_question": challenge.IsQuestion,
		"word_band":   challenge.WordCount / 10,
	}
}

// bucket rounds a [0, 1] score to one decimal.
func bucket(value float64) float64 {
	return math.Round(value*10) / 10
}

// fingerprintHash hashes the bucketed features in a fixed field order.
func fingerprintHash(features map[string]any) string {
	canonical := fmt.Sprintf("%v|%v|%v|%v|%v|%v|%v|%v",
		features["type"], features["discipline"], features["complexity"],
		features["density"], features["entropy"], features["urgency"],
		features["is_question"], features["word_band"])

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// fingerprintSimilarity is the positional hex-character match ratio of two
// fingerprint hashes.
func fingerprintSimilarity(a, b string) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

// fingerprint builds the fingerprint for a challenge and scores it against
// the observer's previous one.
func (engine *Engine) fingerprint(observerID string, challenge *domain.Challenge, now time.Time) (*domain.Fingerprint, error) {
	features := fingerprintFeatures(challenge)
	hash := fingerprintHash(features)

	similarity := 1.0
	previous, err := engine.Repo.LatestFingerprint(observerID)
	if err != nil {
		return nil, fmt.Errorf("getting latest fingerprint for %s : %w", observerID, err)
	}
	if previous != nil {
		similarity = fingerprintSimilarity(previous.Hash, hash)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	return &domain.Fingerprint{
		ID:         id,
		ObserverID: observerID,
		Hash:       hash,
		Features:   features,
		Similarity: similarity,
		CreatedAt:  now,
	}, nil
}
