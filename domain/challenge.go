package domain

import (
	"time"

	"github.com/google/uuid"
)

// Challenge is a single submitted text along with the features extracted from
// it. The feature fields are filled by the analysis package before the
// challenge reaches parameter derivation.
type Challenge struct {
	ID              uuid.UUID
	ObserverID      string
	Text            string
	Type            string
	Complexity      float64
	SemanticDensity float64
	Discipline      string
	Entropy         float64
	IsQuestion      bool
	HasEquation     bool
	HasSymbols      bool
	Urgency         float64
	KeyConcepts     []string
	ObserverFocus   bool
	WordCount       int
	// Annotations collects values attached by extension scripts. They are
	// merged into the rendering metadata when the frame is recorded.
	Annotations map[string]any
	SubmittedAt time.Time
}

// Annotate sets a key on the challenge annotations, allocating the map on
// first use.
func (challenge *Challenge) Annotate(key string, value any) {
	if challenge.Annotations == nil {
		challenge.Annotations = make(map[string]any)
	}
	challenge.Annotations[key] = value
}
