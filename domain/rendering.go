package domain

import (
	"time"

	"github.com/google/uuid"
)

// Frame type labels assigned by thresholding the render value.
const (
	FrameHighCoherence = "high_coherence"
	FrameStable        = "stable"
	FrameModerate      = "moderate"
	FrameLowCoherence  = "low_coherence"
)

// Render quality tiers derived from the confidence score.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
)

// Parameters holds the derived values of the core equation for one challenge.
type Parameters struct {
	OmegaObs    float64
	ChiLiam     float64
	DeltaPhi    float64
	Upsilon     float64
	TauEff      float64
	Calibration float64
}

// Frame is the rendered result computed from a parameter set.
type Frame struct {
	Omega      float64
	FrameType  string
	Stability  float64
	Confidence float64
	Quality    string
}

// Rendering is the persisted record of one full pipeline run: the challenge,
// the derived parameters, the rendered frame, and the generated response.
type Rendering struct {
	ID         uuid.UUID
	ObserverID string
	Challenge  Challenge
	Parameters Parameters
	Frame      Frame
	Response   string
	Metadata   map[string]any
	RenderedAt time.Time
}

// GetType is used to process items on the engine write channel.
func (rendering *Rendering) GetType() string {
	return "RENDERING"
}

// RenderRepository persists renderings and serves the queries the trend and
// drift reports are built on.
type RenderRepository interface {
	InsertRendering(rendering *Rendering) error
	GetRendering(id uuid.UUID) (*Rendering, error)
	GetRenderings(limit int) ([]*Rendering, error)
	GetObserverRenderings(observerID string, limit int) ([]*Rendering, error)
	// RecentDeltaPhi returns the delta phi values of the most recent
	// renderings, newest first.
	RecentDeltaPhi(n int) ([]float64, error)
	CountRenderings() (int, error)
	// PruneRenderings deletes the oldest renderings beyond keep.
	PruneRenderings(keep int) error
}
