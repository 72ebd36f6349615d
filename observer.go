package rft

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/omegalab/rft/domain"
)

// Sync status tiers, derived from success rate and recency.
const (
	StatusSynchronized = "SYNCHRONIZED"
	StatusAligning     = "ALIGNING"
	StatusStabilizing  = "STABILIZING"
	StatusCalibrating  = "CALIBRATING"
	StatusInitializing = "INITIALIZING"
	StatusDormant      = "DORMANT"
	StatusInactive     = "INACTIVE"
)

// Volatility tiers from the coefficient of variation of recent phase shifts.
const (
	VolatilityStable   = "STABLE"
	VolatilityModerate = "MODERATE"
	VolatilityVolatile = "VOLATILE"
)

// Drift tiers from the per-observer drift rate and phase variation.
const (
	DriftStable   = "STABLE"
	DriftDrifting = "DRIFTING"
	DriftUnstable = "UNSTABLE"
)

// dormantAfter is the idle window before an observer counts as dormant.
const dormantAfter = 30 * time.Minute

// statusCacheTTL bounds how long a computed status answer is reused.
const statusCacheTTL = 5 * time.Minute

// ObserverStatus is the point-in-time sync report for one observer.
type ObserverStatus struct {
	ObserverID   string
	Status       string
	SyncLevel    float64
	SuccessRate  float64
	Interactions int64
	LastSeen     time.Time
}

type cachedStatus struct {
	status   *ObserverStatus
	cachedAt time.Time
}

// getOrCreateObserver loads an observer, creating one with a seeded base
// coherence on first contact.
func (engine *Engine) getOrCreateObserver(id string, now time.Time) (*domain.Observer, error) {
	if engine.Repo == nil {
		return nil, errors.New("engine has no repository configured")
	}

	observer, err := engine.Repo.GetObserver(id)
	if err != nil {
		return nil, fmt.Errorf("getting observer %s : %w", id, err)
	}
	if observer != nil {
		return observer, nil
	}

	observer = &domain.Observer{
		ID:            id,
		BaseCoherence: 0.8 + engine.random()*0.4,
		SyncLevel:     1.0,
		FirstSeen:     now,
		LastSeen:      now,
	}
	if err := engine.Repo.UpsertObserver(observer); err != nil {
		return nil, fmt.Errorf("creating observer %s : %w", id, err)
	}
	return observer, nil
}

// ObserverStatus reports the sync tier of one observer. Answers are cached
// for five minutes.
func (engine *Engine) ObserverStatus(observerID string) (*ObserverStatus, error) {
	now := engine.now()

	engine.statusMu.Lock()
	if cached, ok := engine.statusCache[observerID]; ok && now.Sub(cached.cachedAt) < statusCacheTTL {
		engine.statusMu.Unlock()
		return cached.status, nil
	}
	engine.statusMu.Unlock()

	if engine.Repo == nil {
		return nil, errors.New("engine has no repository configured")
	}
	observer, err := engine.Repo.GetObserver(observerID)
	if err != nil {
		return nil, fmt.Errorf("getting observer %s : %w", observerID, err)
	}

	status := &ObserverStatus{ObserverID: observerID, Status: StatusInactive}
	if observer != nil {
		status.SyncLevel = observer.SyncLevel
		status.SuccessRate = observer.SuccessRate()
		status.Interactions = observer.Interactions
		status.LastSeen = observer.LastSeen
		status.Status = syncTier(observer, now)
	}

	engine.statusMu.Lock()
	engine.statusCache[observerID] = cachedStatus{status: status, cachedAt: now}
	engine.statusMu.Unlock()

	return status, nil
}

func syncTier(observer *domain.Observer, now time.Time) string {
	if observer.Interactions == 0 {
		return StatusInitializing
	}
	if now.Sub(observer.LastSeen) > dormantAfter {
		return StatusDormant
	}

	switch rate := observer.SuccessRate(); {
	case rate >= 0.9:
		return StatusSynchronized
	case rate >= 0.75:
		return StatusAligning
	case rate >= 0.5:
		return StatusStabilizing
	default:
		return StatusCalibrating
	}
}

// Lens is the coherence trend over recent frames.
type Lens struct {
	Frames     int
	MeanPhase  float64
	DriftPct   float64
	Volatility string
}

// CoherenceTrend computes the lens report over the n most recent frames.
func (engine *Engine) CoherenceTrend(n int) (*Lens, error) {
	if engine.Repo == nil {
		return nil, errors.New("engine has no repository configured")
	}
	values, err := engine.Repo.RecentDeltaPhi(n)
	if err != nil {
		return nil, fmt.Errorf("getting recent phase shifts : %w", err)
	}
	if len(values) == 0 {
		return &Lens{Volatility: VolatilityStable}, nil
	}

	mean, cv := meanAndCV(values)

	// Values arrive newest first; drift compares the oldest frame to the
	// newest one.
	driftPct := 0.0
	oldest := values[len(values)-1]
	if oldest != 0 {
		driftPct = (values[0] - oldest) / oldest * 100
	}

	lens := &Lens{
		Frames:    len(values),
		MeanPhase: mean,
		DriftPct:  driftPct,
	}
	switch {
	case cv < 0.1:
		lens.Volatility = VolatilityStable
	case cv < 0.3:
		lens.Volatility = VolatilityModerate
	default:
		lens.Volatility = VolatilityVolatile
	}
	return lens, nil
}

// SyncView is the drift report for one observer.
type SyncView struct {
	ObserverID string
	Frames     int
	DriftRate  float64
	CV         float64
	State      string
}

// DriftReport computes the per-observer render drift over their recent
// frames.
func (engine *Engine) DriftReport(observerID string) (*SyncView, error) {
	if engine.Repo == nil {
		return nil, errors.New("engine has no repository configured")
	}
	renderings, err := engine.Repo.GetObserverRenderings(observerID, 50)
	if err != nil {
		return nil, fmt.Errorf("getting renderings for %s : %w", observerID, err)
	}

	view := &SyncView{ObserverID: observerID, Frames: len(renderings), State: DriftStable}
	if len(renderings) < 2 {
		return view, nil
	}

	values := make([]float64, len(renderings))
	for i, rendering := range renderings {
		values[i] = rendering.Parameters.DeltaPhi
	}
	mean, cv := meanAndCV(values)
	view.CV = cv

	if mean != 0 {
		diffSum := 0.0
		for i := 1; i < len(values); i++ {
			diffSum += math.Abs(values[i] - values[i-1])
		}
		view.DriftRate = diffSum / float64(len(values)-1) / mean
	}

	switch {
	case view.DriftRate < 0.05 && cv < 0.1:
		view.State = DriftStable
	case view.DriftRate < 0.15 && cv < 0.25:
		view.State = DriftDrifting
	default:
		view.State = DriftUnstable
	}
	return view, nil
}

// meanAndCV returns the mean and the coefficient of variation of values.
func meanAndCV(values []float64) (float64, float64) {
	mean := 0.0
	for _, value := range values {
		mean += value
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0, 0
	}

	variance := 0.0
	for _, value := range values {
		variance += (value - mean) * (value - mean)
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance) / math.Abs(mean)
}
