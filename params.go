package rft

import (
	"math"
	"time"

	"github.com/omegalab/rft/domain"
)

// Base constants of the core equation. Derivation scales each one by the
// observer's state and the challenge's features before the frame is rendered.
const (
	BaseOmegaObs = 1.618   // Observer coherence
	BaseChiLiam  = 2.718   // Consciousness factor
	BaseDeltaPhi = 3.14159 // Phase shift
	BaseUpsilon  = 1.414   // Sync variable
	BaseTauEff   = 1.0     // Effective render time
)

// Framework limits.
const (
	CoherenceThreshold    = 0.707
	PhaseStabilityLimit   = 2 * math.Pi
	TemporalVarianceMax   = 10.0
	ObserverSyncTolerance = 0.05
)

// deltaPhiEpsilon is the floor applied after folding so the render division
// never sees a zero phase shift.
const deltaPhiEpsilon = 0.01

// chiTypeModifiers scales the consciousness factor by challenge type.
var chiTypeModifiers = map[string]float64{
	"cognitive":     1.2,
	"theoretical":   1.1,
	"perceptual":    1.15,
	"temporal":      1.3,
	"quantum":       1.25,
	"consciousness": 1.4,
	"general":       1.0,
}

// calculateParameters derives the full parameter set for one challenge. The
// daily calibration term scales the Ω_obs and χ bases before derivation.
func (engine *Engine) calculateParameters(observer *domain.Observer, challenge *domain.Challenge, now time.Time) domain.Parameters {
	calibration := math.Sin(float64(now.Unix())/86400.0) * 0.1

	omegaObs := engine.deriveOmegaObs(observer, challenge, now, calibration)
	chi := engine.deriveChi(challenge, calibration)
	deltaPhi := deriveDeltaPhi(challenge, now)
	upsilon := engine.deriveUpsilon(observer, challenge)
	tauEff := deriveTauEff(omegaObs, chi, deltaPhi, upsilon, calibration)

	return domain.Parameters{
		OmegaObs:    omegaObs,
		ChiLiam:     chi,
		DeltaPhi:    deltaPhi,
		Upsilon:     upsilon,
		TauEff:      tauEff,
		Calibration: calibration,
	}
}

// deriveOmegaObs scales the calibrated base by the observer's seeded
// coherence, their experience, the challenge complexity, and an hourly
// sinusoid.
func (engine *Engine) deriveOmegaObs(observer *domain.Observer, challenge *domain.Challenge, now time.Time, calibration float64) float64 {
	base := BaseOmegaObs * (1 + calibration)
	experience := math.Min(1.0+float64(observer.Interactions)*0.01, 2.0)
	complexityMod := 0.8 + challenge.Complexity*0.4
	hourly := math.Cos(float64(now.Unix())/3600.0)*0.1 + 1.0

	return base * observer.BaseCoherence * experience * complexityMod * hourly
}

// deriveChi scales the calibrated consciousness factor by challenge type and
// complexity. Values above four times the coherence threshold are damped.
func (engine *Engine) deriveChi(challenge *domain.Challenge, calibration float64) float64 {
	modifier, ok := chiTypeModifiers[challenge.Type]
	if !ok {
		modifier = 1.0
	}

	chi := BaseChiLiam * (1 + calibration*0.5) * modifier * (0.7 + challenge.Complexity*0.6)
	if chi > 4*engine.coherenceThreshold() {
		chi *= 0.9
	}
	return chi
}

// deriveDeltaPhi scales the base phase shift by the challenge's semantic
// density and entropy, adds a 30-minute sinusoidal shift, and folds the
// result into [epsilon, 2π).
func deriveDeltaPhi(challenge *domain.Challenge, now time.Time) float64 {
	semanticFactor := 1.0 + (challenge.SemanticDensity*2.0)*0.2
	entropyMod := 1.0 + (challenge.Entropy-0.5)*0.3
	shift := math.Sin(float64(now.Unix())/1800.0) * 0.5

	deltaPhi := BaseDeltaPhi*semanticFactor*entropyMod + shift
	deltaPhi = math.Abs(math.Mod(deltaPhi, PhaseStabilityLimit))
	if deltaPhi < deltaPhiEpsilon {
		deltaPhi = deltaPhiEpsilon
	}
	return deltaPhi
}

// deriveUpsilon scales the sync variable by the observer's sync level, the
// challenge urgency, and a random jitter, then clamps the result.
func (engine *Engine) deriveUpsilon(observer *domain.Observer, challenge *domain.Challenge) float64 {
	urgencyScale := 0.8 + challenge.Urgency*0.4
	jitter := 1.0 + (engine.random()*0.2 - 0.1)

	upsilon := BaseUpsilon * observer.SyncLevel * urgencyScale * jitter
	return math.Min(math.Max(upsilon, 0.1), 10.0)
}

// deriveTauEff computes the effective render time from the other four
// parameters, corrected by the coherence excess over the calibrated χ base.
// DeltaPhi is floored and Upsilon clamped before this runs, so the division
// is safe.
func deriveTauEff(omegaObs, chi, deltaPhi, upsilon, calibration float64) float64 {
	chiBase := BaseChiLiam * (1 + calibration*0.5)
	coherenceFactor := math.Min(chi/chiBase, 2.0)
	return BaseTauEff * (omegaObs * chi) / (deltaPhi * upsilon) * coherenceFactor
}

func (engine *Engine) coherenceThreshold() float64 {
	if engine.Config != nil && engine.Config.CoherenceThreshold > 0 {
		return engine.Config.CoherenceThreshold
	}
	return CoherenceThreshold
}
