package rft

import (
	"math"

	"github.com/omegalab/rft/domain"
)

// renderFrame computes the render value and its quality scores from a derived
// parameter set.
func renderFrame(parameters domain.Parameters) domain.Frame {
	omega := (parameters.OmegaObs * parameters.ChiLiam) / (parameters.DeltaPhi * parameters.Upsilon)

	stability := frameStability(parameters)
	confidence := 0.4*math.Min(math.Abs(omega)/2.0, 1.0) +
		0.35*stability +
		0.25*math.Min(parameters.TauEff/2.0, 1.0)

	return domain.Frame{
		Omega:      omega,
		FrameType:  frameTypeOf(omega),
		Stability:  stability,
		Confidence: confidence,
		Quality:    renderQuality(omega, stability),
	}
}

func frameTypeOf(omega float64) string {
	switch {
	case omega > 2.0:
		return domain.FrameHighCoherence
	case omega > 1.0:
		return domain.FrameStable
	case omega > 0.5:
		return domain.FrameModerate
	default:
		return domain.FrameLowCoherence
	}
}

// frameStability is one minus the mean relative deviation of the four
// components from their calibrated base values, clamped to [0, 1]. Components
// sitting on their bases yield a fully stable frame.
func frameStability(parameters domain.Parameters) float64 {
	omegaBase := BaseOmegaObs * (1 + parameters.Calibration)
	chiBase := BaseChiLiam * (1 + parameters.Calibration*0.5)

	variance := (math.Abs(parameters.OmegaObs-omegaBase)/omegaBase +
		math.Abs(parameters.ChiLiam-chiBase)/chiBase +
		math.Abs(parameters.DeltaPhi-BaseDeltaPhi)/BaseDeltaPhi +
		math.Abs(parameters.Upsilon-BaseUpsilon)/BaseUpsilon) / 4.0

	return math.Min(math.Max(1.0-variance, 0.0), 1.0)
}

func renderQuality(omega, stability float64) string {
	switch {
	case stability > 0.8 && omega > 1.5:
		return domain.QualityExcellent
	case stability > 0.6 && omega > 1.0:
		return domain.QualityGood
	case stability > 0.4 && omega > 0.5:
		return domain.QualityFair
	default:
		return domain.QualityPoor
	}
}
