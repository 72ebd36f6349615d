// Package rftmath provides the closed-form helpers of Rendered Frame Theory
// that do not need engine state: render simulation, redshift render delay,
// and magnetic frame analysis.
package rftmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroTauEff is returned when a render simulation is asked to divide by a
// zero effective render time.
var ErrZeroTauEff = errors.New("tau_eff must be non-zero")

// renderDelayScale calibrates the redshift render delay curve.
const renderDelayScale = 1.38

// RenderSimulation computes the observer coherence a frame would need to
// render with the given phase shift and effective render time.
func RenderSimulation(deltaPhi float64, tauEff float64) (float64, error) {
	if tauEff == 0 {
		return 0, ErrZeroTauEff
	}
	return deltaPhi / tauEff, nil
}

// RenderDelay computes the effective render time of a frame observed at
// redshift z. Negative redshifts below -1 have no frame to render.
func RenderDelay(z float64) (float64, error) {
	if z <= -1 {
		return 0, fmt.Errorf("redshift %v out of range", z)
	}
	return renderDelayScale * math.Log(1+z), nil
}

// MagneticFrame is the result of analyzing a magnetic field vector.
type MagneticFrame struct {
	Magnitude   float64 // Field strength |B|.
	Inclination float64 // Dip angle in degrees, positive downward.
	Declination float64 // Horizontal angle in degrees from the x axis.
	Class       string  // Qualitative field classification.
}

// MagneticAnalysis classifies a magnetic field vector given its components.
// Magnitudes follow rough geomagnetic bands, in the same unit as the inputs.
func MagneticAnalysis(bx float64, by float64, bz float64) MagneticFrame {
	magnitude := math.Sqrt(bx*bx + by*by + bz*bz)

	horizontal := math.Sqrt(bx*bx + by*by)
	inclination := 0.0
	if magnitude > 0 {
		inclination = math.Atan2(bz, horizontal) * 180 / math.Pi
	}

	declination := 0.0
	if horizontal > 0 {
		declination = math.Atan2(by, bx) * 180 / math.Pi
	}

	var class string
	switch {
	case magnitude == 0:
		class = "null"
	case magnitude < 25000:
		class = "weak"
	case magnitude < 65000:
		class = "nominal"
	default:
		class = "strong"
	}

	return MagneticFrame{
		Magnitude:   magnitude,
		Inclination: inclination,
		Declination: declination,
		Class:       class,
	}
}
