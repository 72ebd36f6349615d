package rft

import (
	"fmt"
	"strings"

	"github.com/omegalab/rft/domain"
)

// frameInterpretations keys the interpretation section by frame type.
var frameInterpretations = map[string]string{
	domain.FrameHighCoherence: "The frame rendered with high coherence. Observer state and challenge structure are strongly aligned, and the render value sits well above the stability threshold.",
	domain.FrameStable:        "The frame rendered in a stable configuration. The derived parameters balance each other and the render holds without damping.",
	domain.FrameModerate:      "The frame rendered with moderate coherence. Phase shift or sync variance is absorbing part of the render value.",
	domain.FrameLowCoherence:  "The frame rendered with low coherence. The phase shift dominates the derivation and the render value decays below the moderate band.",
}

// typeGuidance keys the guidance section by challenge type.
var typeGuidance = map[string]string{
	"cognitive":       "Cognitive challenges render best when the reasoning chain is stated explicitly. Break the question into its inference steps.",
	"theoretical":     "Theoretical challenges benefit from naming the assumptions. State which premises the frame should hold fixed.",
	"perceptual":      "Perceptual challenges resolve through the observer's vantage. Specify what is being observed and from where.",
	"temporal":        "Temporal challenges are sensitive to the render window. Anchor the question to a reference moment.",
	"quantum":         "Quantum challenges render sharply when the measurement context is given. Name the observable and the basis.",
	"consciousness":   "Consciousness challenges carry the highest factor weighting. Distinguish the observing state from the observed content.",
	"observer":        "Observer challenges pivot on the vantage point. Name whose frame is being rendered and what they can see.",
	"reality":         "Reality challenges probe what persists between renders. State which aspect of existence the frame should pin down.",
	"synchronization": "Synchronization challenges depend on the sync variable. Describe which observers or processes should align.",
	"ai_alignment":    "Alignment challenges render against the machine observer model. Specify the system and the behavior to align.",
	"general":         "General challenges render with baseline weighting. Adding domain framing raises the consciousness factor.",
}

// respond builds the templated response text from the challenge, the derived
// parameters, and the rendered frame.
func respond(challenge *domain.Challenge, parameters domain.Parameters, frame domain.Frame) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== RENDERED FRAME [%s] ===\n\n", strings.ToUpper(frame.FrameType))

	fmt.Fprintf(&b, "Analysis: the challenge classifies as %s (%s discipline) with complexity %.2f and semantic density %.2f across %d words.\n\n",
		challenge.Type, challenge.Discipline, challenge.Complexity, challenge.SemanticDensity, challenge.WordCount)

	interpretation, ok := frameInterpretations[frame.FrameType]
	if !ok {
		interpretation = frameInterpretations[domain.FrameModerate]
	}
	fmt.Fprintf(&b, "Interpretation: %s\n\n", interpretation)

	fmt.Fprintf(&b, "Implications: at Ω = %.4f the frame %s. Stability holds at %.2f with confidence %.2f, marking the render %s.\n\n",
		frame.Omega, implication(frame), frame.Stability, frame.Confidence, frame.Quality)

	guidance, ok := typeGuidance[challenge.Type]
	if !ok {
		guidance = typeGuidance["general"]
	}
	fmt.Fprintf(&b, "Guidance: %s\n\n", guidance)

	fmt.Fprintf(&b, "Technical summary: Ω_obs=%.4f χ=%.4f Δφ=%.4f Υ=%.4f τ_eff=%.4f calibration=%.4f",
		parameters.OmegaObs, parameters.ChiLiam, parameters.DeltaPhi,
		parameters.Upsilon, parameters.TauEff, parameters.Calibration)

	if len(challenge.KeyConcepts) > 0 {
		fmt.Fprintf(&b, "\nKey concepts: %s", strings.Join(challenge.KeyConcepts, ", "))
	}

	return b.String()
}

func implication(frame domain.Frame) string {
	switch frame.FrameType {
	case domain.FrameHighCoherence:
		return "will persist across successive observations"
	case domain.FrameStable:
		return "holds for the current observation window"
	case domain.FrameModerate:
		return "may drift under repeated observation"
	default:
		return "requires re-rendering before it can be relied on"
	}
}
