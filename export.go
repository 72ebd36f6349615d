package rft

import (
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/beevik/etree"
)

// ExportObserverXML writes an XML report of one observer's interaction
// history to w, optionally brotli-compressed.
func (engine *Engine) ExportObserverXML(observerID string, w io.Writer, compress bool) error {
	if engine.Repo == nil {
		return errors.New("engine has no repository configured")
	}

	observer, err := engine.Repo.GetObserver(observerID)
	if err != nil {
		return fmt.Errorf("getting observer %s : %w", observerID, err)
	}
	if observer == nil {
		return fmt.Errorf("observer %s not found", observerID)
	}
	renderings, err := engine.Repo.GetObserverRenderings(observerID, engine.renderingCap())
	if err != nil {
		return fmt.Errorf("getting renderings for %s : %w", observerID, err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("observer")
	root.CreateAttr("id", observer.ID)
	root.CreateAttr("first_seen", observer.FirstSeen.UTC().Format("2006-01-02T15:04:05Z"))
	root.CreateAttr("last_seen", observer.LastSeen.UTC().Format("2006-01-02T15:04:05Z"))

	state := root.CreateElement("state")
	state.CreateElement("base_coherence").SetText(fmt.Sprintf("%.4f", observer.BaseCoherence))
	state.CreateElement("sync_level").SetText(fmt.Sprintf("%.4f", observer.SyncLevel))
	state.CreateElement("interactions").SetText(fmt.Sprintf("%d", observer.Interactions))
	state.CreateElement("success_rate").SetText(fmt.Sprintf("%.4f", observer.SuccessRate()))

	history := root.CreateElement("renderings")
	history.CreateAttr("count", fmt.Sprintf("%d", len(renderings)))
	for _, rendering := range renderings {
		entry := history.CreateElement("rendering")
		entry.CreateAttr("id", rendering.ID.String())
		entry.CreateAttr("rendered_at", rendering.RenderedAt.UTC().Format("2006-01-02T15:04:05Z"))

		entry.CreateElement("text").SetText(rendering.Challenge.Text)
		entry.CreateElement("challenge_type").SetText(rendering.Challenge.Type)

		frame := entry.CreateElement("frame")
		frame.CreateAttr("type", rendering.Frame.FrameType)
		frame.CreateAttr("quality", rendering.Frame.Quality)
		frame.CreateElement("omega").SetText(fmt.Sprintf("%.6f", rendering.Frame.Omega))
		frame.CreateElement("stability").SetText(fmt.Sprintf("%.4f", rendering.Frame.Stability))
		frame.CreateElement("confidence").SetText(fmt.Sprintf("%.4f", rendering.Frame.Confidence))

		parameters := entry.CreateElement("parameters")
		parameters.CreateElement("omega_obs").SetText(fmt.Sprintf("%.6f", rendering.Parameters.OmegaObs))
		parameters.CreateElement("chi").SetText(fmt.Sprintf("%.6f", rendering.Parameters.ChiLiam))
		parameters.CreateElement("delta_phi").SetText(fmt.Sprintf("%.6f", rendering.Parameters.DeltaPhi))
		parameters.CreateElement("upsilon").SetText(fmt.Sprintf("%.6f", rendering.Parameters.Upsilon))
		parameters.CreateElement("tau_eff").SetText(fmt.Sprintf("%.6f", rendering.Parameters.TauEff))
	}

	doc.Indent(2)

	if !compress {
		if _, err := doc.WriteTo(w); err != nil {
			return fmt.Errorf("writing export : %w", err)
		}
		return nil
	}

	compressed := brotli.NewWriter(w)
	if _, err := doc.WriteTo(compressed); err != nil {
		return fmt.Errorf("writing compressed export : %w", err)
	}
	if err := compressed.Close(); err != nil {
		return fmt.Errorf("flushing compressed export : %w", err)
	}
	return nil
}
