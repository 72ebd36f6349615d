package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

var _ domain.RenderRepository = (*Repository)(nil)

// dbRendering represents a rendering as stored in the database. The challenge
// features, parameters, and frame are flattened into columns so the trend
// queries can aggregate them without JSON extraction.
type dbRendering struct {
	ID              uuid.UUID  `db:"id"`               // Unique identifier for the rendering.
	ObserverID      string     `db:"observer_id"`      // The observer the challenge was submitted for.
	Text            string     `db:"text"`             // The raw challenge text.
	ChallengeType   string     `db:"challenge_type"`   // The classified challenge type.
	Complexity      float64    `db:"complexity"`       // Complexity score in [0, 1].
	SemanticDensity float64    `db:"semantic_density"` // Non-stop-word ratio.
	Discipline      string     `db:"discipline"`       // Detected discipline.
	Entropy         float64    `db:"entropy"`          // Normalized character entropy.
	IsQuestion      bool       `db:"is_question"`      // Whether the text is structured as a question.
	HasEquation     bool       `db:"has_equation"`     // Whether the text contains an equation pattern.
	HasSymbols      bool       `db:"has_symbols"`      // Whether the text contains framework symbols.
	Urgency         float64    `db:"urgency"`          // Urgency score in [0, 1].
	KeyConcepts     StringList `db:"key_concepts"`     // Extracted key concepts.
	ObserverFocus   bool       `db:"observer_focus"`   // Whether the text is observer-focused.
	WordCount       int        `db:"word_count"`       // Number of words in the text.
	OmegaObs        float64    `db:"omega_obs"`        // Derived observer coherence.
	ChiLiam         float64    `db:"chi_liam"`         // Derived coupling factor.
	DeltaPhi        float64    `db:"delta_phi"`        // Derived phase shift.
	Upsilon         float64    `db:"upsilon"`          // Derived sync factor.
	TauEff          float64    `db:"tau_eff"`          // Derived effective render time.
	Calibration     float64    `db:"calibration"`      // Daily calibration term at render time.
	Omega           float64    `db:"omega"`            // The rendered value.
	FrameType       string     `db:"frame_type"`       // Frame type label.
	Stability       float64    `db:"stability"`        // Frame stability in [0, 1].
	Confidence      float64    `db:"confidence"`       // Frame confidence in [0, 1].
	Quality         string     `db:"quality"`          // Render quality tier.
	Response        string     `db:"response"`         // The generated response text.
	Metadata        Metadata   `db:"metadata"`         // Flexible metadata (watchdog flags, annotations).
	RenderedAt      time.Time  `db:"rendered_at"`      // The time the frame was rendered.
}

// toDomainRendering converts a dbRendering to a domain.Rendering.
func toDomainRendering(dbRend *dbRendering) *domain.Rendering {
	return &domain.Rendering{
		ID:         dbRend.ID,
		ObserverID: dbRend.ObserverID,
		Challenge: domain.Challenge{
			ID:              dbRend.ID,
			ObserverID:      dbRend.ObserverID,
			Text:            dbRend.Text,
			Type:            dbRend.ChallengeType,
			Complexity:      dbRend.Complexity,
			SemanticDensity: dbRend.SemanticDensity,
			Discipline:      dbRend.Discipline,
			Entropy:         dbRend.Entropy,
			IsQuestion:      dbRend.IsQuestion,
			HasEquation:     dbRend.HasEquation,
			HasSymbols:      dbRend.HasSymbols,
			Urgency:         dbRend.Urgency,
			KeyConcepts:     []string(dbRend.KeyConcepts),
			ObserverFocus:   dbRend.ObserverFocus,
			WordCount:       dbRend.WordCount,
			SubmittedAt:     dbRend.RenderedAt,
		},
		Parameters: domain.Parameters{
			OmegaObs:    dbRend.OmegaObs,
			ChiLiam:     dbRend.ChiLiam,
			DeltaPhi:    dbRend.DeltaPhi,
			Upsilon:     dbRend.Upsilon,
			TauEff:      dbRend.TauEff,
			Calibration: dbRend.Calibration,
		},
		Frame: domain.Frame{
			Omega:      dbRend.Omega,
			FrameType:  dbRend.FrameType,
			Stability:  dbRend.Stability,
			Confidence: dbRend.Confidence,
			Quality:    dbRend.Quality,
		},
		Response:   dbRend.Response,
		Metadata:   map[string]any(dbRend.Metadata),
		RenderedAt: dbRend.RenderedAt,
	}
}

// fromDomainRendering converts a domain.Rendering to a dbRendering.
func fromDomainRendering(rendering *domain.Rendering) *dbRendering {
	return &dbRendering{
		ID:              rendering.ID,
		ObserverID:      rendering.ObserverID,
		Text:            rendering.Challenge.Text,
		ChallengeType:   rendering.Challenge.Type,
		Complexity:      rendering.Challenge.Complexity,
		SemanticDensity: rendering.Challenge.SemanticDensity,
		Discipline:      rendering.Challenge.Discipline,
		Entropy:         rendering.Challenge.Entropy,
		IsQuestion:      rendering.Challenge.IsQuestion,
		HasEquation:     rendering.Challenge.HasEquation,
		HasSymbols:      rendering.Challenge.HasSymbols,
		Urgency:         rendering.Challenge.Urgency,
		KeyConcepts:     StringList(rendering.Challenge.KeyConcepts),
		ObserverFocus:   rendering.Challenge.ObserverFocus,
		WordCount:       rendering.Challenge.WordCount,
		OmegaObs:        rendering.Parameters.OmegaObs,
		ChiLiam:         rendering.Parameters.ChiLiam,
		DeltaPhi:        rendering.Parameters.DeltaPhi,
		Upsilon:         rendering.Parameters.Upsilon,
		TauEff:          rendering.Parameters.TauEff,
		Calibration:     rendering.Parameters.Calibration,
		Omega:           rendering.Frame.Omega,
		FrameType:       rendering.Frame.FrameType,
		Stability:       rendering.Frame.Stability,
		Confidence:      rendering.Frame.Confidence,
		Quality:         rendering.Frame.Quality,
		Response:        rendering.Response,
		Metadata:        Metadata(rendering.Metadata),
		RenderedAt:      rendering.RenderedAt,
	}
}

// InsertRendering saves a new rendering to the database.
func (repo *Repository) InsertRendering(rendering *domain.Rendering) error {
	dbRend := fromDomainRendering(rendering)
	query := `INSERT INTO renderings (id, observer_id, text, challenge_type, complexity, semantic_density,
	              discipline, entropy, is_question, has_equation, has_symbols, urgency, key_concepts,
	              observer_focus, word_count, omega_obs, chi_liam, delta_phi, upsilon, tau_eff, calibration,
	              omega, frame_type, stability, confidence, quality, response, metadata, rendered_at)
	          VALUES (:id, :observer_id, :text, :challenge_type, :complexity, :semantic_density,
	              :discipline, :entropy, :is_question, :has_equation, :has_symbols, :urgency, :key_concepts,
	              :observer_focus, :word_count, :omega_obs, :chi_liam, :delta_phi, :upsilon, :tau_eff, :calibration,
	              :omega, :frame_type, :stability, :confidence, :quality, :response, :metadata, :rendered_at)`

	_, err := repo.dbConn.NamedExec(query, dbRend)
	if err != nil {
		return fmt.Errorf("inserting rendering %s: %w", rendering.ID, err)
	}

	return nil
}

// GetRendering retrieves a single rendering by its ID.
func (repo *Repository) GetRendering(id uuid.UUID) (*domain.Rendering, error) {
	var dbRend dbRendering
	query := `SELECT * FROM renderings WHERE id = ?`

	err := repo.dbConn.Get(&dbRend, query, id)
	if err != nil {
		return nil, fmt.Errorf("fetching rendering %s: %w", id, err)
	}

	return toDomainRendering(&dbRend), nil
}

// GetRenderings retrieves the most recent renderings, newest first.
func (repo *Repository) GetRenderings(limit int) ([]*domain.Rendering, error) {
	var dbRends []*dbRendering
	query := `SELECT * FROM renderings ORDER BY rendered_at DESC LIMIT ?`

	err := repo.dbConn.Select(&dbRends, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching renderings: %w", err)
	}

	renderings := make([]*domain.Rendering, len(dbRends))
	for i, dbRend := range dbRends {
		renderings[i] = toDomainRendering(dbRend)
	}

	return renderings, nil
}

// GetObserverRenderings retrieves the most recent renderings of one observer, newest first.
func (repo *Repository) GetObserverRenderings(observerID string, limit int) ([]*domain.Rendering, error) {
	var dbRends []*dbRendering
	query := `SELECT * FROM renderings WHERE observer_id = ? ORDER BY rendered_at DESC LIMIT ?`

	err := repo.dbConn.Select(&dbRends, query, observerID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching renderings for observer %s: %w", observerID, err)
	}

	renderings := make([]*domain.Rendering, len(dbRends))
	for i, dbRend := range dbRends {
		renderings[i] = toDomainRendering(dbRend)
	}

	return renderings, nil
}

// RecentDeltaPhi returns the delta phi values of the most recent renderings, newest first.
func (repo *Repository) RecentDeltaPhi(n int) ([]float64, error) {
	var values []float64
	query := `SELECT delta_phi FROM renderings ORDER BY rendered_at DESC LIMIT ?`

	err := repo.dbConn.Select(&values, query, n)
	if err != nil {
		return nil, fmt.Errorf("fetching recent delta phi values: %w", err)
	}

	return values, nil
}

// CountRenderings returns the total number of stored renderings.
func (repo *Repository) CountRenderings() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM renderings`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting rendering count: %w", err)
	}

	return count, nil
}

// PruneRenderings deletes the oldest renderings beyond keep. Log entries
// referencing a pruned rendering are detached first to satisfy the foreign key.
func (repo *Repository) PruneRenderings(keep int) error {
	detach := `UPDATE logs SET rendering_id = NULL WHERE rendering_id IN (
	               SELECT id FROM renderings ORDER BY rendered_at DESC LIMIT -1 OFFSET ?
	           )`

	_, err := repo.dbConn.Exec(detach, keep)
	if err != nil {
		return fmt.Errorf("detaching logs from pruned renderings: %w", err)
	}

	query := `DELETE FROM renderings WHERE id IN (
	              SELECT id FROM renderings ORDER BY rendered_at DESC LIMIT -1 OFFSET ?
	          )`

	_, err = repo.dbConn.Exec(query, keep)
	if err != nil {
		return fmt.Errorf("pruning renderings: %w", err)
	}

	return nil
}
