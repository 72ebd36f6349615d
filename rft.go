// Package rft implements a Rendered Frame Theory engine: a deterministic
// pipeline that turns free-text challenges into rendered frames with SQLite
// storage. It is designed to be decoupled from front-end implementations and
// provides handler hooks so chat bots, CLIs, or services can attach.
//
// The core functionality includes:
//   - Admission validation with typed rejection errors and guidance text
//   - Linguistic feature extraction and challenge classification
//   - Parameter derivation and frame rendering from the core equation
//   - Lua-based extension system for challenge/frame processing
//   - Watchdog rule set screening for equation-extraction attempts
//   - Fingerprint memory with dramatic-shift detection
//   - SQLite database storage for renderings, observers, and logs
package rft

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omegalab/rft/analysis"
	"github.com/omegalab/rft/core"
	"github.com/omegalab/rft/domain"
	"github.com/omegalab/rft/extensions"
	"github.com/omegalab/rft/watchdog"
)

// Repository defines the methods consumed by the engine to interact with the
// SQLite backend. It composes the domain repository interfaces so one struct
// can back the whole engine.
type Repository interface {
	domain.LogRepository
	domain.RenderRepository
	domain.ObserverRepository
	domain.MemoryRepository
	domain.ExtensionRepository
	domain.StatsRepository
	Close() error
}

// EngineItem is an interface for items that can be written to the database
// through the DBWriteChannel. It is implemented by *domain.Rendering,
// *domain.Fingerprint, and *domain.Log.
type EngineItem interface {
	// GetType returns a string identifier for the type of engine item.
	GetType() string
}

// Alert kinds raised through the alert handler.
const (
	AlertWatchdog      = "watchdog"
	AlertInterference  = "interference"
	AlertDramaticShift = "dramatic_shift"
)

// Alert is delivered to the alert handler when a watchdog rule matches, an
// interference spike is detected, or a fingerprint shifts dramatically.
type Alert struct {
	Kind       string    // One of the Alert* constants
	ObserverID string    // Observer whose challenge raised the alert
	Classes    []string  // Watchdog classes, nil for other kinds
	Message    string    // Human readable description
	Time       time.Time // When the alert was raised
}

// Engine is the main struct that orchestrates the pipeline: validation,
// feature extraction, watchdogs, parameter derivation, frame rendering,
// response generation, and persistence.
type Engine struct {
	ConfigDir      string                                 // The configuration directory
	Config         *Config                                // The engine configuration
	Repo           Repository                             // DB Repository Interface
	Watchdog       *watchdog.Watchdog                     // Rule set screening challenge text
	DBWriteChannel chan EngineItem                        // DB Write Channel
	Extensions     []*extensions.Runtime                  // Slice of loaded extensions
	OnResponse     func(rendering *domain.Rendering) error // Function to be ran on each rendered frame
	OnAlert        func(alert Alert) error                 // Function to be ran on each alert
	OnLog          func(log *domain.Log) error             // Function to be ran on each persisted log

	sessions    map[string]*Session
	sessionsMu  sync.RWMutex
	statusCache map[string]cachedStatus
	statusMu    sync.Mutex
	writerDone  chan struct{}
	sweepCancel context.CancelFunc
	startedAt   time.Time

	// now and rng are swapped out in tests for deterministic derivation.
	now   func() time.Time
	rng   *rand.Rand
	rngMu sync.Mutex
}

var _ extensions.EngineService = (*Engine)(nil)

// New creates a new Engine instance with default configuration and applies
// any provided options. It starts the database write goroutine and the
// session cleanup sweep; call Shutdown to stop both.
func New(options ...func(*Engine) error) (*Engine, error) {
	engine := &Engine{
		Config:         &Config{},
		Watchdog:       watchdog.New(),
		DBWriteChannel: make(chan EngineItem, 10),
		Extensions:     make([]*extensions.Runtime, 0),
		sessions:       make(map[string]*Session),
		statusCache:    make(map[string]cachedStatus),
		writerDone:     make(chan struct{}),
		startedAt:      time.Now(),
		now:            time.Now,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	err := engine.WithOptions(options...)
	if err != nil {
		return nil, err
	}

	go engine.WriteToDB()

	sweepCtx, cancel := context.WithCancel(context.Background())
	engine.sweepCancel = cancel
	go engine.sweepSessions(sweepCtx)

	return engine, nil
}

// Submit runs the full pipeline for one challenge text and returns the
// persisted rendering. Validation rejections are returned as a
// *ValidationError and recorded as a rejection log entry.
func (engine *Engine) Submit(ctx context.Context, observerID string, text string) (*domain.Rendering, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := engine.now()

	if err := engine.validate(text); err != nil {
		var rejection *ValidationError
		if errors.As(err, &rejection) {
			engine.recordRejection(observerID, rejection, now)
		}
		return nil, err
	}

	challenge := analysis.Extract(text)
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	challenge.ID = id
	challenge.ObserverID = observerID
	challenge.SubmittedAt = now
	if challenge.Annotations == nil {
		challenge.Annotations = make(map[string]any)
	}

	// The observer row must exist before any log or rendering referencing it
	// is queued.
	observer, err := engine.getOrCreateObserver(observerID, now)
	if err != nil {
		return nil, fmt.Errorf("loading observer %s : %w", observerID, err)
	}

	metadata := make(map[string]any)

	if classes := engine.Watchdog.Scan(text); len(classes) > 0 {
		metadata["alert"] = classes
		logErr := engine.WriteLog("WARN", fmt.Sprintf("watchdog matched: %s", strings.Join(classes, ", ")),
			core.LogWithObserverID(observerID),
			core.LogWithContext(map[string]any{"classes": classes}),
		)
		if logErr != nil {
			log.Println(logErr)
		}
		engine.raiseAlert(Alert{
			Kind:       AlertWatchdog,
			ObserverID: observerID,
			Classes:    classes,
			Message:    fmt.Sprintf("challenge triggered %d watchdog rule class(es)", len(classes)),
			Time:       now,
		})
	}

	if engine.signalScan(&challenge) {
		metadata["interference"] = true
		engine.raiseAlert(Alert{
			Kind:       AlertInterference,
			ObserverID: observerID,
			Message:    "semantic density spike against the rolling phase mean",
			Time:       now,
		})
	}

	for _, extension := range engine.Extensions {
		if !extension.Data.Enabled {
			continue
		}
		if err := extension.OnChallenge(&challenge); err != nil {
			engine.WriteLog("ERROR", err.Error(), core.LogWithExtensionID(extension.Data.ID))
		}
	}

	parameters := engine.calculateParameters(observer, &challenge, now)
	frame := renderFrame(parameters)

	for _, extension := range engine.Extensions {
		if !extension.Data.Enabled {
			continue
		}
		if err := extension.OnFrame(&frame, &challenge); err != nil {
			engine.WriteLog("ERROR", err.Error(), core.LogWithExtensionID(extension.Data.ID))
		}
	}

	response := respond(&challenge, parameters, frame)

	for key, value := range challenge.Annotations {
		metadata[key] = value
	}

	rendering := &domain.Rendering{
		ID:         challenge.ID,
		ObserverID: observerID,
		Challenge:  challenge,
		Parameters: parameters,
		Frame:      frame,
		Response:   response,
		Metadata:   metadata,
		RenderedAt: now,
	}
	engine.DBWriteChannel <- rendering

	observer.Interactions++
	observer.Successes++
	observer.LastSeen = now
	observer.SyncLevel += (frame.Confidence - observer.SyncLevel) * 0.1
	if err := engine.Repo.UpsertObserver(observer); err != nil {
		return nil, fmt.Errorf("updating observer %s : %w", observerID, err)
	}

	fingerprint, err := engine.fingerprint(observer.ID, &challenge, now)
	if err != nil {
		engine.WriteLog("ERROR", err.Error(), core.LogWithObserverID(observerID))
	} else {
		if 1.0-fingerprint.Similarity > dramaticShiftThreshold && fingerprint.Similarity < 1.0 {
			engine.raiseAlert(Alert{
				Kind:       AlertDramaticShift,
				ObserverID: observerID,
				Message:    fmt.Sprintf("fingerprint similarity dropped to %.2f", fingerprint.Similarity),
				Time:       now,
			})
		}
		engine.DBWriteChannel <- fingerprint
	}

	engine.TouchSession(observerID)

	if engine.OnResponse != nil {
		if err := engine.OnResponse(rendering); err != nil {
			engine.WriteLog("ERROR", err.Error(), core.LogWithRenderingID(rendering.ID))
		}
	}
	return rendering, nil
}

// signalScan flags a challenge whose semantic density, projected onto the
// phase scale, spikes above three times the rolling mean phase shift of
// recent frames.
func (engine *Engine) signalScan(challenge *domain.Challenge) bool {
	window := engine.Config.InterferenceWindow
	if window <= 0 {
		window = 10
	}
	if engine.Repo == nil {
		return false
	}

	values, err := engine.Repo.RecentDeltaPhi(window)
	if err != nil || len(values) == 0 {
		return false
	}

	sum := 0.0
	for _, value := range values {
		sum += value
	}
	mean := sum / float64(len(values))
	if mean <= 0 {
		return false
	}

	return challenge.SemanticDensity*math.Pi > 3*mean
}

// recordRejection counts the rejection against the observer and persists a
// WARN log carrying the guidance text. Rejections raise the interaction count
// without a matching success, so the observer's success rate reflects them.
func (engine *Engine) recordRejection(observerID string, rejection *ValidationError, now time.Time) {
	if engine.Repo != nil {
		observer, err := engine.getOrCreateObserver(observerID, now)
		if err != nil {
			log.Println(err)
		} else {
			observer.Interactions++
			observer.LastSeen = now
			if err := engine.Repo.UpsertObserver(observer); err != nil {
				log.Println(err)
			}
		}
	}

	logErr := engine.WriteLog("WARN", rejection.Reason,
		core.LogWithObserverID(observerID),
		core.LogWithContext(map[string]any{
			"rejected": true,
			"guidance": rejection.Guidance,
		}),
	)
	if logErr != nil {
		log.Println(logErr)
	}
}

func (engine *Engine) raiseAlert(alert Alert) {
	if engine.OnAlert == nil {
		return
	}
	if err := engine.OnAlert(alert); err != nil {
		log.Println(err)
	}
}

// WriteToDB drains the write channel into the repository, applying the
// retention caps after each insert. It runs on its own goroutine and exits
// when the channel is closed by Shutdown.
func (engine *Engine) WriteToDB() {
	defer close(engine.writerDone)
	for engineItem := range engine.DBWriteChannel {
		if engine.Repo == nil {
			log.Println("no repository configured, dropping", engineItem.GetType())
			continue
		}
		switch castItem := engineItem.(type) {
		case *domain.Rendering:
			err := engine.Repo.InsertRendering(castItem)
			if err != nil {
				log.Println(err)
				continue
			}
			if err := engine.Repo.PruneRenderings(engine.renderingCap()); err != nil {
				log.Println(err)
			}
		case *domain.Fingerprint:
			err := engine.Repo.InsertFingerprint(castItem)
			if err != nil {
				log.Println(err)
				continue
			}
			if err := engine.Repo.PruneFingerprints(castItem.ObserverID, engine.fingerprintCap()); err != nil {
				log.Println(err)
			}
		case *domain.Log:
			err := engine.Repo.InsertLog(castItem)
			if err != nil {
				log.Println(err)
				continue
			}
			if rejected, ok := castItem.Context["rejected"].(bool); ok && rejected {
				if err := engine.Repo.PruneLogs(castItem.Level, engine.rejectionLogCap()); err != nil {
					log.Println(err)
				}
			}
			if engine.OnLog != nil {
				if err := engine.OnLog(castItem); err != nil {
					log.Println(err)
				}
			}
		default:
			log.Print(castItem)
		}
	}
}

// WriteLog queues a log entry on the write channel.
func (engine *Engine) WriteLog(level string, message string, options ...func(log *domain.Log) error) error {
	switch level {
	case "DEBUG":
	case "INFO":
	case "WARN":
	case "ERROR":
	case "FATAL":
	default:
		return fmt.Errorf("level should be either: debug, info, warn, error, fatal")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	entry := &domain.Log{
		ID:        id,
		Level:     level,
		Message:   message,
		Timestamp: engine.now(),
	}
	for _, option := range options {
		err := option(entry)
		if err != nil {
			return fmt.Errorf("applying log option : %w", err)
		}
	}
	engine.DBWriteChannel <- entry
	return nil
}

// Shutdown stops the session sweep, drains the write channel, and closes the
// repository. It returns the context error if draining does not finish in
// time.
func (engine *Engine) Shutdown(ctx context.Context) error {
	if engine.sweepCancel != nil {
		engine.sweepCancel()
	}
	close(engine.DBWriteChannel)
	select {
	case <-engine.writerDone:
	case <-ctx.Done():
		return ctx.Err()
	}
	if engine.Repo != nil {
		return engine.Repo.Close()
	}
	return nil
}

// SystemStatus summarizes the engine's stored state and uptime.
type SystemStatus struct {
	Renderings     int
	Observers      int
	Fingerprints   int
	Alerts         int
	Rejections     int
	ActiveSessions int
	Uptime         time.Duration
}

// Status returns counts of the stored entities plus uptime.
func (engine *Engine) Status() (*SystemStatus, error) {
	if engine.Repo == nil {
		return nil, errors.New("engine has no repository configured")
	}

	status := &SystemStatus{
		ActiveSessions: len(engine.ActiveSessions()),
		Uptime:         time.Since(engine.startedAt),
	}

	var err error
	if status.Renderings, err = engine.Repo.CountRenderings(); err != nil {
		return nil, fmt.Errorf("counting renderings : %w", err)
	}
	if status.Observers, err = engine.Repo.CountObservers(); err != nil {
		return nil, fmt.Errorf("counting observers : %w", err)
	}
	if status.Fingerprints, err = engine.Repo.CountFingerprints(); err != nil {
		return nil, fmt.Errorf("counting fingerprints : %w", err)
	}
	if status.Alerts, err = engine.Repo.CountAlerts(); err != nil {
		return nil, fmt.Errorf("counting alerts : %w", err)
	}
	if status.Rejections, err = engine.Repo.CountRejections(); err != nil {
		return nil, fmt.Errorf("counting rejections : %w", err)
	}
	return status, nil
}

// Renderings returns the most recent renderings, newest first.
func (engine *Engine) Renderings(limit int) ([]*domain.Rendering, error) {
	if engine.Repo == nil {
		return nil, errors.New("engine has no repository configured")
	}
	return engine.Repo.GetRenderings(limit)
}

// GetExtension returns the loaded extension with the given name.
func (engine *Engine) GetExtension(name string) (*extensions.Runtime, bool) {
	for _, extension := range engine.Extensions {
		if extension.Data.Name == name {
			return extension, true
		}
	}
	return nil, false
}

// LoadExtensions loads every enabled extension from the repository and
// prepares its Lua state.
func (engine *Engine) LoadExtensions(options ...func(*extensions.Runtime) error) error {
	if engine.Repo == nil {
		return errors.New("engine has no repository configured")
	}
	stored, err := engine.Repo.GetExtensions()
	if err != nil {
		return fmt.Errorf("getting all extensions : %w", err)
	}

	engine.Extensions = make([]*extensions.Runtime, 0, len(stored))
	for _, extension := range stored {
		if !extension.Enabled {
			continue
		}
		runtime := &extensions.Runtime{Data: extension}
		if err := runtime.PrepareState(engine, options); err != nil {
			engine.WriteLog("ERROR", err.Error(), core.LogWithExtensionID(extension.ID))
			continue
		}
		engine.Extensions = append(engine.Extensions, runtime)
	}
	return nil
}

// ToggleExtension flips the enabled flag of an extension, loading or
// unloading its runtime accordingly.
func (engine *Engine) ToggleExtension(name string, enabled bool, options ...func(*extensions.Runtime) error) error {
	if engine.Repo == nil {
		return errors.New("engine has no repository configured")
	}
	if err := engine.Repo.SetExtensionEnabledByName(name, enabled); err != nil {
		return fmt.Errorf("toggling extension %s : %w", name, err)
	}

	if !enabled {
		for i, extension := range engine.Extensions {
			if extension.Data.Name == name {
				engine.Extensions = append(engine.Extensions[:i], engine.Extensions[i+1:]...)
				break
			}
		}
		return nil
	}

	if _, ok := engine.GetExtension(name); ok {
		return nil
	}
	extension, err := engine.Repo.GetExtensionByName(name)
	if err != nil {
		return fmt.Errorf("getting extension %s : %w", name, err)
	}
	runtime := &extensions.Runtime{Data: extension}
	if err := runtime.PrepareState(engine, options); err != nil {
		return fmt.Errorf("preparing extension %s : %w", name, err)
	}
	engine.Extensions = append(engine.Extensions, runtime)
	return nil
}

// GetConfigDir returns the engine's configuration directory.
func (engine *Engine) GetConfigDir() (string, error) {
	if engine.ConfigDir == "" {
		return "", errors.New("engine has no config dir configured")
	}
	return engine.ConfigDir, nil
}

// GetWatchdog returns the engine's watchdog.
func (engine *Engine) GetWatchdog() (*watchdog.Watchdog, error) {
	if engine.Watchdog == nil {
		return nil, errors.New("engine has no watchdog configured")
	}
	return engine.Watchdog, nil
}

// GetExtensionRepo returns the repository serving extension storage.
func (engine *Engine) GetExtensionRepo() (domain.ExtensionRepository, error) {
	if engine.Repo == nil {
		return nil, errors.New("engine has no repository configured")
	}
	return engine.Repo, nil
}

// GetRenderRepo returns the repository serving rendering storage.
func (engine *Engine) GetRenderRepo() (domain.RenderRepository, error) {
	if engine.Repo == nil {
		return nil, errors.New("engine has no repository configured")
	}
	return engine.Repo, nil
}

func (engine *Engine) renderingCap() int {
	if engine.Config != nil && engine.Config.RenderingCap > 0 {
		return engine.Config.RenderingCap
	}
	return 1000
}

func (engine *Engine) rejectionLogCap() int {
	if engine.Config != nil && engine.Config.RejectionLogCap > 0 {
		return engine.Config.RejectionLogCap
	}
	return 500
}

func (engine *Engine) fingerprintCap() int {
	if engine.Config != nil && engine.Config.FingerprintCap > 0 {
		return engine.Config.FingerprintCap
	}
	return 200
}

// random returns a uniform float in [0, 1) from the engine's seeded source.
func (engine *Engine) random() float64 {
	engine.rngMu.Lock()
	defer engine.rngMu.Unlock()
	return engine.rng.Float64()
}
