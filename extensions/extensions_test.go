package extensions

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
	"github.com/omegalab/rft/watchdog"
)

type mockEngineService struct {
	GetConfigDirFunc     func() (string, error)
	GetWatchdogFunc      func() (*watchdog.Watchdog, error)
	WriteLogFunc         func(level string, message string, options ...func(log *domain.Log) error) error
	GetExtensionRepoFunc func() (domain.ExtensionRepository, error)
	GetRenderRepoFunc    func() (domain.RenderRepository, error)

	dog *watchdog.Watchdog
}

func (m *mockEngineService) GetConfigDir() (string, error) {
	if m.GetConfigDirFunc != nil {
		return m.GetConfigDirFunc()
	}
	return "/tmp/rft-test", nil
}

func (m *mockEngineService) GetWatchdog() (*watchdog.Watchdog, error) {
	if m.GetWatchdogFunc != nil {
		return m.GetWatchdogFunc()
	}
	if m.dog == nil {
		m.dog = watchdog.New()
	}
	return m.dog, nil
}

func (m *mockEngineService) WriteLog(level string, message string, options ...func(log *domain.Log) error) error {
	if m.WriteLogFunc != nil {
		return m.WriteLogFunc(level, message, options...)
	}
	return nil
}

func (m *mockEngineService) GetExtensionRepo() (domain.ExtensionRepository, error) {
	if m.GetExtensionRepoFunc != nil {
		return m.GetExtensionRepoFunc()
	}
	return nil, nil
}

func (m *mockEngineService) GetRenderRepo() (domain.RenderRepository, error) {
	if m.GetRenderRepoFunc != nil {
		return m.GetRenderRepoFunc()
	}
	return nil, nil
}

type mockExtensionRepo struct {
	settingsStore map[uuid.UUID]map[string]any
	forceSetError bool
}

func (m *mockExtensionRepo) GetExtensions() ([]*domain.Extension, error) { return nil, nil }
func (m *mockExtensionRepo) GetExtensionByName(name string) (*domain.Extension, error) {
	return nil, nil
}
func (m *mockExtensionRepo) GetExtensionLuaCodeByName(name string) (string, error)       { return "", nil }
func (m *mockExtensionRepo) UpdateExtensionLuaCodeByName(name string, code string) error { return nil }
func (m *mockExtensionRepo) CreateExtension(extension *domain.Extension) error           { return nil }
func (m *mockExtensionRepo) SetExtensionEnabledByName(name string, enabled bool) error   { return nil }

func (m *mockExtensionRepo) GetExtensionSettingsByUUID(id uuid.UUID) (map[string]any, error) {
	if settings, ok := m.settingsStore[id]; ok {
		return settings, nil
	}
	return make(map[string]any), nil
}

func (m *mockExtensionRepo) SetExtensionSettingsByUUID(id uuid.UUID, settings map[string]any) error {
	if m.forceSetError {
		return errors.New("forced set error")
	}
	if m.settingsStore == nil {
		m.settingsStore = make(map[uuid.UUID]map[string]any)
	}
	m.settingsStore[id] = settings
	return nil
}

type mockRenderRepo struct {
	renderings []*domain.Rendering
}

func (m *mockRenderRepo) InsertRendering(rendering *domain.Rendering) error {
	m.renderings = append(m.renderings, rendering)
	return nil
}

func (m *mockRenderRepo) GetRendering(id uuid.UUID) (*domain.Rendering, error) {
	for _, rendering := range m.renderings {
		if rendering.ID == id {
			return rendering, nil
		}
	}
	return nil, errors.New("sql: no rows in result set")
}

func (m *mockRenderRepo) GetRenderings(limit int) ([]*domain.Rendering, error) {
	if limit > len(m.renderings) {
		limit = len(m.renderings)
	}
	return m.renderings[:limit], nil
}

func (m *mockRenderRepo) GetObserverRenderings(observerID string, limit int) ([]*domain.Rendering, error) {
	result := make([]*domain.Rendering, 0)
	for _, rendering := range m.renderings {
		if rendering.ObserverID == observerID && len(result) < limit {
			result = append(result, rendering)
		}
	}
	return result, nil
}

func (m *mockRenderRepo) RecentDeltaPhi(n int) ([]float64, error) {
	values := make([]float64, 0, n)
	for i := len(m.renderings) - 1; i >= 0 && len(values) < n; i-- {
		values = append(values, m.renderings[i].Parameters.DeltaPhi)
	}
	return values, nil
}

func (m *mockRenderRepo) CountRenderings() (int, error) { return len(m.renderings), nil }

func (m *mockRenderRepo) PruneRenderings(keep int) error { return nil }

func setupTestExtension(t *testing.T, luaCode string, options ...func(*Runtime) error) (*Runtime, *mockEngineService) {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("generating uuid : %v", err)
	}
	ext := &domain.Extension{
		ID:         id,
		Name:       "test-extension",
		LuaContent: luaCode,
	}
	runtime := &Runtime{Data: ext}

	mockEngine := &mockEngineService{}

	err = runtime.PrepareState(mockEngine, options)
	if err != nil {
		t.Fatalf("preparing state: %v", err)
	}

	return runtime, mockEngine
}
