package extensions

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

// registerRenderingsLibrary registers the `rft.renderings` library into the
// Lua state. This library provides read access to the rendering repository
// for querying past frames.
func registerRenderingsLibrary(l *lua.State, service EngineService) {
	l.Global("rft")
	if l.IsNil(-1) {
		l.Pop(1)
		return
	}

	lua.NewLibrary(l, renderingsLibrary(service))
	l.SetField(-2, "renderings")
	l.Pop(1)
}

// renderingSummary flattens a rendering into the table shape handed to Lua.
func renderingSummary(rendering *domain.Rendering) map[string]any {
	return map[string]any{
		"id":             rendering.ID.String(),
		"observer_id":    rendering.ObserverID,
		"text":           rendering.Challenge.Text,
		"challenge_type": rendering.Challenge.Type,
		"omega":          rendering.Frame.Omega,
		"frame_type":     rendering.Frame.FrameType,
		"stability":      rendering.Frame.Stability,
		"confidence":     rendering.Frame.Confidence,
		"quality":        rendering.Frame.Quality,
		"response":       rendering.Response,
		"metadata":       rendering.Metadata,
		"rendered_at":    rendering.RenderedAt.UnixMilli(),
	}
}

// renderingsLibrary returns the list of Lua functions for the rendering
// repository.
func renderingsLibrary(service EngineService) []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// get_recent retrieves summaries of the most recent renderings.
		//
		// @param limit number (optional) The maximum number of renderings. Defaults to 50.
		// @return []table A list of rendering summary tables.
		{Name: "get_recent", Function: func(l *lua.State) int {
			repo, err := service.GetRenderRepo()
			if err != nil {
				lua.Errorf(l, "getting render repo: %s", err.Error())
				return 0
			}

			limit := lua.OptInteger(l, 2, 50)
			renderings, err := repo.GetRenderings(limit)
			if err != nil {
				lua.Errorf(l, "getting renderings: %s", err.Error())
				return 0
			}

			result := make([]map[string]any, len(renderings))
			for i, rendering := range renderings {
				result[i] = renderingSummary(rendering)
			}

			util.DeepPush(l, result)
			return 1
		}},
		// get retrieves the full summary for a specific rendering.
		//
		// @param id string The UUID of the rendering.
		// @return table The rendering summary table.
		{Name: "get", Function: func(l *lua.State) int {
			repo, err := service.GetRenderRepo()
			if err != nil {
				lua.Errorf(l, "getting render repo: %s", err.Error())
				return 0
			}

			idString := lua.CheckString(l, 2)
			id, err := uuid.Parse(idString)
			if err != nil {
				lua.ArgumentError(l, 2, "invalid UUID")
				return 0
			}

			rendering, err := repo.GetRendering(id)
			if err != nil {
				lua.Errorf(l, fmt.Sprintf("getting rendering %s : %s", idString, err.Error()))
				return 0
			}

			util.DeepPush(l, renderingSummary(rendering))
			return 1
		}},
		// get_for_observer retrieves summaries of an observer's recent renderings.
		//
		// @param observer_id string The observer identity.
		// @param limit number (optional) The maximum number of renderings. Defaults to 50.
		// @return []table A list of rendering summary tables.
		{Name: "get_for_observer", Function: func(l *lua.State) int {
			repo, err := service.GetRenderRepo()
			if err != nil {
				lua.Errorf(l, "getting render repo: %s", err.Error())
				return 0
			}

			observerID := lua.CheckString(l, 2)
			limit := lua.OptInteger(l, 3, 50)

			renderings, err := repo.GetObserverRenderings(observerID, limit)
			if err != nil {
				lua.Errorf(l, "getting renderings for %s: %s", observerID, err.Error())
				return 0
			}

			result := make([]map[string]any, len(renderings))
			for i, rendering := range renderings {
				result[i] = renderingSummary(rendering)
			}

			util.DeepPush(l, result)
			return 1
		}},
		// recent_delta_phi retrieves the phase shifts of the most recent renderings,
		// newest first.
		//
		// @param n number The number of phase shifts to return.
		// @return []number The recent phase shift values.
		{Name: "recent_delta_phi", Function: func(l *lua.State) int {
			repo, err := service.GetRenderRepo()
			if err != nil {
				lua.Errorf(l, "getting render repo: %s", err.Error())
				return 0
			}

			n := lua.CheckInteger(l, 2)
			values, err := repo.RecentDeltaPhi(n)
			if err != nil {
				lua.Errorf(l, "getting recent phase shifts: %s", err.Error())
				return 0
			}

			util.DeepPush(l, values)
			return 1
		}},
		// count returns the total number of stored renderings.
		//
		// @return number The rendering count.
		{Name: "count", Function: func(l *lua.State) int {
			repo, err := service.GetRenderRepo()
			if err != nil {
				lua.Errorf(l, "getting render repo: %s", err.Error())
				return 0
			}

			count, err := repo.CountRenderings()
			if err != nil {
				lua.Errorf(l, "counting renderings: %s", err.Error())
				return 0
			}

			l.PushInteger(count)
			return 1
		}},
	}
}
