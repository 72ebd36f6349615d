package extensions

import (
	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
	"github.com/omegalab/rft/rftmath"
)

func registerMathLibrary(l *lua.State) {
	l.Global("rft")

	if l.IsNil(-1) {
		l.Pop(1)
		return
	}

	lua.NewLibrary(l, mathLibrary())

	l.SetField(-2, "math")
	l.Pop(1)
}

// mathLibrary returns a list of Lua functions wrapping the closed-form
// framework helpers. These functions are available under the `rft.math`
// table in Lua scripts.
func mathLibrary() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// simulate computes the observer coherence a frame would need to render
		// with the given phase shift and effective render time.
		//
		// @param delta_phi number The phase shift.
		// @param tau_eff number The effective render time. Must be non-zero.
		// @return number The required observer coherence.
		{Name: "simulate", Function: func(l *lua.State) int {
			deltaPhi := lua.CheckNumber(l, 2)
			tauEff := lua.CheckNumber(l, 3)

			result, err := rftmath.RenderSimulation(deltaPhi, tauEff)
			if err != nil {
				lua.Errorf(l, "simulating render: %s", err.Error())
				return 0
			}

			l.PushNumber(result)
			return 1
		}},
		// render_delay computes the effective render time of a frame observed
		// at a given redshift.
		//
		// @param z number The redshift. Must be above -1.
		// @return number The render delay.
		{Name: "render_delay", Function: func(l *lua.State) int {
			z := lua.CheckNumber(l, 2)

			result, err := rftmath.RenderDelay(z)
			if err != nil {
				lua.Errorf(l, "computing render delay: %s", err.Error())
				return 0
			}

			l.PushNumber(result)
			return 1
		}},
		// magnetic classifies a magnetic field vector.
		//
		// @param bx number The x component.
		// @param by number The y component.
		// @param bz number The z component.
		// @return table The magnitude, inclination, declination, and class.
		{Name: "magnetic", Function: func(l *lua.State) int {
			bx := lua.CheckNumber(l, 2)
			by := lua.CheckNumber(l, 3)
			bz := lua.CheckNumber(l, 4)

			frame := rftmath.MagneticAnalysis(bx, by, bz)

			util.DeepPush(l, map[string]any{
				"magnitude":   frame.Magnitude,
				"inclination": frame.Inclination,
				"declination": frame.Declination,
				"class":       frame.Class,
			})
			return 1
		}},
	}
}
