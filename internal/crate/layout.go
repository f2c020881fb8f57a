// Package crate models the record crate: sleeves standing in a rack where
// the focused sleeve is pulled toward the viewer and its neighbours lean
// away from it with an intensity that decays with distance.
package crate

import "math"

// Rack geometry. Angles are in degrees, offsets in pixels of the original
// rack; negative tilt leans the top of a sleeve toward the viewer.
const (
	BaseTilt  = -78.0
	HoverTilt = -40.0
	HoverLift = 65.0

	// Sleeves before the focus (toward the viewer) are disturbed further
	// than those behind it.
	ForwardRange = 15
	PeakBefore   = 38.0
	SlideBefore  = 25.0

	BackwardRange = 6
	PeakAfter     = 15.0
	SlideAfter    = 12.0
)

// NoFocus is the focused index when no sleeve is focused.
const NoFocus = -1

// Params are the derived visual parameters of one sleeve.
type Params struct {
	Tilt   float64 // rotation about the horizontal axis
	Lift   float64 // upward pull of the focused sleeve
	Push   float64 // slide of a neighbour away from the focus
	Rotate float64 // in-plane rotation of the focused sleeve
	Rank   int     // stacking order; the focused sleeve ranks highest
}

// Resting is the state of an undisturbed sleeve.
var Resting = Params{Tilt: BaseTilt}

// Offset returns the combined vertical displacement of the sleeve.
func (p Params) Offset() float64 {
	return p.Lift - p.Push
}

// Layout computes the parameters of itemCount sleeves with the sleeve at
// focusedIndex pulled out. Pass NoFocus (or any index outside the crate)
// to leave every sleeve at rest. The jitter is applied to the focused
// sleeve only.
func Layout(itemCount, focusedIndex int, j Jitter) []Params {
	if itemCount <= 0 {
		return nil
	}

	params := make([]Params, itemCount)
	focused := focusedIndex >= 0 && focusedIndex < itemCount

	for i := range params {
		if !focused {
			params[i] = Resting
			continue
		}
		params[i] = sleeve(i-focusedIndex, j)
	}
	return params
}

func sleeve(distance int, j Jitter) Params {
	p := Resting
	abs := distance
	if abs < 0 {
		abs = -abs
	}

	switch {
	case distance == 0:
		p.Tilt = HoverTilt
		p.Lift = HoverLift * j.LiftFactor
		p.Rotate = j.Rotation
		p.Rank = ForwardRange + 2

	case distance < 0 && abs <= ForwardRange:
		k := falloff(abs, ForwardRange)
		p.Tilt = BaseTilt + PeakBefore*k
		p.Push = -SlideBefore * k
		p.Rank = ForwardRange + 1 - abs

	case distance > 0 && abs <= BackwardRange:
		k := falloff(abs, BackwardRange)
		p.Tilt = BaseTilt - PeakAfter*k
		p.Push = SlideAfter * k
		p.Rank = BackwardRange + 1 - abs
	}
	return p
}

// falloff decays linearly from just under 1 next to the focus to just above
// 0 at the edge of the range.
func falloff(abs, rng int) float64 {
	return 1 - float64(abs)/float64(rng+1)
}

// Intensity returns the magnitude of a sleeve's lean relative to rest.
func (p Params) Intensity() float64 {
	return math.Abs(p.Tilt - BaseTilt)
}
