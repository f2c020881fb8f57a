package crate

import "math/rand/v2"

// Jitter holds the per-focus random draws that keep repeated pulls from
// looking mechanical. Durations and delays are in seconds.
type Jitter struct {
	LiftFactor     float64 // scales HoverLift, within ±10%
	Rotation       float64 // in-plane rotation in degrees, within (-2, -1]
	TiltDuration   float64
	LiftDuration   float64
	LiftDelay      float64
	RotateDuration float64
	RotateDelay    float64
}

// Steady is the jitter of a perfectly repeatable pull.
var Steady = Jitter{
	LiftFactor:     1,
	Rotation:       -1.5,
	TiltDuration:   0.25,
	LiftDuration:   0.25,
	LiftDelay:      0.05,
	RotateDuration: 0.3,
	RotateDelay:    0.1,
}

// Draw returns a fresh jitter from r.
func Draw(r *rand.Rand) Jitter {
	jit := func(base float64) float64 {
		return base * (0.9 + r.Float64()*0.2)
	}
	return Jitter{
		LiftFactor:     jit(1),
		Rotation:       -1 - r.Float64(),
		TiltDuration:   jit(Steady.TiltDuration),
		LiftDuration:   jit(Steady.LiftDuration),
		LiftDelay:      jit(Steady.LiftDelay),
		RotateDuration: jit(Steady.RotateDuration),
		RotateDelay:    jit(Steady.RotateDelay),
	}
}

// Focus tracks which sleeve is pulled out. Every transition into a new
// focused index starts a new session with freshly drawn jitter; the jitter
// is held for as long as that index stays focused.
type Focus struct {
	rng     *rand.Rand
	index   int
	session uint64
	jitter  Jitter
}

// NewFocus returns an unfocused state drawing jitter from r. A nil r uses
// an unseeded source.
func NewFocus(r *rand.Rand) *Focus {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Focus{rng: r, index: NoFocus, jitter: Steady}
}

// Enter focuses index i. It reports whether a new session started.
func (f *Focus) Enter(i int) bool {
	if i < 0 {
		f.Leave()
		return false
	}
	if f.index == i {
		return false
	}
	f.index = i
	f.session++
	f.jitter = Draw(f.rng)
	return true
}

// Leave clears the focus.
func (f *Focus) Leave() {
	f.index = NoFocus
}

// Index returns the focused index and whether any sleeve is focused.
func (f *Focus) Index() (int, bool) {
	return f.index, f.index != NoFocus
}

// Session returns the number of focus sessions started so far.
func (f *Focus) Session() uint64 {
	return f.session
}

// Jitter returns the jitter of the current session.
func (f *Focus) Jitter() Jitter {
	return f.jitter
}

// Layout computes the crate layout for the current focus.
func (f *Focus) Layout(itemCount int) []Params {
	return Layout(itemCount, f.index, f.jitter)
}
