package turntable

import "github.com/charmbracelet/harmonica"

// Tonearm angles in degrees.
const (
	RestAngle  = -35.0 // parked off the record
	StartAngle = 0.0   // outer edge of the record
	EndAngle   = 40.0  // near the spindle
)

// TonearmAngle returns the tonearm rotation for the given playback state.
// While stopped it parks at RestAngle; while playing it interpolates
// linearly between StartAngle and EndAngle. Progress is not clamped.
func TonearmAngle(isPlaying bool, progress float64) float64 {
	if !isPlaying {
		return RestAngle
	}
	return StartAngle + (EndAngle-StartAngle)*progress
}

// Spring eases a rendered angle toward its target angle.
type Spring struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

// NewArmSpring returns a spring tuned for the tonearm's slow, damped swing.
func NewArmSpring(fps int) *Spring {
	return NewSpring(fps, 1.8, 0.9, RestAngle)
}

// NewPlatterSpring returns a spring that brings a stopped record back to rest.
func NewPlatterSpring(fps int) *Spring {
	return NewSpring(fps, 6.0, 1.0, 0)
}

// NewSpring creates a spring at rest on start.
func NewSpring(fps int, frequency, damping, start float64) *Spring {
	if fps <= 0 {
		fps = 30
	}
	return &Spring{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		pos:    start,
	}
}

// Step advances one frame toward target and returns the new position.
func (s *Spring) Step(target float64) float64 {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	return s.pos
}

// Set places the spring at pos with no velocity.
func (s *Spring) Set(pos float64) {
	s.pos = pos
	s.vel = 0
}

// Position returns the current position.
func (s *Spring) Position() float64 {
	return s.pos
}
