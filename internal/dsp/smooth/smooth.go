// Package smooth implements the two zipper-noise-free scalar smoothers of
// spec.md §4.6: SmoothValue (one-pole lowpass) and LinearSlope (ramped
// portamento with an instant-jump trigger). Both are grounded on the
// SmoothValue/LinearSlope wiring in termite_synth.cpp, where SmoothValue
// smooths volume/cutoff/delay-time controls and LinearSlope carries the
// per-note pitch, jumping instantly when PortamentoFilter fires.
package smooth

import "github.com/mtytel/termite-go/internal/dsp/graph"

// SmoothValue is a one-pole lowpass: y[n] = y[n-1] + alpha*(target-y[n-1]).
// alpha is fixed per instance at construction, matching the original's
// per-use tuning (e.g. faster for pitch bend, slower for volume). Like the
// original library's SmoothValue, it is itself a constant-source
// processor (no audio-rate input): Set moves the target the control
// thread wants to glide toward, and Process ramps the audio-rate output
// toward it one pole at a time. This lets a SmoothValue stand in directly
// as a control.Source.
type SmoothValue struct {
	graph.Base

	out *graph.Output

	alpha   float64
	target  float64
	current float64
}

// New creates a SmoothValue starting at initial with the given one-pole
// coefficient alpha (0 < alpha <= 1; larger tracks faster).
func New(initial, alpha float64) *SmoothValue {
	s := &SmoothValue{alpha: alpha, target: initial, current: initial}
	s.out = s.AddOutput("value", s)
	return s
}

func (s *SmoothValue) Output() *graph.Output { return s.out }

// Set moves the target the smoother ramps toward.
func (s *SmoothValue) Set(v float64) { s.target = v }

// Get returns the target (not yet necessarily reached) value, matching
// the control.Source contract's read-back of "the value last set."
func (s *SmoothValue) Get() float64 { return s.target }

// SetHard snaps the smoother's current value to v with no ramp.
func (s *SmoothValue) SetHard(v float64) {
	s.target = v
	s.current = v
}

func (s *SmoothValue) Reset() {}

func (s *SmoothValue) SetSampleRate(float64) {}

func (s *SmoothValue) Process(n int) {
	buf := s.out.Buffer()
	for i := 0; i < n; i++ {
		s.current += s.alpha * (s.target - s.current)
		buf.Set(i, s.current)
	}
}

const (
	InSlopeTarget = iota
	InRunSeconds
	InTriggerJump
)

// LinearSlope ramps linearly toward target over run_seconds, jumping
// instantly to target whenever its jump input fires. The per-sample step
// is fixed when the target changes, from the distance left at that moment.
type LinearSlope struct {
	graph.Base

	target     *graph.Input
	runSeconds *graph.Input
	jump       *graph.Input

	out *graph.Output

	current    float64
	sampleRate float64
	rampTarget float64
	step       float64
}

func NewLinearSlope(initial float64) *LinearSlope {
	s := &LinearSlope{current: initial, sampleRate: 44100}
	s.target = s.AddInput("target")
	s.runSeconds = s.AddInput("run_seconds")
	s.jump = s.AddInput("jump")
	s.out = s.AddOutput("value", s)
	return s
}

func (s *LinearSlope) Output() *graph.Output { return s.out }

func (s *LinearSlope) PlugTarget(o *graph.Output)     { s.target.Plug(o) }
func (s *LinearSlope) PlugRunSeconds(o *graph.Output) { s.runSeconds.Plug(o) }
func (s *LinearSlope) PlugTriggerJump(o *graph.Output) { s.jump.Plug(o) }

func (s *LinearSlope) SetSampleRate(rate float64) { s.sampleRate = rate }

func (s *LinearSlope) Reset() {}

func (s *LinearSlope) Process(n int) {
	buf := s.out.Buffer()
	sr := s.sampleRate
	if sr <= 0 {
		sr = 44100
	}
	for i := 0; i < n; i++ {
		target := s.target.At(i)
		if s.jump.At(i) != 0 {
			s.current = target
			s.step = 0
			buf.Set(i, s.current)
			continue
		}
		runSeconds := s.runSeconds.At(i)
		if runSeconds <= 0 {
			s.current = target
			s.step = 0
			buf.Set(i, s.current)
			continue
		}
		if target != s.rampTarget || s.step == 0 {
			samples := runSeconds * sr
			if samples < 1 {
				samples = 1
			}
			s.rampTarget = target
			s.step = (target - s.current) / samples
		}
		s.current += s.step
		// Avoid ever overshooting past target once within one step of it.
		if (s.step > 0 && s.current > target) || (s.step < 0 && s.current < target) {
			s.current = target
		}
		buf.Set(i, s.current)
	}
}
