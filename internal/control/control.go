// Package control implements Control and ControlMap from spec.md §4.10: a
// named, ranged, optionally-quantized handle over a parameter source
// processor. Grounded on termite_common.h's Control struct (value, min,
// max, current_value, resolution, display_strings) and the setMidi
// quantization formula spec.md §9 mandates: step = round(midi*R/127),
// then value = min + step*(max-min)/R, which hits both endpoints exactly.
package control

import "math"

// Source is the minimal surface a parameter source must provide: Control
// only ever reads and writes a held scalar, never touches the audio
// thread's Process loop directly. *value.Value satisfies this.
type Source interface {
	Set(v float64)
	Get() float64
}

// Control binds a Source to a named, bounded range.
type Control struct {
	name       string
	source     Source
	min, max   float64
	resolution int
	displayStrings []string
	midiLearn  int
}

// New creates a continuous Control over [min, max] with the given
// quantization resolution (steps between min and max inclusive).
func New(name string, source Source, min, max float64, resolution int) *Control {
	return &Control{name: name, source: source, min: min, max: max, resolution: resolution}
}

// NewDiscrete creates a Control whose value indexes into a fixed list of
// display strings (e.g. waveform names); min is always 0 and max is
// len(strings)-1.
func NewDiscrete(name string, source Source, strings []string) *Control {
	return &Control{
		name:           name,
		source:         source,
		min:            0,
		max:            float64(len(strings) - 1),
		resolution:     len(strings) - 1,
		displayStrings: strings,
	}
}

func (c *Control) Name() string { return c.name }
func (c *Control) Min() float64 { return c.min }
func (c *Control) Max() float64 { return c.max }
func (c *Control) Resolution() int { return c.resolution }
func (c *Control) DisplayStrings() []string { return c.displayStrings }

// IsBipolar reports whether this control is presentationally centered
// (min = -max), a hint only; it has no effect on Set/clamp behavior.
func (c *Control) IsBipolar() bool { return c.min == -c.max && c.max != 0 }

// IsDiscrete reports whether the control carries display strings.
func (c *Control) IsDiscrete() bool { return c.displayStrings != nil }

// CurrentValue returns the control's current value, clamped to range;
// for discrete controls this is the string index.
func (c *Control) CurrentValue() float64 {
	return c.clamp(c.source.Get())
}

// Set clamps v to [min, max] and writes it to the underlying source.
// Non-finite values are dropped silently (spec.md §7 InvalidParameter).
func (c *Control) Set(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	c.source.Set(c.clamp(v))
}

func (c *Control) clamp(v float64) float64 {
	if v < c.min {
		return c.min
	}
	if v > c.max {
		return c.max
	}
	return v
}

// SetMidi maps a 7-bit MIDI CC value to this control's range, quantized to
// its resolution: step = round(midi*R/127), value = min + step*(max-min)/R.
// This hits both endpoints exactly, unlike naive float interpolation.
func (c *Control) SetMidi(midi int) {
	if midi < 0 {
		midi = 0
	}
	if midi > 127 {
		midi = 127
	}
	r := c.resolution
	if r <= 0 {
		r = 1
	}
	step := math.Round(float64(midi) * float64(r) / 127.0)
	value := c.min + step*(c.max-c.min)/float64(r)
	c.source.Set(c.clamp(value))
}

// GetPercentage returns the control's current value normalized to [0,1].
func (c *Control) GetPercentage() float64 {
	if c.max == c.min {
		return 0
	}
	return (c.CurrentValue() - c.min) / (c.max - c.min)
}

func (c *Control) stepSize() float64 {
	r := c.resolution
	if r <= 0 {
		r = 1
	}
	return (c.max - c.min) / float64(r)
}

// Increment moves the control one quantization step toward max.
func (c *Control) Increment() { c.Set(c.CurrentValue() + c.stepSize()) }

// Decrement moves the control one quantization step toward min.
func (c *Control) Decrement() { c.Set(c.CurrentValue() - c.stepSize()) }

// MidiLearn returns the CC number bound to this control via MIDI learn, or
// 0 if none is bound.
func (c *Control) MidiLearn() int { return c.midiLearn }

// SetMidiLearn records the CC number bound to this control.
func (c *Control) SetMidiLearn(cc int) { c.midiLearn = cc }

// Map is a name -> Control lookup table, matching termite's control_map.
type Map map[string]*Control

// NewMap creates an empty Map.
func NewMap() Map { return make(Map) }

// Add registers c under its own name, returning c for chaining.
func (m Map) Add(c *Control) *Control {
	m[c.Name()] = c
	return c
}
