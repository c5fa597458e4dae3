// Package value provides small stateless/near-stateless processors used
// as building blocks throughout the voice template: a constant source, an
// accumulator, a scaler, and the MIDI-note-to-frequency converter the
// original synth calls MidiScale.
package value

import (
	"math"

	"github.com/mtytel/termite-go/internal/dsp/graph"
)

// Value is a constant scalar source. Control plugs into Value.Set to
// change it; the audio thread only ever reads Value.Output().
type Value struct {
	graph.Base
	out *graph.Output
	v   graph.Sample
}

// New creates a Value processor holding v.
func New(v graph.Sample) *Value {
	val := &Value{v: v}
	val.out = val.AddOutput("value", val)
	return val
}

func (v *Value) Output() *graph.Output { return v.out }

// Set updates the held value. Safe to call from a non-audio thread while
// the owning Router's lock is held.
func (v *Value) Set(x graph.Sample) { v.v = x }

// Get returns the held value.
func (v *Value) Get() graph.Sample { return v.v }

func (v *Value) Process(n int) {
	buf := v.out.Buffer()
	val := v.v
	for i := 0; i < n; i++ {
		buf.Set(i, val)
	}
}

func (v *Value) SetSampleRate(float64) {}

// Pulse is a one-sample trigger source: it emits 1.0 at index 0 of the
// very next block processed after Fire is called, and 0 everywhere else.
// Used by the voice handler to inject sample-rate-accurate note events
// (voice_event, etc.) into a per-voice subgraph between blocks, since the
// host only delivers MIDI/control events at block boundaries.
type Pulse struct {
	graph.Base
	out  *graph.Output
	fire bool
}

func NewPulse() *Pulse {
	p := &Pulse{}
	p.out = p.AddOutput("trigger", p)
	return p
}

func (p *Pulse) Output() *graph.Output { return p.out }

// Fire arms the pulse to emit a single 1.0 sample at the start of the next
// Process call.
func (p *Pulse) Fire() { p.fire = true }

func (p *Pulse) Reset() { p.fire = false }

func (p *Pulse) SetSampleRate(float64) {}

func (p *Pulse) Process(n int) {
	buf := p.out.Buffer()
	if p.fire && n > 0 {
		buf.Set(0, 1)
		p.fire = false
	} else {
		buf.Set(0, 0)
	}
	for i := 1; i < n; i++ {
		buf.Set(i, 0)
	}
}

// Add sums two audio-rate inputs sample by sample.
type Add struct {
	graph.Base
	a, b *graph.Input
	out  *graph.Output
}

func NewAdd() *Add {
	a := &Add{}
	a.a = a.AddInput("a")
	a.b = a.AddInput("b")
	a.out = a.AddOutput("sum", a)
	return a
}

func (a *Add) Output() *graph.Output { return a.out }
func (a *Add) PlugA(o *graph.Output) { a.a.Plug(o) }
func (a *Add) PlugB(o *graph.Output) { a.b.Plug(o) }

func (a *Add) Process(n int) {
	buf := a.out.Buffer()
	for i := 0; i < n; i++ {
		buf.Set(i, a.a.At(i)+a.b.At(i))
	}
}

func (a *Add) SetSampleRate(float64) {}

// Multiply multiplies two audio-rate inputs sample by sample.
type Multiply struct {
	graph.Base
	a, b *graph.Input
	out  *graph.Output
}

func NewMultiply() *Multiply {
	m := &Multiply{}
	m.a = m.AddInput("a")
	m.b = m.AddInput("b")
	m.out = m.AddOutput("product", m)
	return m
}

func (m *Multiply) Output() *graph.Output { return m.out }
func (m *Multiply) PlugA(o *graph.Output) { m.a.Plug(o) }
func (m *Multiply) PlugB(o *graph.Output) { m.b.Plug(o) }

func (m *Multiply) Process(n int) {
	buf := m.out.Buffer()
	for i := 0; i < n; i++ {
		buf.Set(i, m.a.At(i)*m.b.At(i))
	}
}

func (m *Multiply) SetSampleRate(float64) {}

// Crossfade linearly interpolates between two audio-rate inputs:
// out = a + (b-a)*mix, mix clamped to [0, 1].
type Crossfade struct {
	graph.Base
	a, b, mix *graph.Input
	out       *graph.Output
}

func NewCrossfade() *Crossfade {
	c := &Crossfade{}
	c.a = c.AddInput("a")
	c.b = c.AddInput("b")
	c.mix = c.AddInput("mix")
	c.out = c.AddOutput("value", c)
	return c
}

func (c *Crossfade) Output() *graph.Output { return c.out }
func (c *Crossfade) PlugA(o *graph.Output)   { c.a.Plug(o) }
func (c *Crossfade) PlugB(o *graph.Output)   { c.b.Plug(o) }
func (c *Crossfade) PlugMix(o *graph.Output) { c.mix.Plug(o) }

func (c *Crossfade) SetSampleRate(float64) {}

func (c *Crossfade) Process(n int) {
	buf := c.out.Buffer()
	for i := 0; i < n; i++ {
		mix := c.mix.At(i)
		if mix < 0 {
			mix = 0
		}
		if mix > 1 {
			mix = 1
		}
		a := c.a.At(i)
		b := c.b.At(i)
		buf.Set(i, a+(b-a)*mix)
	}
}

// MidiScale converts a MIDI note number (with fractional cents from
// pitch bend / portamento) to a frequency in Hz, A4 = note 69 = 440Hz.
type MidiScale struct {
	graph.Base
	in  *graph.Input
	out *graph.Output
}

func NewMidiScale() *MidiScale {
	m := &MidiScale{}
	m.in = m.AddInput("note")
	m.out = m.AddOutput("freq", m)
	return m
}

func (m *MidiScale) Output() *graph.Output { return m.out }
func (m *MidiScale) Plug(o *graph.Output)  { m.in.Plug(o) }

func (m *MidiScale) Process(n int) {
	buf := m.out.Buffer()
	for i := 0; i < n; i++ {
		note := m.in.At(i)
		buf.Set(i, 440.0*math.Pow(2.0, (note-69.0)/12.0))
	}
}

func (m *MidiScale) SetSampleRate(float64) {}
