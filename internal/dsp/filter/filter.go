// Package filter implements the multi-mode resonant state-variable
// Filter described in spec.md §4.3: two integrator states shared across
// low-pass, high-pass, and band-pass taps, with sample-accurate mode
// switching and NaN/Inf recovery.
package filter

import (
	"math"

	"github.com/mtytel/termite-go/internal/dsp/graph"
)

// Type selects which tap of the state-variable filter is read out.
type Type int

const (
	LowPass Type = iota
	HighPass
	BandPass
)

const (
	InAudio = iota
	InType
	InCutoff
	InResonance
	InReset
)

const marginHz = 1.0

// Filter is a two-integrator state-variable filter.
type Filter struct {
	graph.Base

	audio     *graph.Input
	ftype     *graph.Input
	cutoff    *graph.Input
	resonance *graph.Input
	reset     *graph.Input
	out       *graph.Output

	low, band  float64
	sampleRate float64
}

func New() *Filter {
	f := &Filter{sampleRate: 44100}
	f.audio = f.AddInput("audio")
	f.ftype = f.AddInput("type")
	f.cutoff = f.AddInput("cutoff")
	f.resonance = f.AddInput("resonance")
	f.reset = f.AddInput("reset")
	f.out = f.AddOutput("audio", f)
	return f
}

func (f *Filter) Output() *graph.Output { return f.out }

func (f *Filter) PlugAudio(o *graph.Output)     { f.audio.Plug(o) }
func (f *Filter) PlugType(o *graph.Output)      { f.ftype.Plug(o) }
func (f *Filter) PlugCutoff(o *graph.Output)    { f.cutoff.Plug(o) }
func (f *Filter) PlugResonance(o *graph.Output) { f.resonance.Plug(o) }
func (f *Filter) PlugReset(o *graph.Output)     { f.reset.Plug(o) }

func (f *Filter) SetSampleRate(rate float64) { f.sampleRate = rate }

func (f *Filter) Reset() {
	f.low = 0
	f.band = 0
}

func (f *Filter) Process(n int) {
	buf := f.out.Buffer()
	sr := f.sampleRate
	if sr <= 0 {
		sr = 44100
	}
	nyquistMargin := sr/2 - marginHz

	unstable := false
	for i := 0; i < n; i++ {
		if unstable {
			buf.Set(i, 0)
			continue
		}
		if f.reset.At(i) != 0 {
			f.low, f.band = 0, 0
		}

		cutoff := f.cutoff.At(i)
		if cutoff < 20 {
			cutoff = 20
		}
		if cutoff > nyquistMargin {
			cutoff = nyquistMargin
		}
		q := f.resonance.At(i)
		if q < 0.5 {
			q = 0.5
		}
		if q > 15 {
			q = 15
		}

		f1 := 2 * math.Sin(math.Pi*cutoff/sr)
		damping := 1.0 / q

		x := f.audio.At(i)
		high := x - f.low - damping*f.band
		f.band += f1 * high
		f.low += f1 * f.band

		if !isFinite(f.low) || !isFinite(f.band) {
			f.low, f.band = 0, 0
			unstable = true
			buf.Set(i, 0)
			continue
		}

		switch Type(int(f.ftype.At(i))) {
		case HighPass:
			buf.Set(i, high)
		case BandPass:
			buf.Set(i, f.band)
		default:
			buf.Set(i, f.low)
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
