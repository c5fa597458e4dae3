// Package osc implements the Oscillator processor: a phase-accumulator
// generator over a closed set of waveforms, reusable both at audio rate
// (voice oscillators) and control rate (LFOs). The phase-accumulator and
// per-sample dispatch loop follow the same shape as the teacher's
// wavetable.Engine and fm.Engine voice loops, generalized from a fixed
// sine table to the full waveform enumeration spec.md §4.2 names.
package osc

import (
	"math"
	"math/rand"

	"github.com/mtytel/termite-go/internal/dsp/graph"
)

// Waveform selects the periodic function driven by the phase accumulator.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	DownSaw
	UpSaw
	ThreeStep
	FourStep
	EightStep
	ThreePyramid
	FivePyramid
	NinePyramid
	WhiteNoise

	NumWaveforms
)

// Input indices, matching the order spec.md §4.2 lists them.
const (
	InWaveform = iota
	InFrequency
	InReset
)

// Oscillator is an audio-rate (or, as an LFO, typically control-rate read)
// periodic generator with a phase accumulator in [0, 1).
type Oscillator struct {
	graph.Base

	waveform *graph.Input
	freq     *graph.Input
	reset    *graph.Input
	out      *graph.Output

	phase      float64
	sampleRate float64
	rng        *rand.Rand
}

// New creates an Oscillator. rng may be nil, in which case a new source
// with the fixed seed 1 is used, so the noise sequence repeats from one
// oscillator to the next.
func New(rng *rand.Rand) *Oscillator {
	o := &Oscillator{sampleRate: 44100, rng: rng}
	o.waveform = o.AddInput("waveform")
	o.freq = o.AddInput("frequency")
	o.reset = o.AddInput("reset")
	o.out = o.AddOutput("audio", o)
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(1))
	}
	return o
}

func (o *Oscillator) Output() *graph.Output { return o.out }

func (o *Oscillator) PlugWaveform(src *graph.Output) { o.waveform.Plug(src) }
func (o *Oscillator) PlugFrequency(src *graph.Output) { o.freq.Plug(src) }
func (o *Oscillator) PlugReset(src *graph.Output)     { o.reset.Plug(src) }

func (o *Oscillator) SetSampleRate(rate float64) { o.sampleRate = rate }

func (o *Oscillator) Reset() { o.phase = 0 }

func (o *Oscillator) Process(n int) {
	buf := o.out.Buffer()
	wave := Waveform(int(o.waveform.First()))
	sr := o.sampleRate
	if sr <= 0 {
		sr = 44100
	}
	for i := 0; i < n; i++ {
		if o.reset.At(i) != 0 {
			o.phase = 0
		}
		freq := o.freq.At(i)
		buf.Set(i, evaluate(wave, o.phase, o.rng))
		o.phase += freq / sr
		o.phase -= float64(int(o.phase))
		if o.phase < 0 {
			o.phase += 1
		}
	}
}

// evaluate returns the waveform's value at the given phase in [0, 1).
func evaluate(w Waveform, phase float64, rng *rand.Rand) float64 {
	switch w {
	case Sine:
		return sin2pi(phase)
	case Triangle:
		if phase < 0.5 {
			return 4.0*phase - 1.0
		}
		return 3.0 - 4.0*phase
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case DownSaw:
		return 1 - 2*phase
	case UpSaw:
		return 2*phase - 1
	case ThreeStep:
		return stepWave(phase, 3)
	case FourStep:
		return stepWave(phase, 4)
	case EightStep:
		return stepWave(phase, 8)
	case ThreePyramid:
		return pyramidWave(phase, 3)
	case FivePyramid:
		return pyramidWave(phase, 5)
	case NinePyramid:
		return pyramidWave(phase, 9)
	case WhiteNoise:
		return rng.Float64()*2 - 1
	default:
		return sin2pi(phase)
	}
}

const twoPi = 2 * math.Pi

func sin2pi(phase float64) float64 {
	return math.Sin(twoPi * phase)
}

// absFrac returns the fractional part of x folded into [0,1).
func absFrac(x float64) float64 {
	f := x - float64(int(x))
	if f < 0 {
		f += 1
	}
	return f
}

// stepWave divides one cycle into `steps` equal levels spanning [-1, 1].
func stepWave(phase float64, steps int) float64 {
	idx := int(phase * float64(steps))
	if idx >= steps {
		idx = steps - 1
	}
	if steps <= 1 {
		return 0
	}
	return -1 + 2*float64(idx)/float64(steps-1)
}

// pyramidWave rises and falls `n` times per cycle between -1 and 1.
func pyramidWave(phase float64, n int) float64 {
	seg := 1.0 / float64(n)
	local := absFrac(phase) / seg
	local -= float64(int(local))
	// triangle within each of the n segments
	if local < 0.5 {
		return -1 + 4*local
	}
	return 3 - 4*local
}
