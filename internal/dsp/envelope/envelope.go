// Package envelope implements the ADSR Envelope processor of spec.md
// §4.4: linear-in-value attack/decay/release ramps, re-trigger-safe at
// any phase, with a one-sample `finished` pulse on release completion.
package envelope

import "github.com/mtytel/termite-go/internal/dsp/graph"

// Phase is the envelope's current stage, exposed as a scalar output.
type Phase int

const (
	Attack Phase = iota
	Decay
	Sustain
	Release
	Off
)

const (
	InAttack = iota
	InDecay
	InSustain
	InRelease
	InTrigger
	InRetrigger
)

const (
	OutValue = iota
	OutFinished
	OutPhase
)

// Envelope is a linear ADSR. Trigger is a held-gate signal: any non-zero
// sample keeps the envelope out of release; a transition to zero starts
// release. Re-triggering mid-attack continues the attack from wherever it
// is; re-triggering mid-release restarts attack from the current level.
type Envelope struct {
	graph.Base

	attack    *graph.Input
	decay     *graph.Input
	sustain   *graph.Input
	release   *graph.Input
	trigger   *graph.Input
	retrigger *graph.Input

	value    *graph.Output
	finished *graph.Output
	phaseOut *graph.Output

	level       float64
	phase       Phase
	held        bool
	releaseStep float64
	sampleRate  float64
}

func New() *Envelope {
	e := &Envelope{sampleRate: 44100, phase: Off}
	e.attack = e.AddInput("attack")
	e.decay = e.AddInput("decay")
	e.sustain = e.AddInput("sustain")
	e.release = e.AddInput("release")
	e.trigger = e.AddInput("trigger")
	e.retrigger = e.AddInput("retrigger")
	e.value = e.AddOutput("value", e)
	e.finished = e.AddOutput("finished", e)
	e.phaseOut = e.AddOutput("phase", e)
	return e
}

func (e *Envelope) ValueOutput() *graph.Output    { return e.value }
func (e *Envelope) FinishedOutput() *graph.Output { return e.finished }
func (e *Envelope) PhaseOutput() *graph.Output    { return e.phaseOut }

func (e *Envelope) PlugAttack(o *graph.Output)  { e.attack.Plug(o) }
func (e *Envelope) PlugDecay(o *graph.Output)   { e.decay.Plug(o) }
func (e *Envelope) PlugSustain(o *graph.Output) { e.sustain.Plug(o) }
func (e *Envelope) PlugRelease(o *graph.Output) { e.release.Plug(o) }
func (e *Envelope) PlugTrigger(o *graph.Output) { e.trigger.Plug(o) }

// PlugRetrigger wires a pulse source (e.g. LegatoFilter's retrigger output)
// that forces the next trigger sample to be treated as a rising edge even
// if the held-gate input never dropped to zero: a legato=0 re-press of a
// note that's already held, or a stolen voice reassigned without an
// intervening note-off.
func (e *Envelope) PlugRetrigger(o *graph.Output) { e.retrigger.Plug(o) }

func (e *Envelope) SetSampleRate(rate float64) { e.sampleRate = rate }

func (e *Envelope) Reset() {
	e.level = 0
	e.phase = Off
	e.held = false
}

// CurrentValue returns the envelope's current level without advancing it;
// used by VoiceHandler to read the killer signal after a block.
func (e *Envelope) CurrentValue() float64 { return e.level }

// Retrigger forces the next nonzero trigger sample to be treated as a
// rising edge even if the trigger input was already held high. The
// retrigger input does the same per sample; voices re-attack through that
// input, not through this method.
func (e *Envelope) Retrigger() { e.held = false }

func (e *Envelope) Process(n int) {
	valBuf := e.value.Buffer()
	finBuf := e.finished.Buffer()
	phaseBuf := e.phaseOut.Buffer()
	sr := e.sampleRate
	if sr <= 0 {
		sr = 44100
	}
	// rampEpsilon absorbs the rounding left by summing per-sample steps, so
	// a ramp ends on the sample its duration calls for.
	const rampEpsilon = 1e-9

	for i := 0; i < n; i++ {
		if e.retrigger.At(i) != 0 {
			e.held = false
		}
		gate := e.trigger.At(i) != 0
		if gate && !e.held {
			// Rising edge: (re)start attack from the current level.
			e.phase = Attack
		} else if !gate && e.held {
			e.phase = Release
			e.releaseStep = perSampleStep(e.level, e.release.At(i), sr)
		}
		e.held = gate

		finBuf.Set(i, 0)

		attackSec := e.attack.At(i)
		decaySec := e.decay.At(i)
		sustainLvl := clamp01(e.sustain.At(i))

		switch e.phase {
		case Attack:
			step := perSampleStep(1.0, attackSec, sr)
			e.level += step
			if e.level >= 1.0-rampEpsilon {
				e.level = 1.0
				e.phase = Decay
			}
		case Decay:
			step := perSampleStep(1.0-sustainLvl, decaySec, sr)
			e.level -= step
			if e.level <= sustainLvl+rampEpsilon {
				e.level = sustainLvl
				e.phase = Sustain
			}
		case Sustain:
			e.level = sustainLvl
		case Release:
			e.level -= e.releaseStep
			if e.level <= rampEpsilon {
				e.level = 0
				e.phase = Off
				finBuf.Set(i, 1)
			}
		case Off:
			e.level = 0
		}

		valBuf.Set(i, e.level)
		phaseBuf.Set(i, float64(e.phase))
	}
}

// perSampleStep returns the per-sample increment needed to cover `span`
// over `seconds`, at least one sample's worth so the ramp always
// terminates in finite time even for a zero or near-zero duration.
func perSampleStep(span, seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return span
	}
	samples := seconds * sampleRate
	if samples < 1 {
		samples = 1
	}
	return span / samples
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
