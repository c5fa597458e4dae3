package voice

import (
	"math/rand"

	"github.com/mtytel/termite-go/internal/dsp/graph"
	"github.com/mtytel/termite-go/internal/dsp/osc"
	"github.com/mtytel/termite-go/internal/dsp/value"
)

// Globals holds the processors a VoiceHandler evaluates exactly once per
// block regardless of how many voices are active: the two free-running
// LFOs, the pitch-bend amount-by-range scaler, and every shared control
// source in Controls. Every Voice instance
// reads these outputs rather than owning its own copy, matching
// termite_synth.cpp's addGlobalProcessor calls (base_cutoff,
// amplitude_sustain, pitch_bend, center_adjust) generalized to this
// port's LFO additions.
type Globals struct {
	router *graph.Router

	lfo1 *osc.Oscillator
	lfo2 *osc.Oscillator

	pitchBendScaled *value.Multiply
}

func newGlobals(c *Controls) *Globals {
	g := &Globals{router: graph.NewRouter("globals")}

	g.lfo1 = osc.New(rand.New(rand.NewSource(1)))
	g.lfo1.PlugWaveform(c.LFO1Waveform.Output())
	g.lfo1.PlugFrequency(c.LFO1Frequency.Output())
	g.router.AddProcessor(g.lfo1)

	g.lfo2 = osc.New(rand.New(rand.NewSource(2)))
	g.lfo2.PlugWaveform(c.LFO2Waveform.Output())
	g.lfo2.PlugFrequency(c.LFO2Frequency.Output())
	g.router.AddProcessor(g.lfo2)

	g.pitchBendScaled = value.NewMultiply()
	g.pitchBendScaled.PlugA(c.PitchBendAmount.Output())
	g.pitchBendScaled.PlugB(c.PitchBendRange.Output())
	g.router.AddProcessor(c.PitchBendAmount)
	g.router.AddProcessor(c.AmpSustain)
	g.router.AddProcessor(c.Cutoff)
	for _, v := range []*value.Value{
		c.Osc1Waveform, c.Osc2Waveform, c.Osc2Transpose, c.Osc2Tune,
		c.CrossModulation, c.OscMix, c.PitchBendRange, c.Legato,
		c.AmpAttack, c.AmpDecay, c.AmpRelease, c.Portamento, c.PortamentoType,
		c.FilterType, c.FilterAttack, c.FilterDecay, c.FilterSustain,
		c.FilterRelease, c.FilterEnvDepth, c.Keytrack, c.Resonance,
		c.VelocityTrack, c.LFO1Waveform, c.LFO1Frequency, c.LFO2Waveform,
		c.LFO2Frequency,
	} {
		g.router.AddProcessor(v)
	}
	for i := range c.ModSlots {
		g.router.AddProcessor(c.ModSlots[i].Source)
		g.router.AddProcessor(c.ModSlots[i].Scale)
		g.router.AddProcessor(c.ModSlots[i].Destination)
	}
	g.router.AddProcessor(g.pitchBendScaled)

	g.router.MustFreeze()
	return g
}

func (g *Globals) Process(n int) { g.router.Process(n) }

func (g *Globals) SetSampleRate(rate float64) { g.router.SetSampleRate(rate) }

func (g *Globals) Reset() { g.router.Reset() }

func (g *Globals) LFO1Output() *graph.Output { return g.lfo1.Output() }
func (g *Globals) LFO2Output() *graph.Output { return g.lfo2.Output() }
func (g *Globals) PitchBendOutput() *graph.Output { return g.pitchBendScaled.Output() }
