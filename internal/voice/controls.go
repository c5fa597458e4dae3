// Package voice implements the VoiceHandler of spec.md §4.7: a template
// describing one voice's subgraph, N concrete instances of it sharing a
// set of global (once-per-block) processors, and the allocation/stealing
// policy. Grounded on termite_synth.cpp's TermiteVoiceHandler wiring
// (createOscillators/createFilter/createArticulation) and on the
// teacher's wavetable.Engine/fm.Engine voice-array-plus-stealVoice
// pattern, generalized from a flat struct array to per-voice Router
// subgraphs built from a shared set of control sources.
package voice

import (
	"github.com/mtytel/termite-go/internal/dsp/osc"
	"github.com/mtytel/termite-go/internal/dsp/smooth"
	"github.com/mtytel/termite-go/internal/dsp/value"
	"github.com/mtytel/termite-go/internal/modmatrix"
)

// ModSlotControls exposes one mod-matrix slot's three controls.
type ModSlotControls struct {
	Source      *value.Value
	Scale       *smooth.SmoothValue
	Destination *value.Value
}

// Controls is every control-rate parameter source shared by all voice
// instances: the Value/SmoothValue nodes termite_synth.cpp creates once in
// its constructor and plugs into every per-voice processor it builds.
// None of these are cloned; every Voice's processors read from the same
// instances.
type Controls struct {
	Osc1Waveform    *value.Value
	Osc2Waveform    *value.Value
	Osc2Transpose   *value.Value
	Osc2Tune        *value.Value
	CrossModulation *value.Value
	OscMix          *value.Value

	PitchBendRange *value.Value

	Legato       *value.Value
	AmpAttack    *value.Value
	AmpDecay     *value.Value
	AmpSustain   *smooth.SmoothValue
	AmpRelease   *value.Value

	Portamento     *value.Value
	PortamentoType *value.Value

	FilterType     *value.Value
	FilterAttack   *value.Value
	FilterDecay    *value.Value
	FilterSustain  *value.Value
	FilterRelease  *value.Value
	FilterEnvDepth *value.Value
	Cutoff         *smooth.SmoothValue
	Keytrack       *value.Value
	Resonance      *value.Value

	VelocityTrack *value.Value

	LFO1Waveform  *value.Value
	LFO1Frequency *value.Value
	LFO2Waveform  *value.Value
	LFO2Frequency *value.Value

	ModSlots [modmatrix.NumSlots]ModSlotControls

	PitchBendAmount *smooth.SmoothValue
}

// NewControls builds the shared control set with the defaults
// termite_synth.cpp uses for the controls it shares with this port, and
// sensible defaults for the controls spec.md's catalog adds beyond it
// (osc 2 tune, cross modulation, osc mix, lfo 1/2, velocity track, mod
// matrix).
func NewControls() *Controls {
	c := &Controls{
		Osc1Waveform:    value.New(float64(osc.DownSaw)),
		Osc2Waveform:    value.New(float64(osc.DownSaw)),
		Osc2Transpose:   value.New(-12),
		Osc2Tune:        value.New(0),
		CrossModulation: value.New(0),
		OscMix:          value.New(0.5),

		PitchBendRange: value.New(2),

		Legato:     value.New(0),
		AmpAttack:  value.New(0.01),
		AmpDecay:   value.New(2.0),
		AmpSustain: smooth.New(1.0, 0.05),
		AmpRelease: value.New(0.3),

		Portamento:     value.New(0.01),
		PortamentoType: value.New(0),

		FilterType:     value.New(0),
		FilterAttack:   value.New(0),
		FilterDecay:    value.New(0.3),
		FilterSustain:  value.New(1),
		FilterRelease:  value.New(0.3),
		FilterEnvDepth: value.New(12),
		Cutoff:         smooth.New(92, 0.05),
		Keytrack:       value.New(0),
		Resonance:      value.New(3),

		VelocityTrack: value.New(0.3),

		LFO1Waveform:  value.New(0),
		LFO1Frequency: value.New(2),
		LFO2Waveform:  value.New(0),
		LFO2Frequency: value.New(2),

		PitchBendAmount: smooth.New(0, 0.1),
	}
	for i := range c.ModSlots {
		c.ModSlots[i] = ModSlotControls{
			Source:      value.New(float64(modmatrix.SourceNone)),
			Scale:       smooth.New(0, 0.05),
			Destination: value.New(float64(modmatrix.DestNone)),
		}
	}
	return c
}
