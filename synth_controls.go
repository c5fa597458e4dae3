package termite

import (
	"strconv"

	"github.com/mtytel/termite-go/internal/control"
)

var waveformNames = []string{
	"sine", "triangle", "square", "down saw", "up saw",
	"three step", "four step", "eight step",
	"three pyramid", "five pyramid", "nine pyramid", "white noise",
}

var filterTypeNames = []string{"low pass", "high pass", "band pass"}
var portamentoTypeNames = []string{"off", "auto", "on"}

var modSourceNames = []string{
	"none", "osc 1", "osc 2", "lfo 1", "lfo 2",
	"amp env", "filter env", "note", "velocity", "pitch wheel",
}

var modDestNames = []string{"none", "cutoff", "pitch", "amplitude", "resonance"}

// buildControlMap assembles every named control in spec.md §6's parameter
// catalog over the shared Controls and this Synth's own delay/volume
// sources, exactly as termite_synth.cpp builds control_map once in its
// constructor.
func (s *Synth) buildControlMap() {
	m := control.NewMap()
	c := s.handler.Controls

	m.Add(control.NewDiscrete("osc 1 waveform", c.Osc1Waveform, waveformNames))
	m.Add(control.NewDiscrete("osc 2 waveform", c.Osc2Waveform, waveformNames))
	m.Add(control.New("osc 2 transpose", c.Osc2Transpose, -48, 48, 96))
	m.Add(control.New("osc 2 tune", c.Osc2Tune, -1, 1, 200))
	m.Add(control.New("cross modulation", c.CrossModulation, 0, 1, 127))
	m.Add(control.New("osc mix", c.OscMix, 0, 1, 127))

	m.Add(control.NewDiscrete("lfo 1 waveform", c.LFO1Waveform, waveformNames))
	m.Add(control.New("lfo 1 frequency", c.LFO1Frequency, 0, 10, 127))
	m.Add(control.NewDiscrete("lfo 2 waveform", c.LFO2Waveform, waveformNames))
	m.Add(control.New("lfo 2 frequency", c.LFO2Frequency, 0, 10, 127))

	m.Add(control.NewDiscrete("filter type", c.FilterType, filterTypeNames))
	m.Add(control.New("cutoff", c.Cutoff, 28, 127, 127))
	m.Add(control.New("resonance", c.Resonance, 0.5, 15, 127))
	m.Add(control.New("keytrack", c.Keytrack, -1, 1, 127))
	m.Add(control.New("fil env depth", c.FilterEnvDepth, -127, 127, 127))
	m.Add(control.New("fil attack", c.FilterAttack, 0, 10, 127))
	m.Add(control.New("fil decay", c.FilterDecay, 0, 10, 127))
	m.Add(control.New("fil sustain", c.FilterSustain, 0, 1, 127))
	m.Add(control.New("fil release", c.FilterRelease, 0, 10, 127))

	m.Add(control.New("amp attack", c.AmpAttack, 0, 10, 127))
	m.Add(control.New("amp decay", c.AmpDecay, 0, 10, 127))
	m.Add(control.New("amp sustain", c.AmpSustain, 0, 1, 127))
	m.Add(control.New("amp release", c.AmpRelease, 0, 10, 127))

	m.Add(control.New("velocity track", c.VelocityTrack, 0, 1, 127))
	m.Add(control.New("legato", c.Legato, 0, 1, 1))
	m.Add(control.New("portamento", c.Portamento, 0, 0.2, 127))
	m.Add(control.NewDiscrete("portamento type", c.PortamentoType, portamentoTypeNames))
	m.Add(control.New("pitch bend range", c.PitchBendRange, 0, 48, 48))

	m.Add(control.New("mod wheel", s.modWheel, 0, 1, 127))
	m.Add(control.New("volume", s.volume, 0, 1, 127))
	m.Add(control.New("delay time", s.delayTimeVal, 0.01, 1, 127))
	m.Add(control.New("delay feedback", s.delayFeedbackVal, -1, 1, 127))
	m.Add(control.New("delay dry/wet", s.delayWetVal, 0, 1, 127))

	m.Add(control.New("polyphony", &polyphonySource{s: s}, 1, float64(voicePolyphonyMax()), voicePolyphonyMax()-1))

	for i := range c.ModSlots {
		n := strconv.Itoa(i + 1)
		m.Add(control.NewDiscrete("mod source "+n, c.ModSlots[i].Source, modSourceNames))
		m.Add(control.New("mod scale "+n, c.ModSlots[i].Scale, -1, 1, 127))
		m.Add(control.NewDiscrete("mod destination "+n, c.ModSlots[i].Destination, modDestNames))
	}

	s.controls = m
}

// polyphonySource adapts Handler.SetPolyphony to the control.Source
// interface so polyphony appears in the catalog like any other control.
type polyphonySource struct {
	s *Synth
}

func (p *polyphonySource) Set(v float64) { p.s.handler.SetPolyphony(int(v)) }
func (p *polyphonySource) Get() float64  { return float64(p.s.handler.ActivePolyphony()) }

func voicePolyphonyMax() int { return 32 }
