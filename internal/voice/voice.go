package voice

import (
	"math/rand"

	"github.com/mtytel/termite-go/internal/dsp/envelope"
	"github.com/mtytel/termite-go/internal/dsp/filter"
	"github.com/mtytel/termite-go/internal/dsp/graph"
	"github.com/mtytel/termite-go/internal/dsp/osc"
	"github.com/mtytel/termite-go/internal/dsp/smooth"
	"github.com/mtytel/termite-go/internal/dsp/trigger"
	"github.com/mtytel/termite-go/internal/dsp/value"
	"github.com/mtytel/termite-go/internal/modmatrix"
)

// State is a voice's allocation lifecycle state per spec.md §4.7.
type State int

const (
	StateFinished State = iota
	StateHeld
	StateReleased
)

// Voice is one polyphonic instance of the per-voice subgraph: its own
// oscillators, filter, envelopes, articulation chain, and mod matrix, all
// wired the way TermiteVoiceHandler's createOscillators/createFilter/
// createArticulation wire a single voice, but reading shared Controls
// rather than owning private copies of the control-rate parameters.
type Voice struct {
	router *graph.Router

	note         *value.Value
	velocity     *value.Value
	voiceEvent       *value.Pulse
	heldGate         *value.Value
	legatoFilter     *trigger.LegatoFilter
	portamentoFilter *trigger.PortamentoFilter

	ampEnv    *envelope.Envelope
	filterEnv *envelope.Envelope

	osc1, osc2 *osc.Oscillator
	filt       *filter.Filter
	matrix     *modmatrix.Matrix

	output *value.Multiply

	State      State
	Note       int
	Age        uint64
	ReleasedAt uint64
}

// NoteOutput exposes the voice's raw assigned note signal (before
// frequency-update deferral and portamento).
func (v *Voice) NoteOutput() *graph.Output { return v.note.Output() }

// VoiceEventOutput fires a one-sample pulse on the block where a note is
// (re)assigned to this voice.
func (v *Voice) VoiceEventOutput() *graph.Output { return v.voiceEvent.Output() }

// KillerOutput is the voice-reclaim signal: the amplitude envelope's
// audio-rate value, per spec.md §4.7's mandated killer policy.
func (v *Voice) KillerOutput() *graph.Output { return v.ampEnv.ValueOutput() }

// OutputSignal is this voice's contribution to the aggregate mix.
func (v *Voice) OutputSignal() *graph.Output { return v.output.Output() }

func (v *Voice) SetSampleRate(rate float64) { v.router.SetSampleRate(rate) }
func (v *Voice) Reset()                     { v.router.Reset() }

// Process runs this voice's subgraph for one block. Callers must have
// already run the shared Globals for this block.
func (v *Voice) Process(n int) { v.router.Process(n) }

// AssignNote sets the voice's note/velocity and arms the note-on pulse.
// alreadyHeld tells the LegatoFilter/PortamentoFilter whether a voice was
// already sounding before this note-on (a re-press of a held note, or a
// stolen voice being reassigned); whether that actually suppresses the
// envelopes' retrigger is the LegatoFilter's call, not this flag's — it
// also fires on legato=0, not on alreadyHeld alone.
func (v *Voice) AssignNote(note, velocity float64, alreadyHeld bool) {
	v.note.Set(note)
	v.velocity.Set(velocity)
	v.voiceEvent.Fire()
	v.legatoFilter.SetHeld(alreadyHeld)
	v.portamentoFilter.SetHeld(alreadyHeld)
	v.heldGate.Set(1)
}

// Release drops the held gate, starting the amplitude/filter envelope
// release phase on the next block.
func (v *Voice) Release() { v.heldGate.Set(0) }

// buildVoice constructs one voice instance's subgraph, reading from the
// shared Controls and Globals. Grounded on termite_synth.cpp's
// createArticulation -> createOscillators -> createFilter sequence,
// adapted: oscillator/filter reset and both envelopes' gating use the
// voice-event pulse / held gate this port introduces (see DESIGN.md for
// why this departs from the literal cpp "reset" wiring).
func buildVoice(c *Controls, g *Globals, rng *rand.Rand) *Voice {
	v := &Voice{router: graph.NewRouter("voice")}

	v.note = value.New(60)
	v.velocity = value.New(1)
	v.voiceEvent = value.NewPulse()
	v.heldGate = value.New(0)
	v.router.AddProcessor(v.note)
	v.router.AddProcessor(v.velocity)
	v.router.AddProcessor(v.voiceEvent)
	v.router.AddProcessor(v.heldGate)

	v.legatoFilter = trigger.New()
	v.legatoFilter.PlugLegato(c.Legato.Output())
	v.legatoFilter.PlugTrigger(v.voiceEvent.Output())
	v.router.AddProcessor(v.legatoFilter)

	// Amplitude and filter envelopes: gated directly by the held signal per
	// spec.md §4.4. LegatoFilter's retrigger output forces both envelopes
	// back to Attack on the same block as the note-on pulse whenever
	// legato=0 or no voice was already held, even though the held gate
	// itself stays at 1 the whole time for an already-sounding voice.
	v.ampEnv = envelope.New()
	v.ampEnv.PlugAttack(c.AmpAttack.Output())
	v.ampEnv.PlugDecay(c.AmpDecay.Output())
	v.ampEnv.PlugSustain(c.AmpSustain.Output())
	v.ampEnv.PlugRelease(c.AmpRelease.Output())
	v.ampEnv.PlugTrigger(v.heldGate.Output())
	v.ampEnv.PlugRetrigger(v.legatoFilter.RetriggerOutput())
	v.router.AddProcessor(v.ampEnv)

	v.filterEnv = envelope.New()
	v.filterEnv.PlugAttack(c.FilterAttack.Output())
	v.filterEnv.PlugDecay(c.FilterDecay.Output())
	v.filterEnv.PlugSustain(c.FilterSustain.Output())
	v.filterEnv.PlugRelease(c.FilterRelease.Output())
	v.filterEnv.PlugTrigger(v.heldGate.Output())
	v.filterEnv.PlugRetrigger(v.legatoFilter.RetriggerOutput())
	v.router.AddProcessor(v.filterEnv)

	// Note latching, built on createArticulation's note_wait wiring: the
	// pending note latches into currentNote when the LegatoFilter
	// retriggers (a fresh attack), when a legato-remain event fires (pitch
	// updates while the amp envelope keeps running), or when the amp
	// envelope finishes releasing.
	noteStart := trigger.NewTriggerCombiner()
	noteStart.PlugA(v.legatoFilter.RetriggerOutput())
	noteStart.PlugB(v.ampEnv.FinishedOutput())
	v.router.AddProcessor(noteStart)

	frequencyTrigger := trigger.NewTriggerCombiner()
	frequencyTrigger.PlugA(v.legatoFilter.RemainOutput())
	frequencyTrigger.PlugB(noteStart.Output())
	v.router.AddProcessor(frequencyTrigger)

	noteWait := trigger.NewTriggerWait()
	noteWait.PlugWait(v.note.Output())
	noteWait.PlugTrigger(frequencyTrigger.Output())
	v.router.AddProcessor(noteWait)

	v.portamentoFilter = trigger.NewPortamentoFilter()
	v.portamentoFilter.PlugPortamento(c.PortamentoType.Output())
	v.portamentoFilter.PlugTrigger(frequencyTrigger.Output())
	v.router.AddProcessor(v.portamentoFilter)

	pitchSlope := smooth.NewLinearSlope(60)
	pitchSlope.PlugTarget(noteWait.Output())
	pitchSlope.PlugRunSeconds(c.Portamento.Output())
	pitchSlope.PlugTriggerJump(v.portamentoFilter.JumpOutput())
	v.router.AddProcessor(pitchSlope)

	centerAdjust := value.New(-64)
	noteFromCenter := value.NewAdd()
	noteFromCenter.PlugA(centerAdjust.Output())
	noteFromCenter.PlugB(noteWait.Output())
	v.router.AddProcessor(centerAdjust)
	v.router.AddProcessor(noteFromCenter)

	// Pitch bend combines with the portamento-glided note (final_midi in
	// the original), then the mod matrix's pitch offset.
	finalMidi := value.NewAdd()
	finalMidi.PlugA(pitchSlope.Output())
	finalMidi.PlugB(g.PitchBendOutput())
	v.router.AddProcessor(finalMidi)

	v.matrix = modmatrix.New()
	v.matrix.PlugSource(modmatrix.SourceNote, v.note.Output())
	v.matrix.PlugSource(modmatrix.SourceVelocity, v.velocity.Output())
	v.matrix.PlugSource(modmatrix.SourceAmpEnv, v.ampEnv.ValueOutput())
	v.matrix.PlugSource(modmatrix.SourceFilterEnv, v.filterEnv.ValueOutput())
	v.matrix.PlugSource(modmatrix.SourceLFO1, g.LFO1Output())
	v.matrix.PlugSource(modmatrix.SourceLFO2, g.LFO2Output())
	v.matrix.PlugSource(modmatrix.SourcePitchWheel, c.PitchBendAmount.Output())
	for i := range c.ModSlots {
		v.matrix.PlugSlot(i, c.ModSlots[i].Source.Output(), c.ModSlots[i].Scale.Output(), c.ModSlots[i].Destination.Output())
	}
	v.router.AddProcessor(v.matrix)

	midiWithPitchMod := value.NewAdd()
	midiWithPitchMod.PlugA(finalMidi.Output())
	midiWithPitchMod.PlugB(v.matrix.Output(modmatrix.DestPitchOffset))
	v.router.AddProcessor(midiWithPitchMod)

	osc1Freq := value.NewMidiScale()
	osc1Freq.Plug(midiWithPitchMod.Output())
	v.router.AddProcessor(osc1Freq)

	v.osc1 = osc.New(rng)
	v.osc1.PlugWaveform(c.Osc1Waveform.Output())
	v.osc1.PlugFrequency(osc1Freq.Output())
	v.osc1.PlugReset(v.voiceEvent.Output())
	v.router.AddProcessor(v.osc1)

	osc2Transposed := value.NewAdd()
	osc2Transposed.PlugA(midiWithPitchMod.Output())
	osc2Transposed.PlugB(c.Osc2Transpose.Output())
	osc2Tuned := value.NewAdd()
	osc2Tuned.PlugA(osc2Transposed.Output())
	osc2Tuned.PlugB(c.Osc2Tune.Output())
	v.router.AddProcessor(osc2Transposed)
	v.router.AddProcessor(osc2Tuned)

	osc2BaseFreq := value.NewMidiScale()
	osc2BaseFreq.Plug(osc2Tuned.Output())
	v.router.AddProcessor(osc2BaseFreq)

	// Linear cross-modulation: osc1 displaces osc2's frequency
	// proportional to osc2's own base frequency, scaled by the cross
	// modulation depth control.
	fmDepth := value.NewMultiply()
	fmDepth.PlugA(v.osc1.Output())
	fmDepth.PlugB(c.CrossModulation.Output())
	fmHz := value.NewMultiply()
	fmHz.PlugA(fmDepth.Output())
	fmHz.PlugB(osc2BaseFreq.Output())
	osc2Freq := value.NewAdd()
	osc2Freq.PlugA(osc2BaseFreq.Output())
	osc2Freq.PlugB(fmHz.Output())
	v.router.AddProcessor(fmDepth)
	v.router.AddProcessor(fmHz)
	v.router.AddProcessor(osc2Freq)

	v.osc2 = osc.New(rng)
	v.osc2.PlugWaveform(c.Osc2Waveform.Output())
	v.osc2.PlugFrequency(osc2Freq.Output())
	v.osc2.PlugReset(v.voiceEvent.Output())
	v.router.AddProcessor(v.osc2)

	oscMix := value.NewCrossfade()
	oscMix.PlugA(v.osc1.Output())
	oscMix.PlugB(v.osc2.Output())
	oscMix.PlugMix(c.OscMix.Output())
	v.router.AddProcessor(oscMix)

	// Filter: keytrack, envelope depth, mod-matrix cutoff/resonance offset.
	currentKeytrack := value.NewMultiply()
	currentKeytrack.PlugA(noteFromCenter.Output())
	currentKeytrack.PlugB(c.Keytrack.Output())
	v.router.AddProcessor(currentKeytrack)

	keytrackedCutoff := value.NewAdd()
	keytrackedCutoff.PlugA(c.Cutoff.Output())
	keytrackedCutoff.PlugB(currentKeytrack.Output())
	v.router.AddProcessor(keytrackedCutoff)

	scaledFilterEnv := value.NewMultiply()
	scaledFilterEnv.PlugA(v.filterEnv.ValueOutput())
	scaledFilterEnv.PlugB(c.FilterEnvDepth.Output())
	v.router.AddProcessor(scaledFilterEnv)

	midiCutoff := value.NewAdd()
	midiCutoff.PlugA(keytrackedCutoff.Output())
	midiCutoff.PlugB(scaledFilterEnv.Output())
	v.router.AddProcessor(midiCutoff)

	midiCutoffWithMod := value.NewAdd()
	midiCutoffWithMod.PlugA(midiCutoff.Output())
	midiCutoffWithMod.PlugB(v.matrix.Output(modmatrix.DestCutoffOffset))
	v.router.AddProcessor(midiCutoffWithMod)

	cutoffFreq := value.NewMidiScale()
	cutoffFreq.Plug(midiCutoffWithMod.Output())
	v.router.AddProcessor(cutoffFreq)

	resonanceWithMod := value.NewAdd()
	resonanceWithMod.PlugA(c.Resonance.Output())
	resonanceWithMod.PlugB(v.matrix.Output(modmatrix.DestResonanceOffset))
	v.router.AddProcessor(resonanceWithMod)

	v.filt = filter.New()
	v.filt.PlugAudio(oscMix.Output())
	v.filt.PlugType(c.FilterType.Output())
	v.filt.PlugCutoff(cutoffFreq.Output())
	v.filt.PlugResonance(resonanceWithMod.Output())
	v.filt.PlugReset(v.voiceEvent.Output())
	v.router.AddProcessor(v.filt)

	// Velocity track: blends full amplitude with velocity-scaled amplitude.
	fullGain := value.New(1)
	v.router.AddProcessor(fullGain)

	velocityGain := value.NewCrossfade()
	velocityGain.PlugA(fullGain.Output())
	velocityGain.PlugB(v.velocity.Output())
	velocityGain.PlugMix(c.VelocityTrack.Output())
	v.router.AddProcessor(velocityGain)

	ampWithMod := value.NewAdd()
	ampWithMod.PlugA(v.ampEnv.ValueOutput())
	ampWithMod.PlugB(v.matrix.Output(modmatrix.DestAmplitudeOffset))
	v.router.AddProcessor(ampWithMod)

	envTimesVelocity := value.NewMultiply()
	envTimesVelocity.PlugA(ampWithMod.Output())
	envTimesVelocity.PlugB(velocityGain.Output())
	v.router.AddProcessor(envTimesVelocity)

	v.output = value.NewMultiply()
	v.output.PlugA(v.filt.Output())
	v.output.PlugB(envTimesVelocity.Output())
	v.router.AddProcessor(v.output)

	v.router.MustFreeze()
	return v
}
