// Package termite is the external boundary of the synthesizer engine:
// Synth wraps the polyphonic voice handler, a shared output delay line,
// and master volume behind the render/onMidi contract spec.md §6
// describes, guarded by one coarse mutex that Render takes for one block
// at a time.
package termite

import (
	"errors"
	"sync"

	"github.com/mtytel/termite-go/internal/control"
	"github.com/mtytel/termite-go/internal/dsp/delay"
	"github.com/mtytel/termite-go/internal/dsp/graph"
	"github.com/mtytel/termite-go/internal/dsp/smooth"
	"github.com/mtytel/termite-go/internal/dsp/value"
	"github.com/mtytel/termite-go/internal/midi"
	"github.com/mtytel/termite-go/internal/voice"
)

// Synth is the public engine: construct once per device sample rate,
// feed it MIDI via OnMidi, pull audio via Render.
type Synth struct {
	mu sync.Mutex

	sampleRate float64
	blockSize  int

	handler   *voice.Handler
	delay     *delay.Delay
	delayFeed *graph.Output
	volume    *smooth.SmoothValue

	delayTimeVal     *value.Value
	delayFeedbackVal *value.Value
	delayWetVal      *value.Value
	modWheel         *value.Value

	delayTime     *control.Control
	delayFeedback *control.Control
	delayWet      *control.Control

	controls control.Map

	midiLearnArmed string
	midiLearnMap   map[int]string
}

// New constructs a Synth at the given sample rate and polyphony (0 uses
// voice.DefaultPolyphony). sampleRate must be positive.
func New(sampleRate float64, polyphony int) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	s := &Synth{
		sampleRate:   sampleRate,
		blockSize:    graph.DefaultBlockSize,
		handler:      voice.NewHandler(polyphony),
		delay:        delay.New(delay.MaxDelaySeconds, sampleRate),
		volume:       smooth.New(0.25, 0.05),
		modWheel:     value.New(0),
		midiLearnMap: make(map[int]string),
	}
	// delayFeed is a bare Output (no Router owns it) that the per-block
	// render loop fills directly from the voice handler's aggregate, so
	// the Delay line can plug into it the same way any processor plugs
	// into a producer's Output without requiring the handler's voices and
	// the delay to share one flattened graph.Router.
	s.delayFeed = graph.NewOutput("voice-mix", nil)
	s.delay.PlugAudio(s.delayFeed)

	s.delayTimeVal = value.New(0.3)
	s.delayFeedbackVal = value.New(0)
	s.delayWetVal = value.New(0)
	s.delay.PlugDelayTime(s.delayTimeVal.Output())
	s.delay.PlugFeedback(s.delayFeedbackVal.Output())
	s.delay.PlugWet(s.delayWetVal.Output())

	s.handler.SetSampleRate(sampleRate)
	s.delay.SetSampleRate(sampleRate)
	s.buildControlMap()
	return s, nil
}

// SetSampleRate changes the engine's operating sample rate, rebuilding
// rate-dependent tables in every processor.
func (s *Synth) SetSampleRate(rate float64) error {
	if rate <= 0 {
		return errors.New("sampleRate must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampleRate = rate
	s.handler.SetSampleRate(rate)
	s.delay.SetSampleRate(rate)
	return nil
}

// SetBlockSize bounds how many frames a single Render call advances the
// graph by at once; must be between 1 and graph.MaxBlockSize.
func (s *Synth) SetBlockSize(n int) error {
	if n <= 0 || n > graph.MaxBlockSize {
		return errors.New("blockSize out of range")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockSize = n
	return nil
}

// Render fills buf with len(buf) mono float64 samples, processing the
// graph in blocks no larger than the configured block size. This is the
// audio thread's only entry point. The lock is held for one block at a
// time, so control calls can interleave between blocks.
func (s *Synth) Render(buf []float64) {
	remaining := buf
	for len(remaining) > 0 {
		s.mu.Lock()
		n := s.blockSize
		if n > len(remaining) {
			n = len(remaining)
		}
		s.volume.Process(n)
		s.delayTimeVal.Process(n)
		s.delayFeedbackVal.Process(n)
		s.delayWetVal.Process(n)

		s.handler.Process(n)
		s.delayFeed.Buffer().Write(n, func(i int) graph.Sample {
			return s.handler.AggregateAt(i)
		})
		s.delay.Process(n)

		vol := s.volume.Output()
		out := s.delay.Output()
		for i := 0; i < n; i++ {
			remaining[i] = out.At(i) * vol.At(i)
		}
		remaining = remaining[n:]
		s.mu.Unlock()
	}
}

// OnMidi decodes and applies a 3-byte MIDI message. Malformed messages
// are dropped silently per spec.md §7.
func (s *Synth) OnMidi(b []byte) {
	msg, ok := midi.Decode(b)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Kind {
	case midi.NoteOn:
		s.handler.NoteOn(msg.Note, float64(msg.Velocity)/127.0)
	case midi.NoteOff:
		s.handler.NoteOff(msg.Note)
	case midi.ControlChange:
		s.handleCC(msg)
	case midi.PitchBend:
		s.handler.Controls.PitchBendAmount.Set(msg.PitchBend)
	}
}

func (s *Synth) handleCC(msg midi.Message) {
	if msg.IsSustain() {
		if msg.SustainOn() {
			s.handler.SustainOn()
		} else {
			s.handler.SustainOff()
		}
		return
	}
	if msg.IsModWheel() {
		s.modWheel.Set(float64(msg.Value) / 127.0)
		return
	}
	if s.midiLearnArmed != "" {
		s.midiLearnMap[msg.Controller] = s.midiLearnArmed
		if c, ok := s.controls[s.midiLearnArmed]; ok {
			c.SetMidiLearn(msg.Controller)
		}
		s.midiLearnArmed = ""
		return
	}
	if name, ok := s.midiLearnMap[msg.Controller]; ok {
		if c, ok := s.controls[name]; ok {
			c.SetMidi(msg.Value)
		}
	}
}

// NoteOn/NoteOff/SustainOn/SustainOff/SetPitchWheel/SetModWheel mirror
// OnMidi's branches as direct method calls for hosts that already have
// decoded events (e.g. a sequencer or test harness) rather than raw bytes.
func (s *Synth) NoteOn(note int, velocity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler.NoteOn(note, velocity)
}

func (s *Synth) NoteOff(note int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler.NoteOff(note)
}

func (s *Synth) SustainOn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler.SustainOn()
}

func (s *Synth) SustainOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler.SustainOff()
}

func (s *Synth) SetPitchWheel(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler.Controls.PitchBendAmount.Set(amount)
}

func (s *Synth) SetModWheel(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modWheel.Set(amount)
}

// SetMasterVolume sets the post-delay volume scalar, smoothed to avoid
// zipper noise on rapid changes.
func (s *Synth) SetMasterVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume.Set(v)
}

// GetControls returns the engine's named parameter catalog, matching
// termite.cpp's control_map surface.
func (s *Synth) GetControls() control.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

// ArmMidiLearn arms MIDI-learn mode: the next ControlChange message
// received via OnMidi binds its CC number to the named control.
func (s *Synth) ArmMidiLearn(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.midiLearnArmed = name
}

// MidiLearnMap returns the CC-number -> control-name bindings accumulated
// so far, for the external collaborator to persist (spec.md §3).
func (s *Synth) MidiLearnMap() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]string, len(s.midiLearnMap))
	for k, v := range s.midiLearnMap {
		out[k] = v
	}
	return out
}

// SetMidiLearnMap restores a previously persisted CC-number -> control-name
// map, re-arming SetMidiLearn on each bound control.
func (s *Synth) SetMidiLearnMap(m map[int]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.midiLearnMap = make(map[int]string, len(m))
	for cc, name := range m {
		s.midiLearnMap[cc] = name
		if c, ok := s.controls[name]; ok {
			c.SetMidiLearn(cc)
		}
	}
}

// Reset silences every voice and clears the delay line.
func (s *Synth) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler.Reset()
	s.delay.Reset()
}
