package voice

import (
	"math/rand"

	"github.com/mtytel/termite-go/internal/dsp/graph"
)

// MaxPolyphony bounds the compile-time voice array, per spec.md §4.7
// ("default 32, configurable up to 64").
const MaxPolyphony = 64

// DefaultPolyphony matches termite_synth.cpp's TermiteSynth constructor.
const DefaultPolyphony = 12

const killerThreshold = 1e-5

// Handler is the VoiceHandler of spec.md §4.7: it owns a fixed voice
// array, the shared Controls and Globals all voices read from, and
// implements the allocation/stealing policy. Grounded on the teacher's
// wavetable.Engine/fm.Engine "voices []voice" + stealVoice pattern,
// generalized to instances of a declarative per-voice subgraph template
// (buildVoice) instead of a flat struct, per spec.md §9's "Voice cloning"
// design note.
type Handler struct {
	Controls *Controls
	globals  *Globals

	voices     [MaxPolyphony]*Voice
	polyphony  int
	nextAge    uint64
	sustain    bool
	pendingOff map[int]bool

	rng *rand.Rand
}

// NewHandler builds the shared Controls/Globals and polyphony voice
// instances.
func NewHandler(polyphony int) *Handler {
	if polyphony <= 0 || polyphony > MaxPolyphony {
		polyphony = DefaultPolyphony
	}
	h := &Handler{
		Controls:   NewControls(),
		polyphony:  polyphony,
		pendingOff: make(map[int]bool),
		rng:        rand.New(rand.NewSource(1)),
	}
	h.globals = newGlobals(h.Controls)
	for i := 0; i < polyphony; i++ {
		h.voices[i] = buildVoice(h.Controls, h.globals, h.rng)
	}
	return h
}

// SetPolyphony changes the active voice count for allocation purposes;
// voices beyond the new count are released and excluded from future
// allocation but not destroyed (matching the fixed compile-time array).
func (h *Handler) SetPolyphony(n int) {
	if n <= 0 {
		n = 1
	}
	if n > MaxPolyphony {
		n = MaxPolyphony
	}
	for i := n; i < h.polyphony; i++ {
		if v := h.voices[i]; v != nil && v.State == StateHeld {
			v.Release()
			v.State = StateReleased
			v.ReleasedAt = h.nextAge
			h.nextAge++
		}
	}
	h.polyphony = n
}

func (h *Handler) SetSampleRate(rate float64) {
	h.globals.SetSampleRate(rate)
	for i := 0; i < h.polyphony; i++ {
		h.voices[i].SetSampleRate(rate)
	}
}

func (h *Handler) Reset() {
	h.globals.Reset()
	for i := 0; i < h.polyphony; i++ {
		h.voices[i].Reset()
		h.voices[i].State = StateFinished
	}
}

// NoteOn implements spec.md §4.7's allocation policy.
func (h *Handler) NoteOn(note int, velocity float64) {
	if v := h.findHeld(note); v != nil {
		// A voice is already sounding this note; alreadyHeld=true only
		// tells the LegatoFilter that much — whether the envelopes
		// actually retrigger is legato's call, made inside AssignNote.
		v.AssignNote(float64(note), velocity, true)
		v.Note = note
		v.State = StateHeld
		h.nextAge++
		v.Age = h.nextAge
		return
	}

	target := h.allocate()
	alreadyHeld := target.State != StateFinished
	target.AssignNote(float64(note), velocity, alreadyHeld)
	target.Note = note
	target.State = StateHeld
	h.nextAge++
	target.Age = h.nextAge
}

// NoteOff implements spec.md §4.7's note-off/sustain contract.
func (h *Handler) NoteOff(note int) {
	if h.sustain {
		h.pendingOff[note] = true
		return
	}
	h.releaseNote(note)
}

func (h *Handler) releaseNote(note int) {
	for i := 0; i < h.polyphony; i++ {
		v := h.voices[i]
		if v.State == StateHeld && v.Note == note {
			v.Release()
			v.State = StateReleased
			v.ReleasedAt = h.nextAge
			h.nextAge++
		}
	}
}

func (h *Handler) SustainOn() { h.sustain = true }

func (h *Handler) SustainOff() {
	h.sustain = false
	for note := range h.pendingOff {
		h.releaseNote(note)
	}
	h.pendingOff = make(map[int]bool)
}

func (h *Handler) findHeld(note int) *Voice {
	for i := 0; i < h.polyphony; i++ {
		v := h.voices[i]
		if v.State == StateHeld && v.Note == note {
			return v
		}
	}
	return nil
}

// allocate picks the voice to use for a new note: free, else oldest
// released, else oldest held.
func (h *Handler) allocate() *Voice {
	for i := 0; i < h.polyphony; i++ {
		if h.voices[i].State == StateFinished {
			return h.voices[i]
		}
	}

	var oldestReleased *Voice
	for i := 0; i < h.polyphony; i++ {
		v := h.voices[i]
		if v.State == StateReleased && (oldestReleased == nil || v.ReleasedAt < oldestReleased.ReleasedAt) {
			oldestReleased = v
		}
	}
	if oldestReleased != nil {
		return oldestReleased
	}

	var oldestHeld *Voice
	for i := 0; i < h.polyphony; i++ {
		v := h.voices[i]
		if oldestHeld == nil || v.Age < oldestHeld.Age {
			oldestHeld = v
		}
	}
	return oldestHeld
}

// Process runs the globals once, then every active voice, accumulating
// into the aggregate output.
func (h *Handler) Process(n int) {
	h.globals.Process(n)
	for i := 0; i < h.polyphony; i++ {
		v := h.voices[i]
		if v.State == StateFinished {
			continue
		}
		v.Process(n)
	}
	if n > 0 {
		h.reclaimFinished()
	}
}

// AggregateAt returns the summed output of every active voice at sample i
// of the block most recently processed.
func (h *Handler) AggregateAt(i int) graph.Sample {
	var sum graph.Sample
	for idx := 0; idx < h.polyphony; idx++ {
		v := h.voices[idx]
		if v.State == StateFinished {
			continue
		}
		sum += v.OutputSignal().At(i)
	}
	return sum
}

// ActivePolyphony returns the configured polyphony (voice count available
// for allocation), distinct from ActiveVoices' count of currently sounding
// voices.
func (h *Handler) ActivePolyphony() int { return h.polyphony }

// ActiveVoices returns how many voices are held or released (not
// finished); spec.md §8 invariant 3 bounds this by polyphony.
func (h *Handler) ActiveVoices() int {
	n := 0
	for i := 0; i < h.polyphony; i++ {
		if h.voices[i].State != StateFinished {
			n++
		}
	}
	return n
}

// reclaimFinished marks released voices finished once their killer signal
// is below threshold at the end of the block just processed.
func (h *Handler) reclaimFinished() {
	for i := 0; i < h.polyphony; i++ {
		v := h.voices[i]
		if v.State != StateReleased {
			continue
		}
		if v.ampEnv.CurrentValue() < killerThreshold {
			v.State = StateFinished
		}
	}
}
