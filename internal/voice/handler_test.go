package voice

import (
	"testing"

	"github.com/mtytel/termite-go/internal/dsp/envelope"
)

func TestNoteOnAllocatesFreeVoiceFirst(t *testing.T) {
	h := NewHandler(4)
	h.SetSampleRate(1000)
	h.NoteOn(60, 1)
	if got := h.ActiveVoices(); got != 1 {
		t.Fatalf("expected 1 active voice after a note-on, got %d", got)
	}
}

func TestNoteOnRetriggersAlreadyHeldNote(t *testing.T) {
	h := NewHandler(4)
	h.SetSampleRate(1000)
	h.NoteOn(60, 1)
	h.NoteOn(60, 0.5)
	if got := h.ActiveVoices(); got != 1 {
		t.Fatalf("expected retriggering the same held note to reuse one voice, got %d active", got)
	}
}

func TestNoteOnRepressWithLegatoOffRetriggersAmpEnvelope(t *testing.T) {
	h := NewHandler(4)
	h.SetSampleRate(1000)
	h.Controls.Legato.Set(0)
	h.Controls.AmpAttack.Set(0.01)
	h.Controls.AmpDecay.Set(1.0)
	h.Controls.AmpSustain.SetHard(0.2)

	h.NoteOn(60, 1)
	h.Process(10) // attack completes, level reaches 1.0 and phase moves to decay
	h.Process(700) // well into decay, comfortably below 1.0

	v := h.findHeld(60)
	if v == nil {
		t.Fatal("expected note 60 to be held")
	}
	midLevel := v.ampEnv.CurrentValue()
	midPhase := envelope.Phase(int(v.ampEnv.PhaseOutput().At(699)))
	if midPhase != envelope.Decay {
		t.Fatalf("expected envelope mid-decay before repress, got phase %v (level %v)", midPhase, midLevel)
	}
	if midLevel >= 1.0 {
		t.Fatalf("expected envelope level to have dropped below 1.0 by the time it's repressed, got %v", midLevel)
	}

	h.NoteOn(60, 0.5) // same note, still held: legato=0 must force a retrigger
	h.Process(1)

	afterPhase := envelope.Phase(int(v.ampEnv.PhaseOutput().At(0)))
	afterLevel := v.ampEnv.CurrentValue()
	if afterPhase != envelope.Attack {
		t.Fatalf("expected legato=0 repress of an already-held note to retrigger the amp envelope back to Attack, got phase %v", afterPhase)
	}
	if afterLevel <= midLevel {
		t.Fatalf("expected the attack phase to climb from %v, got %v", midLevel, afterLevel)
	}
}

func TestNoteOffReleasesHeldVoice(t *testing.T) {
	h := NewHandler(4)
	h.SetSampleRate(1000)
	h.NoteOn(60, 1)
	h.NoteOff(60)
	v := h.findHeld(60)
	if v != nil {
		t.Fatal("expected note to no longer be findable as held after note-off")
	}
	found := false
	for i := 0; i < h.polyphony; i++ {
		if h.voices[i].State == StateReleased && h.voices[i].Note == 60 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the voice to transition to released state")
	}
}

func TestSustainDefersNoteOffUntilSustainOff(t *testing.T) {
	h := NewHandler(4)
	h.SetSampleRate(1000)
	h.SustainOn()
	h.NoteOn(60, 1)
	h.NoteOff(60)
	if v := h.findHeld(60); v == nil {
		t.Fatal("expected note to remain held while sustain is down")
	}
	h.SustainOff()
	if v := h.findHeld(60); v != nil {
		t.Fatal("expected note to release once sustain lifts")
	}
}

func TestAllocationStealsOldestReleasedBeforeOldestHeld(t *testing.T) {
	h := NewHandler(2)
	h.SetSampleRate(1000)
	h.NoteOn(60, 1)
	h.NoteOn(61, 1)
	h.NoteOff(60) // voice for 60 becomes released, older than the still-held 61
	h.NoteOn(62, 1)
	if v := h.findHeld(61); v == nil {
		t.Fatal("expected the still-held note to survive stealing while a released voice was available")
	}
	if v := h.findHeld(60); v != nil {
		t.Fatal("expected the released voice to have been stolen for the new note")
	}
}

func TestActiveVoicesBoundedByPolyphony(t *testing.T) {
	h := NewHandler(3)
	h.SetSampleRate(1000)
	for note := 60; note < 70; note++ {
		h.NoteOn(note, 1)
	}
	if got := h.ActiveVoices(); got > 3 {
		t.Fatalf("expected active voices bounded by polyphony 3, got %d", got)
	}
}

func TestReclaimFinishedMarksVoiceFinishedBelowKillerThreshold(t *testing.T) {
	h := NewHandler(2)
	h.SetSampleRate(1000)
	h.NoteOn(60, 1)
	h.NoteOff(60)
	for i := 0; i < 2000; i++ {
		h.Process(1)
	}
	found := false
	for i := 0; i < h.polyphony; i++ {
		if h.voices[i].State == StateFinished {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a fully-released voice to eventually be reclaimed as finished")
	}
}
