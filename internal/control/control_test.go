package control

import "testing"

type fakeSource struct{ v float64 }

func (f *fakeSource) Set(v float64) { f.v = v }
func (f *fakeSource) Get() float64  { return f.v }

func TestSetClampsToRange(t *testing.T) {
	src := &fakeSource{}
	c := New("cutoff", src, 0, 100, 127)
	c.Set(500)
	if got := c.CurrentValue(); got != 100 {
		t.Fatalf("expected clamp to max 100, got %v", got)
	}
	c.Set(-50)
	if got := c.CurrentValue(); got != 0 {
		t.Fatalf("expected clamp to min 0, got %v", got)
	}
}

func TestSetDropsNonFiniteSilently(t *testing.T) {
	src := &fakeSource{v: 10}
	c := New("gain", src, 0, 1, 127)
	c.Set(nanValue())
	if got := c.CurrentValue(); got != 1 {
		t.Fatalf("expected non-finite Set to be dropped, value stayed clamped at 1, got %v", got)
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

func TestSetMidiHitsBothEndpointsExactly(t *testing.T) {
	src := &fakeSource{}
	c := New("resonance", src, 0, 10, 127)
	c.SetMidi(0)
	if got := c.CurrentValue(); got != 0 {
		t.Fatalf("expected midi 0 to hit min exactly, got %v", got)
	}
	c.SetMidi(127)
	if got := c.CurrentValue(); got != 10 {
		t.Fatalf("expected midi 127 to hit max exactly, got %v", got)
	}
}

func TestSetMidiOutOfRangeClampsInput(t *testing.T) {
	src := &fakeSource{}
	c := New("level", src, 0, 1, 127)
	c.SetMidi(-10)
	if got := c.CurrentValue(); got != 0 {
		t.Fatalf("expected negative midi to clamp to 0, got %v", got)
	}
	c.SetMidi(999)
	if got := c.CurrentValue(); got != 1 {
		t.Fatalf("expected oversized midi to clamp to 1, got %v", got)
	}
}

func TestNewDiscreteDerivesRangeFromStrings(t *testing.T) {
	src := &fakeSource{}
	c := NewDiscrete("waveform", src, []string{"sine", "saw", "square", "noise"})
	if c.Max() != 3 {
		t.Fatalf("expected max index 3 for 4 strings, got %v", c.Max())
	}
	if !c.IsDiscrete() {
		t.Fatal("expected IsDiscrete to be true")
	}
}

func TestGetPercentageNormalizes(t *testing.T) {
	src := &fakeSource{}
	c := New("pan", src, -1, 1, 127)
	c.Set(0)
	if got := c.GetPercentage(); got != 0.5 {
		t.Fatalf("expected midpoint to normalize to 0.5, got %v", got)
	}
}

func TestIncrementAndDecrementMoveOneStep(t *testing.T) {
	src := &fakeSource{}
	c := New("level", src, 0, 1, 10)
	c.Set(0.5)
	c.Increment()
	if got := c.CurrentValue(); got < 0.59 || got > 0.61 {
		t.Fatalf("expected one step (0.1) up from 0.5, got %v", got)
	}
	c.Decrement()
	c.Decrement()
	if got := c.CurrentValue(); got < 0.39 || got > 0.41 {
		t.Fatalf("expected two steps down from 0.6, got %v", got)
	}
}

func TestMapAddRegistersUnderControlName(t *testing.T) {
	m := NewMap()
	src := &fakeSource{}
	c := New("volume", src, 0, 1, 127)
	m.Add(c)
	if m["volume"] != c {
		t.Fatal("expected control registered under its own name")
	}
}

func TestMidiLearnRoundTrips(t *testing.T) {
	src := &fakeSource{}
	c := New("cutoff", src, 0, 1, 127)
	if c.MidiLearn() != 0 {
		t.Fatal("expected no midi learn binding by default")
	}
	c.SetMidiLearn(74)
	if c.MidiLearn() != 74 {
		t.Fatalf("expected midi learn binding 74, got %v", c.MidiLearn())
	}
}
