package voice

import (
	"math"
	"testing"
)

func TestGlobalsLFOsProduceFiniteBoundedOutput(t *testing.T) {
	c := NewControls()
	g := newGlobals(c)
	g.SetSampleRate(1000)
	for block := 0; block < 20; block++ {
		g.Process(16)
		for i := 0; i < 16; i++ {
			v := g.LFO1Output().At(i)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < -1.0001 || v > 1.0001 {
				t.Fatalf("sample %d: expected LFO1 within [-1,1], got %v", i, v)
			}
		}
	}
}

func TestGlobalsPitchBendScalesByRange(t *testing.T) {
	c := NewControls()
	c.PitchBendAmount.SetHard(1)
	c.PitchBendRange.Set(2)
	g := newGlobals(c)
	g.SetSampleRate(1000)
	for block := 0; block < 10; block++ {
		g.Process(8)
	}
	if got := g.PitchBendOutput().At(0); got < 1.9 || got > 2.1 {
		t.Fatalf("expected pitch bend amount 1 scaled by range 2 to settle near 2, got %v", got)
	}
}

func TestGlobalsResetClearsRouterState(t *testing.T) {
	c := NewControls()
	g := newGlobals(c)
	g.SetSampleRate(1000)
	g.Process(8)
	g.Reset()
	g.Process(8)
	if got := g.LFO1Output().At(0); got != 0 {
		t.Fatalf("expected LFO1 (sine) to restart at phase 0 after Reset, got %v", got)
	}
}
