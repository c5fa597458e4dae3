package envelope

import (
	"testing"

	"github.com/mtytel/termite-go/internal/dsp/value"
)

func buildEnvelope(t *testing.T, sampleRate, attack, decay, sustain, release float64) (*Envelope, *value.Value) {
	t.Helper()
	e := New()
	e.SetSampleRate(sampleRate)
	a := value.New(attack)
	d := value.New(decay)
	s := value.New(sustain)
	r := value.New(release)
	trig := value.New(0)
	e.PlugAttack(a.Output())
	e.PlugDecay(d.Output())
	e.PlugSustain(s.Output())
	e.PlugRelease(r.Output())
	e.PlugTrigger(trig.Output())
	// Inputs read from each source's Output buffer; since these Values are
	// never added to a Router, drive their buffers manually before each
	// envelope Process call via processAll.
	return e, trig
}

func processAll(n int, e *Envelope, sources ...*value.Value) {
	for _, s := range sources {
		s.Process(n)
	}
	e.Process(n)
}

func TestEnvelopeAttackReachesOneThenDecaysToSustain(t *testing.T) {
	e, trig := buildEnvelope(t, 100, 0.1, 0.1, 0.5, 0.1)
	allSources := collectSources(e)
	trig.Set(1)
	for i := 0; i < 10; i++ {
		processAll(1, e, allSources...)
	}
	if got := e.ValueOutput().At(0); got < 0.99 {
		t.Fatalf("expected envelope near 1.0 after attack, got %v", got)
	}
	for i := 0; i < 10; i++ {
		processAll(1, e, allSources...)
	}
	if got := e.ValueOutput().At(0); got > 0.51 || got < 0.49 {
		t.Fatalf("expected envelope near sustain 0.5 after decay, got %v", got)
	}
}

func TestEnvelopeReleaseReachesZeroAndFires(t *testing.T) {
	e, trig := buildEnvelope(t, 100, 0.01, 0.01, 1.0, 0.1)
	allSources := collectSources(e)
	trig.Set(1)
	for i := 0; i < 5; i++ {
		processAll(1, e, allSources...)
	}
	trig.Set(0)
	sawFinished := false
	for i := 0; i < 20; i++ {
		processAll(1, e, allSources...)
		if e.FinishedOutput().At(0) != 0 {
			sawFinished = true
		}
	}
	if !sawFinished {
		t.Fatal("expected a finished pulse during release")
	}
	if got := e.ValueOutput().At(0); got != 0 {
		t.Fatalf("expected envelope at 0 after release completes, got %v", got)
	}
}

func TestEnvelopeRetriggerForcesRisingEdge(t *testing.T) {
	e, trig := buildEnvelope(t, 100, 0.1, 0.1, 1.0, 0.1)
	allSources := collectSources(e)
	trig.Set(1)
	for i := 0; i < 3; i++ {
		processAll(1, e, allSources...)
	}
	// Gate never drops (voice stolen and reassigned) but Retrigger should
	// still force a fresh attack phase on the next sample.
	e.Retrigger()
	processAll(1, e, allSources...)
	if e.phase != Attack {
		t.Fatalf("expected Attack phase immediately after Retrigger, got %v", e.phase)
	}
}

// collectSources returns the four parameter Values plus the trigger Value
// bound to e's inputs, discovered via the Input ports themselves so the
// test doesn't need a second copy of the wiring.
func collectSources(e *Envelope) []*value.Value {
	var out []*value.Value
	for _, in := range e.Inputs() {
		if src := in.Source(); src != nil {
			if v, ok := src.Producer().(*value.Value); ok {
				out = append(out, v)
			}
		}
	}
	return out
}
