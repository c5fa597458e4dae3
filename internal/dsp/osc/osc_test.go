package osc

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mtytel/termite-go/internal/dsp/value"
)

func buildOsc(wave Waveform, freq float64) (*Oscillator, *value.Value, *value.Value) {
	o := New(rand.New(rand.NewSource(42)))
	o.SetSampleRate(100)
	waveSrc := value.New(float64(wave))
	freqSrc := value.New(freq)
	reset := value.New(0)
	o.PlugWaveform(waveSrc.Output())
	o.PlugFrequency(freqSrc.Output())
	o.PlugReset(reset.Output())
	waveSrc.Process(1)
	reset.Process(1)
	return o, freqSrc, reset
}

func TestOscillatorSineStartsAtZero(t *testing.T) {
	o, freq, _ := buildOsc(Sine, 10)
	freq.Process(1)
	o.Process(1)
	if got := o.Output().At(0); math.Abs(got) > 1e-9 {
		t.Fatalf("expected sine to start at phase 0 (value 0), got %v", got)
	}
}

func TestOscillatorSquareAlternatesHalfway(t *testing.T) {
	o, freq, _ := buildOsc(Square, 50)
	// sampleRate=100, freq=50 => phase advances 0.5/sample.
	freq.Process(1)
	o.Process(1)
	first := o.Output().At(0)
	freq.Process(1)
	o.Process(1)
	second := o.Output().At(0)
	if first == second {
		t.Fatalf("expected square wave to flip after half a cycle, got %v then %v", first, second)
	}
}

func TestOscillatorResetZeroesPhase(t *testing.T) {
	o, freq, reset := buildOsc(Sine, 10)
	for i := 0; i < 10; i++ {
		freq.Process(1)
		reset.Process(1)
		o.Process(1)
	}
	reset.Set(1)
	freq.Process(1)
	reset.Process(1)
	o.Process(1)
	if got := o.Output().At(0); math.Abs(got) > 1e-9 {
		t.Fatalf("expected reset to force phase back to 0 (value 0), got %v", got)
	}
}

func TestOscillatorWhiteNoiseStaysInRange(t *testing.T) {
	o, freq, _ := buildOsc(WhiteNoise, 100)
	for i := 0; i < 64; i++ {
		freq.Process(1)
		o.Process(1)
		v := o.Output().At(0)
		if v < -1 || v > 1 {
			t.Fatalf("sample %d: expected white noise within [-1,1], got %v", i, v)
		}
	}
}

func TestStepWaveClampsToSteps(t *testing.T) {
	got := stepWave(0.99, 4)
	if got < -1 || got > 1 {
		t.Fatalf("expected step wave output within [-1,1], got %v", got)
	}
}
