package voice

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestRapidActiveVoicesNeverExceedsPolyphony checks spec invariant 3: the
// number of held-or-released voices is always bounded by the configured
// polyphony, no matter how many note-on/off events arrive.
func TestRapidActiveVoicesNeverExceedsPolyphony(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		polyphony := rapid.IntRange(1, 16).Draw(rt, "polyphony")
		h := NewHandler(polyphony)
		h.SetSampleRate(1000)

		events := rapid.SliceOfN(rapid.IntRange(0, 2), 0, 40).Draw(rt, "events")
		note := rapid.IntRange(40, 80).Draw(rt, "noteBase")
		for i, kind := range events {
			n := note + i%8
			switch kind {
			case 0:
				h.NoteOn(n, 1)
			case 1:
				h.NoteOff(n)
			case 2:
				h.Process(4)
			}
			require.LessOrEqual(rt, h.ActiveVoices(), polyphony)
		}
	})
}

// TestRapidReleasedVoiceReachesFinishedWithinReleaseWindow checks spec
// invariant 7: a note-on followed immediately by a note-off (sustain off)
// reaches the finished state within release + one block's worth of samples.
func TestRapidReleasedVoiceReachesFinishedWithinReleaseWindow(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sampleRate := rapid.Float64Range(8000, 48000).Draw(rt, "sampleRate")
		releaseSeconds := rapid.Float64Range(0.001, 0.2).Draw(rt, "release")
		blockSize := rapid.IntRange(1, 128).Draw(rt, "blockSize")

		h := NewHandler(2)
		h.SetSampleRate(sampleRate)
		h.Controls.AmpRelease.Set(releaseSeconds)
		h.Controls.AmpAttack.Set(0.0001)
		h.Controls.AmpDecay.Set(0.0001)

		h.NoteOn(60, 1)
		h.NoteOff(60)

		budgetSeconds := releaseSeconds + float64(blockSize)/sampleRate
		budgetSamples := int(budgetSeconds*sampleRate) + blockSize*4 // generous margin for attack/decay lead-in
		processed := 0
		reached := false
		for processed < budgetSamples {
			h.Process(blockSize)
			processed += blockSize
			if h.voices[0].State == StateFinished || h.voices[1].State == StateFinished {
				reached = true
				break
			}
		}
		require.True(rt, reached, "expected a released voice to reach finished within the release window")
	})
}
