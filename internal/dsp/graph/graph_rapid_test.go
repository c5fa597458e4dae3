package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestRapidTopoSortNeverReadsBeforeWrite checks spec invariant 5: whatever
// order a chain of dependent processors is registered in, the Router's
// topological sort always runs each producer before its consumers.
func TestRapidTopoSortNeverReadsBeforeWrite(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		chainLen := rapid.IntRange(1, 12).Draw(rt, "chainLen")

		var log []string
		nodes := make([]*recordingProc, chainLen)
		for i := 0; i < chainLen; i++ {
			nodes[i] = newRecordingProc(string(rune('a'+i)), &log)
			if i > 0 {
				nodes[i].Plug(nodes[i-1].Output())
			}
		}

		perm := shuffledIndices(rt, chainLen)
		r := NewRouter("chain")
		for _, idx := range perm {
			r.AddProcessor(nodes[idx])
		}
		require.NoError(rt, r.Freeze())

		log = nil
		r.Process(1)

		seen := make(map[string]bool, chainLen)
		for _, tag := range log {
			for i := 0; i < chainLen; i++ {
				if string(rune('a'+i)) == tag {
					for j := 0; j < i; j++ {
						require.True(rt, seen[string(rune('a'+j))], "processor %q ran before its producer %q", tag, string(rune('a'+j)))
					}
				}
			}
			seen[tag] = true
		}

		require.Equal(rt, float64(chainLen), nodes[chainLen-1].Output().At(0))
	})
}

// shuffledIndices draws a Fisher-Yates shuffle of [0, n) from rt, exercising
// every registration order a Router's children could arrive in.
func shuffledIndices(rt *rapid.T, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rapid.IntRange(0, i).Draw(rt, "swap")
		out[i], out[j] = out[j], out[i]
	}
	return out
}
