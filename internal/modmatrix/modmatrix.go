// Package modmatrix implements the five-slot modulation matrix of
// spec.md §4.9: each slot is a (source, scale, destination) triple,
// evaluated once per sample as destination += scale*source. Modeled as a
// genuine graph.Processor (rather than an out-of-band evaluator) so the
// Router's topological sort orders it correctly between the sources it
// reads and the destination accumulators its consumers read, the same way
// every other signal-shaping node in this graph participates in the DAG.
package modmatrix

import "github.com/mtytel/termite-go/internal/dsp/graph"

// Source enumerates the closed set of signals a slot may read from.
type Source int

const (
	SourceNone Source = iota
	SourceOsc1
	SourceOsc2
	SourceLFO1
	SourceLFO2
	SourceAmpEnv
	SourceFilterEnv
	SourceNote
	SourceVelocity
	SourcePitchWheel

	NumSources
)

// Destination enumerates the closed set of per-voice offset accumulators a
// slot may write into.
type Destination int

const (
	DestNone Destination = iota
	DestCutoffOffset
	DestPitchOffset
	DestAmplitudeOffset
	DestResonanceOffset

	NumDestinations
)

// NumSlots is the fixed slot count spec.md §4.9 mandates.
const NumSlots = 5

// Matrix is a Processor with one audio-rate Input per Source, one
// control-rate (selector, read once per block) Input pair and one
// audio-rate smoothed-scale Input per slot, and one audio-rate Output per
// Destination.
type Matrix struct {
	graph.Base

	sources [NumSources]*graph.Input

	slotSource *[NumSlots]*graph.Input
	slotScale  [NumSlots]*graph.Input
	slotDest   [NumSlots]*graph.Input

	dest [NumDestinations]*graph.Output
}

func New() *Matrix {
	m := &Matrix{}
	for s := Source(1); s < NumSources; s++ {
		m.sources[s] = m.AddInput(sourceName(s))
	}
	slotSel := [NumSlots]*graph.Input{}
	for i := 0; i < NumSlots; i++ {
		slotSel[i] = m.AddInput("slot-source")
		m.slotScale[i] = m.AddInput("slot-scale")
		m.slotDest[i] = m.AddInput("slot-dest")
	}
	m.slotSource = &slotSel
	for d := Destination(1); d < NumDestinations; d++ {
		m.dest[d] = m.AddOutput(destName(d), m)
	}
	return m
}

// PlugSource binds the signal read for a given Source enum value.
func (m *Matrix) PlugSource(s Source, o *graph.Output) { m.sources[s].Plug(o) }

// PlugSlot binds slot i's source-selector, scale, and destination-selector
// inputs. sourceSel and destSel are typically Value outputs holding a
// Source/Destination enum value (control-rate); scale is typically a
// SmoothValue output.
func (m *Matrix) PlugSlot(i int, sourceSel, scale, destSel *graph.Output) {
	m.slotSource[i].Plug(sourceSel)
	m.slotScale[i].Plug(scale)
	m.slotDest[i].Plug(destSel)
}

// Output returns the accumulated signal for the given destination.
func (m *Matrix) Output(d Destination) *graph.Output { return m.dest[d] }

func (m *Matrix) SetSampleRate(float64) {}

func (m *Matrix) Process(n int) {
	var acc [NumDestinations]graph.Buffer
	for i := 0; i < n; i++ {
		for slot := 0; slot < NumSlots; slot++ {
			src := Source(int(m.slotSource[slot].First()))
			dst := Destination(int(m.slotDest[slot].First()))
			if src <= SourceNone || src >= NumSources || dst <= DestNone || dst >= NumDestinations {
				continue
			}
			srcIn := m.sources[src]
			if srcIn == nil {
				continue
			}
			acc[dst].Set(i, acc[dst].At(i)+m.slotScale[slot].At(i)*srcIn.At(i))
		}
	}
	for d := Destination(1); d < NumDestinations; d++ {
		out := m.dest[d].Buffer()
		for i := 0; i < n; i++ {
			out.Set(i, acc[d].At(i))
		}
	}
}

func sourceName(s Source) string {
	switch s {
	case SourceOsc1:
		return "osc1"
	case SourceOsc2:
		return "osc2"
	case SourceLFO1:
		return "lfo1"
	case SourceLFO2:
		return "lfo2"
	case SourceAmpEnv:
		return "amp-env"
	case SourceFilterEnv:
		return "filter-env"
	case SourceNote:
		return "note"
	case SourceVelocity:
		return "velocity"
	case SourcePitchWheel:
		return "pitch-wheel"
	default:
		return "unknown-source"
	}
}

func destName(d Destination) string {
	switch d {
	case DestCutoffOffset:
		return "cutoff-offset"
	case DestPitchOffset:
		return "pitch-offset"
	case DestAmplitudeOffset:
		return "amplitude-offset"
	case DestResonanceOffset:
		return "resonance-offset"
	default:
		return "unknown-dest"
	}
}
