// Package trigger implements the sample-rate trigger-signal operators of
// spec.md §4.5: LegatoFilter, PortamentoFilter, TriggerCombiner, and
// TriggerWait. Each is grounded on the exact wiring termite_synth.cpp's
// TermiteVoiceHandler::createArticulation performs — LegatoFilter feeds
// both the amplitude envelope's retrigger edge and, via TriggerCombiner
// and TriggerWait, the latch of the note frequency; PortamentoFilter
// feeds LinearSlope's jump input.
package trigger

import "github.com/mtytel/termite-go/internal/dsp/graph"

const (
	InLegato = iota
	InTrigger
)

const (
	OutRetrigger = iota
	OutRemain
)

// LegatoFilter splits a note-on trigger into two trigger streams depending
// on whether legato is engaged and whether a voice was already held.
// Callers set the held state with SetHeld before processing the block in
// which a note-on arrives; the Voice does this from AssignNote's
// alreadyHeld flag, since held-state lives in voice bookkeeping, not in a
// sample-rate signal. Release does not clear it; it keeps its value until
// the next SetHeld or Reset.
type LegatoFilter struct {
	graph.Base

	legato  *graph.Input
	trigger *graph.Input

	retrigger *graph.Output
	remain    *graph.Output

	held bool
}

func New() *LegatoFilter {
	f := &LegatoFilter{}
	f.legato = f.AddInput("legato")
	f.trigger = f.AddInput("trigger")
	f.retrigger = f.AddOutput("retrigger", f)
	f.remain = f.AddOutput("remain", f)
	return f
}

func (f *LegatoFilter) RetriggerOutput() *graph.Output { return f.retrigger }
func (f *LegatoFilter) RemainOutput() *graph.Output    { return f.remain }

func (f *LegatoFilter) PlugLegato(o *graph.Output)  { f.legato.Plug(o) }
func (f *LegatoFilter) PlugTrigger(o *graph.Output) { f.trigger.Plug(o) }

// SetHeld tells the filter whether a voice was already sounding at the
// moment of the next trigger sample it sees. The Voice calls this from
// AssignNote, once per note-on, before the next Process.
func (f *LegatoFilter) SetHeld(held bool) { f.held = held }

func (f *LegatoFilter) Reset() { f.held = false }

func (f *LegatoFilter) SetSampleRate(float64) {}

func (f *LegatoFilter) Process(n int) {
	retrigBuf := f.retrigger.Buffer()
	remainBuf := f.remain.Buffer()
	for i := 0; i < n; i++ {
		t := f.trigger.At(i) != 0
		legato := f.legato.At(i) != 0

		retrig, remain := 0.0, 0.0
		if t {
			if !legato || !f.held {
				retrig = 1
			} else {
				remain = 1
			}
		}
		retrigBuf.Set(i, retrig)
		remainBuf.Set(i, remain)
	}
}

// PortamentoState selects how PortamentoFilter treats the next trigger.
type PortamentoState int

const (
	PortamentoOff PortamentoState = iota
	PortamentoAuto
	PortamentoOn
)

const (
	InPortamento = iota
	InPortamentoTrigger
)

// PortamentoFilter decides whether a pitch change should jump instantly
// (skip the LinearSlope ramp) or glide.
type PortamentoFilter struct {
	graph.Base

	state   *graph.Input
	trigger *graph.Input
	jump    *graph.Output

	held bool
}

func NewPortamentoFilter() *PortamentoFilter {
	f := &PortamentoFilter{}
	f.state = f.AddInput("portamento")
	f.trigger = f.AddInput("trigger")
	f.jump = f.AddOutput("jump", f)
	return f
}

func (f *PortamentoFilter) JumpOutput() *graph.Output { return f.jump }

func (f *PortamentoFilter) PlugPortamento(o *graph.Output) { f.state.Plug(o) }
func (f *PortamentoFilter) PlugTrigger(o *graph.Output)    { f.trigger.Plug(o) }

// SetHeld tells the filter whether a voice was already held before this
// trigger, the same way LegatoFilter.SetHeld works: PortamentoAuto jumps
// only when no voice was previously held.
func (f *PortamentoFilter) SetHeld(held bool) { f.held = held }

func (f *PortamentoFilter) Reset() { f.held = false }

func (f *PortamentoFilter) SetSampleRate(float64) {}

func (f *PortamentoFilter) Process(n int) {
	buf := f.jump.Buffer()
	for i := 0; i < n; i++ {
		jump := 0.0
		if f.trigger.At(i) != 0 {
			switch PortamentoState(int(f.state.At(i))) {
			case PortamentoOff:
				jump = 1
			case PortamentoAuto:
				if !f.held {
					jump = 1
				}
			}
		}
		buf.Set(i, jump)
	}
}

// TriggerCombiner fires its output on any sample where either input fires.
type TriggerCombiner struct {
	graph.Base
	a, b *graph.Input
	out  *graph.Output
}

func NewTriggerCombiner() *TriggerCombiner {
	c := &TriggerCombiner{}
	c.a = c.AddInput("a")
	c.b = c.AddInput("b")
	c.out = c.AddOutput("trigger", c)
	return c
}

func (c *TriggerCombiner) Output() *graph.Output { return c.out }
func (c *TriggerCombiner) PlugA(o *graph.Output) { c.a.Plug(o) }
func (c *TriggerCombiner) PlugB(o *graph.Output) { c.b.Plug(o) }

func (c *TriggerCombiner) SetSampleRate(float64) {}

func (c *TriggerCombiner) Process(n int) {
	buf := c.out.Buffer()
	for i := 0; i < n; i++ {
		if c.a.At(i) != 0 || c.b.At(i) != 0 {
			buf.Set(i, 1)
		} else {
			buf.Set(i, 0)
		}
	}
}

const (
	InWait = iota
	InWaitTrigger
)

// TriggerWait latches the value signal `wait` carries at the moment its
// trigger input fires, and outputs the latched value until the next
// trigger. In a voice it holds the note the oscillators play until a note
// start, a legato-remain event or the end of the amp envelope's release
// latches the newly assigned note (the note_wait wiring in
// createArticulation).
type TriggerWait struct {
	graph.Base

	wait    *graph.Input
	trigger *graph.Input

	value   *graph.Output
	latched float64
}

func NewTriggerWait() *TriggerWait {
	w := &TriggerWait{}
	w.wait = w.AddInput("wait")
	w.trigger = w.AddInput("trigger")
	w.value = w.AddOutput("value", w)
	return w
}

func (w *TriggerWait) Output() *graph.Output { return w.value }

func (w *TriggerWait) PlugWait(o *graph.Output)    { w.wait.Plug(o) }
func (w *TriggerWait) PlugTrigger(o *graph.Output) { w.trigger.Plug(o) }

func (w *TriggerWait) Reset() { w.latched = 0 }

func (w *TriggerWait) SetSampleRate(float64) {}

func (w *TriggerWait) Process(n int) {
	buf := w.value.Buffer()
	for i := 0; i < n; i++ {
		if w.trigger.At(i) != 0 {
			w.latched = w.wait.At(i)
		}
		buf.Set(i, w.latched)
	}
}
