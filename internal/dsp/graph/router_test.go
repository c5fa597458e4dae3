package graph

import "testing"

type recordingProc struct {
	Base
	in  *Input
	out *Output
	log *[]string
	tag string
}

func newRecordingProc(tag string, log *[]string) *recordingProc {
	p := &recordingProc{log: log, tag: tag}
	p.in = p.AddInput("in")
	p.out = p.AddOutput("out", p)
	return p
}

func (p *recordingProc) Output() *Output       { return p.out }
func (p *recordingProc) Plug(o *Output)        { p.in.Plug(o) }
func (p *recordingProc) SetSampleRate(float64) {}
func (p *recordingProc) Process(n int) {
	*p.log = append(*p.log, p.tag)
	buf := p.out.Buffer()
	for i := 0; i < n; i++ {
		buf.Set(i, p.in.At(i)+1)
	}
}

func TestRouterOrdersProducersBeforeConsumers(t *testing.T) {
	var log []string
	r := NewRouter("test")
	a := newRecordingProc("a", &log)
	b := newRecordingProc("b", &log)
	c := newRecordingProc("c", &log)
	b.Plug(a.Output())
	c.Plug(b.Output())

	// Register out of dependency order; the router must still sort them.
	r.AddProcessor(c)
	r.AddProcessor(a)
	r.AddProcessor(b)
	r.MustFreeze()
	r.Process(1)

	if len(log) != 3 || log[0] != "a" || log[1] != "b" || log[2] != "c" {
		t.Fatalf("expected order [a b c], got %v", log)
	}
	if got := c.Output().At(0); got != 3 {
		t.Fatalf("expected accumulated value 3, got %v", got)
	}
}

func TestRouterDetectsCycle(t *testing.T) {
	r := NewRouter("cyclic")
	var log []string
	a := newRecordingProc("a", &log)
	b := newRecordingProc("b", &log)
	a.Plug(b.Output())
	b.Plug(a.Output())
	r.AddProcessor(a)
	r.AddProcessor(b)

	if err := r.Freeze(); err == nil {
		t.Fatal("expected cycle detection error, got nil")
	}
}

func TestFeedbackEdgeExcludedFromCycleDetection(t *testing.T) {
	r := NewRouter("feedback")
	var log []string
	a := newRecordingProc("a", &log)
	b := newRecordingProc("b", &log)

	fbOut := NewFeedbackOutput("fb", b)
	a.Plug(fbOut)
	b.Plug(a.Output())

	r.AddProcessor(a)
	r.AddProcessor(b)
	if err := r.Freeze(); err != nil {
		t.Fatalf("expected no cycle error with feedback output excluded, got %v", err)
	}
}

func TestUnboundInputReadsZero(t *testing.T) {
	in := NewInput("x")
	if got := in.At(0); got != 0 {
		t.Fatalf("unbound input should read 0, got %v", got)
	}
	if got := in.First(); got != 0 {
		t.Fatalf("unbound input First should read 0, got %v", got)
	}
}
