// Package delay implements the feedback Delay line of spec.md §4.8: a
// circular buffer read back with linear interpolation at a fractional
// sample offset, with feedback mixed into the write. Adapted from the
// teacher's internal/effects/delay.go (stereo, fixed delay, float32) down
// to the spec's mono float64, sample-accurate delay_time line. Feedback is
// read from the delay's own ring buffer, so its output is an ordinary
// graph output.
package delay

import "github.com/mtytel/termite-go/internal/dsp/graph"

const (
	InAudio = iota
	InDelayTime
	InFeedback
	InWet
)

// MaxDelaySeconds bounds the circular buffer size at construction.
const MaxDelaySeconds = 2.0

// Delay is a mono feedback delay line.
type Delay struct {
	graph.Base

	audio     *graph.Input
	delayTime *graph.Input
	feedback  *graph.Input
	wet       *graph.Input

	out *graph.Output

	buf        []float64
	writePos   int
	sampleRate float64
}

// New creates a Delay whose ring buffer is sized for maxDelaySeconds at
// the given sample rate.
func New(maxDelaySeconds, sampleRate float64) *Delay {
	if maxDelaySeconds <= 0 {
		maxDelaySeconds = MaxDelaySeconds
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	size := int(maxDelaySeconds*sampleRate) + 2
	d := &Delay{
		buf:        make([]float64, size),
		sampleRate: sampleRate,
	}
	d.audio = d.AddInput("audio")
	d.delayTime = d.AddInput("delay_time")
	d.feedback = d.AddInput("feedback")
	d.wet = d.AddInput("wet")
	d.out = d.AddOutput("audio", d)
	return d
}

func (d *Delay) Output() *graph.Output { return d.out }

func (d *Delay) PlugAudio(o *graph.Output)     { d.audio.Plug(o) }
func (d *Delay) PlugDelayTime(o *graph.Output) { d.delayTime.Plug(o) }
func (d *Delay) PlugFeedback(o *graph.Output)  { d.feedback.Plug(o) }
func (d *Delay) PlugWet(o *graph.Output)       { d.wet.Plug(o) }

func (d *Delay) SetSampleRate(rate float64) {
	if rate <= 0 {
		return
	}
	d.sampleRate = rate
	size := int(MaxDelaySeconds*rate) + 2
	if size != len(d.buf) {
		d.buf = make([]float64, size)
		d.writePos = 0
	}
}

func (d *Delay) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.writePos = 0
}

func (d *Delay) Process(n int) {
	buf := d.out.Buffer()
	size := len(d.buf)
	maxDelay := float64(size-2) / d.sampleRate

	for i := 0; i < n; i++ {
		delaySec := d.delayTime.At(i)
		if delaySec < 0.01 {
			delaySec = 0.01
		}
		if delaySec > maxDelay {
			delaySec = maxDelay
		}
		fb := d.feedback.At(i)
		if fb < -1 {
			fb = -1
		}
		if fb > 1 {
			fb = 1
		}
		wet := d.wet.At(i)
		if wet < 0 {
			wet = 0
		}
		if wet > 1 {
			wet = 1
		}

		delaySamples := delaySec * d.sampleRate
		readPos := float64(d.writePos) - delaySamples
		for readPos < 0 {
			readPos += float64(size)
		}
		i0 := int(readPos) % size
		i1 := (i0 + 1) % size
		frac := readPos - float64(int(readPos))
		delayed := d.buf[i0]*(1-frac) + d.buf[i1]*frac

		in := d.audio.At(i)
		d.buf[d.writePos] = in + delayed*fb
		d.writePos++
		if d.writePos >= size {
			d.writePos = 0
		}

		buf.Set(i, in*(1-wet)+delayed*wet)
	}
}
