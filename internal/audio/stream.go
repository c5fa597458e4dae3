// Package audio adapts the mono float64 renderer exposed by the core
// Synth to an ebiten/oto audio stream, the same device-output layer the
// teacher's internal/audio/stream.go opens for its own Player.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Renderer is the boundary internal/audio needs from the core: fill buf
// with n mono float64 samples at the engine's current sample rate. This
// is satisfied directly by (*termite.Synth).Render.
type Renderer interface {
	Render(buf []float64)
}

// StreamReader turns a mono Renderer into the interleaved stereo float32
// PCM stream ebiten's audio context reads, duplicating the mono signal
// to both channels since the core is explicitly stereo-agnostic mono.
type StreamReader struct {
	mu     sync.Mutex
	source Renderer
	mono   []float64
}

func NewStreamReader(source Renderer) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 2 channels * 4 bytes (float32) per frame.
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if cap(r.mono) < frames {
		r.mono = make([]float64, frames)
	}
	r.mono = r.mono[:frames]
	r.source.Render(r.mono)

	for i := 0; i < frames; i++ {
		u := math.Float32bits(float32(r.mono[i]))
		binary.LittleEndian.PutUint32(p[i*8:], u)
		binary.LittleEndian.PutUint32(p[i*8+4:], u)
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// Player wraps an ebiten audio player driving a StreamReader; it mirrors
// the teacher's Player (Play/Pause/Stop/Position) but never reaches EOF,
// since a synthesizer has no fixed-length source to finish.
type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	contextOnce sync.Once
	context     *ebitaudio.Context
	contextRate int
)

func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		context = ebitaudio.NewContext(sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return context, nil
}

// NewPlayer opens a streaming player that pulls mono samples from source
// at sampleRate, fanned out to both output channels.
func NewPlayer(sampleRate int, source Renderer) (*Player, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sampleRate must be positive")
	}
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()            { p.player.Play() }
func (p *Player) Pause()           { p.player.Pause() }
func (p *Player) IsPlaying() bool  { return p.player.IsPlaying() }
func (p *Player) Position() time.Duration { return p.player.Position() }

func (p *Player) Stop() error {
	p.player.Pause()
	return p.player.Close()
}
