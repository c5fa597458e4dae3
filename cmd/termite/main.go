// Command termite is the thin host for the termite-go synthesizer: it
// opens an audio output stream, feeds MIDI-message-shaped lines from
// stdin (no MIDI device library exists anywhere in the example pack this
// port draws from, so the CLI accepts pre-decoded events rather than
// opening a real MIDI port), and optionally shows a one-line status
// (uptime and the last message received) in a raw terminal. All synthesis
// logic lives in the core
// package; this binary only wires device and terminal I/O around it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	termite "github.com/mtytel/termite-go"
	intaudio "github.com/mtytel/termite-go/internal/audio"
	inttermio "github.com/mtytel/termite-go/internal/termio"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		blockSize  = flag.Int("block-size", 64, "render block size in samples")
		polyphony  = flag.Int("polyphony", 12, "maximum simultaneous voices")
		patchPath  = flag.String("patch", "", "path to a JSON patch file to load at startup")
		midiPort   = flag.String("midi-port", "", "informational MIDI port name (no device enumeration in-core)")
	)
	flag.Parse()

	s, err := termite.New(float64(*sampleRate), *polyphony)
	if err != nil {
		log.Fatal(err)
	}
	if err := s.SetBlockSize(*blockSize); err != nil {
		log.Fatal(err)
	}

	if *patchPath != "" {
		if err := loadPatchFile(s, *patchPath); err != nil {
			log.Fatal(err)
		}
	}

	if *midiPort != "" {
		log.Printf("termite: -midi-port %q is informational only; feeding MIDI-shaped lines from stdin", *midiPort)
	}

	player, err := intaudio.NewPlayer(*sampleRate, s)
	if err != nil {
		log.Fatal(err)
	}
	player.Play()
	defer player.Stop()

	surface := inttermio.New()
	if err := surface.Start(); err != nil {
		log.Printf("termite: %v (continuing without raw terminal mode)", err)
	}
	defer surface.Stop()

	readMidiLines(s, surface)
}

// readMidiLines reads whitespace-separated byte triples from stdin, one
// MIDI message per line (e.g. "144 60 100" for a note-on), feeding each
// into Synth.OnMidi and repainting a one-line status readout.
func readMidiLines(s *termite.Synth, surface *inttermio.Surface) {
	scanner := bufio.NewScanner(os.Stdin)
	start := time.Now()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, err := parseMidiLine(line)
		if err != nil {
			log.Printf("termite: skipping malformed line %q: %v", line, err)
			continue
		}
		s.OnMidi(msg)
		surface.Status(fmt.Sprintf("uptime %s  last msg: % x", time.Since(start).Truncate(time.Second), msg))
	}
	if err := scanner.Err(); err != nil {
		log.Printf("termite: stdin read error: %v", err)
	}
}

func parseMidiLine(line string) ([]byte, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return nil, fmt.Errorf("expected 3 space-separated byte values, got %d", len(fields))
	}
	out := make([]byte, 3)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("byte %d (%q) is not 0..255", i, f)
		}
		out[i] = byte(v)
	}
	return out, nil
}

func loadPatchFile(s *termite.Synth, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	patch, err := termite.DecodePatch(data)
	if err != nil {
		return fmt.Errorf("termite: invalid patch file %s: %w", path, err)
	}
	termite.Apply(s.GetControls(), patch)
	return nil
}
