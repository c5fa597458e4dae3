// Package termio is a thin terminal control-surface adapter for
// cmd/termite: raw mode plus a one-line live readout, grounded on
// IntuitionAmiga-IntuitionEngine's TerminalHost (MakeRaw/Restore, stdin
// fd handling) but stripped down to what a synth CLI needs — no MMIO
// device, no input routing, since core control changes arrive over MIDI
// rather than the keyboard.
package termio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Surface owns the terminal's raw-mode state and repaints a single status
// line in place.
type Surface struct {
	fd       int
	oldState *term.State
	raw      bool
}

// New returns a Surface bound to stdout's file descriptor. Raw mode is not
// entered until Start is called.
func New() *Surface {
	return &Surface{fd: int(os.Stdout.Fd())}
}

// Start puts the terminal into raw mode if stdout is a TTY; if it is not
// (e.g. output redirected to a file), Start is a no-op and Status simply
// prints a trailing newline each call instead of repainting in place.
func (s *Surface) Start() error {
	if !term.IsTerminal(s.fd) {
		return nil
	}
	old, err := term.MakeRaw(s.fd)
	if err != nil {
		return fmt.Errorf("termio: failed to set raw mode: %w", err)
	}
	s.oldState = old
	s.raw = true
	return nil
}

// Stop restores the terminal's original mode. Safe to call even if Start
// never entered raw mode.
func (s *Surface) Stop() error {
	if !s.raw {
		return nil
	}
	s.raw = false
	return term.Restore(s.fd, s.oldState)
}

// Status repaints the current status line. In raw mode it carriage-returns
// and clears to end-of-line first so repeated calls overwrite in place.
func (s *Surface) Status(line string) {
	if s.raw {
		fmt.Print("\r\x1b[K" + line)
		return
	}
	fmt.Println(line)
}

// Size returns the terminal's current width/height, or (80, 24) as a
// fallback when the size cannot be determined (not a TTY, or an ioctl
// error).
func (s *Surface) Size() (width, height int) {
	w, h, err := term.GetSize(s.fd)
	if err != nil {
		return 80, 24
	}
	return w, h
}
