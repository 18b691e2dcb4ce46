// Grounded on the teacher's internal/runner/stdin.go raw-terminal
// keypress reader, generalized from a pause/resume toggle into a
// stop-on-keypress trigger for the Control broadcast (spec §3 "Stop").
package console

import (
	"os"

	"golang.org/x/term"

	"github.com/NutekSecurity/dirnutek/internal/events"
)

// WatchForStop puts stdin into raw mode, if it is a terminal, and calls
// control.Stop() the moment 'q' or Ctrl+C is read. It returns a cleanup
// function that restores the terminal; cleanup is a no-op if stdin is
// not a terminal.
func WatchForStop(control *events.Control) (cleanup func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}
	}
	cleanup = func() { _ = term.Restore(fd, oldState) }

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return
			}
			switch buf[0] {
			case 'q', 0x03: // q or Ctrl+C
				control.Stop()
				_ = term.Restore(fd, oldState)
				return
			}
		}
	}()

	return cleanup
}
