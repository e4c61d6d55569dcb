//go:build linux || darwin

// Host-preview terminal sizing: when cmd/kernel is run attached to a
// real tty, this reports the host window's dimensions so the boot
// sequence can warn if the host is too small to show all NumCols x
// NumRows of the simulated VGA text screen. Entirely a diagnostic; the
// simulated terminal's own dimensions (NumRows, NumCols) never change.
package term

import (
	"os"

	"golang.org/x/sys/unix"
)

/// HostWindowSize reports the real terminal's rows/cols attached to fd,
/// or ok=false if fd isn't a tty (e.g. output redirected to a file).
func HostWindowSize(f *os.File) (rows, cols int, ok bool) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, false
	}
	return int(ws.Row), int(ws.Col), true
}
