//go:build !linux && !darwin

package term

import "os"

/// HostWindowSize has no portable ioctl on this platform; callers treat
/// ok=false the same as "not a tty".
func HostWindowSize(f *os.File) (rows, cols int, ok bool) {
	return 0, 0, false
}
