// Package fdops defines the file-descriptor operations interface: the
// four-function jump table a descriptor dispatches through (spec §3,
// §4.8). Concrete implementations (terminal, rtc, directory, regular
// file) live in their owning packages to avoid import cycles, the way
// biscuit keeps Fdops_i abstract in package fdops and its
// implementations in fs/tcpconn/pipe/etc.
package fdops

import (
	"triterm/src/defs"
	"triterm/src/ustr"
)

/// Fdops_i is the per-descriptor operations table: {open, read, write,
/// close}. pos is supplied by the caller (the owning Fd_t) rather than
/// tracked internally, since the byte cursor belongs to the descriptor,
/// not the device.
type Fdops_i interface {
	FdOpen(name ustr.Ustr) defs.Err_t
	FdRead(pos int, buf []uint8) (int, defs.Err_t)
	FdWrite(buf []uint8) (int, defs.Err_t)
	FdClose() defs.Err_t
}

/// BadOps_t is the "bad" stub bound to descriptor slots that have no
/// real device behind them, and to file_type values §4.8 does not name.
type BadOps_t struct{}

func (BadOps_t) FdOpen(ustr.Ustr) defs.Err_t             { return defs.EINVAL }
func (BadOps_t) FdRead(int, []uint8) (int, defs.Err_t)   { return 0, defs.EINVAL }
func (BadOps_t) FdWrite([]uint8) (int, defs.Err_t)       { return 0, defs.EINVAL }
func (BadOps_t) FdClose() defs.Err_t                     { return defs.EINVAL }

var _ Fdops_i = BadOps_t{}
