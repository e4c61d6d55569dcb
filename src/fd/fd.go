// Package fd implements the per-descriptor record (spec §3): an ops
// table, an inode index, a byte cursor, and an in-use flag. Modeled on
// biscuit's fd.Fd_t.
package fd

import (
	"triterm/src/defs"
	"triterm/src/fdops"
)

/// Fd_t is one entry of a PCB's file-descriptor table.
type Fd_t struct {
	Ops      fdops.Fdops_i
	Inode    int
	Position int
	InUse    bool
}

/// NewClosed returns an Fd_t bound to the "bad" stub ops, not in use —
/// the zero state fd 2..7 start in after a process is created.
func NewClosed() Fd_t {
	return Fd_t{Ops: fdops.BadOps_t{}, Inode: -1, Position: 0, InUse: false}
}

/// Read dispatches to the descriptor's ops, advancing Position when
/// positive bytes were returned (spec §3 file-descriptor invariants).
func (f *Fd_t) Read(buf []uint8) (int, defs.Err_t) {
	n, err := f.Ops.FdRead(f.Position, buf)
	if err == 0 && n > 0 {
		f.Position += n
	}
	return n, err
}

/// Write dispatches to the descriptor's ops.
func (f *Fd_t) Write(buf []uint8) (int, defs.Err_t) {
	return f.Ops.FdWrite(buf)
}

/// Close dispatches to the descriptor's ops. Per spec §9's open
/// question, if the ops-specific close fails the caller (proc.Pcb_t)
/// still decides whether to clear InUse — Close itself has no opinion.
func (f *Fd_t) Close() defs.Err_t {
	return f.Ops.FdClose()
}
