// Package proc is the process control block and process table (spec §3,
// §4.8): a fixed-size record co-located with its kernel stack, a
// per-process fd table dispatching through fdops.Fdops_i, and the
// pid-indexed presence bitmap/arena that execute and halt mutate.
// Modeled on biscuit's proc_t, generalized from biscuit's unbounded pid
// space down to the spec's fixed MAX_PROC arena keyed by
// limits.PcbAddr.
package proc

import (
	"sync"

	"triterm/src/defs"
	"triterm/src/fd"
	"triterm/src/fdops"
	"triterm/src/fs"
	"triterm/src/limits"
	"triterm/src/ustr"
)

/// NoParent marks a PCB with no parent: a terminal's root shell.
const NoParent = -1

/// Pcb_t is one process control block (spec §3). Address derivability
// from pid is not modeled with real memory placement (there's no single
// flat address space to place it in outside vm's simulated user
// regions) but limits.PcbAddr(Pid) is still the value tests check
// against, preserving the spec's "PCB address is exactly derivable from
// pid" invariant as a pure function rather than a pointer identity.
type Pcb_t struct {
	Fds        [limits.FdArraySize]fd.Fd_t
	Parent     int
	Pid        int
	TerminalID int
	SavedKsp   int
	SavedKbp   int
	Args       [limits.MaxBufferSize]uint8
	ArgsLen    int
	Valid      bool
}

/// OpsFactory builds the fdops implementation for a newly opened
/// descriptor, given the opening process's pid and the resolved dentry.
/// Kept abstract here (rather than importing term/rtc directly) the way
/// biscuit keeps Fdops_i's concrete instances out of package proc, to
/// avoid proc depending on every device package.
type OpsFactory func(pid int, dentry fs.Dentry) fdops.Fdops_i

/// Procs_t is the fixed-size process table: a presence bitmap and an
/// arena of *Pcb_t indexed by pid, per spec §3's invariant that a pid is
/// present iff a live PCB claims it.
type Procs_t struct {
	sync.Mutex
	present [limits.MaxProc]bool
	pcbs    [limits.MaxProc]*Pcb_t
}

/// Procs is the kernel-wide process table singleton.
var Procs = &Procs_t{}

/// AllocPid claims the lowest free pid and installs a fresh PCB for it,
/// or reports false if every slot in [0, MAX_PROC) is taken (spec §4.4
/// step 8: "allocate the lowest free pid; if none, fail").
func (ps *Procs_t) AllocPid(parent int, terminalID int) (*Pcb_t, bool) {
	ps.Lock()
	defer ps.Unlock()
	for pid := 0; pid < limits.MaxProc; pid++ {
		if ps.present[pid] {
			continue
		}
		p := &Pcb_t{Parent: parent, Pid: pid, TerminalID: terminalID, Valid: true}
		for i := range p.Fds {
			p.Fds[i] = fd.NewClosed()
		}
		p.Fds[0] = fd.Fd_t{InUse: true, Inode: -1}
		p.Fds[1] = fd.Fd_t{InUse: true, Inode: -1}
		ps.present[pid] = true
		ps.pcbs[pid] = p
		return p, true
	}
	return nil, false
}

/// BindStdio installs the terminal fdops onto fd 0 and 1 of pid, which
/// execute does immediately after AllocPid once it knows which ops
/// table the owning terminal uses (spec §4.4 step 11).
func (ps *Procs_t) BindStdio(pid int, stdin, stdout fdops.Fdops_i) {
	ps.Lock()
	defer ps.Unlock()
	p := ps.pcbs[pid]
	p.Fds[0].Ops = stdin
	p.Fds[1].Ops = stdout
}

/// Free releases pid's presence bit and PCB, per halt step 2.
func (ps *Procs_t) Free(pid int) {
	ps.Lock()
	defer ps.Unlock()
	ps.present[pid] = false
	ps.pcbs[pid] = nil
}

/// Get returns pid's live PCB, or nil if pid is not present.
func (ps *Procs_t) Get(pid int) *Pcb_t {
	ps.Lock()
	defer ps.Unlock()
	if pid < 0 || pid >= limits.MaxProc || !ps.present[pid] {
		return nil
	}
	return ps.pcbs[pid]
}

/// Count returns the number of live PCBs, for the §8 invariant that it
/// equals the count of set presence bits.
func (ps *Procs_t) Count() int {
	ps.Lock()
	defer ps.Unlock()
	n := 0
	for _, p := range ps.pcbs {
		if p != nil {
			n++
		}
	}
	return n
}

/// PresentCount returns the number of set presence bits directly, kept
/// distinct from Count (which counts live *Pcb_t) so a test can assert
/// the two agree rather than the implementation trivially sharing one
/// counter.
func (ps *Procs_t) PresentCount() int {
	ps.Lock()
	defer ps.Unlock()
	n := 0
	for pid := 0; pid < limits.MaxProc; pid++ {
		if ps.present[pid] {
			n++
		}
	}
	return n
}

/// ParentChainLen walks Parent links from pid to a root (Parent ==
/// NoParent), returning the number of steps taken, or -1 if the chain
/// does not terminate within MAX_PROC steps (spec §8: "following parent
/// terminates at a root shell in <= MAX_PROC steps").
func (ps *Procs_t) ParentChainLen(pid int) int {
	cur := pid
	for steps := 0; steps <= limits.MaxProc; steps++ {
		p := ps.Get(cur)
		if p == nil {
			return -1
		}
		if p.Parent == NoParent {
			return steps
		}
		cur = p.Parent
	}
	return -1
}

/// SetArgs copies s (truncated to MaxBufferSize-1 bytes, NUL-terminated
/// in spirit though Go tracks length explicitly) into the PCB's args
/// field, per spec §4.4 step 5.
func (p *Pcb_t) SetArgs(s string) {
	n := len(s)
	if n > limits.MaxBufferSize-1 {
		n = limits.MaxBufferSize - 1
	}
	copy(p.Args[:n], s[:n])
	p.ArgsLen = n
}

/// GetArgs copies the stored args string into buf, failing with EINVAL
/// if the args string is empty or longer than len(buf) — both pinned
/// from original_source/systemcalls.c's getargs, which rejects a zero-
/// length args string outright rather than returning a no-op success.
func (p *Pcb_t) GetArgs(buf []uint8) defs.Err_t {
	if p.ArgsLen == 0 || p.ArgsLen > len(buf) {
		return defs.EINVAL
	}
	copy(buf, p.Args[:p.ArgsLen])
	return 0
}

/// findFreeFd returns the lowest fd index in [2, FdArraySize) not
/// currently in use, or -1 if the table is full. Slots 0/1 are never
/// candidates: they are permanently bound at PCB creation (spec §3).
func (p *Pcb_t) findFreeFd() int {
	for i := 2; i < limits.FdArraySize; i++ {
		if !p.Fds[i].InUse {
			return i
		}
	}
	return -1
}

/// Open resolves name against fsys, allocates the lowest free fd slot,
/// binds it via factory(p.Pid, dentry), and calls the type-specific open
/// hook. Per spec §4.8 and the §9 open question, if that hook fails the
/// slot is left in_use: the fd leaks until halt closes it, matching
/// original_source/systemcalls.c rather than "fixing" it.
func (p *Pcb_t) Open(name ustr.Ustr, fsys *fs.Fs_t, factory OpsFactory) (int, defs.Err_t) {
	d, err := fsys.DentryByName(name)
	if err != 0 {
		return -1, err
	}
	slot := p.findFreeFd()
	if slot < 0 {
		return -1, defs.ENOSPC
	}
	ops := factory(p.Pid, d)
	p.Fds[slot] = fd.Fd_t{Ops: ops, Inode: d.InodeNum, Position: 0, InUse: true}
	if hookErr := ops.FdOpen(name); hookErr != 0 {
		return -1, hookErr
	}
	return slot, 0
}

func (p *Pcb_t) checkFd(n int) defs.Err_t {
	if n < 0 || n >= limits.FdArraySize {
		return defs.EBADF
	}
	if !p.Fds[n].InUse {
		return defs.EBADF
	}
	return 0
}

/// Read dispatches fd n's read, rejecting out-of-bounds/closed slots and
/// stdout (fd 1) per the uniform policy of spec §4.8.
func (p *Pcb_t) Read(n int, buf []uint8) (int, defs.Err_t) {
	if err := p.checkFd(n); err != 0 {
		return -1, err
	}
	if n == 1 {
		return -1, defs.EINVAL
	}
	return p.Fds[n].Read(buf)
}

/// Write dispatches fd n's write, rejecting stdin (fd 0).
func (p *Pcb_t) Write(n int, buf []uint8) (int, defs.Err_t) {
	if err := p.checkFd(n); err != 0 {
		return -1, err
	}
	if n == 0 {
		return -1, defs.EINVAL
	}
	return p.Fds[n].Write(buf)
}

/// Close dispatches fd n's close and releases the slot regardless of the
/// per-type hook's result; unlike Open, §4.8 gives close no leak quirk.
/// Fd 0 and 1 are permanently bound for the life of the PCB and can never
/// be closed, matching original_source/systemcalls.c's close rejecting
/// both outright.
func (p *Pcb_t) Close(n int) defs.Err_t {
	if err := p.checkFd(n); err != 0 {
		return err
	}
	if n == 0 || n == 1 {
		return defs.EINVAL
	}
	err := p.Fds[n].Close()
	p.Fds[n].InUse = false
	p.Fds[n].Ops = fdops.BadOps_t{}
	return err
}

/// CloseAll closes every in-use fd, ignoring individual failures, per
/// halt step 1 ("close every fd in the current PCB, ignoring
/// already-closed slots").
func (p *Pcb_t) CloseAll() {
	for i := 0; i < limits.FdArraySize; i++ {
		if p.Fds[i].InUse {
			p.Fds[i].Ops.FdClose()
			p.Fds[i].InUse = false
		}
	}
}
