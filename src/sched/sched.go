// Package sched is the PIT-tick-driven round-robin scheduler (spec
// §4.6): on every tick it advances sched_term, retargets the user page
// and user-video mapping for the newly scheduled terminal, and launches
// a fresh shell the first time a terminal is visited. Grounded on
// original_source/scheduler.c and pit.c's pit_intr_handler.
package sched

import (
	"triterm/src/limits"
	"triterm/src/pic"
	"triterm/src/proc"
	"triterm/src/stats"
	"triterm/src/term"
	"triterm/src/vm"
)

// pitIRQ is the PIT's line on the master PIC (original_source/pit.h).
const pitIRQ = 0

/// Scheduler_t drives schedule() and owns the one callback the rest of
/// the kernel must supply: how to launch "shell" on a terminal that has
/// never run anything, since sched cannot import package kernel without
/// a cycle (kernel's execute needs the scheduler's retargeting, and the
/// scheduler needs execute to bring a fresh terminal to life).
type Scheduler_t struct {
	SpawnShell func(termID int)
}

/// Sched is the kernel-wide scheduler singleton.
var Sched = &Scheduler_t{}

/// Tick is pit's interrupt handler: if the scheduled terminal has no
/// running PCB yet (no shell has ever been launched), it EOIs and
/// returns; otherwise it calls Schedule for the next terminal in
/// round-robin order.
func (s *Scheduler_t) Tick() {
	stats.Counters.PitTick()
	ts := term.Terminals
	cur := ts.Slots[ts.SchedTerm]
	if cur.CurrPid < 0 {
		pic.PIC.SendEOI(pitIRQ)
		return
	}
	stats.Counters.Schedule()
	s.Schedule(ts.SchedTerm, (ts.SchedTerm+1)%limits.NumTerminals)
	pic.PIC.SendEOI(pitIRQ)
}

/// Schedule implements schedule(prev, next) (spec §4.6): a no-op if
/// prev==next, otherwise it snapshots prev's saved stack pointers (a
/// purely symbolic formula in this simulation — there is no real
/// register file to save), advances sched_term, spawns a shell on a
/// never-yet-active terminal, or retargets paging/video and resumes
/// next's PCB.
func (s *Scheduler_t) Schedule(prev, next int) {
	if prev == next {
		return
	}
	ts := term.Terminals
	prevTerm := ts.Slots[prev]
	if prevTerm.Active && prevTerm.CurrPid >= 0 {
		if p := proc.Procs.Get(prevTerm.CurrPid); p != nil {
			snapshot(p)
		}
	}

	ts.SchedTerm = next
	nextTerm := ts.Slots[next]
	if !nextTerm.Active {
		if s.SpawnShell != nil {
			s.SpawnShell(next)
		}
		return
	}

	nextPid := nextTerm.CurrPid
	vm.AS.SetUserPage(nextPid)
	if next == ts.CurrTerm {
		vm.AS.SetUserVideo(vm.VidForeground, 0)
	} else {
		vm.AS.SetUserVideo(vm.VidBackground, vm.AS.BackingPage(next))
	}
	if p := proc.Procs.Get(nextPid); p != nil {
		restore(p)
	}
}

// snapshot and restore stand in for "save/restore the kernel stack
// pointer and base": since this simulation has no register file, the
// formula is symbolic but deterministic. Nothing in this simulation
// reads the saved values back: halt does not restore them.
func snapshot(p *proc.Pcb_t) {
	p.SavedKsp = limits.PcbAddr(p.Pid) - 4
	p.SavedKbp = p.SavedKsp
}

func restore(p *proc.Pcb_t) {
	// Nothing further to do in this simulation: there is no stack
	// pointer register to load. Kept as a named step so the scheduler's
	// shape mirrors scheduler.c's schedule() one-for-one.
	_ = p
}
