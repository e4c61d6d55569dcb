package sched

import (
	"testing"

	"triterm/src/limits"
	"triterm/src/mem"
	"triterm/src/proc"
	"triterm/src/stats"
	"triterm/src/term"
	"triterm/src/vm"
)

func setup(t *testing.T) {
	t.Helper()
	mem.Init()
	var backing [limits.NumTerminals]mem.Pa_t
	for i := range backing {
		backing[i] = mem.Pa_t(limits.KernelEnd + limits.MaxProc*limits.FourMB + i*limits.PageSize)
	}
	vm.AS.Init(backing)
	term.Terminals.Init()
}

func TestScheduleSpawnsShellOnInactiveTerminal(t *testing.T) {
	setup(t)
	spawned := -1
	Sched.SpawnShell = func(termID int) { spawned = termID }
	defer func() { Sched.SpawnShell = nil }()

	term.Terminals.Slots[0].Active = true
	term.Terminals.Slots[0].CurrPid = 0
	term.Terminals.Slots[1].Active = false

	Sched.Schedule(0, 1)
	if spawned != 1 {
		t.Fatalf("SpawnShell called with %d, want 1", spawned)
	}
	if term.Terminals.SchedTerm != 1 {
		t.Fatalf("SchedTerm = %d, want 1", term.Terminals.SchedTerm)
	}
}

func TestScheduleNoopWhenPrevEqualsNext(t *testing.T) {
	setup(t)
	called := false
	Sched.SpawnShell = func(int) { called = true }
	defer func() { Sched.SpawnShell = nil }()
	Sched.Schedule(0, 0)
	if called {
		t.Fatal("Schedule(x, x) must be a no-op")
	}
}

func TestScheduleRetargetsVideoForBackgroundTerminal(t *testing.T) {
	setup(t)
	pcb, ok := proc.Procs.AllocPid(proc.NoParent, 1)
	if !ok {
		t.Fatal("AllocPid failed")
	}
	defer proc.Procs.Free(pcb.Pid)

	term.Terminals.Slots[1].Active = true
	term.Terminals.Slots[1].CurrPid = pcb.Pid
	term.Terminals.CurrTerm = 0 // terminal 0 is foreground

	Sched.Schedule(0, 1)

	want := vm.AS.BackingPage(1)
	if vm.AS.CurrentUserVideoPhys() != want {
		t.Fatalf("scheduling a background terminal should map its backing page, got %#x want %#x",
			vm.AS.CurrentUserVideoPhys(), want)
	}
}

func TestTickEOIsWithoutSchedulingAnIdleTerminal(t *testing.T) {
	setup(t)
	called := false
	Sched.SpawnShell = func(int) { called = true }
	defer func() { Sched.SpawnShell = nil }()
	term.Terminals.Slots[term.Terminals.SchedTerm].CurrPid = -1
	before := stats.Counters.Snapshot().IRQsServiced
	Sched.Tick()
	if called {
		t.Fatal("Tick must not schedule away from a terminal with no running PCB")
	}
	if got := stats.Counters.Snapshot().IRQsServiced; got != before+1 {
		t.Fatalf("IRQsServiced = %d after Tick, want %d (one EOI)", got, before+1)
	}
}
