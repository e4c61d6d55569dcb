// Package kernel ties every other package into the execute/halt
// context-switch protocol (spec §4.4, §4.5) and the numbered syscall
// dispatcher (spec §4.3). User programs are not real x86 machine code —
// there is no assembler here — but a registry of named Go closures
// invoked after the same filename lookup, magic-byte check, and
// entry-point read a real loader would perform. The execute->halt
// handoff ("a hand-rolled continuation", spec §9, not to be modeled
// with unwind-style exceptions) is implemented as a goroutine paired
// with a buffered channel: Execute blocks on the channel exactly where
// the original blocks on the IRET frame it built, and a halting program
// calls runtime.Goexit after publishing its status so it can never
// resume past that point, the same one-way jump the original's halt
// makes into the parent's execute frame. Grounded on
// original_source/systemcalls.c.
package kernel

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"triterm/src/defs"
	"triterm/src/except"
	"triterm/src/fdops"
	"triterm/src/fs"
	"triterm/src/limits"
	"triterm/src/mem"
	"triterm/src/pic"
	"triterm/src/pit"
	"triterm/src/proc"
	"triterm/src/rtc"
	"triterm/src/sched"
	"triterm/src/stats"
	"triterm/src/term"
	"triterm/src/ustr"
	"triterm/src/util"
	"triterm/src/vm"
)

/// ProgramFunc is a registered executable: it runs as the body of a
/// "process", driving I/O and control flow entirely through its
/// ProcContext. Returning a value is equivalent to calling
/// ctx.Halt(value) from the very end of main().
type ProgramFunc func(ctx *ProcContext) int

/// Kernel_t is the assembled machine: the filesystem image, the program
/// registry standing in for an executable loader/interpreter, and the
/// dispatch glue between them.
type Kernel_t struct {
	mu       sync.Mutex
	Fsys     *fs.Fs_t
	Programs map[string]ProgramFunc
}

/// K is the kernel-wide singleton cmd/kernel boots and every
/// ProcContext dispatches through.
var K = &Kernel_t{Programs: map[string]ProgramFunc{}}

/// Register installs a named program image's behavior. cmd/kernel calls
/// this for "shell" and any other builtins before booting.
func (k *Kernel_t) Register(name string, fn ProgramFunc) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.Programs[name] = fn
}

/// Boot constructs every subsystem singleton in dependency order:
/// physical memory, the three terminals' backing pages, paging, the
/// PIC, a check of the PIT's programmed rate, and the scheduler's
/// shell-spawn hook. The RTC tick driver is not started here; see
/// RunRtcDriver.
/// Grounded on the boot sequencing implied by main.c linking
/// i8259_init/paging_init/terminal_init/init_pit/init_rtc together,
/// though that file itself was filtered out of original_source/ as
/// boot/link glue rather than kernel logic.
func (k *Kernel_t) Boot(img []uint8) {
	k.Fsys = fs.New(img)
	mem.Init()

	var backing [limits.NumTerminals]mem.Pa_t
	for i := range backing {
		backing[i] = mem.Pa_t(limits.KernelEnd + limits.MaxProc*limits.FourMB + i*limits.PageSize)
	}
	vm.AS.Init(backing)
	term.Terminals.Init()
	pic.PIC.Init()

	programmed := pit.Program()
	if rate := programmed.ActualRateHz(); rate < 99 || rate > 101 {
		fmt.Fprintf(os.Stderr, "pit: programmed divisor yields %.2f Hz, not the nominal 100 Hz\n", rate)
	}

	sched.Sched.SpawnShell = func(termID int) {
		k.Execute(termID, "shell")
	}
}

/// RunRtcDriver starts the 512 Hz goroutine that advances the currently
/// scheduled terminal's virtual RTC, standing in for the real periodic
/// interrupt (spec §6, rtc out of core scope beyond its open/read/write
/// contract). Callers that drive RTC ticks manually (tests) don't need
/// to start this.
func (k *Kernel_t) RunRtcDriver(stop <-chan struct{}, tick func()) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		tick()
		stats.Counters.RtcTick()
		rtc.Rtc.Tick(term.Terminals.SchedTerm)
		pic.PIC.SendEOI(rtcIRQ)
	}
}

// rtcIRQ is the RTC's line on the slave PIC (original_source/rtc.h).
const rtcIRQ = 8

func (k *Kernel_t) stdioOps(termID int) (fdops.Fdops_i, fdops.Fdops_i) {
	o := termOps{termID: termID}
	return o, o
}

func (k *Kernel_t) opsFactory(pid int, d fs.Dentry) fdops.Fdops_i {
	switch d.FileType {
	case defs.FT_RTC:
		p := proc.Procs.Get(pid)
		if p == nil {
			return fdops.BadOps_t{}
		}
		return rtc.Ops{TermID: p.TerminalID}
	case defs.FT_DIR:
		return dirOps{fsys: k.Fsys}
	case defs.FT_FILE:
		return fileOps{fsys: k.Fsys, inode: d.InodeNum}
	default:
		return fdops.BadOps_t{}
	}
}

func parseCommand(command string) (filename, args string) {
	i := 0
	for i < len(command) && command[i] == ' ' {
		i++
	}
	rest := command[i:]
	j := 0
	for j < len(rest) && rest[j] != ' ' && j < limits.FileNameLen {
		j++
	}
	filename = rest[:j]
	k := j
	for k < len(rest) && rest[k] == ' ' {
		k++
	}
	args = rest[k:]
	if len(args) > limits.MaxBufferSize-1 {
		args = args[:limits.MaxBufferSize-1]
	}
	return filename, trimTrailingSpaces(args)
}

/// Execute is execute(command) (spec §4.4): it validates and loads the
/// named program into a fresh PCB, runs it, and folds in halt's
/// bookkeeping (spec §4.5) the moment that PCB's goroutine delivers a
/// status, including the tail-call back into execute("shell") when the
/// halting process was a terminal's root shell.
func (k *Kernel_t) Execute(termID int, command string) int {
	except.Global.Clear()
	ts := term.Terminals
	t := ts.Slots[termID]

	parentPid := -1
	if t.Active && t.CurrPid >= 0 {
		parentPid = t.CurrPid
	}
	t.Active = true

	filename, args := parseCommand(command)
	if filename == "" {
		return -1
	}
	d, err := k.Fsys.DentryByName(ustr.FromString(filename))
	if err != 0 {
		return -1
	}

	var probe [4]uint8
	n := k.Fsys.ReadData(d.InodeNum, 0, probe[:], 4)
	if n < limits.ElfCheckOff+limits.ElfCheckLen {
		return -1
	}
	if string(probe[limits.ElfCheckOff:limits.ElfCheckOff+limits.ElfCheckLen]) != "ELF" {
		return -1
	}

	parent := proc.NoParent
	if parentPid >= 0 {
		parent = parentPid
	}
	pcb, ok := proc.Procs.AllocPid(parent, termID)
	if !ok {
		fmt.Fprintln(os.Stderr, "execute: no free pid")
		return -1
	}

	vm.AS.SetUserPage(pcb.Pid)

	img := make([]uint8, limits.MaxFileSize)
	nimg := k.Fsys.ReadData(d.InodeNum, 0, img, limits.MaxFileSize)
	vm.LoadImage(pcb.Pid, img[:nimg])

	stdin, stdout := k.stdioOps(termID)
	proc.Procs.BindStdio(pcb.Pid, stdin, stdout)
	pcb.SetArgs(args)

	top := (limits.ProgImageVA &^ 0x3FFFFF) + limits.FourMB - 4
	pcb.SavedKsp = top
	pcb.SavedKbp = top

	t.CurrPid = pcb.Pid

	var entryBuf [4]uint8
	k.Fsys.ReadData(d.InodeNum, limits.EntryOffset, entryBuf[:], 4)
	entryPoint, _ := util.Readn32(entryBuf[:], 0)

	k.mu.Lock()
	prog, exists := k.Programs[filename]
	k.mu.Unlock()
	if !exists {
		prog = unknownProgram(filename, entryPoint)
	}

	ch := make(chan int, 1)
	ctx := &ProcContext{Pid: pcb.Pid, TerminalID: termID, k: k, haltCh: ch}
	go func() {
		status := prog(ctx)
		select {
		case ch <- status:
		default:
		}
	}()
	rawStatus := <-ch
	finalStatus := except.Promote(except.Global, rawStatus)

	pcb.CloseAll()
	proc.Procs.Free(pcb.Pid)
	k.Fsys.ResetDirectory()
	ts.ResetLineBuffer(termID)

	if pcb.Parent == proc.NoParent {
		t.CurrPid = -1
		return k.Execute(termID, "shell")
	}

	t.CurrPid = pcb.Parent
	vm.AS.SetUserPage(pcb.Parent)
	return finalStatus
}

func unknownProgram(filename string, entryPoint uint32) ProgramFunc {
	return func(ctx *ProcContext) int {
		fmt.Fprintf(os.Stderr, "execute: %s: no loader registered for entry %#x\n", filename, entryPoint)
		return 1
	}
}

/// ProcContext is the handle a running program uses for every syscall
/// in the dispatch table (spec §4.3): it never exposes raw kernel
/// state, only the numbered operations.
type ProcContext struct {
	Pid        int
	TerminalID int
	k          *Kernel_t
	haltCh     chan int
}

func (c *ProcContext) pcb() *proc.Pcb_t { return proc.Procs.Get(c.Pid) }

/// Read is syscall 3.
func (c *ProcContext) Read(fd int, buf []uint8) (int, defs.Err_t) {
	p := c.pcb()
	if p == nil {
		return -1, defs.ENOPID
	}
	return p.Read(fd, buf)
}

/// Write is syscall 4.
func (c *ProcContext) Write(fd int, buf []uint8) (int, defs.Err_t) {
	p := c.pcb()
	if p == nil {
		return -1, defs.ENOPID
	}
	return p.Write(fd, buf)
}

/// Open is syscall 5.
func (c *ProcContext) Open(name string) (int, defs.Err_t) {
	p := c.pcb()
	if p == nil {
		return -1, defs.ENOPID
	}
	return p.Open(ustr.FromString(name), c.k.Fsys, c.k.opsFactory)
}

/// Close is syscall 6.
func (c *ProcContext) Close(fd int) defs.Err_t {
	p := c.pcb()
	if p == nil {
		return defs.ENOPID
	}
	return p.Close(fd)
}

/// GetArgs is syscall 7.
func (c *ProcContext) GetArgs(buf []uint8) defs.Err_t {
	p := c.pcb()
	if p == nil {
		return defs.ENOPID
	}
	return p.GetArgs(buf)
}

/// Vidmap is syscall 8.
func (c *ProcContext) Vidmap(outVA int) defs.Err_t {
	return vm.Vidmap(c.Pid, outVA)
}

/// SetHandler and Sigreturn are syscalls 9 and 10, explicitly
/// unimplemented stubs per spec §1's Non-goals (signals).
func (c *ProcContext) SetHandler(int, int) defs.Err_t { return defs.EINVAL }
func (c *ProcContext) Sigreturn() defs.Err_t          { return defs.EINVAL }

/// Execute is syscall 2: a nested execute() call, run recursively on
/// the same goroutine — the caller genuinely blocks until the child
/// halts, exactly as execute's IRET-and-wait does.
func (c *ProcContext) Execute(command string) int {
	return c.k.Execute(c.TerminalID, command)
}

/// Halt is syscall 1. It is the program's only one-way exit: status is
/// published to the waiting Execute call and the goroutine is then
/// torn down via runtime.Goexit, so control never returns here, the
/// same "halt never returns to its caller" guarantee spec §4.5 gives
/// the assembly original.
func (c *ProcContext) Halt(status int) {
	select {
	case c.haltCh <- status:
	default:
	}
	runtime.Goexit()
}

/// RaiseException sets the exception flag and prints vector's
/// diagnostic, standing in for the IDT's exception stub (spec §1's only
/// in-scope fragment of exception handling). Callers invoke this and
/// then Halt(except.Code), matching every handler in
/// original_source/exception_handler.c.
func (c *ProcContext) RaiseException(vector int) {
	except.Raise(except.Global, vector)
}

// --- fdops.Fdops_i implementations bound at open() time ---

type termOps struct{ termID int }

func (o termOps) FdOpen(ustr.Ustr) defs.Err_t { return 0 }
func (o termOps) FdRead(_ int, buf []uint8) (int, defs.Err_t) {
	return term.Terminals.Read(o.termID, buf)
}
func (o termOps) FdWrite(buf []uint8) (int, defs.Err_t) { return term.Terminals.Write(o.termID, buf) }
func (o termOps) FdClose() defs.Err_t                   { return 0 }

type dirOps struct{ fsys *fs.Fs_t }

func (o dirOps) FdOpen(ustr.Ustr) defs.Err_t { return 0 }
func (o dirOps) FdRead(_ int, buf []uint8) (int, defs.Err_t) {
	return o.fsys.ReadDirectory(buf), 0
}
func (o dirOps) FdWrite([]uint8) (int, defs.Err_t) { return -1, defs.EINVAL }
func (o dirOps) FdClose() defs.Err_t               { return 0 }

type fileOps struct {
	fsys  *fs.Fs_t
	inode int
}

func (o fileOps) FdOpen(ustr.Ustr) defs.Err_t { return 0 }
func (o fileOps) FdRead(pos int, buf []uint8) (int, defs.Err_t) {
	return o.fsys.ReadData(o.inode, pos, buf, len(buf)), 0
}
func (o fileOps) FdWrite([]uint8) (int, defs.Err_t) { return -1, defs.EINVAL }
func (o fileOps) FdClose() defs.Err_t               { return 0 }

func trimTrailingSpaces(s string) string { return strings.TrimRight(s, " ") }
