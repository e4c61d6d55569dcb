// Package rtc virtualizes the real-time clock's periodic-interrupt
// device (spec §4.8's rtc-ops, out of core scope beyond that contract).
// Grounded on original_source/rtc.c: open always resets the owning
// terminal's virtual rate to 2 Hz regardless of any prior write, write
// validates a power-of-two rate in (1, 512], and read spin-waits for
// the next virtual tick. The real periodic interrupt is modeled as a
// 512 Hz ticker (Tick) driven by the kernel's boot sequencing rather
// than real hardware.
package rtc

import (
	"sync"

	"triterm/src/defs"
	"triterm/src/limits"
	"triterm/src/ustr"
	"triterm/src/util"
)

const (
	hz512   = 512
	hz2     = 2
	openConstant = hz512 / hz2
)

/// Slot is one terminal's virtualized RTC state: a divisor (constant)
/// and a countdown (remaining) decremented by Tick, mirroring
/// terminal_t's rtc_constant/rtc_iterations fields.
type Slot struct {
	mu        sync.Mutex
	cond      *sync.Cond
	constant  int
	remaining int
}

func newSlot() *Slot {
	s := &Slot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

/// Rtc_t holds one Slot per terminal, since the RTC's virtualization is
/// scoped to whichever terminal is currently scheduled, not per-process.
type Rtc_t struct {
	slots [limits.NumTerminals]*Slot
}

/// Rtc is the kernel-wide RTC virtualization singleton.
var Rtc = newRtc()

func newRtc() *Rtc_t {
	r := &Rtc_t{}
	for i := range r.slots {
		r.slots[i] = newSlot()
	}
	return r
}

/// Tick drives termID's slot forward by one virtual RTC interrupt,
/// waking any read() spin-waiting on it. The kernel calls this from a
/// 512 Hz driver goroutine, passing only the currently scheduled
/// terminal — exactly as the real hardware interrupt only ever reaches
/// whichever process is presently running (original_source/rtc.c's
/// rtc_intr_handler indexes terminal[sched_term] unconditionally).
func (r *Rtc_t) Tick(termID int) {
	s := r.slots[termID]
	s.mu.Lock()
	if s.remaining > 0 {
		s.remaining--
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

/// Open resets termID's rate to 2 Hz, discarding any earlier write.
func (r *Rtc_t) Open(termID int) defs.Err_t {
	s := r.slots[termID]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constant = openConstant
	return 0
}

/// Write validates a 4-byte power-of-two rate in (1, 512] and installs
// it as termID's new divisor.
func (r *Rtc_t) Write(termID int, buf []uint8) (int, defs.Err_t) {
	if len(buf) != 4 {
		return -1, defs.EINVAL
	}
	v, ok := util.Readn32(buf, 0)
	if !ok {
		return -1, defs.EINVAL
	}
	freq := int32(v)
	if freq <= 1 || freq&(freq-1) != 0 || freq > hz512 {
		return -1, defs.EINVAL
	}
	s := r.slots[termID]
	s.mu.Lock()
	s.constant = hz512 / int(freq)
	s.mu.Unlock()
	return 0, 0
}

/// Read spin-waits (via condition variable, not a hardware-free busy
/// loop) until Tick has decremented termID's countdown to zero.
func (r *Rtc_t) Read(termID int) (int, defs.Err_t) {
	s := r.slots[termID]
	s.mu.Lock()
	s.remaining = s.constant
	for s.remaining != 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()
	return 0, 0
}

/// Ops is the fdops.Fdops_i bound to an fd opened against the RTC
/// dentry, closing over which terminal's slot it virtualizes.
type Ops struct {
	TermID int
}

func (o Ops) FdOpen(ustr.Ustr) defs.Err_t           { return Rtc.Open(o.TermID) }
func (o Ops) FdRead(_ int, buf []uint8) (int, defs.Err_t) { return Rtc.Read(o.TermID) }
func (o Ops) FdWrite(buf []uint8) (int, defs.Err_t) { return Rtc.Write(o.TermID, buf) }
func (o Ops) FdClose() defs.Err_t                   { return 0 }
