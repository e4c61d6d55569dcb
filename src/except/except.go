// Package except models the one observable effect the spec keeps of the
// exception handling path (spec §1: "out of scope beyond their sole
// observable effect: setting a flag and invoking halt with code 255"):
// a one-line diagnostic plus a global exception flag that execute/halt
// consult to promote the exit status to 256. Grounded on
// original_source/exception_handler.c, which is one near-identical
// function per vector differing only in its printed description.
package except

import (
	"fmt"
	"sync"
)

/// Code is the status halt() is always invoked with from an exception
/// handler, per original_source/exception_handler.c's EXCEPTION_CODE.
const Code = 255

/// Vector names the 19 architectural exception vectors (0-19 except 15)
/// this kernel recognizes by description, 15 and 20-31 falling through to
/// "Reserved" and everything >=32 to "Unreserved" — exactly
/// original_source/exception_handler.c's per-vector functions.
var Vector = map[int]string{
	0:  "Divide Error Exception",
	1:  "Debug Exception",
	2:  "NMI Interrupt",
	3:  "Breakpoint Exception",
	4:  "Overflow Exception",
	5:  "BOUND Range Exceeded Exception",
	6:  "Invalid Opcode Exception",
	7:  "Device Not Available Exception",
	8:  "Double Fault Exception",
	9:  "Coprocessor Segment Overrun",
	10: "Invalid TSS Exception",
	11: "Segment Not Present",
	12: "Stack Fault Exception",
	13: "General Protection Exception",
	14: "Page Fault Exception",
	16: "Floating-point error",
	17: "Alignment Check Exception",
	18: "Machine Check Exception",
	19: "SIMD Floating-Point Exception",
}

/// Describe returns the diagnostic line for vector, "Reserved" for the
/// unassigned vectors in [15] and [20,32), "Unreserved" for vector>=32.
func Describe(vector int) string {
	if s, ok := Vector[vector]; ok {
		return s
	}
	if vector >= 32 {
		return "Unreserved"
	}
	return "Reserved"
}

/// Flag_t is an exception flag (the kernel uses one, Global): set when a raised exception
/// forced a halt, cleared at the top of every execute (spec §4.4 step 2).
type Flag_t struct {
	mu  sync.Mutex
	set bool
}

func (f *Flag_t) Clear() {
	f.mu.Lock()
	f.set = false
	f.mu.Unlock()
}

func (f *Flag_t) Set() {
	f.mu.Lock()
	f.set = true
	f.mu.Unlock()
}

func (f *Flag_t) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

/// Global is the kernel-wide exception flag. Like dentries_read (spec
/// §9), the original keeps this as one process-independent global
/// rather than a per-PCB field; a faithful port preserves that rather
/// than threading a flag through every PCB.
var Global = &Flag_t{}

/// Raise prints vector's diagnostic and sets flag; the caller (kernel's
/// ProcContext, standing in for the assembly exception stub) is
/// responsible for then invoking halt(Code).
func Raise(flag *Flag_t, vector int) {
	fmt.Println(Describe(vector))
	flag.Set()
}

/// Promote returns status promoted to 256 if flag was set, otherwise
/// status's low 8 bits, per spec §4.4's final step and §4.5 step 7.
func Promote(flag *Flag_t, status int) int {
	if flag.IsSet() {
		return 256
	}
	return status & 0xFF
}
