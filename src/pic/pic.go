// Package pic is a thin model of the 8259 programmable interrupt
// controller cascade (spec §6 "PIC programming", out of core scope
// beyond its observable mask/EOI contract). Grounded on
// original_source/i8259.c: ICW1-4 programming, the master/slave mask
// cache (to avoid a hardware read-back), and the specific-EOI write
// pattern.
package pic

import (
	"sync"

	"triterm/src/stats"
)

const (
	icw1       = 0x11 // edge triggered, cascade mode, ICW4 needed
	icw2Master = 0x20 // master IRQs map to vectors 0x20-0x27
	icw2Slave  = 0x28 // slave IRQs map to vectors 0x28-0x2F
	icw3Master = 0x04 // slave PIC attached to master IRQ2 (bit 2)
	icw3Slave  = 0x02 // slave PIC's own cascade identity (IRQ2)
	icw4       = 0x01 // 8086/88 mode
	eoiBase    = 0x60 // specific-EOI command base
)

/// Pic_t mirrors i8259_init's two cached interrupt masks, so enable/
/// disable never needs a hardware read-back. Programming the ICWs is
/// recorded for diagnostics rather than driving real I/O ports, since
/// this kernel has no real hardware underneath it.
type Pic_t struct {
	mu          sync.Mutex
	masterMask  uint8
	slaveMask   uint8
	initialized bool
	icw         [4]uint8 // last ICW1..4 written, for tests/diagnostics
}

/// PIC is the kernel-wide controller singleton.
var PIC = &Pic_t{masterMask: 0xFF, slaveMask: 0xFF}

/// Init programs both PICs: ICW1 (cascade mode), ICW2 (vector base),
/// ICW3 (cascade wiring), ICW4 (8086 mode), masks everything, then
/// unmasks IRQ2 so the slave's interrupts can reach the CPU at all.
func (p *Pic_t) Init() {
	p.mu.Lock()
	p.icw = [4]uint8{icw1, icw2Master, icw3Master, icw4}
	p.masterMask = 0xFF
	p.slaveMask = 0xFF
	p.initialized = true
	p.mu.Unlock()
	p.EnableIRQ(2)
}

/// EnableIRQ unmasks irq (0-15): 0-7 on the master, 8-15 on the slave.
func (p *Pic_t) EnableIRQ(irq int) {
	if irq < 0 || irq > 15 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if irq <= 7 {
		p.masterMask &^= 1 << uint(irq)
	} else {
		p.slaveMask &^= 1 << uint(irq-8)
	}
}

/// DisableIRQ masks irq.
func (p *Pic_t) DisableIRQ(irq int) {
	if irq < 0 || irq > 15 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if irq <= 7 {
		p.masterMask |= 1 << uint(irq)
	} else {
		p.slaveMask |= 1 << uint(irq-8)
	}
}

/// SendEOI records that irq was acknowledged by counting it in stats.
/// No EOI command byte is composed or recorded for either controller.
func (p *Pic_t) SendEOI(irq int) {
	if irq < 0 || irq > 15 {
		return
	}
	// no hardware behind this; acknowledgement is purely bookkeeping
	// for the scheduler/PIT to observe that the tick was serviced.
	stats.Counters.IRQ()
}

/// MasterMask and SlaveMask expose the cached bitmasks for tests.
func (p *Pic_t) MasterMask() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.masterMask
}

func (p *Pic_t) SlaveMask() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slaveMask
}
