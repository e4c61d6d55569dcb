// Package pit programs the programmable interval timer that drives the
// scheduler (spec §4.6, §6 "PIT programming"). Grounded on
// original_source/pit.c, including the divisor low-byte bug pinned by
// spec §9: the original composes the low byte with a boolean `&&`
// instead of the arithmetic `&` it plausibly meant, so the programmed
// low byte collapses to 0 or 1 rather than the masked divisor byte.
package pit

const (
	mode3    = 0x36
	lower8   = 0xFF
	div100Hz = 11932 // PIT input clock (1193182 Hz) / 100, per original_source/pit.h
)

/// Programmed is the (mode, lowByte, highByte) triple init_pit would
/// have written to the PIT's command and channel-0 data ports. LowByte
/// preserves the original's boolean-AND bug rather than computing
/// div100Hz&0xFF, per spec §9: "pin the observed behavior in a test."
type Programmed struct {
	Mode    uint8
	LowByte uint8
	HighByte uint8
}

/// Program computes the bytes init_pit would write, bug included.
func Program() Programmed {
	div := uint16(div100Hz)
	// original: outb((uint8_t)(div && LOWER_8), CHANNEL0) — C's && yields
	// 0 or 1, not div&0xFF. div is always nonzero and LOWER_8 (0xFF) is
	// always nonzero, so this is unconditionally 1.
	lowByte := uint8(0)
	if boolToC(div != 0) != 0 && boolToC(lower8 != 0) != 0 {
		lowByte = 1
	}
	return Programmed{
		Mode:     mode3,
		LowByte:  lowByte,
		HighByte: uint8(div >> 8),
	}
}

func boolToC(b bool) int {
	if b {
		return 1
	}
	return 0
}

/// ActualDivisor reconstructs the 16-bit divisor the PIT hardware would
/// actually load given Programmed's two bytes, for tests that want to
/// derive the resulting (wrong) interrupt rate.
func (p Programmed) ActualDivisor() uint16 {
	return uint16(p.LowByte) | uint16(p.HighByte)<<8
}

/// PitInputHz is the PIT's fixed input oscillator frequency.
const PitInputHz = 1193182

/// ActualRateHz is the interrupt rate the programmed (buggy) divisor
/// actually produces.
func (p Programmed) ActualRateHz() float64 {
	d := p.ActualDivisor()
	if d == 0 {
		return 0
	}
	return float64(PitInputHz) / float64(d)
}
