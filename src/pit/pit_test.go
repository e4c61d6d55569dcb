package pit

import "testing"

// TestProgramPinsTheBooleanAndBug locks in original_source/pit.c's
// outb((uint8_t)(div && LOWER_8), CHANNEL0): since div100Hz and 0xFF
// are both always nonzero, C's && always yields 1, never the masked
// low byte div100Hz&0xFF (which would be 0x9C).
func TestProgramPinsTheBooleanAndBug(t *testing.T) {
	p := Program()
	if p.LowByte != 1 {
		t.Fatalf("LowByte = %#x, want the pinned buggy value 1 (not div&0xFF = %#x)", p.LowByte, uint8(div100Hz&0xFF))
	}
	if p.Mode != mode3 {
		t.Fatalf("Mode = %#x, want %#x", p.Mode, mode3)
	}
}

func TestActualRateIsNotTheNominal100Hz(t *testing.T) {
	p := Program()
	rate := p.ActualRateHz()
	if rate > 99 && rate < 101 {
		t.Fatalf("ActualRateHz = %.2f landed suspiciously close to the intended 100Hz; the bug should shift it", rate)
	}
	if rate <= 0 {
		t.Fatalf("ActualRateHz = %.2f, want a positive rate", rate)
	}
}
