package fs

import "testing"

func TestDisasmDecodesNop(t *testing.T) {
	// 0x90 is NOP in every x86 mode.
	inst, err := Disasm([]uint8{0x90})
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	if inst == "" {
		t.Fatal("Disasm returned an empty instruction string")
	}
}

func TestDisasmRejectsEmptyInput(t *testing.T) {
	if _, err := Disasm(nil); err == nil {
		t.Fatal("expected an error decoding zero bytes")
	}
}
