package fs

import "golang.org/x/arch/x86/x86asm"

/// Disasm decodes the first instruction of a loaded 32-bit executable
/// image's entry bytes, for the kernel objdump-style diagnostic used by
/// cmd/chentry's -dump flag to check that a patched entry point begins
/// on a real instruction boundary rather than mid-encoding.
func Disasm(entryBytes []uint8) (string, error) {
	inst, err := x86asm.Decode(entryBytes, 32)
	if err != nil {
		return "", err
	}
	return inst.String(), nil
}
