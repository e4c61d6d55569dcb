package mem

import "testing"

func TestInitArenaCoversVGAAndAllUserRegions(t *testing.T) {
	Init()
	if len(Physmem.Bytes) <= int(VGA_PHYS) {
		t.Fatalf("arena of %d bytes does not cover the VGA page at %#x", len(Physmem.Bytes), VGA_PHYS)
	}
	page := Physmem.Page(VGA_PHYS)
	if len(page) != 4096 {
		t.Fatalf("Page() returned %d bytes, want 4096", len(page))
	}
}

func TestDmapAliasesUnderlyingArena(t *testing.T) {
	Init()
	view := Physmem.Dmap(0)
	view[0] = 0x42
	if Physmem.Bytes[0] != 0x42 {
		t.Fatal("Dmap must return a view over the same backing array, not a copy")
	}
}

func TestPTEAddrMasksAttributeBits(t *testing.T) {
	pte := Pa_t(0x1234000) | PTE_P | PTE_W | PTE_U
	if pte&PTE_ADDR != 0x1234000 {
		t.Fatalf("PTE_ADDR mask left %#x, want %#x", pte&PTE_ADDR, 0x1234000)
	}
}
