package util

import "testing"

func TestMin(t *testing.T) {
	if Min(3, 5) != 3 || Min(5, 3) != 3 {
		t.Fatal("Min disagreement")
	}
}

func TestRoundupRounddown(t *testing.T) {
	if Roundup(4097, 4096) != 8192 {
		t.Fatalf("Roundup(4097,4096) = %d", Roundup(4097, 4096))
	}
	if Rounddown(4097, 4096) != 4096 {
		t.Fatalf("Rounddown(4097,4096) = %d", Rounddown(4097, 4096))
	}
	if Roundup(4096, 4096) != 4096 {
		t.Fatal("Roundup of an already-aligned value must not add a page")
	}
}

func TestReadnWriten32RoundTrip(t *testing.T) {
	buf := make([]uint8, 8)
	if !Writen32(buf, 2, 0xDEADBEEF) {
		t.Fatal("Writen32 should fit within an 8-byte buffer at offset 2")
	}
	v, ok := Readn32(buf, 2)
	if !ok || v != 0xDEADBEEF {
		t.Fatalf("got (%#x, %v), want (0xdeadbeef, true)", v, ok)
	}
}

func TestReadn32OutOfBounds(t *testing.T) {
	buf := make([]uint8, 4)
	if _, ok := Readn32(buf, 1); ok {
		t.Fatal("Readn32 must report false instead of panicking on an out-of-bounds region")
	}
	if _, ok := Readn32(buf, -1); ok {
		t.Fatal("Readn32 must reject a negative offset")
	}
}
