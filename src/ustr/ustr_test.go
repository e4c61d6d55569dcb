package ustr

import "testing"

func TestEq(t *testing.T) {
	a := FromString("shell")
	b := FromString("shell")
	c := FromString("shel")
	if !a.Eq(b) {
		t.Fatal("identical strings should compare equal")
	}
	if a.Eq(c) {
		t.Fatal("different-length strings must not compare equal")
	}
}

func TestMkUstrSliceTrimsAtNUL(t *testing.T) {
	buf := make([]uint8, 32)
	copy(buf, "counter")
	us := MkUstrSlice(buf)
	if us.String() != "counter" {
		t.Fatalf("got %q, want %q", us.String(), "counter")
	}
}

func TestMkUstrSliceNoTerminator(t *testing.T) {
	buf := make([]uint8, 32)
	for i := range buf {
		buf[i] = 'a'
	}
	us := MkUstrSlice(buf)
	if len(us) != 32 {
		t.Fatalf("expected all 32 non-NUL bytes to survive, got %d", len(us))
	}
}
