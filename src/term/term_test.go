package term

import (
	"testing"
	"time"

	"triterm/src/limits"
	"triterm/src/mem"
)

func setupTerm(t *testing.T) *Terminals_t {
	t.Helper()
	mem.Init()
	ts := newTerminals()
	ts.Init()
	return ts
}

func TestWriteSkipsNULBytes(t *testing.T) {
	ts := setupTerm(t)
	n, err := ts.Write(0, []uint8{'h', 0, 'i', 0})
	if err != 0 {
		t.Fatalf("Write failed: %d", err)
	}
	if n != 2 {
		t.Fatalf("Write counted %d bytes, want 2 (NUL bytes must not count)", n)
	}
}

func TestHandleKeyBufferAndEnterUnblocksRead(t *testing.T) {
	ts := setupTerm(t)
	for _, r := range "hi" {
		ts.HandleKey(Key{Rune: r})
	}
	ts.HandleKey(Key{Enter: true})

	buf := make([]uint8, 8)
	done := make(chan struct{})
	var n int
	go func() {
		n, _ = ts.Read(0, buf)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Read did not unblock after Enter set the terminal's EnterFlag")
	}
	if string(buf[:n]) != "hi\n" {
		t.Fatalf("Read returned %q, want %q", buf[:n], "hi\n")
	}
}

func TestCtrlLCapturesThenReadReplays(t *testing.T) {
	ts := setupTerm(t)
	for _, r := range "oops" {
		ts.HandleKey(Key{Rune: r})
	}
	ts.HandleKey(Key{CtrlL: true})

	if ts.Slots[0].BufferIndex != 0 {
		t.Fatal("Ctrl+L must clear the line buffer immediately")
	}
	if !ts.ctrlLFlag {
		t.Fatal("Ctrl+L must set the pending-replay flag")
	}

	buf := make([]uint8, 8)
	done := make(chan struct{})
	var n int
	go func() {
		n, _ = ts.Read(0, buf)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Read did not unblock: Ctrl+L's replay must set EnterFlag")
	}
	if string(buf[:n]) != "oops\n" {
		t.Fatalf("Read after a Ctrl+L replay returned %q, want %q", buf[:n], "oops\n")
	}
}

func TestSwitchForegroundRoundTripsScreenContent(t *testing.T) {
	ts := setupTerm(t)
	for _, r := range "A" {
		ts.HandleKey(Key{Rune: r})
	}
	base := int(mem.VGA_PHYS)
	before := make([]uint8, limits.PageSize)
	copy(before, mem.Physmem.Bytes[base:base+limits.PageSize])

	ts.SwitchForeground(1)
	ts.SwitchForeground(0)

	after := mem.Physmem.Bytes[base : base+limits.PageSize]
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("byte %d changed across an A->B->A foreground round trip: %#x != %#x", i, before[i], after[i])
		}
	}
}

func TestResetLineBufferClearsPartialLine(t *testing.T) {
	ts := setupTerm(t)
	for _, r := range "partial" {
		ts.HandleKey(Key{Rune: r})
	}
	if ts.Slots[0].BufferIndex == 0 {
		t.Fatal("test setup: expected a non-empty buffer before reset")
	}

	ts.ResetLineBuffer(0)

	if ts.Slots[0].BufferIndex != 0 {
		t.Fatalf("BufferIndex = %d after ResetLineBuffer, want 0", ts.Slots[0].BufferIndex)
	}
	for i, b := range ts.Slots[0].Buffer {
		if b != 0 {
			t.Fatalf("Buffer[%d] = %#x after ResetLineBuffer, want 0", i, b)
		}
	}
}

func TestEncodeCP437(t *testing.T) {
	out, err := EncodeCP437("hi")
	if err != nil {
		t.Fatalf("EncodeCP437: %v", err)
	}
	if string(out) != "hi" {
		t.Fatalf("EncodeCP437 of plain ASCII = %q, want %q", out, "hi")
	}
}
