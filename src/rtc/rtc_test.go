package rtc

import (
	"testing"
	"time"

	"triterm/src/defs"
)

func TestOpenAlwaysResetsToTwoHertz(t *testing.T) {
	r := newRtc()
	buf := make([]uint8, 4)
	buf[0] = 64 // frequency 64, a valid power of two
	if _, err := r.Write(0, buf); err != 0 {
		t.Fatalf("Write failed: %d", err)
	}
	if r.slots[0].constant != hz512/64 {
		t.Fatalf("constant after write = %d, want %d", r.slots[0].constant, hz512/64)
	}
	r.Open(0)
	if r.slots[0].constant != openConstant {
		t.Fatalf("Open did not reset to the 2Hz constant: got %d, want %d", r.slots[0].constant, openConstant)
	}
}

func TestWriteValidatesFrequency(t *testing.T) {
	r := newRtc()
	cases := []struct {
		freq int32
		ok   bool
	}{
		{0, false}, {1, false}, {3, false}, {512, true}, {1024, false}, {2, true}, {256, true},
	}
	for _, c := range cases {
		buf := make([]uint8, 4)
		buf[0] = uint8(c.freq)
		buf[1] = uint8(c.freq >> 8)
		_, err := r.Write(0, buf)
		if c.ok && err != 0 {
			t.Errorf("freq %d should be accepted, got error %d", c.freq, err)
		}
		if !c.ok && err != defs.EINVAL {
			t.Errorf("freq %d should be rejected with EINVAL, got %d", c.freq, err)
		}
	}
}

func TestWriteRejectsWrongLength(t *testing.T) {
	r := newRtc()
	if _, err := r.Write(0, []uint8{1, 2, 3}); err != defs.EINVAL {
		t.Fatalf("expected EINVAL for a non-4-byte write, got %d", err)
	}
}

func TestTickWakesRead(t *testing.T) {
	r := newRtc()
	buf := make([]uint8, 4)
	buf[0] = 8 // freq 8 -> constant 64
	r.Write(1, buf)

	done := make(chan struct{})
	go func() {
		r.Read(1)
		close(done)
	}()

	// Read arms the countdown on entry, so ticks delivered before that
	// are lost; wait until the countdown is armed before ticking.
	deadline := time.Now().Add(time.Second)
	for {
		r.slots[1].mu.Lock()
		armed := r.slots[1].remaining != 0
		r.slots[1].mu.Unlock()
		if armed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Read never armed its countdown")
		}
		time.Sleep(time.Millisecond)
	}

	for i := 0; i < 64; i++ {
		r.Tick(1)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Read did not unblock after the constant's worth of ticks")
	}
}

func TestTickOnlyAffectsItsOwnTerminal(t *testing.T) {
	r := newRtc()
	r.slots[0].constant = 1
	r.slots[1].constant = 1
	r.slots[0].remaining = 1
	r.slots[1].remaining = 1
	r.Tick(0)
	if r.slots[0].remaining != 0 {
		t.Fatal("Tick(0) should decrement terminal 0's countdown")
	}
	if r.slots[1].remaining != 1 {
		t.Fatal("Tick(0) must not affect terminal 1's countdown")
	}
}
