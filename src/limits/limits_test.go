package limits

import "testing"

func TestPcbAddrDerivable(t *testing.T) {
	seen := map[int]bool{}
	for pid := 0; pid < MaxProc; pid++ {
		addr := PcbAddr(pid)
		if addr >= KernelEnd {
			t.Fatalf("pid %d: PCB address %#x not below KernelEnd", pid, addr)
		}
		if seen[addr] {
			t.Fatalf("pid %d: PCB address %#x collides with another pid", pid, addr)
		}
		seen[addr] = true
	}
}

func TestUserRegionBaseNonOverlapping(t *testing.T) {
	for pid := 0; pid < MaxProc; pid++ {
		base := UserRegionBase(pid)
		if base < KernelEnd {
			t.Fatalf("pid %d: user region %#x overlaps kernel", pid, base)
		}
		if base%FourMB != KernelEnd%FourMB {
			t.Fatalf("pid %d: user region %#x not 4MB-aligned relative to KernelEnd", pid, base)
		}
	}
}

func TestDefaultMatchesPackageConstants(t *testing.T) {
	d := Default()
	if d.MaxProc != MaxProc || d.PageSize != PageSize || d.EntryOffset != EntryOffset {
		t.Fatalf("Default() drifted from package constants: %+v", d)
	}
}
