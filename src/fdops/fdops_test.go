package fdops

import (
	"testing"

	"triterm/src/defs"
	"triterm/src/ustr"
)

func TestBadOpsRejectsEverything(t *testing.T) {
	var o BadOps_t
	if err := o.FdOpen(ustr.FromString("x")); err != defs.EINVAL {
		t.Fatalf("FdOpen = %d, want EINVAL", err)
	}
	if _, err := o.FdRead(0, nil); err != defs.EINVAL {
		t.Fatalf("FdRead = %d, want EINVAL", err)
	}
	if _, err := o.FdWrite(nil); err != defs.EINVAL {
		t.Fatalf("FdWrite = %d, want EINVAL", err)
	}
	if err := o.FdClose(); err != defs.EINVAL {
		t.Fatalf("FdClose = %d, want EINVAL", err)
	}
}
