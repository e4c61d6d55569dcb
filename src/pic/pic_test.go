package pic

import "testing"

func TestInitUnmasksCascadeLine(t *testing.T) {
	p := &Pic_t{masterMask: 0xFF, slaveMask: 0xFF}
	p.Init()
	if p.MasterMask()&(1<<2) != 0 {
		t.Fatal("Init must unmask IRQ2 so the slave's interrupts reach the CPU")
	}
	if !p.initialized {
		t.Fatal("Init must mark the controller initialized")
	}
}

func TestEnableDisableIRQMasterAndSlave(t *testing.T) {
	p := &Pic_t{masterMask: 0xFF, slaveMask: 0xFF}
	p.EnableIRQ(0) // PIT, master
	if p.MasterMask()&1 != 0 {
		t.Fatal("EnableIRQ(0) should clear bit 0 of the master mask")
	}
	p.EnableIRQ(8) // RTC, slave
	if p.SlaveMask()&1 != 0 {
		t.Fatal("EnableIRQ(8) should clear bit 0 of the slave mask")
	}
	p.DisableIRQ(0)
	if p.MasterMask()&1 == 0 {
		t.Fatal("DisableIRQ(0) should set bit 0 of the master mask again")
	}
}

func TestEnableIRQOutOfRangeIsNoop(t *testing.T) {
	p := &Pic_t{masterMask: 0xFF, slaveMask: 0xFF}
	p.EnableIRQ(16)
	p.EnableIRQ(-1)
	if p.MasterMask() != 0xFF || p.SlaveMask() != 0xFF {
		t.Fatal("an out-of-range IRQ number must not alter either mask")
	}
}
