// Package vm is the paging manager: it owns the page directory and the
// user-video page table described in spec §3/§4.2, and provides the two
// retarget primitives (SetUserPage, SetUserVideo) plus the safe
// kernel<->user copy helpers that the rest of the kernel uses instead of
// touching raw addresses. Modeled on biscuit's vm.Vm_t and its
// Userdmap8/K2user/User2k family, adapted from biscuit's demand-paged
// multi-level page tables down to the spec's single static 4MB-page
// layout.
package vm

import (
	"sync"

	"triterm/src/defs"
	"triterm/src/limits"
	"triterm/src/mem"
)

/// Page directory slot indices, per spec §3.
const (
	FirstPTSlot = 0    // [0, 4MiB): VGA + backing video pages
	KernelSlot  = 1    // [4MiB, 8MiB): kernel, one 4MB page
	UserPage    = 0x20 // [128MiB, 132MiB): current process's 4MB region
	UserVidPage = UserPage + 1
)

// indices within the first page table that hold the real VGA page and
// the three per-terminal backing video pages.
const (
	vgaPTIndex = 0xB8 // 0xB8000 >> 12
)

/// VidMode selects what the user-video page table's single entry points
/// at: the real VGA buffer (foreground) or a terminal's backing page.
type VidMode int

const (
	VidForeground VidMode = iota
	VidBackground
)

/// AddrSpace_t is the kernel's page directory plus the two page tables
/// it is backed by. There is exactly one of these: the spec's machine
/// has a single, kernel-wide address space whose [128MiB,132MiB) window
/// is retargeted per scheduled process rather than each process owning
/// its own page directory.
type AddrSpace_t struct {
	sync.Mutex
	Dir          [1024]mem.Pa_t
	FirstTable   [1024]mem.Pa_t
	UserVidTable [1024]mem.Pa_t
	backingPages [limits.NumTerminals]mem.Pa_t
}

/// AS is the kernel-wide address space singleton.
var AS = &AddrSpace_t{}

/// Init constructs the page directory and two page tables: the first
/// page table maps the real VGA page and each terminal's backing video
/// page for kernel use; the kernel region is one 4MB page; the
/// user-video page table starts pointed at the real VGA buffer.
func (as *AddrSpace_t) Init(backing [limits.NumTerminals]mem.Pa_t) {
	as.Lock()
	defer as.Unlock()

	as.FirstTable[vgaPTIndex] = mem.VGA_PHYS | mem.PTE_P | mem.PTE_W
	for i, bp := range backing {
		as.FirstTable[vgaPTIndex+1+i] = bp | mem.PTE_P | mem.PTE_W
	}
	as.backingPages = backing
	as.Dir[FirstPTSlot] = mem.PTE_P | mem.PTE_W

	as.Dir[KernelSlot] = mem.Pa_t(limits.FourMB) | mem.PTE_P | mem.PTE_W | mem.PTE_PS

	as.UserVidTable[0] = mem.VGA_PHYS | mem.PTE_U | mem.PTE_W | mem.PTE_P
	as.Dir[UserVidPage] = mem.PTE_P | mem.PTE_W | mem.PTE_U
}

/// SetUserPage retargets the [128MiB,132MiB) user-page directory slot to
/// pid's physical 4MB region. Caller must hold interrupts masked; this
/// and SetUserVideo are the only two mutators of the live directory, and
/// execute/halt/schedule are their only authorized callers (§4.2).
func (as *AddrSpace_t) SetUserPage(pid int) {
	as.Lock()
	defer as.Unlock()
	base := mem.Pa_t(limits.UserRegionBase(pid))
	as.Dir[UserPage] = base | mem.PTE_PS | mem.PTE_U | mem.PTE_W | mem.PTE_P
}

/// SetUserVideo retargets the user-video page table's single entry to
/// either the real VGA buffer or the given backing page.
func (as *AddrSpace_t) SetUserVideo(mode VidMode, backing mem.Pa_t) {
	as.Lock()
	defer as.Unlock()
	if mode == VidForeground {
		as.UserVidTable[0] = mem.VGA_PHYS | mem.PTE_U | mem.PTE_W | mem.PTE_P
	} else {
		as.UserVidTable[0] = backing | mem.PTE_U | mem.PTE_W | mem.PTE_P
	}
}

/// BackingPage returns the physical address of terminal t's backing
/// video page, as recorded at Init, for callers (the scheduler) that
/// need to retarget the user-video mapping to a specific background
/// terminal.
func (as *AddrSpace_t) BackingPage(t int) mem.Pa_t {
	as.Lock()
	defer as.Unlock()
	return as.backingPages[t]
}

/// CurrentUserVideoPhys returns the physical address the user-video
/// mapping currently resolves to, for tests and for the video-writing
/// helpers below.
func (as *AddrSpace_t) CurrentUserVideoPhys() mem.Pa_t {
	as.Lock()
	defer as.Unlock()
	return as.UserVidTable[0] & mem.PTE_ADDR
}

/// userRegion returns the live physical slice backing pid's 4MB user
/// region, i.e. what virtual [UserPageVaddr, UserPageVaddr+4MiB) resolves
/// to right now.
func userRegion(pid int) []uint8 {
	base := limits.UserRegionBase(pid)
	return mem.Physmem.Bytes[base : base+limits.FourMB]
}

/// translate maps a user virtual address within the current process's
/// 4MB window to an offset into that process's physical region, or
/// reports EFAULT if va falls outside the window.
func translate(va int) (int, defs.Err_t) {
	off := va - limits.UserPageVaddr
	if off < 0 || off >= limits.FourMB {
		return 0, defs.EFAULT
	}
	return off, 0
}

/// K2user copies src into process pid's user address space starting at
/// virtual address uva. It fails with EFAULT if any byte would land
/// outside the process's 4MB window.
func K2user(pid int, src []uint8, uva int) defs.Err_t {
	off, err := translate(uva)
	if err != 0 {
		return err
	}
	if off+len(src) > limits.FourMB {
		return defs.EFAULT
	}
	copy(userRegion(pid)[off:], src)
	return 0
}

/// User2k copies len(dst) bytes from process pid's user address space
/// starting at virtual address uva into dst.
func User2k(pid int, dst []uint8, uva int) defs.Err_t {
	off, err := translate(uva)
	if err != 0 {
		return err
	}
	if off+len(dst) > limits.FourMB {
		return defs.EFAULT
	}
	copy(dst, userRegion(pid)[off:off+len(dst)])
	return 0
}

/// Userstr copies a NUL-terminated string from pid's user space at uva,
/// up to lenmax bytes, the way biscuit's Vm_t.Userstr does.
func Userstr(pid int, uva int, lenmax int) (string, defs.Err_t) {
	off, err := translate(uva)
	if err != 0 {
		return "", err
	}
	region := userRegion(pid)[off:]
	for i := 0; i < len(region) && i < lenmax; i++ {
		if region[i] == 0 {
			return string(region[:i]), 0
		}
	}
	return "", defs.ENAMETOOLONG
}

/// IsInUserPage reports whether the virtual address va falls within the
/// current process's 4MB program window, used by vidmap's validation.
func IsInUserPage(va int) bool {
	_, err := translate(va)
	return err == 0
}

/// LoadImage copies the first len(img) bytes of img into pid's user
/// region at the conventional program load address (spec §4.4 step 10,
/// §6): limits.ProgImageVA's offset into the 4MB window, not the window
/// start, matching where Execute's saved stack pointer and
/// limits.ProgImageVA itself already agree a running image lives.
func LoadImage(pid int, img []uint8) {
	off := limits.ProgImageVA & (limits.FourMB - 1)
	copy(userRegion(pid)[off:], img)
}

/// Vidmap writes the virtual address of the user-video page into the
/// user-space pointer at outVA, provided outVA lies within the current
/// process's program page, per spec §4.9.
func Vidmap(pid int, outVA int) defs.Err_t {
	if !IsInUserPage(outVA) {
		return defs.EINVAL
	}
	var buf [4]uint8
	v := uint32(limits.UserVidVaddr)
	buf[0] = uint8(v)
	buf[1] = uint8(v >> 8)
	buf[2] = uint8(v >> 16)
	buf[3] = uint8(v >> 24)
	return K2user(pid, buf[:], outVA)
}
