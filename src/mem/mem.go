// Package mem owns the kernel's simulated physical memory: a single
// byte arena standing in for RAM, plus the page-table entry attribute
// bits shared by the paging manager in package vm. Modeled on biscuit's
// mem package (Pa_t, Dmap, PTE_* bits), trimmed to the spec's single
// static 4MB-page-per-process layout — there is no general-purpose
// page allocator here because the spec has no demand paging.
package mem

import (
	"sync"

	"triterm/src/limits"
)

/// Pa_t is a physical address: an offset into the simulated RAM arena.
type Pa_t uint64

/// Page table entry attribute bits, matching the spec's §3 address
/// space description and the original kernel's paging.h.
const (
	PTE_P  Pa_t = 1 << 0 // present
	PTE_W  Pa_t = 1 << 1 // writable
	PTE_U  Pa_t = 1 << 2 // user-accessible
	PTE_PS Pa_t = 1 << 7 // 4MB page
)

/// PTE_ADDR masks off the attribute bits, leaving the page-aligned
/// address.
const PTE_ADDR Pa_t = ^Pa_t(0xFFF)

/// VGA_PHYS is the physical address of the real VGA text-mode buffer.
const VGA_PHYS Pa_t = 0xB8000

/// Physmem_t is the kernel's simulated physical memory: one big arena.
/// Real biscuit manages a free list of 4KiB pages with refcounts; this
/// kernel never frees or demand-allocates a page once booted, so a flat
/// arena plus a couple of named regions is enough to give every other
/// package something real to read and write.
type Physmem_t struct {
	sync.Mutex
	Bytes []uint8
}

/// Physmem is the kernel-wide physical memory singleton, mirroring
/// biscuit's package-level Physmem.
var Physmem = &Physmem_t{}

/// Init allocates the simulated RAM arena, sized to hold the kernel
/// region, every process's 4MB user region up to limits.MaxProc, and
/// the real VGA buffer at its conventional physical address.
func Init() {
	top := Pa_t(limits.KernelEnd + limits.MaxProc*limits.FourMB)
	if VGA_PHYS+Pa_t(limits.PageSize) > top {
		top = VGA_PHYS + Pa_t(limits.PageSize)
	}
	Physmem.Bytes = make([]uint8, top)
}

/// Dmap returns a direct-mapped byte slice view of physical memory
/// starting at p, analogous to biscuit's Physmem.Dmap.
func (m *Physmem_t) Dmap(p Pa_t) []uint8 {
	return m.Bytes[p:]
}

/// Page returns the page-sized slice of physical memory starting at p.
func (m *Physmem_t) Page(p Pa_t) []uint8 {
	return m.Bytes[p : int(p)+limits.PageSize]
}
