// Package limits holds the kernel's compiled-in resource limits and the
// address-space layout constants from the spec's data model. Like
// biscuit's Syslimit, this is a plain struct of tunables rather than
// anything environment- or flag-driven: the machine this kernel targets
// has one fixed shape.
package limits

/// Limits_t collects every compile-time constant a real kernel would
/// otherwise bake into headers. Kept as a struct (rather than bare
/// package constants) so tests can construct an alternate Limits_t
/// without touching global state, the way biscuit's MkSysLimit allows.
type Limits_t struct {
	MaxProc       int
	NumTerminals  int
	FdArraySize   int
	FileNameLen   int
	MaxBufferSize int
	MaxFileSize   int
	PageSize      int
	FourMB        int
	KernelEnd     int
	UserPageVaddr int
	UserVidVaddr  int
	ProgImageVA   int
	UserStackTop  int
	EntryOffset   int
	ElfCheckOff   int
	ElfCheckLen   int
}

/// MaxProc is the number of simultaneously live processes, [0, MaxProc).
const MaxProc = 6

/// NumTerminals is the number of fixed, simultaneously visible terminals.
const NumTerminals = 3

/// FdArraySize is the number of file descriptor slots per PCB.
const FdArraySize = 8

/// FileNameLen is the size in bytes of a dentry name field.
const FileNameLen = 32

/// MaxBufferSize bounds the keyboard line buffer and the args string.
const MaxBufferSize = 128

/// MaxFileSize bounds how many bytes of an executable image execute()
/// will load into the user page.
const MaxFileSize = 36164

/// PageSize is the size of one physical/virtual page (4 KiB).
const PageSize = 4096

/// FourMB is the size of one large page / one process's user region.
const FourMB = 4 * 1024 * 1024

/// KernelEnd is the address immediately above the kernel's 4MB region
/// ([4MiB, 8MiB)); process N's 4MB user region starts at
/// KernelEnd + N*FourMB and PCB N lives at KernelEnd - (N+1)*8KiB.
const KernelEnd = 8 * 1024 * 1024

/// PcbKstackSize is the size of each process's PCB + kernel stack slab.
const PcbKstackSize = 8 * 1024

/// UserPageVaddr is the virtual address of the 4MB "current process"
/// region (128 MiB).
const UserPageVaddr = 128 * 1024 * 1024

/// UserVidVaddr is the virtual address of the 4KiB user-visible video
/// page (132 MiB).
const UserVidVaddr = 132 * 1024 * 1024

/// ProgImageVA is the fixed virtual load address of an executable image.
const ProgImageVA = 0x8048000

/// UserStackTop is the initial user-mode stack pointer.
const UserStackTop = 0x83FFFFC

/// EntryOffset is the byte offset of the 4-byte little-endian entry
/// point within an executable image.
const EntryOffset = 24

/// ElfCheckOff/ElfCheckLen describe the (deliberately not-quite-right,
/// see spec §9 / DESIGN.md) executable magic check: bytes [1,4) must
/// read "ELF"; byte 0 (conventionally 0x7F) is never verified.
const (
	ElfCheckOff = 1
	ElfCheckLen = 3
)

/// Default returns the kernel's single, compiled-in configuration.
func Default() *Limits_t {
	return &Limits_t{
		MaxProc:       MaxProc,
		NumTerminals:  NumTerminals,
		FdArraySize:   FdArraySize,
		FileNameLen:   FileNameLen,
		MaxBufferSize: MaxBufferSize,
		MaxFileSize:   MaxFileSize,
		PageSize:      PageSize,
		FourMB:        FourMB,
		KernelEnd:     KernelEnd,
		UserPageVaddr: UserPageVaddr,
		UserVidVaddr:  UserVidVaddr,
		ProgImageVA:   ProgImageVA,
		UserStackTop:  UserStackTop,
		EntryOffset:   EntryOffset,
		ElfCheckOff:   ElfCheckOff,
		ElfCheckLen:   ElfCheckLen,
	}
}

/// Syslimit is the kernel-wide default configuration, mirroring
/// biscuit's package-level Syslimit singleton.
var Syslimit = Default()

/// PcbAddr returns the address of the PCB (and base of the kernel stack)
/// belonging to pid, per the spec's data-model invariant that a PCB's
/// address is exactly derivable from its pid.
func PcbAddr(pid int) int {
	return KernelEnd - (pid+1)*PcbKstackSize
}

/// UserRegionBase returns the physical base address of pid's 4MB user
/// region.
func UserRegionBase(pid int) int {
	return KernelEnd + pid*FourMB
}
