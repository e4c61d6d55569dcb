// Package fs is the byte-level, read-only filesystem reader (spec §4.1,
// §6): it parses a fixed-layout in-memory image into directory entries
// and inode metadata, and supports reads by name, by index, and by
// (inode, offset, length). Modeled on biscuit's fs/super.go field-
// accessor style, with exact read/iteration semantics pinned from
// original_source/filesystem.c.
package fs

import (
	"triterm/src/defs"
	"triterm/src/ustr"
	"triterm/src/util"
)

/// On-disk layout constants, per spec §6.
const (
	BlockSize     = 4096
	BootBlockSize = 4096
	DentrySize    = 64
	NameLen       = 32
	MaxDentries   = 63
	dentryTable   = 64 // byte offset of the first dentry within the boot block
)

/// Dentry is a parsed 64-byte directory entry.
type Dentry struct {
	Name     ustr.Ustr
	FileType int
	InodeNum int
}

/// Fs_t is a parsed, read-only filesystem image. The image itself is
/// never mutated after New returns: the spec has no writable filesystem.
type Fs_t struct {
	img         []uint8
	numDentries int
	numInodes   int
	numData     int
	inodeAddr   int
	dataAddr    int

	// dentriesRead is the single, process-independent cursor advanced
	// by ReadDirectory. Spec §9 flags this as possibly-unintended
	// shared state (two processes doing directory reads observe each
	// other's progress) but asks that the behavior be pinned rather
	// than guessed at, so it stays a field on the Fs_t singleton, not
	// per-caller state.
	dentriesRead int
}

/// New parses img as a boot-block-prefixed filesystem image (spec §6).
func New(img []uint8) *Fs_t {
	f := &Fs_t{img: img}
	nd, _ := util.Readn32(img, 0)
	ni, _ := util.Readn32(img, 4)
	nb, _ := util.Readn32(img, 8)
	f.numDentries = int(nd)
	f.numInodes = int(ni)
	f.numData = int(nb)
	f.inodeAddr = BootBlockSize
	f.dataAddr = f.inodeAddr + BlockSize*f.numInodes
	return f
}

/// NumDentries reports how many directory entries the boot block names.
func (f *Fs_t) NumDentries() int { return f.numDentries }

func (f *Fs_t) parseDentry(i int) Dentry {
	off := dentryTable + i*DentrySize
	name := ustr.MkUstrSlice(f.img[off : off+NameLen])
	ft, _ := util.Readn32(f.img, off+NameLen)
	inum, _ := util.Readn32(f.img, off+NameLen+4)
	return Dentry{Name: append(ustr.Ustr{}, name...), FileType: int(ft), InodeNum: int(inum)}
}

/// DentryByIndex returns the i'th directory entry (spec §4.1).
func (f *Fs_t) DentryByIndex(i int) (Dentry, defs.Err_t) {
	if i < 0 || i >= f.numDentries {
		return Dentry{}, defs.ENOENT
	}
	return f.parseDentry(i), 0
}

/// DentryByName finds a directory entry by name, comparing equal-length
/// byte-wise as spec §4.1 describes.
func (f *Fs_t) DentryByName(name ustr.Ustr) (Dentry, defs.Err_t) {
	q := ustr.MkUstrSlice(name)
	if len(q) > NameLen {
		q = q[:NameLen]
	}
	for i := 0; i < f.numDentries; i++ {
		d := f.parseDentry(i)
		if d.Name.Eq(q) {
			return d, 0
		}
	}
	return Dentry{}, defs.ENOENT
}

func (f *Fs_t) inodeLength(inode int) (int, bool) {
	if inode < 0 || inode >= f.numInodes {
		return 0, false
	}
	base := f.inodeAddr + inode*BlockSize
	l, ok := util.Readn32(f.img, base)
	if !ok {
		return 0, false
	}
	return int(l), true
}

func (f *Fs_t) blockNumAt(inode, blockIdx int) (int, bool) {
	base := f.inodeAddr + inode*BlockSize
	bn, ok := util.Readn32(f.img, base+4+blockIdx*4)
	return int(bn), ok
}

/// ReadData copies up to length bytes of inode's data starting at byte
/// offset into buf, returning the number of bytes copied. It returns 0
/// (not an error) when inode is out of range or offset is past the end
/// of the file, and stops silently at end-of-file, per spec §4.1.
func (f *Fs_t) ReadData(inode, offset int, buf []uint8, length int) int {
	flen, ok := f.inodeLength(inode)
	if !ok {
		return 0
	}
	if offset > flen {
		return 0
	}
	if length > len(buf) {
		length = len(buf)
	}
	n := 0
	curBlockIdx := -1
	var blockPhys int
	for n < length {
		pos := offset + n
		if pos >= flen {
			break
		}
		blockIdx := pos / BlockSize
		if blockIdx != curBlockIdx {
			bn, ok := f.blockNumAt(inode, blockIdx)
			if !ok {
				break
			}
			blockPhys = f.dataAddr + bn*BlockSize
			curBlockIdx = blockIdx
		}
		buf[n] = f.img[blockPhys+pos%BlockSize]
		n++
	}
	return n
}

/// ReadDirectory copies the next directory name into buf (min of 32
/// bytes, nbytes, and the name's own length), advancing the shared
/// dentriesRead cursor. It returns 0 and resets the cursor once every
/// entry has been returned, so a second full pass yields the same
/// sequence (spec §4.1, §8 scenario 5).
func (f *Fs_t) ReadDirectory(buf []uint8) int {
	if f.dentriesRead >= f.numDentries {
		f.dentriesRead = 0
		return 0
	}
	d := f.parseDentry(f.dentriesRead)
	n := len(d.Name)
	if n > NameLen {
		n = NameLen
	}
	if n > len(buf) {
		n = len(buf)
	}
	copy(buf, d.Name[:n])
	f.dentriesRead++
	return n
}

/// ResetDirectory zeroes the shared directory-read cursor; halt() calls
/// this on every process exit per spec §4.5 step 8.
func (f *Fs_t) ResetDirectory() {
	f.dentriesRead = 0
}

/// ReadFile is a convenience combining DentryByName and ReadData. The
/// executable loader and the file fd-ops Read call ReadData directly.
func (f *Fs_t) ReadFile(name ustr.Ustr, offset int, buf []uint8, length int) (int, defs.Err_t) {
	d, err := f.DentryByName(name)
	if err != 0 {
		return 0, err
	}
	return f.ReadData(d.InodeNum, offset, buf, length), 0
}
