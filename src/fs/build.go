// Image construction: turning a human-editable description into the
// raw boot-block-prefixed byte image package fs parses. The description
// format is a txtar archive (golang.org/x/tools/txtar) — one section per
// file, its name giving the dentry name, a leading "type:N" line inside
// the section giving the file_type, and the remainder of the section
// being the data blocks. This gives cmd/mkfs and this package's own
// tests one readable image format instead of each hand-rolling a binary
// fixture builder, mirroring how biscuit's mkfs command builds a real
// disk image from a host directory tree (biscuit/src/mkfs/mkfs.go).
package fs

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/tools/txtar"
)

/// SourceFile describes one file to place in a built image.
type SourceFile struct {
	Name     string
	FileType int
	Data     []uint8
}

/// ParseArchive decodes a txtar-formatted filesystem description into a
/// list of SourceFile, reading the "type:N" header line each section
/// must start with.
func ParseArchive(data []uint8) ([]SourceFile, error) {
	ar := txtar.Parse(data)
	files := make([]SourceFile, 0, len(ar.Files))
	for _, tf := range ar.Files {
		lines := bytes.SplitN(tf.Data, []byte("\n"), 2)
		if len(lines) == 0 {
			return nil, fmt.Errorf("fs: %s: empty section", tf.Name)
		}
		header := strings.TrimSpace(string(lines[0]))
		const prefix = "type:"
		if !strings.HasPrefix(header, prefix) {
			return nil, fmt.Errorf("fs: %s: missing %q header", tf.Name, prefix)
		}
		ft, err := strconv.Atoi(strings.TrimPrefix(header, prefix))
		if err != nil {
			return nil, fmt.Errorf("fs: %s: bad file type: %w", tf.Name, err)
		}
		var body []uint8
		if len(lines) == 2 {
			body = lines[1]
		}
		files = append(files, SourceFile{Name: tf.Name, FileType: ft, Data: body})
	}
	return files, nil
}

/// BuildImage lays out files into the boot-block-prefixed image format
/// package fs parses (spec §6): a 4KiB boot block (counts + dentries),
/// one 4KiB block per inode, then one 4KiB block per data block.
func BuildImage(files []SourceFile) ([]uint8, error) {
	if len(files) > MaxDentries {
		return nil, fmt.Errorf("fs: %d files exceeds max %d dentries", len(files), MaxDentries)
	}

	var dataBlocks [][]uint8
	type builtInode struct {
		length int
		blocks []int
	}
	inodes := make([]builtInode, len(files))

	for i, sf := range files {
		bi := builtInode{length: len(sf.Data)}
		for off := 0; off < len(sf.Data); off += BlockSize {
			end := off + BlockSize
			if end > len(sf.Data) {
				end = len(sf.Data)
			}
			blk := make([]uint8, BlockSize)
			copy(blk, sf.Data[off:end])
			bi.blocks = append(bi.blocks, len(dataBlocks))
			dataBlocks = append(dataBlocks, blk)
		}
		inodes[i] = bi
	}

	numInodes := len(files)
	numData := len(dataBlocks)

	boot := make([]uint8, BootBlockSize)
	putU32(boot, 0, uint32(len(files)))
	putU32(boot, 4, uint32(numInodes))
	putU32(boot, 8, uint32(numData))
	for i, sf := range files {
		off := dentryTable + i*DentrySize
		if len(sf.Name) > NameLen {
			return nil, fmt.Errorf("fs: name %q exceeds %d bytes", sf.Name, NameLen)
		}
		copy(boot[off:off+NameLen], sf.Name)
		putU32(boot, off+NameLen, uint32(sf.FileType))
		putU32(boot, off+NameLen+4, uint32(i))
	}

	img := make([]uint8, 0, BootBlockSize+BlockSize*(numInodes+numData))
	img = append(img, boot...)
	for _, in := range inodes {
		blk := make([]uint8, BlockSize)
		putU32(blk, 0, uint32(in.length))
		for i, bn := range in.blocks {
			putU32(blk, 4+i*4, uint32(bn))
		}
		img = append(img, blk...)
	}
	for _, blk := range dataBlocks {
		img = append(img, blk...)
	}
	return img, nil
}

func putU32(b []uint8, off int, v uint32) {
	b[off] = uint8(v)
	b[off+1] = uint8(v >> 8)
	b[off+2] = uint8(v >> 16)
	b[off+3] = uint8(v >> 24)
}
