// Command chentry rewrites the entry-point word (spec's EntryOffset,
// byte 24) of an executable image in place, the way a real toolchain's
// linker step would patch an ELF header's e_entry field. Optionally
// dumps the instruction at the new entry point with fs.Disasm so the
// operator can sanity-check the patched address actually lands on an
// instruction boundary. Grounded on biscuit's cmd/ tooling style of
// small single-purpose host binaries operating on the kernel's own
// on-disk formats.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"triterm/src/fs"
	"triterm/src/limits"
)

func main() {
	dump := flag.Bool("dump", false, "disassemble the instruction at the new entry point")
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: chentry [-dump] <image> <entry-addr>")
		os.Exit(2)
	}

	path := flag.Arg(0)
	addr, err := strconv.ParseUint(flag.Arg(1), 0, 32)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chentry: bad entry address:", err)
		os.Exit(1)
	}

	img, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chentry:", err)
		os.Exit(1)
	}
	if len(img) < limits.EntryOffset+4 {
		fmt.Fprintln(os.Stderr, "chentry: image too small to hold an entry point")
		os.Exit(1)
	}

	v := uint32(addr)
	img[limits.EntryOffset] = uint8(v)
	img[limits.EntryOffset+1] = uint8(v >> 8)
	img[limits.EntryOffset+2] = uint8(v >> 16)
	img[limits.EntryOffset+3] = uint8(v >> 24)

	if err := os.WriteFile(path, img, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "chentry:", err)
		os.Exit(1)
	}
	fmt.Printf("chentry: %s entry set to 0x%x\n", path, v)

	if *dump {
		// the image is loaded at ProgImageVA, so the entry address maps
		// back to this file offset
		off := int(v) - limits.ProgImageVA
		if off < 0 || off >= len(img) {
			fmt.Fprintln(os.Stderr, "chentry: disasm: entry point lies outside the image")
			return
		}
		end := off + 16
		if end > len(img) {
			end = len(img)
		}
		inst, derr := fs.Disasm(img[off:end])
		if derr != nil {
			fmt.Fprintln(os.Stderr, "chentry: disasm:", derr)
			return
		}
		fmt.Println("chentry: entry instruction:", inst)
	}
}
