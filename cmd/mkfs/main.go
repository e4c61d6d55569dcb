// Command mkfs builds a filesystem image (spec §6) from a txtar
// description: one section per file, named by the section's header,
// starting with a "type:N" line giving its file_type. Grounded on
// biscuit's src/mkfs, which likewise turns a host-editable source tree
// into the kernel's on-disk image format.
package main

import (
	"flag"
	"fmt"
	"os"

	"triterm/src/fs"
)

func main() {
	out := flag.String("o", "fsimg", "output image path")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mkfs -o <image> <archive.txtar>")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "mkfs:", err)
		os.Exit(1)
	}

	files, err := fs.ParseArchive(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mkfs:", err)
		os.Exit(1)
	}

	img, err := fs.BuildImage(files)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mkfs:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, img, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "mkfs:", err)
		os.Exit(1)
	}
	fmt.Printf("mkfs: wrote %d files, %d bytes to %s\n", len(files), len(img), *out)
}
