package fs

import (
	"testing"

	"triterm/src/defs"
	"triterm/src/ustr"
)

func buildTestImage(t *testing.T) []uint8 {
	t.Helper()
	files := []SourceFile{
		{Name: "shell", FileType: 2, Data: append([]uint8{0x7F, 'E', 'L', 'F'}, make([]uint8, 100)...)},
		{Name: "rtc", FileType: 0, Data: nil},
		{Name: ".", FileType: 1, Data: nil},
	}
	img, err := BuildImage(files)
	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}
	return img
}

func TestDentryByNameAndIndex(t *testing.T) {
	f := New(buildTestImage(t))
	if f.NumDentries() != 3 {
		t.Fatalf("NumDentries() = %d, want 3", f.NumDentries())
	}
	d, err := f.DentryByName(ustr.FromString("shell"))
	if err != 0 {
		t.Fatalf("DentryByName(shell) failed: %d", err)
	}
	if d.FileType != 2 {
		t.Fatalf("shell's file type = %d, want 2 (FT_FILE)", d.FileType)
	}

	if _, err := f.DentryByName(ustr.FromString("nope")); err != defs.ENOENT {
		t.Fatalf("expected ENOENT for a missing name, got %d", err)
	}

	first, err := f.DentryByIndex(0)
	if err != 0 || first.Name.String() != "shell" {
		t.Fatalf("DentryByIndex(0) = %+v, err %d", first, err)
	}
	if _, err := f.DentryByIndex(3); err != defs.ENOENT {
		t.Fatalf("DentryByIndex out of range should be ENOENT, got %d", err)
	}
}

func TestReadDataStopsAtEOF(t *testing.T) {
	f := New(buildTestImage(t))
	d, _ := f.DentryByName(ustr.FromString("shell"))
	buf := make([]uint8, 1000)
	n := f.ReadData(d.InodeNum, 0, buf, 1000)
	if n != 104 {
		t.Fatalf("ReadData returned %d bytes, want the file's actual length 104", n)
	}
	if buf[0] != 0x7F || buf[1] != 'E' || buf[2] != 'L' || buf[3] != 'F' {
		t.Fatalf("read data does not match the written file header: %v", buf[:4])
	}
}

func TestReadDataPastEOFReturnsZero(t *testing.T) {
	f := New(buildTestImage(t))
	d, _ := f.DentryByName(ustr.FromString("shell"))
	buf := make([]uint8, 10)
	if n := f.ReadData(d.InodeNum, 104, buf, 10); n != 0 {
		t.Fatalf("ReadData at EOF offset returned %d, want 0", n)
	}
	if n := f.ReadData(d.InodeNum, 200, buf, 10); n != 0 {
		t.Fatalf("ReadData past EOF returned %d, want 0", n)
	}
}

func TestReadDirectoryFullPassThenResets(t *testing.T) {
	f := New(buildTestImage(t))
	names := map[string]bool{}
	for i := 0; i < f.NumDentries(); i++ {
		buf := make([]uint8, 32)
		n := f.ReadDirectory(buf)
		if n == 0 {
			t.Fatalf("ReadDirectory returned 0 before exhausting all %d entries", f.NumDentries())
		}
		names[string(buf[:n])] = true
	}
	if len(names) != 3 {
		t.Fatalf("collected %d distinct names, want 3", len(names))
	}

	// one call past the last entry returns 0 and resets the cursor
	buf := make([]uint8, 32)
	if n := f.ReadDirectory(buf); n != 0 {
		t.Fatalf("ReadDirectory after exhaustion returned %d, want 0", n)
	}

	// a second full pass reproduces the same sequence
	buf2 := make([]uint8, 32)
	n2 := f.ReadDirectory(buf2)
	if n2 == 0 {
		t.Fatal("ReadDirectory did not reset its cursor after exhaustion")
	}
}

func TestResetDirectoryRewindsSharedCursor(t *testing.T) {
	f := New(buildTestImage(t))
	buf := make([]uint8, 32)
	f.ReadDirectory(buf)
	f.ResetDirectory()
	first := make([]uint8, 32)
	n := f.ReadDirectory(first)
	again := make([]uint8, 32)
	f.ReadDirectory(again) // advance past it again, discard
	f.ResetDirectory()
	second := make([]uint8, 32)
	n2 := f.ReadDirectory(second)
	if n != n2 || string(first[:n]) != string(second[:n2]) {
		t.Fatalf("ResetDirectory did not rewind to the same first entry: %q vs %q", first[:n], second[:n2])
	}
}
