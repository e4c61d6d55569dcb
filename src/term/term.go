// Package term is the terminal state table (spec §3, §4.7, §6): three
// fixed slots each with a backing video page, cursor, keyboard line
// buffer, and current-process pointer, plus the foreground-switch
// video-copy primitive and the keyboard command surface that writes
// into a terminal's line buffer. Keyboard scancode decoding itself is
// out of core scope (spec §1); HandleKey takes an already-decoded Key,
// grounded on original_source/keyboard.c's post-scancode-table command
// handling and original_source/terminal.c's terminal_read/_write.
package term

import (
	"sync"

	"triterm/src/defs"
	"triterm/src/limits"
	"triterm/src/mem"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/charmap"
)

const (
	NumRows = 25
	NumCols = 80
	attrib  = 0x07
	newline = '\n'
)

/// Key is an already-decoded keyboard event: a printable rune, or one of
/// the command flags. Scancode-to-Key translation (the real
/// keyboard.c's scancode table) is outside this package's contract.
type Key struct {
	Rune      rune
	Enter     bool
	Backspace bool
	Tab       bool
	CtrlL     bool
	AltF      int // 1, 2, or 3 selects a foreground terminal; 0 means none
}

/// Terminal_t is one of the three fixed consoles.
type Terminal_t struct {
	mu          sync.Mutex
	cond        *sync.Cond
	ScreenX     int
	ScreenY     int
	Active      bool
	Buffer      [limits.MaxBufferSize]uint8
	BufferIndex int
	EnterFlag   bool
	CurrPid     int // -1 when no PCB is running on this terminal
	Backing     [limits.PageSize]uint8
}

/// Terminals_t is the fixed table of three terminals plus the shared
/// foreground/scheduled cursors and the global Ctrl+L capture state
/// (global, not per-terminal, matching original_source/keyboard.c's
/// file-scope placeholder_buf/ctrl_L_flag).
type Terminals_t struct {
	mu              sync.Mutex
	Slots           [limits.NumTerminals]*Terminal_t
	CurrTerm        int
	SchedTerm       int
	ctrlLFlag       bool
	placeholder     [limits.MaxBufferSize]uint8
	placeholderLen  int
}

/// Terminals is the kernel-wide terminal table singleton.
var Terminals = newTerminals()

func newTerminals() *Terminals_t {
	ts := &Terminals_t{}
	for i := range ts.Slots {
		t := &Terminal_t{CurrPid: -1}
		t.cond = sync.NewCond(&t.mu)
		ts.Slots[i] = t
	}
	return ts
}

/// Init resets every terminal to its boot state, per
/// original_source/terminal.c's terminal_init.
func (ts *Terminals_t) Init() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, t := range ts.Slots {
		t.mu.Lock()
		t.ScreenX, t.ScreenY = 0, 0
		t.Active = false
		t.BufferIndex = 0
		t.EnterFlag = false
		t.CurrPid = -1
		for i := range t.Buffer {
			t.Buffer[i] = 0
		}
		for i := range t.Backing {
			t.Backing[i] = 0
		}
		t.mu.Unlock()
	}
	ts.CurrTerm = 0
	ts.SchedTerm = 0
}

func cellOffset(x, y int) int { return (y*NumCols + x) * 2 }

func (t *Terminal_t) writeCell(foreground bool, x, y int, ch uint8) {
	off := cellOffset(x, y)
	t.Backing[off] = ch
	t.Backing[off+1] = attrib
	if foreground {
		mem.Physmem.Lock()
		defer mem.Physmem.Unlock()
		base := int(mem.VGA_PHYS)
		mem.Physmem.Bytes[base+off] = ch
		mem.Physmem.Bytes[base+off+1] = attrib
	}
}

// advance moves the cursor forward by one cell (the go-runewidth width
// of a space, clamped to at least 1; the written character's own width
// is not consulted), wrapping and scrolling as original_source/lib.c's
// putc does.
func (t *Terminal_t) advance(ts *Terminals_t, foreground bool) {
	width := runewidth.RuneWidth(' ')
	if width < 1 {
		width = 1
	}
	t.ScreenX += width
	if t.ScreenX >= NumCols {
		t.ScreenX = 0
		t.ScreenY++
	}
	if t.ScreenY >= NumRows {
		t.scroll(foreground)
	}
}

func (t *Terminal_t) scroll(foreground bool) {
	for y := 1; y < NumRows; y++ {
		for x := 0; x < NumCols; x++ {
			src := cellOffset(x, y)
			dst := cellOffset(x, y-1)
			t.Backing[dst] = t.Backing[src]
			t.Backing[dst+1] = t.Backing[src+1]
		}
	}
	for x := 0; x < NumCols; x++ {
		off := cellOffset(x, NumRows-1)
		t.Backing[off] = ' '
		t.Backing[off+1] = attrib
	}
	t.ScreenY = NumRows - 1
	if foreground {
		mem.Physmem.Lock()
		copy(mem.Physmem.Bytes[mem.VGA_PHYS:int(mem.VGA_PHYS)+limits.PageSize], t.Backing[:])
		mem.Physmem.Unlock()
	}
}

/// putc writes one printable byte at the cursor and advances it.
func (ts *Terminals_t) putc(termID int, ch uint8) {
	t := ts.Slots[termID]
	fg := termID == ts.CurrTerm
	t.writeCell(fg, t.ScreenX, t.ScreenY, ch)
	t.advance(ts, fg)
}

/// EncodeCP437 transliterates s into the VGA text-mode code page, for
/// callers that want to print characters beyond 7-bit ASCII (box
/// drawing, accented letters) through the same putc path.
func EncodeCP437(s string) ([]uint8, error) {
	return charmap.CodePage437.NewEncoder().Bytes([]uint8(s))
}

/// HandleKey applies one decoded keyboard event to the foreground
/// terminal, exactly as keyboard_intr_handler does after scancode
/// translation: Ctrl+L captures and clears, Alt+F{1,2,3} switches
/// foreground, Enter/Backspace/Tab are handled specially, anything else
/// is echoed and buffered.
func (ts *Terminals_t) HandleKey(k Key) {
	ts.mu.Lock()
	cur := ts.CurrTerm
	ts.mu.Unlock()
	t := ts.Slots[cur]

	if k.AltF >= 1 && k.AltF <= 3 {
		ts.SwitchForeground(k.AltF - 1)
		return
	}

	t.mu.Lock()
	if k.CtrlL {
		ts.mu.Lock()
		copy(ts.placeholder[:], t.Buffer[:])
		ts.placeholderLen = t.BufferIndex
		ts.ctrlLFlag = true
		ts.mu.Unlock()
		for i := range t.Buffer {
			t.Buffer[i] = 0
		}
		t.BufferIndex = 0
		t.ScreenX, t.ScreenY = 0, 0
		for i := range t.Backing {
			t.Backing[i] = 0
		}
		if cur == ts.CurrTerm {
			mem.Physmem.Lock()
			base := int(mem.VGA_PHYS)
			for i := 0; i < limits.PageSize; i++ {
				mem.Physmem.Bytes[base+i] = 0
			}
			mem.Physmem.Unlock()
		}
		t.EnterFlag = true
		t.cond.Broadcast()
		t.mu.Unlock()
		return
	}

	if k.Enter {
		t.EnterFlag = true
		t.cond.Broadcast()
		t.mu.Unlock()
		ts.putc(cur, newline)
		t2 := ts.Slots[cur]
		t2.mu.Lock()
		if t2.ScreenY == NumRows-1 {
			t2.scroll(cur == ts.CurrTerm)
		} else {
			t2.ScreenX, t2.ScreenY = 0, t2.ScreenY+1
		}
		t2.mu.Unlock()
		return
	}

	if k.Backspace {
		if t.BufferIndex != 0 {
			fg := cur == ts.CurrTerm
			if t.ScreenX == 0 {
				t.writeCell(fg, NumCols-1, t.ScreenY-1, ' ')
				t.ScreenX, t.ScreenY = NumCols-1, t.ScreenY-1
			} else {
				t.writeCell(fg, t.ScreenX-1, t.ScreenY, ' ')
				t.ScreenX--
			}
			t.BufferIndex--
			t.Buffer[t.BufferIndex] = ' '
		}
		t.mu.Unlock()
		return
	}

	if k.Tab {
		for i := 0; i < 4 && t.BufferIndex < limits.MaxBufferSize-1; i++ {
			ts.putcLocked(t, cur, ' ')
			t.Buffer[t.BufferIndex] = ' '
			t.BufferIndex++
		}
		t.mu.Unlock()
		return
	}

	if k.Rune != 0 && t.BufferIndex < limits.MaxBufferSize-1 {
		ts.putcLocked(t, cur, uint8(k.Rune))
		t.Buffer[t.BufferIndex] = uint8(k.Rune)
		t.BufferIndex++
	}
	t.mu.Unlock()
}

// putcLocked is putc for a caller that already holds t.mu.
func (ts *Terminals_t) putcLocked(t *Terminal_t, termID int, ch uint8) {
	fg := termID == ts.CurrTerm
	t.writeCell(fg, t.ScreenX, t.ScreenY, ch)
	t.advance(ts, fg)
}

/// SwitchForeground moves the foreground identity from CurrTerm to t,
/// copying VGA<->backing pages per spec §4.7, a no-op if t is already
/// foreground.
func (ts *Terminals_t) SwitchForeground(t int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.CurrTerm == t {
		return
	}
	cur := ts.Slots[ts.CurrTerm]
	next := ts.Slots[t]

	mem.Physmem.Lock()
	base := int(mem.VGA_PHYS)
	copy(cur.Backing[:], mem.Physmem.Bytes[base:base+limits.PageSize])
	copy(mem.Physmem.Bytes[base:base+limits.PageSize], next.Backing[:])
	mem.Physmem.Unlock()

	ts.CurrTerm = t
}

/// Read implements terminal_read: it replays a Ctrl+L-captured line if
/// one is pending, blocks for Enter, then copies at most
/// min(len(buf), 128)-1 buffered bytes plus a trailing newline.
func (ts *Terminals_t) Read(termID int, buf []uint8) (int, defs.Err_t) {
	if buf == nil {
		return -1, defs.EINVAL
	}
	t := ts.Slots[termID]

	t.mu.Lock()
	ts.mu.Lock()
	if ts.ctrlLFlag {
		copy(t.Buffer[:], ts.placeholder[:])
		t.BufferIndex = ts.placeholderLen
		ts.ctrlLFlag = false
		ts.mu.Unlock()
		fg := termID == ts.CurrTerm
		for i := 0; i < t.BufferIndex; i++ {
			t.writeCell(fg, t.ScreenX, t.ScreenY, t.Buffer[i])
			t.advance(ts, fg)
		}
	} else {
		ts.mu.Unlock()
	}
	for !t.EnterFlag {
		t.cond.Wait()
	}
	t.EnterFlag = false

	n := t.BufferIndex
	if n > len(buf)-1 {
		n = len(buf) - 1
	}
	if n < 0 {
		n = 0
	}
	copy(buf, t.Buffer[:n])
	buf[n] = newline
	n++

	for i := range t.Buffer {
		t.Buffer[i] = 0
	}
	t.BufferIndex = 0
	t.mu.Unlock()
	return n, 0
}

/// ResetLineBuffer clears termID's keyboard line buffer and index, per
/// halt step 8 (spec §4.5): a process that halts without ever completing
/// a read (an exception, or any halt mid-line) must not let its partial,
/// un-Enter'd input leak into the next program's first terminal_read.
func (ts *Terminals_t) ResetLineBuffer(termID int) {
	t := ts.Slots[termID]
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.Buffer {
		t.Buffer[i] = 0
	}
	t.BufferIndex = 0
}

/// Write implements terminal_write: every non-NUL byte is echoed via
/// putc; NUL bytes are silently skipped and not counted.
func (ts *Terminals_t) Write(termID int, buf []uint8) (int, defs.Err_t) {
	if buf == nil {
		return -1, defs.EINVAL
	}
	n := 0
	for _, b := range buf {
		if b == 0 {
			continue
		}
		ts.putc(termID, b)
		n++
	}
	return n, 0
}
