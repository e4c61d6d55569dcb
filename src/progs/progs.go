// Package progs holds the built-in program closures registered with
// package kernel in place of real loaded machine code: "shell", the
// indestructible per-terminal root process, and a couple of small test
// programs exercising the spec §8 end-to-end scenarios. Grounded on the
// 391OS shell's read-execute loop implied by spec §4.5 step 3 ("a
// terminal's shell is indestructible and respawns immediately") and by
// scenario 2/3 in spec §8.
package progs

import (
	"strings"

	"triterm/src/except"
	"triterm/src/kernel"
)

const prompt = "391OS> "

/// Shell reads one line at a time from stdin and executes it, forever.
/// It never calls Halt: per spec §4.5 step 3, a root shell's "exit" is
/// handled entirely by Execute's own bookkeeping when this goroutine's
/// underlying process is torn down from outside (there is no
/// externally-visible way to kill it from within this simulation,
/// matching the original's "indestructible" framing).
func Shell(ctx *kernel.ProcContext) int {
	for {
		ctx.Write(1, []uint8(prompt))
		var buf [128]uint8
		n, err := ctx.Read(0, buf[:])
		if err != 0 {
			continue
		}
		cmd := strings.TrimRight(string(buf[:n]), "\n")
		if cmd == "" {
			continue
		}
		ctx.Execute(cmd)
	}
}

/// Counter exercises spec §8 scenario 2: it reads its argument string
/// via getargs and halts with status 7 regardless of what it reads, so
/// a caller can assert execute("counter 42") returns 7 to its parent.
func Counter(ctx *kernel.ProcContext) int {
	var buf [128]uint8
	ctx.GetArgs(buf[:])
	ctx.Halt(7)
	return 0
}

/// DivideFault exercises spec §8 scenario 3: it raises exception vector
/// 0 (divide error) and halts with except.Code, so execute() in its
/// parent observes the promoted status 256.
func DivideFault(ctx *kernel.ProcContext) int {
	ctx.RaiseException(0)
	ctx.Halt(except.Code)
	return 0
}

/// Ls lists every directory entry to stdout, one name per line, the way
/// a minimal 391OS coreutil would use the directory fd-ops directly.
func Ls(ctx *kernel.ProcContext) int {
	fd, err := ctx.Open(".")
	if err != 0 {
		return 1
	}
	defer ctx.Close(fd)
	for {
		var name [32]uint8
		n, _ := ctx.Read(fd, name[:])
		if n == 0 {
			break
		}
		ctx.Write(1, name[:n])
		ctx.Write(1, []uint8("\n"))
	}
	return 0
}
