// Command kernel boots the simulated machine: loads a filesystem image,
// registers the built-in programs in place of real loaded machine code,
// starts the RTC driver goroutine, and drives the PIT-tick scheduler
// loop that brings all three terminals' shells to life (spec §8
// scenario 1). Grounded on biscuit's cmd/bin-style bootstrapping, which
// likewise has a single small main wiring a pre-built kernel package
// together rather than containing logic of its own.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"triterm/src/kernel"
	"triterm/src/pit"
	"triterm/src/progs"
	"triterm/src/sched"
	"triterm/src/stats"
	"triterm/src/term"
)

func main() {
	fsPath := flag.String("fsimg", "fsimg", "filesystem image built by cmd/mkfs")
	ticks := flag.Int("ticks", limitsTicksDefault, "number of PIT ticks to run before exiting (0 = run forever)")
	flag.Parse()

	img, err := os.ReadFile(*fsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kernel:", err)
		os.Exit(1)
	}

	if rows, cols, ok := term.HostWindowSize(os.Stdout); ok {
		if rows < term.NumRows || cols < term.NumCols {
			fmt.Fprintf(os.Stderr, "kernel: host terminal is %dx%d, smaller than the simulated %dx%d screen\n",
				cols, rows, term.NumCols, term.NumRows)
		}
	}

	kernel.K.Register("shell", progs.Shell)
	kernel.K.Register("counter", progs.Counter)
	kernel.K.Register("dividefault", progs.DivideFault)
	kernel.K.Register("ls", progs.Ls)

	kernel.K.Boot(img)

	programmed := pit.Program()
	period := time.Duration(float64(time.Second) / programmed.ActualRateHz())
	fmt.Fprintf(os.Stderr, "kernel: scheduling at %.2f Hz (period %s)\n", programmed.ActualRateHz(), period)

	rtcStop := make(chan struct{})
	go kernel.K.RunRtcDriver(rtcStop, func() { time.Sleep(time.Second / 512) })
	defer close(rtcStop)

	tick := time.NewTicker(period)
	defer tick.Stop()

	n := 0
	for range tick.C {
		sched.Sched.Tick()
		n++
		if *ticks > 0 && n >= *ticks {
			break
		}
	}

	snap := stats.Counters.Snapshot()
	fmt.Fprintf(os.Stderr, "kernel: %d PIT ticks, %d RTC ticks, %d IRQs serviced, %d reschedules\n",
		snap.PitTicks, snap.RtcTicks, snap.IRQsServiced, snap.Scheduled)
}

// limitsTicksDefault is the default -ticks value. It is 0, which
// disables the cap: the tick loop runs until the process is killed.
const limitsTicksDefault = 0
