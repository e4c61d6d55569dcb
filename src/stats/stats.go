// Package stats is the kernel's diagnostic counters: PIT ticks, RTC
// ticks, IRQs serviced, and reschedules, which Profile can encode as a
// minimal pprof profile. No device or file descriptor in the kernel
// exposes that profile to user programs. Grounded on the counting style of
// original_source/scheduler.c and pit.c's tick handlers, using
// github.com/google/pprof/profile for the encoding rather than a
// hand-rolled one.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/google/pprof/profile"
)

/// Counters_t holds the kernel's running tallies, each updated with a
/// single atomic add from whichever goroutine observes the event.
type Counters_t struct {
	PitTicks    int64
	RtcTicks    int64
	IRQsServiced int64
	Scheduled   int64
}

/// Counters is the kernel-wide singleton.
var Counters = &Counters_t{}

func (c *Counters_t) PitTick()  { atomic.AddInt64(&c.PitTicks, 1) }
func (c *Counters_t) RtcTick()  { atomic.AddInt64(&c.RtcTicks, 1) }
func (c *Counters_t) IRQ()      { atomic.AddInt64(&c.IRQsServiced, 1) }
func (c *Counters_t) Schedule() { atomic.AddInt64(&c.Scheduled, 1) }

/// Snapshot returns the current counter values as a plain struct,
/// avoiding any atomic-read races in callers that just want to print
/// them.
type Snapshot struct {
	PitTicks, RtcTicks, IRQsServiced, Scheduled int64
}

func (c *Counters_t) Snapshot() Snapshot {
	return Snapshot{
		PitTicks:     atomic.LoadInt64(&c.PitTicks),
		RtcTicks:     atomic.LoadInt64(&c.RtcTicks),
		IRQsServiced: atomic.LoadInt64(&c.IRQsServiced),
		Scheduled:    atomic.LoadInt64(&c.Scheduled),
	}
}

/// Profile encodes the current counters as a minimal pprof sample
/// profile (one sample per counter, each labeled with the counter's
/// name). This is a snapshot, not a
/// flight recorder: every call produces a fresh profile.Profile.
func (c *Counters_t) Profile(now time.Time) *profile.Profile {
	snap := c.Snapshot()
	st := []*profile.ValueType{{Type: "count", Unit: "count"}}
	mkSample := func(name string, v int64) *profile.Sample {
		return &profile.Sample{
			Location: nil,
			Value:    []int64{v},
			Label:    map[string][]string{"counter": {name}},
		}
	}
	return &profile.Profile{
		SampleType: st,
		Sample: []*profile.Sample{
			mkSample("pit_ticks", snap.PitTicks),
			mkSample("rtc_ticks", snap.RtcTicks),
			mkSample("irqs_serviced", snap.IRQsServiced),
			mkSample("scheduled", snap.Scheduled),
		},
		TimeNanos: now.UnixNano(),
	}
}
