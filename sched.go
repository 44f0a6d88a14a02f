package latsim

// sched.go holds structs, methods and data structures that decide when new
// packets enter the model: on explicit request, once per fixed interval of
// simulated time, or in staggered bursts.  Sends scheduled for the future
// (burst members, jittered gaps) wait in a min-heap ordered by send time
// and are injected as the clock reaches them.

import (
	"container/heap"
	"github.com/iti/rngstream"
	"math"
)

// sendMode is the base type for an enumerated type of packet injection modes
type sendMode int

const (
	sendManual sendMode = iota
	sendInterval
	sendBurst
)

// sendModeFromStr returns the sendMode corresponding to a string name for it
func sendModeFromStr(mode string) sendMode {
	switch mode {
	case "interval", "Interval":
		return sendInterval
	case "burst", "Burst":
		return sendBurst
	default:
		return sendManual
	}
}

// spacing between the members of one burst, in simulated msec
const burstStaggerMsec = 2.0

// sendTimeHeap and its methods implement a min-priority heap on the send
// times of pending packet injections
type sendTimeHeap []float64

func (h sendTimeHeap) Len() int           { return len(h) }
func (h sendTimeHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h sendTimeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *sendTimeHeap) Push(x any) {
	*h = append(*h, x.(float64))
}

func (h *sendTimeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// The Scheduler decides when the engine creates new packets, as a function
// of elapsed simulated time.  It never creates packets itself; it asks the
// engine to, and the engine's live-packet cap has the final say.
type Scheduler struct {
	mode      sendMode
	interval  float64 // msec between sends (or bursts)
	burstSize int
	jitter    bool

	// next time the interval/burst rule fires
	nxtSend float64

	// sends already decided on but not yet due
	pending sendTimeHeap

	// random stream for jittered inter-send gaps
	rngstrm *rngstream.RngStream
}

// CreateScheduler is a constructor, configured from the scenario's send description
func CreateScheduler(send SendDesc, streamName string) *Scheduler {
	sched := new(Scheduler)
	sched.mode = sendModeFromStr(send.Mode)
	sched.interval = send.Interval
	sched.burstSize = send.BurstSize
	sched.jitter = send.Jitter
	sched.nxtSend = 0.0
	sched.pending = sendTimeHeap{}
	heap.Init(&sched.pending)
	sched.rngstrm = rngstream.New(streamName)
	return sched
}

// SetMode reconfigures the injection rule.  Pending scheduled sends are
// dropped; the new rule starts from the current time on the next Advance.
func (sched *Scheduler) SetMode(mode string, interval float64, burstSize int) {
	sched.mode = sendModeFromStr(mode)
	sched.interval = interval
	sched.burstSize = burstSize
	sched.pending = sched.pending[:0]
	sched.nxtSend = -1.0
}

// Reset returns the scheduler to its initial state
func (sched *Scheduler) Reset() {
	sched.pending = sched.pending[:0]
	sched.nxtSend = 0.0
}

// nxtGap returns the simulated time between rule firings: the configured
// interval, or an exponential draw with that mean when jitter is on
func (sched *Scheduler) nxtGap() float64 {
	if sched.interval <= 0.0 {
		return 0.0
	}
	if sched.jitter {
		u01 := sched.rngstrm.RandU01()
		// floor the draw so a tiny sample cannot flood the model
		return math.Max(-math.Log(1.0-u01)*sched.interval, 0.01*sched.interval)
	}
	return sched.interval
}

// Advance fires the injection rule for every send due at or before now,
// asking the engine to create the packets.  Times only move forward here;
// a backward seek leaves the rule's next firing where it was, so packets
// are never created twice.
func (sched *Scheduler) Advance(eng *Engine, now float64) {
	if sched.nxtSend < 0.0 {
		// rule was just reconfigured; anchor it at the current time
		sched.nxtSend = now
	}

	gap := sched.nxtGap()

	switch sched.mode {
	case sendManual:
		// the engine's caller injects explicitly

	case sendInterval:
		if gap <= 0.0 {
			break
		}
		for sched.nxtSend <= now {
			eng.Inject(sched.nxtSend)
			sched.nxtSend += gap
			gap = sched.nxtGap()
		}

	case sendBurst:
		if gap <= 0.0 {
			break
		}
		for sched.nxtSend <= now {
			for member := 0; member < sched.burstSize; member++ {
				heap.Push(&sched.pending, sched.nxtSend+float64(member)*burstStaggerMsec)
			}
			sched.nxtSend += gap
			gap = sched.nxtGap()
		}
	}

	// release every pending scheduled send that has come due
	for len(sched.pending) > 0 && sched.pending[0] <= now {
		sendTime := heap.Pop(&sched.pending).(float64)
		eng.Inject(sendTime)
	}
}

// ManualSend asks the engine for one packet at the current time,
// regardless of mode.  Requests beyond the engine's live-packet cap are
// silently dropped by the engine.
func (sched *Scheduler) ManualSend(eng *Engine, now float64) *Packet {
	return eng.Inject(now)
}
