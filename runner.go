package latsim

// runner.go holds a thin host-side loop for driving the playback clock
// without a rendering collaborator.  Frame ticks are events on a virtual
// time event manager, so a whole scenario can be played to its horizon
// deterministically in tests and batch latency studies.

import (
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// The Runner owns the event manager that stands in for a browser's
// animation-frame callbacks
type Runner struct {
	clock     *PlaybackClock
	frameMsec float64 // simulated msec advanced per frame event
	evtMgr    *evtm.EventManager
	tm        *TraceManager

	// phase each packet held at the previous frame, to trace transitions only
	lastPhase map[int]Phase
}

// CreateRunner is a constructor.  The trace manager may be inactive; the
// runner still drives the clock, it just records nothing.
func CreateRunner(clk *PlaybackClock, frameMsec float64, tm *TraceManager) *Runner {
	rnr := new(Runner)
	rnr.clock = clk
	rnr.frameMsec = frameMsec
	rnr.evtMgr = evtm.New()
	rnr.tm = tm
	rnr.lastPhase = make(map[int]Phase)

	// store hop id -> name for the trace dictionary
	for _, hop := range clk.engine.scenario.hops {
		tm.AddName(hop.number, hop.name, "hop")
	}
	return rnr
}

// Run plays the scenario to its horizon.  Each frame event advances the
// clock by one frame's worth of simulated time and schedules the next
// frame, until the clock's complete transition stops playback.
func (rnr *Runner) Run() {
	rnr.clock.Play()
	rnr.evtMgr.Schedule(rnr, nil, frameTick, vrtime.SecondsToTime(rnr.frameMsec/1e3))

	// run the event list dry; the frame chain stops itself at the horizon
	horizon := rnr.clock.maxTime/1e3 + rnr.frameMsec/1e3
	rnr.evtMgr.Run(horizon)
}

// frameTick implements the event handler for one animation frame
func frameTick(evtMgr *evtm.EventManager, context any, data any) any {
	rnr := context.(*Runner)

	rnr.clock.Advance(rnr.frameMsec)

	// record a trace record for every packet whose phase changed this frame
	for _, pckt := range rnr.clock.engine.Packets() {
		last, present := rnr.lastPhase[pckt.ID]
		if present && last == pckt.CurrentPhase {
			continue
		}
		op := "phase"
		if !present {
			op = "send"
		} else if pckt.CurrentPhase == Delivered {
			op = "deliver"
		}
		AddPcktTrace(rnr.tm, evtMgr.CurrentTime(), pckt, op)
		rnr.lastPhase[pckt.ID] = pckt.CurrentPhase
	}

	// keep the frame chain going while the clock still plays
	if rnr.clock.Playing() {
		evtMgr.Schedule(rnr, nil, frameTick, vrtime.SecondsToTime(rnr.frameMsec/1e3))
	}

	// event-handlers are required to return _something_
	return nil
}
