package latsim

// engine.go holds the run-time scenario representation and the engine that
// evaluates every live packet against the delay formulas and the per-hop
// queues at an absolute simulation time.  Evaluation is single-threaded and
// atomic: one pass advances every hop queue in ascending index order, then
// every packet in creation order, then emits a snapshot.

import (
	"fmt"
	"math"
)

// maxLivePackets caps the number of undelivered packets the engine will
// carry; injection requests beyond the cap are ignored rather than erroring
const maxLivePackets = 20

// A Scenario holds the run-time representation of one configured problem:
// the ordered hop path, the packet workload, and the playback horizon
type Scenario struct {
	name       string
	hops       []*Hop
	packetSize int     // bytes
	maxTime    float64 // msec
	send       SendDesc
}

// BuildScenario creates the run-time scenario from its desc description,
// applying any run-time parameter configuration afterwards.  An empty hop
// list is not an error: the resulting scenario degrades to a no-op in which
// packets are delivered immediately.  Description mistakes are gathered
// across every hop and reported together.
func BuildScenario(sd *ScenarioDesc, excg *ExpCfg) (*Scenario, error) {
	if sd == nil {
		return nil, fmt.Errorf("empty scenario description")
	}

	errs := make([]error, 0)
	for idx := range sd.Hops {
		errs = append(errs, sd.Hops[idx].validate())
	}
	err := ReportErrs(errs)
	if err != nil {
		return nil, err
	}

	initLookupMaps()

	scn := new(Scenario)
	scn.name = sd.Name
	scn.packetSize = sd.PacketSize
	scn.maxTime = sd.MaxTime
	scn.send = sd.Send
	scn.hops = make([]*Hop, 0, len(sd.Hops))

	for idx := range sd.Hops {
		hop := createHop(&sd.Hops[idx])
		addHopLookup(hop)
		scn.hops = append(scn.hops, hop)
	}

	// apply run-time parameter assignments, most general first
	applyExpCfg(excg)

	return scn, nil
}

// NumHops returns the number of hops on the scenario path
func (scn *Scenario) NumHops() int {
	return len(scn.hops)
}

// MaxTime returns the playback horizon in msec
func (scn *Scenario) MaxTime() float64 {
	return scn.maxTime
}

// staticHopMsec returns the fixed delay components of the named hop for a
// packet of the given size, as summed when replaying completed hops: entry
// queuing (hop 0 excepted, no upstream link to wait behind), transmission,
// propagation, and processing
func (scn *Scenario) staticHopMsec(hopIdx int, bits float64) float64 {
	hop := scn.hops[hopIdx]
	var total float64
	if hopIdx > 0 {
		total += hop.entryQueuingMsec()
	}
	total += hop.transmissionMsec(bits)
	total += hop.propagationMsec()
	total += hop.processingMsec()
	return total
}

// StaticLatencyMsec returns the closed-form end-to-end latency of a packet
// of the given byte size through the scenario, with no dynamic contention
func (scn *Scenario) StaticLatencyMsec(sizeBytes int) float64 {
	bits := float64(sizeBytes * 8)
	var total float64
	for idx := range scn.hops {
		total += scn.staticHopMsec(idx, bits)
	}
	return total
}

// A PacketView is the per-packet element of a snapshot
type PacketView struct {
	ID       int     `json:"id" yaml:"id"`
	Phase    string  `json:"phase" yaml:"phase"`
	Hop      int     `json:"hop" yaml:"hop"`
	Progress float64 `json:"progress" yaml:"progress"`
	SendTime float64 `json:"sendtime" yaml:"sendtime"`
	Size     int     `json:"size" yaml:"size"`
}

// A QueueView is the per-hop queue element of a snapshot
type QueueView struct {
	QueueLength          int `json:"queuelength" yaml:"queuelength"`
	TransmittingPacketID int `json:"transmittingpacketid" yaml:"transmittingpacketid"`
}

// A Snapshot is the complete state description emitted to the rendering
// collaborator after every evaluation pass
type Snapshot struct {
	Time    float64      `json:"time" yaml:"time"`
	Packets []PacketView `json:"packets" yaml:"packets"`
	Queues  []QueueView  `json:"queues" yaml:"queues"`
}

// The Engine evaluates packets against the scenario.  It owns the packet
// list and the per-hop queues; both are mutated only by the single
// evaluation pass, so no locking discipline is needed beyond evaluating
// hops in a fixed order once per pass.
type Engine struct {
	scenario *Scenario
	packets  []*Packet
	queues   []*hopQueue
	lastTime float64

	// OnPacketSent fires once per created packet
	OnPacketSent func(*Packet)

	// OnPacketDelivered fires exactly once per packet reaching the end of
	// the path, no matter how many times later evaluations revisit it
	OnPacketDelivered func(*Packet)
}

// CreateEngine is a constructor
func CreateEngine(scn *Scenario) *Engine {
	eng := new(Engine)
	eng.scenario = scn
	eng.packets = make([]*Packet, 0)
	eng.queues = make([]*hopQueue, scn.NumHops())
	for idx := range eng.queues {
		eng.queues[idx] = createHopQueue()
	}
	eng.lastTime = 0.0
	return eng
}

// Scenario returns the scenario the engine was built around
func (eng *Engine) Scenario() *Scenario {
	return eng.scenario
}

// Packets returns the engine's packet list, in creation order
func (eng *Engine) Packets() []*Packet {
	return eng.packets
}

// livePackets counts packets that have not yet been delivered
func (eng *Engine) livePackets() int {
	live := 0
	for _, pckt := range eng.packets {
		if !pckt.delivered() {
			live += 1
		}
	}
	return live
}

// Inject creates a packet with the given send time, subject to the live
// packet cap.  Requests beyond the cap are silently ignored and the return
// is nil.
func (eng *Engine) Inject(sendTime float64) *Packet {
	if eng.livePackets() >= maxLivePackets {
		return nil
	}
	pckt := createPacket(sendTime, eng.scenario.packetSize)
	eng.packets = append(eng.packets, pckt)
	if eng.OnPacketSent != nil {
		eng.OnPacketSent(pckt)
	}
	return pckt
}

// Reset drops every packet and clears every hop queue, returning the
// engine to its just-built state
func (eng *Engine) Reset() {
	eng.packets = eng.packets[:0]
	for _, hq := range eng.queues {
		hq.reset()
	}
	eng.lastTime = 0.0
}

// rewind is called when the evaluation time moves backward.  The static
// arithmetic is recomputed from scratch on every evaluation anyway; the
// dynamic server/FIFO state is history-dependent and is not reconstructed
// retroactively, so it is dropped and left to repopulate as evaluation
// proceeds forward again.
func (eng *Engine) rewind() {
	for _, hq := range eng.queues {
		hq.reset()
	}
	for _, pckt := range eng.packets {
		pckt.CompletedHops = 0
		pckt.CurrentHop = 0
		pckt.clearHopDynamics()
	}
}

// Evaluate computes the phase and progress of every packet at the absolute
// simulation time now, advancing hop queue state as a side effect, and
// returns the resulting snapshot
func (eng *Engine) Evaluate(now float64) Snapshot {
	if now < eng.lastTime {
		eng.rewind()
	}
	eng.lastTime = now

	// advance every hop's server and backlog, in ascending hop order
	for idx, hq := range eng.queues {
		hop := eng.scenario.hops[idx]
		hq.advance(now, func(pckt *Packet) float64 {
			return hop.transmissionMsec(pckt.sizeBits())
		})
	}

	// evaluate every packet, in creation order
	for _, pckt := range eng.packets {
		eng.evaluatePacket(pckt, now)
	}

	return eng.snapshot(now)
}

// evaluatePacket runs the phase state machine for one packet at time now.
// Completed hops are replayed by pure summation of their fixed components;
// only the current hop consults the dynamic queue state.
func (eng *Engine) evaluatePacket(pckt *Packet, now float64) {
	if now < pckt.SendTime {
		pckt.CurrentHop = 0
		pckt.CurrentPhase = Waiting
		pckt.Progress = 0.0
		return
	}

	bits := pckt.sizeBits()
	hops := eng.scenario.hops

	// accumulated simulation time up to the start of the current hop.
	// This is an idempotent recomputation, not a cache.
	acc := pckt.SendTime
	for idx := 0; idx < pckt.CompletedHops; idx++ {
		acc += eng.scenario.staticHopMsec(idx, bits)
	}

	for hopIdx := pckt.CompletedHops; hopIdx < len(hops); hopIdx++ {
		hop := hops[hopIdx]
		pckt.CurrentHop = hopIdx

		// static entry queuing, hop 0 excepted: a fixed given delay
		// standing in for the backlog on the upstream device
		if hopIdx > 0 {
			qd := hop.entryQueuingMsec()
			if qd > 0.0 {
				if now <= acc+qd {
					pckt.CurrentPhase = Queuing
					pckt.Progress = clampFrac((now - acc) / qd)
					return
				}
				acc += qd
			}
		}

		// transmission, resolved against the hop's server and backlog
		txTime := hop.transmissionMsec(bits)
		if txTime > 0.0 {
			hq := eng.queues[hopIdx]

			// the packet currently owns the server
			if hq.occupiedBy(pckt) {
				prog := hq.progressAt(now)
				if prog < 1.0 {
					pckt.CurrentPhase = Transmitting
					pckt.Progress = prog
					return
				}
			}

			// the packet is waiting in this hop's backlog
			if hq.enqueued(pckt) {
				pckt.CurrentPhase = Queuing
				pckt.Progress = 0.0
				return
			}

			if pckt.txStart >= 0.0 {
				// the packet transmitted dynamically on this hop; later
				// phases are measured from when its serialization finished
				txEnd := pckt.txStart + pckt.txTime
				if now < txEnd {
					pckt.CurrentPhase = Transmitting
					pckt.Progress = clampFrac((now - pckt.txStart) / pckt.txTime)
					return
				}
				acc = math.Max(acc, txEnd)
			} else if now < acc+txTime {
				// the packet becomes eligible to transmit within this
				// evaluation window: claim the server or join the backlog.
				// A claim is stamped at the eligibility time, so that a
				// coarse tick or a seek lands mid-transmission with the
				// right progress.
				if hq.claimOrEnqueue(pckt, acc, txTime) {
					pckt.CurrentPhase = Transmitting
					pckt.Progress = hq.progressAt(now)
					return
				}
				pckt.CurrentPhase = Queuing
				pckt.Progress = 0.0
				return
			} else {
				// the whole transmission window is already in the past
				// (a forward seek or replay): fold it in statically
				acc += txTime
			}
		}

		// propagation along the link
		propTime := hop.propagationMsec()
		if propTime > 0.0 {
			if now <= acc+propTime {
				pckt.CurrentPhase = Propagating
				pckt.Progress = clampFrac((now - acc) / propTime)
				return
			}
			acc += propTime
		}

		// the leading bit has arrived at the far end of the hop
		pckt.markArrival(hopIdx+1, acc)

		// device processing at the downstream end
		procTime := hop.processingMsec()
		if procTime > 0.0 {
			if now <= acc+procTime {
				pckt.CurrentPhase = Processing
				pckt.Progress = clampFrac((now - acc) / procTime)
				return
			}
			acc += procTime
		}

		// every sub-phase of this hop is exhausted
		pckt.CompletedHops = hopIdx + 1
		pckt.clearHopDynamics()
	}

	// the loop exhausted every hop
	pckt.CurrentHop = len(hops)
	pckt.CurrentPhase = Delivered
	pckt.Progress = 1.0
	pckt.DeliveredAt = acc
	if !pckt.notified {
		pckt.notified = true
		if eng.OnPacketDelivered != nil {
			eng.OnPacketDelivered(pckt)
		}
	}
}

// snapshot assembles the state description emitted after an evaluation pass
func (eng *Engine) snapshot(now float64) Snapshot {
	snap := Snapshot{Time: now}
	snap.Packets = make([]PacketView, 0, len(eng.packets))
	for _, pckt := range eng.packets {
		snap.Packets = append(snap.Packets, PacketView{
			ID:       pckt.ID,
			Phase:    PhaseToStr(pckt.CurrentPhase),
			Hop:      pckt.CurrentHop,
			Progress: pckt.Progress,
			SendTime: pckt.SendTime,
			Size:     pckt.Size,
		})
	}
	snap.Queues = make([]QueueView, 0, len(eng.queues))
	for _, hq := range eng.queues {
		snap.Queues = append(snap.Queues, QueueView{
			QueueLength:          hq.qlen(),
			TransmittingPacketID: hq.servingID(),
		})
	}
	return snap
}

// clampFrac pins a phase progress fraction into [0,1]
func clampFrac(frac float64) float64 {
	if frac < 0.0 {
		return 0.0
	}
	if frac > 1.0 {
		return 1.0
	}
	return frac
}
