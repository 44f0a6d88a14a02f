package latsim

// queue.go holds data structures and methods for the hopQueue structure,
// the per-hop FIFO backlog and single transmission server that resolve
// dynamic contention between packets that reach the same hop while an
// earlier packet is still being serialized.

// hopQueue is the central data structure for managing contention at one hop.
// At most one packet occupies the server at any simulation time; packets
// that become eligible while the server is busy wait in the inQ and are
// served strictly in arrival order, with no priority and no preemption.
type hopQueue struct {
	// the packet currently occupying the transmission server, nil when idle
	serving *Packet

	// the simulation time the server was occupied, and the serialization
	// time the occupant was admitted with
	start       float64
	serviceTime float64

	// FIFO of packets awaiting the server, earliest eligible first
	inQ []*Packet
}

// createHopQueue is a constructor for the hopQueue
func createHopQueue() *hopQueue {
	hq := new(hopQueue)
	hq.inQ = make([]*Packet, 0)
	hq.serving = nil
	hq.start = 0.0
	hq.serviceTime = 0.0
	return hq
}

// qlen returns the number of packets enqueued for service
func (hq *hopQueue) qlen() int {
	return len(hq.inQ)
}

// occupiedBy tells whether the named packet currently owns the server
func (hq *hopQueue) occupiedBy(pckt *Packet) bool {
	return hq.serving == pckt
}

// enqueued tells whether the named packet is waiting in the inQ
func (hq *hopQueue) enqueued(pckt *Packet) bool {
	for _, queued := range hq.inQ {
		if queued == pckt {
			return true
		}
	}
	return false
}

// popQ removes (and returns) the earliest packet in the inQ
func (hq *hopQueue) popQ() *Packet {
	if len(hq.inQ) == 0 {
		return nil
	}
	var pckt *Packet
	pckt, hq.inQ = hq.inQ[0], hq.inQ[1:]
	return pckt
}

// appendQ adds a packet to the end of the inQ
func (hq *hopQueue) appendQ(pckt *Packet) {
	hq.inQ = append(hq.inQ, pckt)
}

// occupy admits a packet to the server, stamping the occupation start time
// and the serialization time it will be held for
func (hq *hopQueue) occupy(pckt *Packet, now, serviceTime float64) {
	hq.serving = pckt
	hq.start = now
	hq.serviceTime = serviceTime
	pckt.txStart = now
	pckt.txTime = serviceTime
}

// claimOrEnqueue is called when a packet becomes eligible to transmit at
// this hop.  If the server is idle the packet occupies it immediately and
// the return is true.  If another packet holds the server, the caller's
// packet joins the FIFO tail (once) and the return is false.  A packet
// never appears in both the server slot and the inQ.
func (hq *hopQueue) claimOrEnqueue(pckt *Packet, now, serviceTime float64) bool {
	if hq.serving == nil {
		hq.occupy(pckt, now, serviceTime)
		return true
	}
	if hq.serving == pckt {
		return true
	}
	if !hq.enqueued(pckt) {
		hq.appendQ(pckt)
	}
	return false
}

// progressAt returns the fraction of the occupant's serialization that has
// completed by the given time, clamped to [0,1].  A value of 1 means the
// occupation is over: advance evicts the occupant at that point, so a
// server counts as busy only while its occupant's progress is below 1
func (hq *hopQueue) progressAt(now float64) float64 {
	if hq.serving == nil || hq.serviceTime <= 0.0 {
		return 1.0
	}
	frac := (now - hq.start) / hq.serviceTime
	if frac < 0.0 {
		return 0.0
	}
	if frac > 1.0 {
		return 1.0
	}
	return frac
}

// advance is called once per hop per evaluation pass, independent of any
// single packet.  If the occupant's serialization has completed the server
// is cleared, and if the inQ is non-empty its head is admitted immediately
// with the occupation start stamped at the current time.  FIFO order is
// preserved: a later arrival can never jump an earlier one.
func (hq *hopQueue) advance(now float64, serviceTimeFor func(*Packet) float64) {
	if hq.serving != nil && hq.progressAt(now) < 1.0 {
		return
	}
	hq.serving = nil

	if len(hq.inQ) > 0 {
		nxt := hq.popQ()
		hq.occupy(nxt, now, serviceTimeFor(nxt))
	}
}

// reset drops all dynamic state, returning the hop to an idle server and
// an empty backlog
func (hq *hopQueue) reset() {
	hq.serving = nil
	hq.start = 0.0
	hq.serviceTime = 0.0
	hq.inQ = hq.inQ[:0]
}

// servingID returns the id of the occupant packet, or -1 when the server is idle
func (hq *hopQueue) servingID() int {
	if hq.serving == nil {
		return -1
	}
	return hq.serving.ID
}
