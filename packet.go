package latsim

// packet.go holds the run-time representation of a single packet's
// lifecycle as it crosses the scenario path, and the enumerated phase
// type the engine reports for it.

// Phase is the base type for the enumerated, mutually exclusive lifecycle
// states of a packet at a given simulation time
type Phase int

const (
	// Waiting means the simulation clock has not yet reached the packet's send time
	Waiting Phase = iota

	// Queuing means the packet is held up before transmission, either by a
	// hop's static entry delay or by the hop's FIFO backlog
	Queuing

	// Transmitting means the packet occupies a hop's transmission server
	Transmitting

	// Propagating means the packet's bits are in flight along the link
	Propagating

	// Processing means the downstream device is handling the packet
	Processing

	// Delivered means the packet has fully traversed every hop
	Delivered
)

// PhaseToStr returns a string corresponding to an input Phase
func PhaseToStr(phase Phase) string {
	switch phase {
	case Waiting:
		return "waiting"
	case Queuing:
		return "queuing"
	case Transmitting:
		return "transmitting"
	case Propagating:
		return "propagating"
	case Processing:
		return "processing"
	case Delivered:
		return "delivered"
	}
	return "unknown"
}

// unique identifier for each packet
var nxtPacketIdx int = 0

// The Packet struct tracks one packet's identity and mutable progress
// state.  SendTime and Size never change after creation; everything else
// is recomputed or advanced by the engine on each evaluation.
type Packet struct {
	ID       int     // unique monotonically increasing id
	SendTime float64 // simulation time (msec) the packet enters the model
	Size     int     // packet size in bytes

	CurrentHop    int     // index of the hop the packet currently occupies
	CurrentPhase  Phase   // lifecycle phase at the last evaluation
	Progress      float64 // fraction of the current phase completed, in [0,1]
	CompletedHops int     // count of hops fully traversed, used to skip resolved arithmetic

	// first-bit arrival time at each hop boundary, indexed by hop; entry
	// i+1 is stamped exactly once, when propagation across hop i completes
	ArrivalTimes map[int]float64

	// simulation time the packet finished its final hop
	DeliveredAt float64

	// dynamic bookkeeping for the current hop's transmission server.
	// txStart is the time this packet claimed the server (-1 when it has
	// not), txTime the serialization time it was claimed with.  Cleared
	// when the packet finishes the hop.
	txStart float64
	txTime  float64

	// delivery notification fires exactly once; notified guards re-firing
	// on later evaluations of an already-delivered packet
	notified bool
}

// createPacket is a constructor.  The id sequence is package-global so
// packet ids increase in creation order across the whole simulation.
func createPacket(sendTime float64, size int) *Packet {
	nxtPacketIdx += 1
	pckt := new(Packet)
	pckt.ID = nxtPacketIdx
	pckt.SendTime = sendTime
	pckt.Size = size
	pckt.CurrentHop = 0
	pckt.CurrentPhase = Waiting
	pckt.Progress = 0.0
	pckt.CompletedHops = 0
	pckt.ArrivalTimes = make(map[int]float64)
	pckt.txStart = -1.0
	pckt.txTime = 0.0
	return pckt
}

// sizeBits returns the packet length in bits, the unit the transmission
// delay formula wants
func (pckt *Packet) sizeBits() float64 {
	return float64(pckt.Size * 8)
}

// markArrival stamps the first-bit arrival time at the named hop boundary,
// exactly once
func (pckt *Packet) markArrival(hopIdx int, when float64) {
	_, present := pckt.ArrivalTimes[hopIdx]
	if !present {
		pckt.ArrivalTimes[hopIdx] = when
	}
}

// clearHopDynamics forgets the current hop's server bookkeeping, called
// when the packet moves on to the next hop (or the model is rewound)
func (pckt *Packet) clearHopDynamics() {
	pckt.txStart = -1.0
	pckt.txTime = 0.0
}

// delivered reports whether the packet has reached its terminal phase
func (pckt *Packet) delivered() bool {
	return pckt.CurrentPhase == Delivered
}
