package latsim

// stats.go summarizes an execution for the teaching read-out that
// accompanies the animation: aggregate latency statistics over delivered
// packets, and the closed-form per-hop latency budget of a journey.

import (
	"gonum.org/v1/gonum/stat"
	"sort"
)

// LatencyStats aggregates end-to-end latencies of delivered packets
type LatencyStats struct {
	Count      int
	MeanMsec   float64
	MedianMsec float64
	P95Msec    float64
}

// CollectLatencyStats computes latency statistics over every packet the
// engine has delivered so far.  With no deliveries the zero value returns.
func CollectLatencyStats(eng *Engine) LatencyStats {
	samples := make([]float64, 0, len(eng.packets))
	for _, pckt := range eng.packets {
		if pckt.delivered() {
			samples = append(samples, pckt.DeliveredAt-pckt.SendTime)
		}
	}

	ls := LatencyStats{Count: len(samples)}
	if len(samples) == 0 {
		return ls
	}

	sort.Float64s(samples)
	ls.MeanMsec = stat.Mean(samples, nil)
	ls.MedianMsec = stat.Quantile(0.5, stat.Empirical, samples, nil)
	ls.P95Msec = stat.Quantile(0.95, stat.Empirical, samples, nil)
	return ls
}

// A HopBudget itemizes the closed-form delay components one hop
// contributes to a journey
type HopBudget struct {
	Name             string  `json:"name" yaml:"name"`
	QueuingMsec      float64 `json:"queuingmsec" yaml:"queuingmsec"`
	TransmissionMsec float64 `json:"transmissionmsec" yaml:"transmissionmsec"`
	PropagationMsec  float64 `json:"propagationmsec" yaml:"propagationmsec"`
	ProcessingMsec   float64 `json:"processingmsec" yaml:"processingmsec"`
	TotalMsec        float64 `json:"totalmsec" yaml:"totalmsec"`
}

// A JourneyReport is the per-hop latency budget of one packet size through
// a scenario.  Its propagation terms use the journey variant, which charges
// satellite hops the fixed bounce through the geostationary relay.
type JourneyReport struct {
	Scenario    string      `json:"scenario" yaml:"scenario"`
	PacketBytes int         `json:"packetbytes" yaml:"packetbytes"`
	Hops        []HopBudget `json:"hops" yaml:"hops"`
	TotalMsec   float64     `json:"totalmsec" yaml:"totalmsec"`
}

// BuildJourneyReport computes the closed-form latency budget for a packet
// of the given byte size crossing every hop of the scenario in order
func BuildJourneyReport(scn *Scenario, sizeBytes int) *JourneyReport {
	rpt := new(JourneyReport)
	rpt.Scenario = scn.name
	rpt.PacketBytes = sizeBytes
	rpt.Hops = make([]HopBudget, 0, len(scn.hops))

	bits := float64(sizeBytes * 8)
	for idx, hop := range scn.hops {
		hb := HopBudget{Name: hop.name}
		if idx > 0 {
			hb.QueuingMsec = hop.entryQueuingMsec()
		}
		hb.TransmissionMsec = hop.transmissionMsec(bits)
		hb.PropagationMsec = hop.journeyPropagationMsec()
		hb.ProcessingMsec = hop.processingMsec()
		hb.TotalMsec = hb.QueuingMsec + hb.TransmissionMsec + hb.PropagationMsec + hb.ProcessingMsec
		rpt.Hops = append(rpt.Hops, hb)
		rpt.TotalMsec += hb.TotalMsec
	}
	return rpt
}
