package latsim

// hop.go holds the run-time representation of one hop in a scenario path:
// a directed link plus the device at its downstream end.  Hops are built
// from their serializable HopDesc descriptions and then configured through
// the run-time parameter machinery in cfg.go.

import (
	"golang.org/x/exp/slices"
	"strconv"
)

// valueStruct holds the different types a configuration value might have;
// typically only one of these is used, and which one is known by context
type valueStruct struct {
	intValue    int
	floatValue  float64
	stringValue string
	boolValue   bool
}

// stringToValueStruct takes a string (used in the run-time configuration
// phase) and determines whether it is an integer, a float, a bool, or a string
func stringToValueStruct(v string) valueStruct {
	vs := valueStruct{intValue: 0, floatValue: 0.0, stringValue: "", boolValue: false}

	// try conversion to int
	ivalue, ierr := strconv.Atoi(v)
	if ierr == nil {
		vs.intValue = ivalue
		vs.floatValue = float64(ivalue)
		return vs
	}

	// failing that, try conversion to float
	fvalue, ferr := strconv.ParseFloat(v, 64)
	if ferr == nil {
		vs.floatValue = fvalue
		return vs
	}

	// left with it being a string.  See if true, True
	if v == "true" || v == "True" {
		vs.boolValue = true
		return vs
	}

	vs.stringValue = v
	return vs
}

// the paramObj interface is satisfied by every object that can be
// configured at run-time with performance parameters
type paramObj interface {
	matchParam(string, string) bool
	setParam(string, valueStruct)
	paramObjName() string
}

// The Hop struct holds information describing one link-plus-device step
// on the scenario path
type Hop struct {
	name   string    // unique name
	groups []string  // list of groups to which the hop may belong
	number int       // unique integer id, generated at model-load time
	state  *hopState // pointer to the hop's block of state information
}

// The hopState struct holds the parameters descriptive of the hop's
// physical and device characteristics.  Values of zero mean the
// corresponding delay component is skipped, not that the model is broken.
type hopState struct {
	bandwidth  float64    // link serialization rate, in bits/sec
	distance   float64    // physical length of the link, in meters
	media      propMedium // propagation medium of the link
	propSpeed  float64    // explicit propagation speed (m/s), overrides the medium when positive
	processing float64    // base device handling time, in msec
	power      powerClass // device power class scaling the processing time
	load       float64    // instantaneous device load in [0,1], scales processing
	queuing    float64    // explicit entry queuing delay, in msec
	useUtil    bool       // when true, entry queuing is derived from utilization
	util       float64    // link utilization in [0,1]
	trace      bool       // switch for calling add trace
}

// createHopState gives hop parameters their not-yet-configured defaults
func createHopState() *hopState {
	hs := new(hopState)
	hs.bandwidth = 0.0
	hs.distance = 0.0
	hs.media = unknownMedium
	hs.propSpeed = 0.0
	hs.processing = 0.0
	hs.power = powerHigh
	hs.load = 0.0
	hs.queuing = 0.0
	hs.useUtil = false
	hs.util = 0.0
	hs.trace = false
	return hs
}

// createHop is a constructor, building a Hop from the desc description of the hop
func createHop(hd *HopDesc) *Hop {
	hop := new(Hop)
	hop.name = hd.Name
	hop.number = nxtID()
	hop.groups = hd.Groups
	hop.state = createHopState()

	hop.state.bandwidth = hd.Bandwidth
	hop.state.distance = hd.Distance
	hop.state.media = mediumFromStr(hd.Medium)
	hop.state.propSpeed = hd.PropagationSpeed
	hop.state.processing = hd.ProcessingDelay
	hop.state.power = powerClassFromStr(hd.PowerClass)
	hop.state.load = hd.Load
	hop.state.queuing = hd.QueuingDelay
	if hd.Utilization > 0.0 {
		hop.state.useUtil = true
		hop.state.util = hd.Utilization
	}
	return hop
}

// matchParam is used to determine whether a run-time parameter description
// should be applied to the hop.  Its definition here helps Hop satisfy the
// paramObj interface.  The hop attributes that can be tested are its name,
// its group memberships, and the medium of its link.
func (hop *Hop) matchParam(attrbName, attrbValue string) bool {
	switch attrbName {
	case "name":
		return hop.name == attrbValue
	case "group":
		return slices.Contains(hop.groups, attrbValue)
	case "medium":
		return mediumFromStr(attrbValue) == hop.state.media
	}

	// an error really, as we should match only the names given in the switch statement above
	return false
}

// setParam assigns the parameter named in input with the value given in the
// input.  N.B. the valueStruct has fields for integer, float, and string
// values; pick the appropriate one.  Helps Hop satisfy the paramObj interface.
func (hop *Hop) setParam(paramType string, value valueStruct) {
	switch paramType {
	case "bandwidth":
		// units of bandwidth are bits/sec
		hop.state.bandwidth = value.floatValue
	case "distance":
		// units of distance are meters
		hop.state.distance = value.floatValue
	case "medium":
		hop.state.media = mediumFromStr(value.stringValue)
	case "propspeed":
		// units of propagation speed are meters/sec
		hop.state.propSpeed = value.floatValue
	case "processing":
		// units of processing delay are msec
		hop.state.processing = value.floatValue
	case "power":
		hop.state.power = powerClassFromStr(value.stringValue)
	case "load":
		hop.state.load = value.floatValue
	case "queuing":
		// units of queuing delay are msec
		hop.state.queuing = value.floatValue
		hop.state.useUtil = false
	case "utilization":
		hop.state.util = value.floatValue
		hop.state.useUtil = true
	case "trace":
		hop.state.trace = value.boolValue
	}
}

// paramObjName helps Hop satisfy the paramObj interface, returns the hop name
func (hop *Hop) paramObjName() string {
	return hop.name
}

// transmissionMsec returns the time for a packet of the given size (bits)
// to be serialized onto this hop's link
func (hop *Hop) transmissionMsec(bits float64) float64 {
	return TransmissionDelay(bits, hop.state.bandwidth)
}

// propSpeedMtrsPerSec selects the propagation speed for the hop: an
// explicitly configured speed wins, else the medium lookup, else a default
func (hop *Hop) propSpeedMtrsPerSec() float64 {
	if hop.state.propSpeed > 0.0 {
		return hop.state.propSpeed
	}
	return mediumSpeed(hop.state.media)
}

// propagationMsec returns the time for the leading bit to cover the hop's distance
func (hop *Hop) propagationMsec() float64 {
	return PropagationDelay(hop.state.distance, hop.propSpeedMtrsPerSec())
}

// journeyPropagationMsec is the propagation variant used when reporting a
// packet's end-to-end journey.  Satellite hops include the fixed bounce
// through the geostationary relay that the straight distance term misses.
func (hop *Hop) journeyPropagationMsec() float64 {
	delay := hop.propagationMsec()
	if hop.state.media == mediumSatellite {
		delay += geoSatRTTMsec
	}
	return delay
}

// processingMsec returns the device handling time at the downstream end of the hop
func (hop *Hop) processingMsec() float64 {
	return ProcessingDelay(hop.state.processing, hop.state.power, hop.state.load)
}

// entryQueuingMsec returns the static queuing delay charged when a packet
// enters this hop: an explicit configured delay if one was given, else a
// delay derived from the link utilization, else zero.  Callers skip this
// for hop 0, which has no upstream link to wait behind.
func (hop *Hop) entryQueuingMsec() float64 {
	if hop.state.useUtil {
		return QueuingDelay(hop.state.util)
	}
	return hop.state.queuing
}
