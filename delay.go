package latsim

// delay.go holds the closed-form delay formulas applied to a single
// hop/packet pair.  All exported results are expressed in milliseconds;
// intermediate arithmetic uses seconds where the physics is naturally
// stated that way.  None of these functions keep state or mutate anything.

import (
	"math"
)

// propMedium is the base type for an enumerated type of propagation media
type propMedium int

const (
	mediumFiber propMedium = iota
	mediumCopper
	mediumWireless
	mediumSatellite
	unknownMedium
)

// mediumFromStr returns the propMedium corresponding to a string name for it
func mediumFromStr(media string) propMedium {
	switch media {
	case "Fiber", "fiber":
		return mediumFiber
	case "Copper", "copper":
		return mediumCopper
	case "Wireless", "wireless":
		return mediumWireless
	case "Satellite", "satellite":
		return mediumSatellite
	default:
		return unknownMedium
	}
}

// mediumToStr returns a string corresponding to an input propMedium
func mediumToStr(media propMedium) string {
	switch media {
	case mediumFiber:
		return "fiber"
	case mediumCopper:
		return "copper"
	case mediumWireless:
		return "wireless"
	case mediumSatellite:
		return "satellite"
	}
	return "unknown"
}

// signal speeds in meters/sec.  Guided media propagate at roughly
// two-thirds of c, free-space media at c.
const (
	guidedSpeed    = 2e8
	freeSpaceSpeed = 3e8
	defaultSpeed   = guidedSpeed
)

// geoSatRTTMsec is the fixed up-and-down time through a geostationary
// relay (2 x 35786 km at c), added by the journey propagation variant
// for satellite hops
const geoSatRTTMsec = 238.6

// queuing delay behavior at the extremes of utilization
const (
	unstableUtilization = 0.95
	idleUtilization     = 0.05
	maxQueuingMsec      = 5000.0
	floorQueuingMsec    = 0.1
)

// mediumSpeed returns the propagation speed for a medium, in meters/sec
func mediumSpeed(media propMedium) float64 {
	switch media {
	case mediumFiber, mediumCopper:
		return guidedSpeed
	case mediumWireless, mediumSatellite:
		return freeSpaceSpeed
	}
	return defaultSpeed
}

// TransmissionDelay returns the time (in msec) to serialize the given
// number of bits onto a link with the given bandwidth (in bits/sec).
// A zero or negative bandwidth contributes no delay rather than an error.
func TransmissionDelay(bits, bandwidth float64) float64 {
	if bandwidth <= 0.0 || bits <= 0.0 {
		return 0.0
	}
	return (bits / bandwidth) * 1e3
}

// PropagationDelay returns the time (in msec) for a signal to cover
// distance meters at speed meters/sec.  A zero or negative distance or
// speed contributes no delay.
func PropagationDelay(distance, speed float64) float64 {
	if distance <= 0.0 || speed <= 0.0 {
		return 0.0
	}
	return (distance / speed) * 1e3
}

// ProcessingDelay returns the device-side handling time (in msec) for a
// hop, scaling the configured base time by the device power class and by
// the instantaneous load on the device
func ProcessingDelay(baseMsec float64, power powerClass, load float64) float64 {
	if baseMsec <= 0.0 {
		return 0.0
	}
	if load < 0.0 {
		load = 0.0
	}
	return baseMsec * power.multiplier() * (1.0 + 2.0*load)
}

// QueuingDelay derives a queuing delay (in msec) from a link utilization
// in [0,1].  The curve (1/(1-u)^3)-1 approximates M/M/1-style blow-up near
// saturation without needing arrival or service rates.  At or beyond the
// unstable threshold the delay is pinned to the maximum; near-idle links
// get a small fixed floor.  The result is always capped so a pathological
// utilization cannot run away with the animation clock.
func QueuingDelay(utilization float64) float64 {
	if utilization >= unstableUtilization {
		return maxQueuingMsec
	}
	if utilization < idleUtilization {
		return floorQueuingMsec
	}
	delay := 1.0/math.Pow(1.0-utilization, 3.0) - 1.0
	return math.Min(delay, maxQueuingMsec)
}

// powerClass is the base type for an enumerated type of device power classes
type powerClass int

const (
	powerHigh powerClass = iota
	powerMedium
	powerLow
)

// multiplier maps a power class to its fixed processing-time multiplier
func (pc powerClass) multiplier() float64 {
	switch pc {
	case powerLow:
		return 3.0
	case powerMedium:
		return 1.5
	}
	return 1.0
}

// powerClassFromStr returns the powerClass corresponding to a string name for it
func powerClassFromStr(power string) powerClass {
	switch power {
	case "low", "Low":
		return powerLow
	case "medium", "Medium":
		return powerMedium
	default:
		return powerHigh
	}
}
