// Package latsim implements the timing and queueing core of a multi-hop
// packet latency animation.  Given an absolute simulation time it computes,
// for every in-flight packet, the lifecycle phase the packet occupies
// (waiting, queuing, transmitting, propagating, processing, delivered),
// the packet's progress within that phase, and the occupancy of each hop's
// transmission server and FIFO backlog.  Rendering, UI wiring, and problem
// content are external collaborators that consume the state snapshots this
// package emits.
package latsim

import (
	"fmt"
	"strings"
)

// utility function for generating unique integer ids on demand
var NumIds int = 0

// nxtID creates an id for objects created within the latsim module that is
// unique among those objects
func nxtID() int {
	NumIds += 1
	return NumIds
}

// global variables for finding things given an id, or a name
var hopByID map[int]*Hop
var hopByName map[string]*Hop

// paramObjByName holds the same hops viewed through the paramObj
// interface; run-time parameter application resolves its targets here
var paramObjByName map[string]paramObj

// initLookupMaps (re)initializes the package lookup maps.  Called at the
// start of every scenario build so that repeated builds in one process
// don't see stale entries.
func initLookupMaps() {
	hopByID = make(map[int]*Hop)
	hopByName = make(map[string]*Hop)
	paramObjByName = make(map[string]paramObj)
}

// addHopLookup puts a new entry in the hopByID and hopByName maps,
// complaining if the entry already exists
func addHopLookup(hop *Hop) {
	_, present := hopByID[hop.number]
	if present {
		panic(fmt.Sprintf("index %d over-used in hopByID", hop.number))
	}
	_, present = hopByName[hop.name]
	if present {
		panic(fmt.Sprintf("name %s over-used in hopByName", hop.name))
	}
	hopByID[hop.number] = hop
	hopByName[hop.name] = hop
	paramObjByName[hop.name] = hop
}

// ReportErrs combines a list of errors into a single error whose message
// joins the individual messages, returning nil when no actual errors exist
func ReportErrs(errs []error) error {
	err_msg := make([]string, 0)
	for _, err := range errs {
		if err != nil {
			err_msg = append(err_msg, err.Error())
		}
	}
	if len(err_msg) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(err_msg, "\n"))
}
