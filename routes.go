package latsim

// routes.go recovers the ordered hop list of a scenario from a topology
// description.  The approach is to convert the device/link topology into
// the data structures used by a graph package with built-in path discovery.
// Weighting each edge by 1, a shortest path minimizes the number of hops,
// which is sort of what local routing like OSPF does.  The Dijkstra
// algorithm we call computes a tree of shortest paths from a named node, so
// the journey's path is the tree branch ending at the destination.

import (
	"fmt"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"math"
	"strconv"
	"strings"
)

type intPair struct {
	i, j int
}

// buildConnGraph returns a graph.Graph data structure built from a map of
// device ids to the lists of device ids they connect to
func buildConnGraph(edges map[int][]int) graph.Graph {
	connGraph := simple.NewWeightedUndirectedGraph(0, math.Inf(1))

	// transform the expression of edges in the input list to edges in the
	// graph module representation, every edge with weight 1
	for nodeID, edgeList := range edges {
		for _, nbrID := range edgeList {
			if nodeID == nbrID {
				continue
			}
			weightedEdge := simple.WeightedEdge{F: simple.Node(nodeID), T: simple.Node(nbrID), W: 1.0}
			connGraph.SetWeightedEdge(weightedEdge)
		}
	}
	return connGraph
}

// convertNodeSeq extracts the device ids from a sequence of graph nodes
// (e.g. like a path) and returns that list
func convertNodeSeq(nsQ []graph.Node) []int {
	rtn := []int{}
	for _, node := range nsQ {
		nodeID, _ := strconv.Atoi(fmt.Sprintf("%d", node))
		rtn = append(rtn, nodeID)
	}
	return rtn
}

// routeFrom returns the shortest path (as a sequence of device ids) from
// the named source to the named destination through the given edge map
func routeFrom(srcID int, edges map[int][]int, dstID int) []int {
	connGraph := buildConnGraph(edges)

	// let graph/path.DijkstraFrom compute the shortest path tree rooted in
	// the source, then read off the branch ending at the destination
	spTree := path.DijkstraFrom(simple.Node(srcID), connGraph)
	nodeSeq, _ := spTree.To(int64(dstID))

	return convertNodeSeq(nodeSeq)
}

// connectIds remembers the asserted communication linkage between devices
// with the given id numbers through modification of the input map tg
func connectIds(tg map[int][]int, id1, id2 int) {
	if id1 == id2 {
		return
	}
	tg[id1] = append(tg[id1], id2)
	tg[id2] = append(tg[id2], id1)
}

// BuildScenarioFromTopo converts a topology-form description into an
// ordinary ScenarioDesc: the journey from td.Src to td.Dst is routed with a
// minimum-hop shortest path, and each step becomes a HopDesc carrying the
// traversed link's parameters plus the processing parameters of the device
// at its downstream end.  An unreachable destination is an error; the
// caller is expected to catch that at configuration-load time.
func BuildScenarioFromTopo(td *TopoDesc, packetSize int, maxTime float64, send SendDesc) (*ScenarioDesc, error) {
	if td == nil {
		return nil, fmt.Errorf("empty topology description")
	}

	// assign local ids to devices and index them by name
	devIDByName := make(map[string]int)
	devByID := make(map[int]*DevDesc)
	for idx := range td.Devices {
		dev := &td.Devices[idx]
		_, present := devIDByName[dev.Name]
		if present {
			return nil, fmt.Errorf("device name %s over-used in topology %s", dev.Name, td.Name)
		}
		devID := len(devIDByName)
		devIDByName[dev.Name] = devID
		devByID[devID] = dev
	}

	srcID, present := devIDByName[td.Src]
	if !present {
		return nil, fmt.Errorf("unknown journey source %s in topology %s", td.Src, td.Name)
	}
	dstID, present := devIDByName[td.Dst]
	if !present {
		return nil, fmt.Errorf("unknown journey destination %s in topology %s", td.Dst, td.Name)
	}

	// build the edge map and remember which link joins each device pair.
	// Link mistakes are gathered across the whole list and reported together.
	topoGraph := make(map[int][]int)
	linkBetween := make(map[intPair]*LinkDesc)
	linkErrs := make([]error, 0)
	for idx := range td.Links {
		link := &td.Links[idx]
		id1, present1 := devIDByName[link.SrcDev]
		id2, present2 := devIDByName[link.DstDev]
		if !present1 || !present2 {
			linkErrs = append(linkErrs, fmt.Errorf("link %s references unknown device", link.Name))
			continue
		}
		connectIds(topoGraph, id1, id2)
		linkBetween[intPair{i: id1, j: id2}] = link
		linkBetween[intPair{i: id2, j: id1}] = link
	}
	err := ReportErrs(linkErrs)
	if err != nil {
		return nil, err
	}

	route := routeFrom(srcID, topoGraph, dstID)
	if len(route) < 2 && srcID != dstID {
		return nil, fmt.Errorf("unable to find a route %s -> %s", td.Src, td.Dst)
	}

	sd := CreateScenarioDesc(td.Name)
	sd.PacketSize = packetSize
	sd.MaxTime = maxTime
	sd.Send = send

	// every consecutive device pair on the route contributes one hop
	for idx := 1; idx < len(route); idx++ {
		link := linkBetween[intPair{i: route[idx-1], j: route[idx]}]
		dev := devByID[route[idx]]

		hd := HopDesc{
			Name:             fmt.Sprintf("%s->%s", devByID[route[idx-1]].Name, dev.Name),
			Groups:           link.Groups,
			Bandwidth:        link.Bandwidth,
			Distance:         link.Distance,
			Medium:           link.Medium,
			PropagationSpeed: link.PropagationSpeed,
			QueuingDelay:     link.QueuingDelay,
			Utilization:      link.Utilization,
			ProcessingDelay:  dev.ProcessingDelay,
			PowerClass:       dev.PowerClass,
			Load:             dev.Load,
		}
		sd.AddHop(hd)
	}

	return sd, nil
}

// PathString returns a display form of a scenario path, the hop names
// joined in order
func PathString(scn *Scenario) string {
	names := make([]string, 0, len(scn.hops))
	for _, hop := range scn.hops {
		names = append(names, hop.name)
	}
	return strings.Join(names, ",")
}
