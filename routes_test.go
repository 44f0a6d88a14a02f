package latsim

import (
	"path/filepath"
	"strings"
	"testing"
)

// lineTopo is a four device chain with a shortcut, so the minimum hop
// route from A to D is uniquely A-B-D
func lineTopo() *TopoDesc {
	return &TopoDesc{
		Name: "line",
		Devices: []DevDesc{
			{Name: "A", PowerClass: "high"},
			{Name: "B", PowerClass: "high", ProcessingDelay: 0.5},
			{Name: "C", PowerClass: "low", ProcessingDelay: 2.0},
			{Name: "D", PowerClass: "medium", ProcessingDelay: 1.0, Load: 0.25},
		},
		Links: []LinkDesc{
			{Name: "ab", SrcDev: "A", DstDev: "B", Bandwidth: 1e6, Distance: 1e4, Medium: "fiber"},
			{Name: "bc", SrcDev: "B", DstDev: "C", Bandwidth: 1e6, Medium: "fiber"},
			{Name: "cd", SrcDev: "C", DstDev: "D", Bandwidth: 1e6, Medium: "fiber"},
			{Name: "bd", SrcDev: "B", DstDev: "D", Bandwidth: 1e7, Distance: 5e4,
				Medium: "copper", Groups: []string{"shortcut"}, QueuingDelay: 1.5},
		},
		Src: "A",
		Dst: "D",
	}
}

func TestBuildScenarioFromTopo(t *testing.T) {
	sd, err := BuildScenarioFromTopo(lineTopo(), 125, 50.0, SendDesc{Mode: "manual"})
	if err != nil {
		t.Fatalf("topology build failed: %v", err)
	}

	if len(sd.Hops) != 2 {
		t.Fatalf("minimum hop route A->D: got %d hops, want 2", len(sd.Hops))
	}
	if sd.Hops[0].Name != "A->B" || sd.Hops[1].Name != "B->D" {
		t.Errorf("route hops: got %s, %s, want A->B, B->D", sd.Hops[0].Name, sd.Hops[1].Name)
	}

	// each hop carries the traversed link's parameters plus the processing
	// parameters of the device at its downstream end
	h0 := sd.Hops[0]
	if h0.Bandwidth != 1e6 || h0.Distance != 1e4 || h0.Medium != "fiber" {
		t.Errorf("hop A->B should carry link ab's parameters")
	}
	if h0.ProcessingDelay != 0.5 || h0.PowerClass != "high" {
		t.Errorf("hop A->B should carry device B's processing parameters")
	}

	h1 := sd.Hops[1]
	if h1.Bandwidth != 1e7 || h1.Medium != "copper" || h1.QueuingDelay != 1.5 {
		t.Errorf("hop B->D should carry link bd's parameters")
	}
	if h1.ProcessingDelay != 1.0 || h1.PowerClass != "medium" || h1.Load != 0.25 {
		t.Errorf("hop B->D should carry device D's processing parameters")
	}
	if len(h1.Groups) != 1 || h1.Groups[0] != "shortcut" {
		t.Errorf("hop B->D should inherit the link's groups")
	}

	// the routed description builds an ordinary runnable scenario
	scn, err := BuildScenario(sd, nil)
	if err != nil {
		t.Fatalf("scenario build from routed desc failed: %v", err)
	}
	if got := PathString(scn); got != "A->B,B->D" {
		t.Errorf("path display: got %q", got)
	}
}

func TestTopoErrors(t *testing.T) {
	// unknown journey endpoint
	td := lineTopo()
	td.Dst = "Z"
	_, err := BuildScenarioFromTopo(td, 125, 50.0, SendDesc{})
	if err == nil || !strings.Contains(err.Error(), "destination") {
		t.Errorf("unknown destination should error, got %v", err)
	}

	// a device with no links is unreachable
	td = lineTopo()
	td.Devices = append(td.Devices, DevDesc{Name: "E"})
	td.Dst = "E"
	_, err = BuildScenarioFromTopo(td, 125, 50.0, SendDesc{})
	if err == nil {
		t.Errorf("unreachable destination should error")
	}

	// duplicated device names are caught at load time
	td = lineTopo()
	td.Devices = append(td.Devices, DevDesc{Name: "A"})
	_, err = BuildScenarioFromTopo(td, 125, 50.0, SendDesc{})
	if err == nil || !strings.Contains(err.Error(), "over-used") {
		t.Errorf("duplicated device name should error, got %v", err)
	}

	// links naming unknown devices are caught at load time, and every
	// bad link is reported in one pass
	td = lineTopo()
	td.Links = append(td.Links,
		LinkDesc{Name: "zz", SrcDev: "A", DstDev: "Z"},
		LinkDesc{Name: "yy", SrcDev: "Q", DstDev: "B"})
	_, err = BuildScenarioFromTopo(td, 125, 50.0, SendDesc{})
	if err == nil {
		t.Fatalf("links to unknown devices should error")
	}
	if !strings.Contains(err.Error(), "zz") || !strings.Contains(err.Error(), "yy") {
		t.Errorf("error should mention every bad link, got %v", err)
	}
}

func TestTopoDescFileRoundTrip(t *testing.T) {
	td := lineTopo()
	filename := filepath.Join(t.TempDir(), "topo.json")
	if err := td.WriteToFile(filename); err != nil {
		t.Fatalf("topology write failed: %v", err)
	}

	back, err := ReadTopoCfg(filename, false, []byte{})
	if err != nil {
		t.Fatalf("topology read failed: %v", err)
	}
	if back.Name != td.Name || back.Src != td.Src || back.Dst != td.Dst {
		t.Errorf("topology header fields did not survive the round trip")
	}
	if len(back.Devices) != len(td.Devices) || len(back.Links) != len(td.Links) {
		t.Fatalf("device or link list did not survive the round trip")
	}
	if back.Devices[3].PowerClass != "medium" || back.Devices[3].Load != 0.25 {
		t.Errorf("device parameters did not survive the round trip")
	}
	if back.Links[3].Bandwidth != 1e7 || back.Links[3].QueuingDelay != 1.5 {
		t.Errorf("link parameters did not survive the round trip")
	}

	// the recovered topology routes the same journey
	sd, err := BuildScenarioFromTopo(back, 125, 50.0, SendDesc{Mode: "manual"})
	if err != nil {
		t.Fatalf("routing the recovered topology failed: %v", err)
	}
	if len(sd.Hops) != 2 || sd.Hops[0].Name != "A->B" || sd.Hops[1].Name != "B->D" {
		t.Errorf("recovered topology routed a different path")
	}
}
