package latsim

import (
	"math"
	"path/filepath"
	"testing"
)

func TestStringToValueStruct(t *testing.T) {
	vs := stringToValueStruct("42")
	if vs.intValue != 42 || vs.floatValue != 42.0 {
		t.Errorf("integer string should fill both int and float fields")
	}
	vs = stringToValueStruct("2.5e8")
	if vs.floatValue != 2.5e8 {
		t.Errorf("float string: got %v, want 2.5e8", vs.floatValue)
	}
	vs = stringToValueStruct("true")
	if !vs.boolValue {
		t.Errorf("bool string should set the bool field")
	}
	vs = stringToValueStruct("fiber")
	if vs.stringValue != "fiber" {
		t.Errorf("fallback string: got %q, want fiber", vs.stringValue)
	}
}

func TestHopMatchParam(t *testing.T) {
	hop := createHop(&HopDesc{Name: "h0", Groups: []string{"backbone", "west"}, Medium: "fiber"})

	if !hop.matchParam("name", "h0") || hop.matchParam("name", "h1") {
		t.Errorf("name matching failed")
	}
	if !hop.matchParam("group", "backbone") || hop.matchParam("group", "east") {
		t.Errorf("group matching failed")
	}
	if !hop.matchParam("medium", "fiber") || hop.matchParam("medium", "satellite") {
		t.Errorf("medium matching failed")
	}
	if hop.matchParam("nonsense", "x") {
		t.Errorf("unknown attribute must not match")
	}
}

func TestHopSetParam(t *testing.T) {
	hop := createHop(&HopDesc{Name: "h0", Utilization: 0.5})

	// utilization-derived entry queuing is in force from the description
	if got := hop.entryQueuingMsec(); math.Abs(got-7.0) > 1e-12 {
		t.Fatalf("utilization-derived queuing: got %v, want 7.0", got)
	}

	// an explicit queuing assignment displaces the utilization derivation
	hop.setParam("queuing", stringToValueStruct("3.5"))
	if got := hop.entryQueuingMsec(); got != 3.5 {
		t.Errorf("explicit queuing: got %v, want 3.5", got)
	}

	// and a utilization assignment switches the derivation back on
	hop.setParam("utilization", stringToValueStruct("0.5"))
	if got := hop.entryQueuingMsec(); math.Abs(got-7.0) > 1e-12 {
		t.Errorf("restored utilization queuing: got %v, want 7.0", got)
	}

	hop.setParam("bandwidth", stringToValueStruct("1000000"))
	if hop.transmissionMsec(1000.0) != 1.0 {
		t.Errorf("bandwidth assignment did not take")
	}
	hop.setParam("medium", stringToValueStruct("satellite"))
	if hop.propSpeedMtrsPerSec() != freeSpaceSpeed {
		t.Errorf("medium assignment did not take")
	}
	hop.setParam("propspeed", stringToValueStruct("2.5e8"))
	if hop.propSpeedMtrsPerSec() != 2.5e8 {
		t.Errorf("explicit propagation speed should override the medium")
	}
}

func TestReorderExpParams(t *testing.T) {
	named := ExpParameter{Attributes: []AttrbStruct{{AttrbName: "name", AttrbValue: "h1"}},
		Param: "bandwidth", Value: "2000000"}
	grouped := ExpParameter{Attributes: []AttrbStruct{{AttrbName: "group", AttrbValue: "backbone"}},
		Param: "distance", Value: "5000"}
	wild := ExpParameter{Attributes: []AttrbStruct{{AttrbName: "*", AttrbValue: ""}},
		Param: "bandwidth", Value: "1000000"}

	ordered := reorderExpParams([]ExpParameter{named, grouped, wild, named})

	// wildcard first, single-attribute next, named last, duplicate dropped
	if len(ordered) != 3 {
		t.Fatalf("reorder should drop the duplicate, got %d records", len(ordered))
	}
	if !ordered[0].Eq(&wild) || !ordered[1].Eq(&grouped) || !ordered[2].Eq(&named) {
		t.Errorf("reorder should run most-general-first")
	}
}

func TestApplyExpCfg(t *testing.T) {
	// parameter application resolves its targets through the lookup maps,
	// so the hops must be registered the way a scenario build registers them
	initLookupMaps()
	h0 := createHop(&HopDesc{Name: "h0", Groups: []string{"backbone"}})
	h1 := createHop(&HopDesc{Name: "h1"})
	addHopLookup(h0)
	addHopLookup(h1)

	excg := CreateExpCfg("apply-test")
	// most general first is the application order, not the declaration order
	excg.AddParameter([]AttrbStruct{{AttrbName: "name", AttrbValue: "h1"}}, "bandwidth", "2000000")
	excg.AddParameter([]AttrbStruct{{AttrbName: "*", AttrbValue: ""}}, "bandwidth", "1000000")
	excg.AddParameter([]AttrbStruct{{AttrbName: "group", AttrbValue: "backbone"}}, "distance", "5000")

	applyExpCfg(excg)

	if h0.state.bandwidth != 1000000.0 {
		t.Errorf("hop h0 bandwidth: got %v, want the wildcard value", h0.state.bandwidth)
	}
	if h1.state.bandwidth != 2000000.0 {
		t.Errorf("hop h1 bandwidth: got %v, want the name-specific value", h1.state.bandwidth)
	}
	if h0.state.distance != 5000.0 || h1.state.distance != 0.0 {
		t.Errorf("group-scoped distance should touch only the member hop")
	}

	// a record naming an unregistered hop applies to nothing
	excg2 := CreateExpCfg("no-target")
	excg2.AddParameter([]AttrbStruct{{AttrbName: "name", AttrbValue: "h9"}}, "bandwidth", "5")
	applyExpCfg(excg2)
	if h0.state.bandwidth != 1000000.0 || h1.state.bandwidth != 2000000.0 {
		t.Errorf("record for an unknown name must not touch registered hops")
	}
}

func TestScenarioDescFileRoundTrip(t *testing.T) {
	sd := CreateScenarioDesc("round-trip")
	sd.PacketSize = 1500
	sd.MaxTime = 50.0
	sd.Send = SendDesc{Mode: "interval", Interval: 5.0}
	sd.AddHop(HopDesc{Name: "h0", Bandwidth: 1e6, Medium: "fiber", Distance: 1e4})

	filename := filepath.Join(t.TempDir(), "scenario.yaml")
	err := sd.WriteToFile(filename)
	if err != nil {
		t.Fatalf("scenario write failed: %v", err)
	}

	back, err := ReadScenarioCfg(filename, true, []byte{})
	if err != nil {
		t.Fatalf("scenario read failed: %v", err)
	}
	if back.Name != sd.Name || back.PacketSize != sd.PacketSize || back.MaxTime != sd.MaxTime {
		t.Errorf("scenario header fields did not survive the round trip")
	}
	if len(back.Hops) != 1 || back.Hops[0].Bandwidth != 1e6 || back.Hops[0].Medium != "fiber" {
		t.Errorf("hop description did not survive the round trip")
	}
	if back.Send.Mode != "interval" || back.Send.Interval != 5.0 {
		t.Errorf("send description did not survive the round trip")
	}

	// the recovered description builds a working scenario
	scn, err := BuildScenario(back, nil)
	if err != nil {
		t.Fatalf("scenario build from recovered desc failed: %v", err)
	}
	if scn.NumHops() != 1 {
		t.Errorf("recovered scenario hop count: got %d, want 1", scn.NumHops())
	}
}

func TestReadExpCfgFromBytes(t *testing.T) {
	cfgYAML := []byte(`
name: byte-cfg
parameters:
  - attributes:
      - attrbname: "*"
        attrbvalue: ""
    param: bandwidth
    value: "1000000"
`)
	excg, err := ReadExpCfg("", true, cfgYAML)
	if err != nil {
		t.Fatalf("cfg read failed: %v", err)
	}
	if excg.Name != "byte-cfg" || len(excg.Parameters) != 1 {
		t.Fatalf("cfg contents wrong after read")
	}
	if excg.Parameters[0].Param != "bandwidth" || excg.Parameters[0].Value != "1000000" {
		t.Errorf("parameter record wrong after read")
	}
}
