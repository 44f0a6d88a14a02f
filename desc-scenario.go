package latsim

// desc-scenario.go holds the serializable descriptions of a scenario: the
// ordered hop list (or a device/link topology from which one is routed),
// the packet workload, and the playback horizon.  These structs are
// completely pointer-free so that they serialize cleanly; run-time
// representations are built from them at model-load time.

import (
	"encoding/json"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path"
)

// A HopDesc struct holds a description of one hop on the scenario path.
// Omitted numeric fields mean the corresponding delay component is skipped.
type HopDesc struct {
	// name for the hop, unique within the scenario
	Name string `json:"name" yaml:"name"`

	// list of groups the hop may belong to, used in parameter matching
	Groups []string `json:"groups" yaml:"groups"`

	// link serialization rate in bits/sec
	Bandwidth float64 `json:"bandwidth" yaml:"bandwidth"`

	// physical length of the link in meters
	Distance float64 `json:"distance" yaml:"distance"`

	// propagation medium: "fiber", "copper", "wireless", "satellite"
	Medium string `json:"medium" yaml:"medium"`

	// explicit propagation speed in meters/sec; overrides the medium when positive
	PropagationSpeed float64 `json:"propagationspeed" yaml:"propagationspeed"`

	// base device handling time at the downstream device, in msec
	ProcessingDelay float64 `json:"processingdelay" yaml:"processingdelay"`

	// device power class: "low", "medium", "high"
	PowerClass string `json:"powerclass" yaml:"powerclass"`

	// instantaneous device load in [0,1]
	Load float64 `json:"load" yaml:"load"`

	// explicit entry queuing delay in msec
	QueuingDelay float64 `json:"queuingdelay" yaml:"queuingdelay"`

	// link utilization in [0,1] from which entry queuing is derived
	// when no explicit queuing delay is given
	Utilization float64 `json:"utilization" yaml:"utilization"`
}

// validate checks the hop description's numeric ranges at model-load time.
// Zero values mean a skipped delay component and are fine; negative rates
// and out-of-range fractions are configuration mistakes.
func (hd *HopDesc) validate() error {
	if hd.Bandwidth < 0.0 || hd.Distance < 0.0 || hd.PropagationSpeed < 0.0 ||
		hd.ProcessingDelay < 0.0 || hd.QueuingDelay < 0.0 {
		return fmt.Errorf("hop %s: negative rate or delay parameter", hd.Name)
	}
	if hd.Load < 0.0 || hd.Load > 1.0 {
		return fmt.Errorf("hop %s: load %v outside [0,1]", hd.Name, hd.Load)
	}
	if hd.Utilization < 0.0 || hd.Utilization > 1.0 {
		return fmt.Errorf("hop %s: utilization %v outside [0,1]", hd.Name, hd.Utilization)
	}
	return nil
}

// A SendDesc struct describes how packets are injected into the scenario
type SendDesc struct {
	// injection mode: "manual", "interval", or "burst"
	Mode string `json:"mode" yaml:"mode"`

	// simulated msec between sends, for interval and burst modes
	Interval float64 `json:"interval" yaml:"interval"`

	// number of packets injected per interval in burst mode
	BurstSize int `json:"burstsize" yaml:"burstsize"`

	// when true, interval gaps are jittered with an exponential draw
	Jitter bool `json:"jitter" yaml:"jitter"`
}

// A ScenarioDesc struct holds a complete serializable scenario description
type ScenarioDesc struct {
	// identifier for this scenario
	Name string `json:"name" yaml:"name"`

	// packet size in bytes
	PacketSize int `json:"packetsize" yaml:"packetsize"`

	// playback horizon in simulated msec
	MaxTime float64 `json:"maxtime" yaml:"maxtime"`

	// ordered list of hops on the path
	Hops []HopDesc `json:"hops" yaml:"hops"`

	// packet injection configuration
	Send SendDesc `json:"send" yaml:"send"`
}

// CreateScenarioDesc is an initialization constructor
func CreateScenarioDesc(name string) *ScenarioDesc {
	sd := new(ScenarioDesc)
	sd.Name = name
	sd.Hops = make([]HopDesc, 0)
	return sd
}

// AddHop appends a hop description to the scenario path
func (sd *ScenarioDesc) AddHop(hd HopDesc) {
	sd.Hops = append(sd.Hops, hd)
}

// WriteToFile stores the ScenarioDesc struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (sd *ScenarioDesc) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*sd)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*sd, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	f.Close()

	return werr
}

// ReadScenarioCfg deserializes a byte slice holding a representation of a
// ScenarioDesc struct.  If the input dict of bytes is empty, the file whose
// name is given is read to acquire them.  A deserialized representation is
// returned, or an error if one is generated from a file read or the
// deserialization.
func ReadScenarioCfg(filename string, useYAML bool, dict []byte) (*ScenarioDesc, error) {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := ScenarioDesc{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// A DevDesc struct describes a device in a topology-form scenario.  The
// device's processing parameters are attached to the hop whose link
// terminates at the device.
type DevDesc struct {
	Name            string  `json:"name" yaml:"name"`
	PowerClass      string  `json:"powerclass" yaml:"powerclass"`
	ProcessingDelay float64 `json:"processingdelay" yaml:"processingdelay"`
	Load            float64 `json:"load" yaml:"load"`
}

// A LinkDesc struct describes one bidirectional link in a topology-form
// scenario, carrying the hop parameters of the link itself
type LinkDesc struct {
	Name             string   `json:"name" yaml:"name"`
	Groups           []string `json:"groups" yaml:"groups"`
	SrcDev           string   `json:"srcdev" yaml:"srcdev"`
	DstDev           string   `json:"dstdev" yaml:"dstdev"`
	Bandwidth        float64  `json:"bandwidth" yaml:"bandwidth"`
	Distance         float64  `json:"distance" yaml:"distance"`
	Medium           string   `json:"medium" yaml:"medium"`
	PropagationSpeed float64  `json:"propagationspeed" yaml:"propagationspeed"`
	QueuingDelay     float64  `json:"queuingdelay" yaml:"queuingdelay"`
	Utilization      float64  `json:"utilization" yaml:"utilization"`
}

// A TopoDesc struct describes a scenario as a device/link topology plus the
// endpoints of the journey.  The ordered hop list is recovered by routing
// (see routes.go).
type TopoDesc struct {
	Name    string     `json:"name" yaml:"name"`
	Devices []DevDesc  `json:"devices" yaml:"devices"`
	Links   []LinkDesc `json:"links" yaml:"links"`
	Src     string     `json:"src" yaml:"src"`
	Dst     string     `json:"dst" yaml:"dst"`
}

// ReadTopoCfg deserializes a byte slice holding a representation of a
// TopoDesc struct, reading the named file when the byte slice is empty
func ReadTopoCfg(filename string, useYAML bool, dict []byte) (*TopoDesc, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := TopoDesc{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// WriteToFile stores the TopoDesc struct to the file whose name is given,
// selecting json or yaml serialization from the name's extension
func (td *TopoDesc) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*td)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*td, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	f.Close()

	return werr
}
