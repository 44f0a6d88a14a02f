package latsim

import (
	"encoding/json"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"strconv"

	"github.com/iti/evt/vrtime"
)

type TraceRecordType int

const (
	PcktType TraceRecordType = iota
	SnapshotType
)

var trtToStr map[TraceRecordType]string = map[TraceRecordType]string{PcktType: "packet", SnapshotType: "snapshot"}

type TraceInst struct {
	TraceTime string
	TraceType string
	TraceStr  string
}

// NameType is an entry in a dictionary created for a trace
// that maps object id numbers to a (name,type) pair
type NameType struct {
	Name string
	Type string
}

// TraceManager gathers information about a scenario and an execution of
// that scenario for post-run analysis
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// text name associated with each objID
	NameByID map[int]NameType `json:"namebyid" yaml:"namebyid"`

	// all trace records for this experiment, indexed by packet id
	Traces map[int][]TraceInst `json:"traces" yaml:"traces"`
}

// CreateTraceManager is a constructor.  It saves the name of the experiment
// and a flag indicating whether the trace manager is active.  By testing this
// flag we can inhibit the activity of gathering a trace when we don't want it,
// while embedding calls to its methods everywhere we need them when it is
func CreateTraceManager(ExpName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = ExpName
	tm.NameByID = make(map[int]NameType)
	tm.Traces = make(map[int][]TraceInst)
	return tm
}

// Active tells the caller whether the Trace Manager is actively being used
func (tm *TraceManager) Active() bool {
	return tm.InUse
}

// AddTrace creates a record of the trace using its calling arguments, and stores it
func (tm *TraceManager) AddTrace(vrt vrtime.Time, pcktID int, trace TraceInst) {

	// return if we aren't using the trace manager
	if !tm.InUse {
		return
	}

	_, present := tm.Traces[pcktID]
	if !present {
		tm.Traces[pcktID] = make([]TraceInst, 0)
	}
	tm.Traces[pcktID] = append(tm.Traces[pcktID], trace)
}

// AddName is used to add an element to the id -> (name,type) dictionary for the trace file
func (tm *TraceManager) AddName(id int, name string, objDesc string) {
	if tm.InUse {
		_, present := tm.NameByID[id]
		if present {
			panic("duplicated id in AddName")
		}
		tm.NameByID[id] = NameType{Name: name, Type: objDesc}
	}
}

// WriteToFile stores the Traces struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (tm *TraceManager) WriteToFile(filename string) bool {
	if !tm.InUse {
		return false
	}
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*tm)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*tm, "", "\t")
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
	return true
}

// PcktTrace saves information about a packet's phase at some point in the
// simulation, saved for post-run analysis
type PcktTrace struct {
	Time     float64 // time in float64
	Ticks    int64   // ticks variable of time
	Priority int64   // priority field of time-stamp
	PcktID   int     // packet the record belongs to
	Hop      int     // hop index the packet occupied
	Phase    string  // phase the packet occupied
	Progress float64 // progress within the phase
	Op       string  // "send", "phase", "deliver"
}

func (pt *PcktTrace) TraceType() TraceRecordType {
	return PcktType
}

func (pt *PcktTrace) Serialize() string {
	var bytes []byte
	var merr error

	bytes, merr = yaml.Marshal(*pt)

	if merr != nil {
		panic(merr)
	}
	return string(bytes[:])
}

// AddPcktTrace creates a record of a packet's phase using its calling
// arguments, and stores it
func AddPcktTrace(tm *TraceManager, vrt vrtime.Time, pckt *Packet, op string) {
	if !tm.InUse {
		return
	}
	pt := new(PcktTrace)
	pt.Time = vrt.Seconds()
	pt.Ticks = vrt.Ticks()
	pt.Priority = vrt.Pri()
	pt.PcktID = pckt.ID
	pt.Hop = pckt.CurrentHop
	pt.Phase = PhaseToStr(pckt.CurrentPhase)
	pt.Progress = pckt.Progress
	pt.Op = op

	ptStr := pt.Serialize()
	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)

	trcInst := TraceInst{TraceTime: traceTime, TraceType: trtToStr[PcktType], TraceStr: ptStr}
	tm.AddTrace(vrt, pckt.ID, trcInst)
}
