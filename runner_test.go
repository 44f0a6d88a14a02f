package latsim

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/iti/evt/vrtime"
)

func TestRunnerPlaysToHorizon(t *testing.T) {
	scn := buildTestScenario(t, "runner", []HopDesc{oneMsecHop("h0")}, 125, 5.0)
	scn.send = SendDesc{Mode: "interval", Interval: 2.0}

	eng := CreateEngine(scn)
	sched := CreateScheduler(scn.send, "runner-test")
	clk := CreatePlaybackClock(eng, sched)
	tm := CreateTraceManager("runner-test", true)

	rnr := CreateRunner(clk, 0.5, tm)
	rnr.Run()

	if !clk.Complete() {
		t.Fatalf("runner should drive the clock to its complete transition")
	}
	if clk.CurrentTime() != 5.0 {
		t.Errorf("clock after run: got %v, want the 5.0 horizon", clk.CurrentTime())
	}

	// the interval rule fires at 0, 2 and 4, and every journey is a 1 msec
	// transmission that finishes before the horizon
	if len(eng.Packets()) != 3 {
		t.Fatalf("packet count after run: got %d, want 3", len(eng.Packets()))
	}
	for _, pckt := range eng.Packets() {
		if !pckt.delivered() {
			t.Errorf("packet sent at %v not delivered by the horizon", pckt.SendTime)
		}
	}
}

func TestRunnerTracesPhaseChanges(t *testing.T) {
	scn := buildTestScenario(t, "runner-trace", []HopDesc{oneMsecHop("h0")}, 125, 4.0)
	scn.send = SendDesc{Mode: "manual"}

	eng := CreateEngine(scn)
	sched := CreateScheduler(scn.send, "runner-trace-test")
	clk := CreatePlaybackClock(eng, sched)
	tm := CreateTraceManager("runner-trace-test", true)

	pckt := eng.Inject(1.0)
	rnr := CreateRunner(clk, 0.5, tm)
	rnr.Run()

	records := tm.Traces[pckt.ID]
	if len(records) == 0 {
		t.Fatalf("no trace records for the traced packet")
	}

	// the record stream opens with the send and closes with the delivery
	first := records[0]
	last := records[len(records)-1]
	if !strings.Contains(first.TraceStr, "op: send") {
		t.Errorf("first trace record should be the send, got %q", first.TraceStr)
	}
	if !strings.Contains(last.TraceStr, "op: deliver") {
		t.Errorf("last trace record should be the delivery, got %q", last.TraceStr)
	}
	if !strings.Contains(last.TraceStr, "phase: delivered") {
		t.Errorf("delivery record should carry the delivered phase, got %q", last.TraceStr)
	}

	// the trace dictionary knows the scenario's hop
	if len(tm.NameByID) != 1 {
		t.Errorf("trace name dictionary size: got %d, want 1", len(tm.NameByID))
	}

	filename := filepath.Join(t.TempDir(), "trace.yaml")
	if !tm.WriteToFile(filename) {
		t.Errorf("active trace manager should write its file")
	}
}

func TestInactiveTraceManagerRecordsNothing(t *testing.T) {
	tm := CreateTraceManager("inactive", false)
	if tm.Active() {
		t.Fatalf("trace manager should report inactive")
	}

	pckt := createPacket(0.0, 125)
	AddPcktTrace(tm, vrtime.SecondsToTime(0.001), pckt, "send")
	if len(tm.Traces) != 0 {
		t.Errorf("inactive trace manager stored a record")
	}
	tm.AddName(1, "h0", "hop")
	if len(tm.NameByID) != 0 {
		t.Errorf("inactive trace manager stored a name")
	}
	if tm.WriteToFile(filepath.Join(t.TempDir(), "trace.yaml")) {
		t.Errorf("inactive trace manager should refuse to write")
	}
}
