package latsim

// clock.go holds the playback clock: the component that owns the current
// simulation time, clamps seeks and speed changes, and triggers exactly one
// scheduler pass and one engine evaluation per time change.

// playback speed is clamped into this range rather than rejected
const (
	minPlaybackSpeed = 0.1
	maxPlaybackSpeed = 10.0
)

// The PlaybackClock advances or seeks simulated time over [0, maxTime] and
// drives the scheduler and engine on every change.  It is the single entry
// point UI collaborators use to control the simulation.
type PlaybackClock struct {
	engine *Engine
	sched  *Scheduler

	currentTime float64 // msec
	maxTime     float64 // msec
	playing     bool
	complete    bool
	speed       float64

	// OnUpdate fires with a fresh snapshot on every SetTime
	OnUpdate func(Snapshot)

	// OnComplete fires when playback reaches the horizon while playing
	OnComplete func()
}

// CreatePlaybackClock is a constructor.  The clock starts paused at t=0
// with unit playback speed.
func CreatePlaybackClock(eng *Engine, sched *Scheduler) *PlaybackClock {
	clk := new(PlaybackClock)
	clk.engine = eng
	clk.sched = sched
	clk.currentTime = 0.0
	clk.maxTime = eng.Scenario().MaxTime()
	clk.playing = false
	clk.complete = false
	clk.speed = 1.0
	return clk
}

// CurrentTime returns the clock's simulated time in msec
func (clk *PlaybackClock) CurrentTime() float64 {
	return clk.currentTime
}

// Playing reports whether the clock is advancing on Advance calls
func (clk *PlaybackClock) Playing() bool {
	return clk.playing
}

// Complete reports whether playback has reached the horizon
func (clk *PlaybackClock) Complete() bool {
	return clk.complete
}

// Speed returns the current playback speed multiplier
func (clk *PlaybackClock) Speed() float64 {
	return clk.speed
}

// Play starts (or resumes) playback.  Starting over from a completed run
// requires a Reset or a seek below the horizon first.
func (clk *PlaybackClock) Play() {
	if clk.currentTime >= clk.maxTime {
		return
	}
	clk.playing = true
}

// Pause stops playback; the host simply stops feeding Advance, and no
// in-flight computation needs aborting because every evaluation pass is
// atomic
func (clk *PlaybackClock) Pause() {
	clk.playing = false
}

// SetPlaybackSpeed sets the speed multiplier, clamping out-of-range
// requests rather than rejecting them
func (clk *PlaybackClock) SetPlaybackSpeed(speed float64) {
	if speed < minPlaybackSpeed {
		speed = minPlaybackSpeed
	}
	if speed > maxPlaybackSpeed {
		speed = maxPlaybackSpeed
	}
	clk.speed = speed
}

// SetSendMode passes an injection-rule change through to the scheduler
func (clk *PlaybackClock) SetSendMode(mode string, interval float64, burstSize int) {
	clk.sched.SetMode(mode, interval, burstSize)
}

// ManualSend injects one packet at the current time and re-evaluates, so
// the caller sees the packet in the very next snapshot
func (clk *PlaybackClock) ManualSend() {
	clk.sched.ManualSend(clk.engine, clk.currentTime)
	clk.SetTime(clk.currentTime)
}

// Advance moves the clock forward by a real-time delta (msec), scaled by
// the playback speed.  A paused clock ignores the call.
func (clk *PlaybackClock) Advance(realDeltaMsec float64) {
	if !clk.playing {
		return
	}
	clk.SetTime(clk.currentTime + realDeltaMsec*clk.speed)
}

// SetTime seeks the clock to simulated time t, clamped to [0, maxTime].
// The scheduler is given the chance to inject packets due by t, the engine
// evaluates every packet at t, and the snapshot goes to OnUpdate.  Hitting
// the horizon while playing is the complete transition and stops playback.
func (clk *PlaybackClock) SetTime(t float64) {
	if t < 0.0 {
		t = 0.0
	}
	if t > clk.maxTime {
		t = clk.maxTime
	}
	clk.currentTime = t

	clk.sched.Advance(clk.engine, t)
	snap := clk.engine.Evaluate(t)

	if clk.OnUpdate != nil {
		clk.OnUpdate(snap)
	}

	if t >= clk.maxTime && clk.playing {
		clk.playing = false
		clk.complete = true
		if clk.OnComplete != nil {
			clk.OnComplete()
		}
	}
}

// Reset clears all packets and all hop queues and returns the clock to t=0
func (clk *PlaybackClock) Reset() {
	clk.playing = false
	clk.complete = false
	clk.engine.Reset()
	clk.sched.Reset()
	clk.currentTime = 0.0
	clk.SetTime(0.0)
}
