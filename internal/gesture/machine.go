// Package gesture turns press, release and tap events on the firework
// control into bursts, sounds and the hidden unlock sequence.
//
// Holding the control fills a progress ring and rains small bursts; holding
// it for the long-press delay unlocks a double tap, which reveals the code
// entry. All timers run on a timer.Scheduler owned by the render loop, so
// callbacks never race the input handlers.
package gesture

import (
	"log/slog"
	"time"

	"github.com/iburimskiy/fireworks/internal/config"
	"github.com/iburimskiy/fireworks/internal/synth"
	"github.com/iburimskiy/fireworks/internal/timer"
)

// State is the press state of the control.
type State int

const (
	Idle State = iota
	Pressing
	LongPressReached
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressing:
		return "pressing"
	case LongPressReached:
		return "long-press"
	default:
		return "unknown"
	}
}

// Effects receives everything the machine triggers.
type Effects interface {
	// EnsureAudio prepares the audio output from within a user gesture.
	EnsureAudio()
	// SpawnInBand spawns a burst at a random point of the upper-middle band.
	SpawnInBand(rain bool)
	Play(sound synth.Sound)
	Vibrate(d time.Duration)
	RevealCodeEntry()
}

// Snapshot is the machine's externally visible state.
type Snapshot struct {
	State    State
	Progress float64
	Flash    float64
	Unlocked bool
}

// Machine is the press-duration state machine. It is not safe for
// concurrent use.
type Machine struct {
	sched *timer.Scheduler
	fx    Effects
	log   *slog.Logger

	state    State
	progress float64
	flash    float64
	unlocked bool
	lastTap  time.Time
	gen      uint64
	closed   bool

	progressTick timer.Handle
	rainTick     timer.Handle
	longPress    timer.Handle
	delayed      []timer.Handle
}

// New returns an idle machine.
func New(sched *timer.Scheduler, fx Effects, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{sched: sched, fx: fx, log: log.With("component", "gesture")}
}

// PressStart begins a press: the progress ticker, the rain ticker and the
// long-press timer start. A press while already pressing is ignored.
func (m *Machine) PressStart() {
	if m.closed || m.state != Idle {
		return
	}
	m.gen++
	gen := m.gen
	m.state = Pressing
	m.progress, m.flash = 0, 0
	m.fx.EnsureAudio()

	m.progressTick = m.sched.Every(config.ProgressInterval, func(time.Time) {
		if m.stale(gen) {
			return
		}
		m.progress = min(config.ProgressMax, m.progress+config.ProgressStep)
		m.flash = min(config.FlashMax, m.flash+config.FlashStep)
		if m.progress >= config.ProgressMax {
			m.progressTick.Cancel()
		}
	})
	m.rainTick = m.sched.EveryLatest(config.RainInterval, func(time.Time) {
		if m.stale(gen) {
			return
		}
		// At most one burst per frame.
		m.fx.SpawnInBand(true)
		m.fx.Play(synth.RapidBurst)
	})
	m.longPress = m.sched.After(config.LongPressDelay, func(time.Time) {
		if m.stale(gen) {
			return
		}
		m.state = LongPressReached
		m.unlocked = true
		m.fx.Vibrate(config.HapticDuration)
		m.log.Debug("long press reached, double tap unlocked")
	})
	m.log.Debug("press started")
}

// PressEnd ends the press on release or when the pointer leaves the
// control. The unlock flag survives.
func (m *Machine) PressEnd() {
	if m.state == Idle {
		return
	}
	m.progressTick.Cancel()
	m.rainTick.Cancel()
	m.longPress.Cancel()
	m.progress, m.flash = 0, 0
	m.state = Idle
	m.log.Debug("press ended")
}

// Release ends the press and, when the pointer is still over the control
// and the long press was not reached, counts it as a tap.
func (m *Machine) Release(inside bool) {
	if m.state == Idle {
		return
	}
	reached := m.state == LongPressReached
	m.PressEnd()
	if inside && !reached {
		m.Tap()
	}
}

// Tap fires one full-size burst with its launch and explosion sounds. A
// second tap within the double-tap window while unlocked schedules the code
// entry reveal and consumes the unlock.
func (m *Machine) Tap() {
	if m.closed {
		return
	}
	now := m.sched.Now()
	m.fx.EnsureAudio()
	m.fx.SpawnInBand(false)
	m.fx.Play(synth.Launch)
	m.later(config.ExplosionDelay, func() { m.fx.Play(synth.Explosion) })

	elapsed := now.Sub(m.lastTap)
	if m.unlocked && elapsed > 0 && elapsed < config.DoubleTapWindow {
		m.unlocked = false
		m.later(config.RevealDelay, m.fx.RevealCodeEntry)
		m.log.Info("double tap accepted, revealing code entry")
	}
	m.lastTap = now
}

// later runs fn after d unless the machine is torn down first.
func (m *Machine) later(d time.Duration, fn func()) {
	live := m.delayed[:0]
	for _, h := range m.delayed {
		if h.Active() {
			live = append(live, h)
		}
	}
	m.delayed = append(live, m.sched.After(d, func(time.Time) {
		if !m.closed {
			fn()
		}
	}))
}

// stale reports whether a timer from press gen fired after that press ended.
func (m *Machine) stale(gen uint64) bool {
	return m.closed || gen != m.gen || m.state == Idle
}

// Teardown cancels every timer, including delayed sounds and reveals.
// The machine ignores all input afterwards.
func (m *Machine) Teardown() {
	if m.closed {
		return
	}
	m.PressEnd()
	for _, h := range m.delayed {
		h.Cancel()
	}
	m.delayed = nil
	m.closed = true
}

// Snapshot returns the current outputs.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{State: m.state, Progress: m.progress, Flash: m.flash, Unlocked: m.unlocked}
}

func (m *Machine) State() State            { return m.state }
func (m *Machine) Progress() float64       { return m.progress }
func (m *Machine) FlashIntensity() float64 { return m.flash }
func (m *Machine) Unlocked() bool          { return m.unlocked }
