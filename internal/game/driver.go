package game

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/iburimskiy/fireworks/internal/field"
	"github.com/iburimskiy/fireworks/internal/gesture"
	"github.com/iburimskiy/fireworks/internal/synth"
	"github.com/iburimskiy/fireworks/internal/timer"
)

// ErrNoSurface is returned by Start when there is nothing to draw on.
var ErrNoSurface = errors.New("no drawing surface")

// Audio is the sound sink the driver triggers. *synth.Synth implements it.
type Audio interface {
	EnsureReady() error
	Play(sound synth.Sound, enabled bool)
	Suspend()
	SetAmbienceEnabled(enabled bool)
	Level() float64
	Stats() synth.Stats
	Close() error
}

// DriverOptions holds the driver's collaborators. Every field is optional.
type DriverOptions struct {
	Clock func() time.Time
	Rand  *rand.Rand
	// Vibrate pulses the device's haptics, if any.
	Vibrate func(d time.Duration)
	// Reveal opens the code entry.
	Reveal       func()
	SoundEnabled bool
	Logger       *slog.Logger
}

// Stats is a snapshot of the driver's workload, shown by the debug overlay.
type Stats struct {
	Bursts  int
	Sparks  int
	Pending int
	Audio   synth.Stats
}

// Driver owns the engine context: the particle field, the timer scheduler,
// the interaction machine and the audio sink. It advances and renders the
// field once per Tick. All methods must be called from one goroutine.
type Driver struct {
	field   *field.Field
	sched   *timer.Scheduler
	machine *gesture.Machine
	audio   Audio
	surface field.Surface
	opts    DriverOptions
	log     *slog.Logger

	width, height int
	soundEnabled  bool
	started       bool
	closed        bool
}

// NewDriver returns a driver for a width x height field. It draws nothing
// until Start.
func NewDriver(width, height int, audio Audio, opts DriverOptions) *Driver {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	var fieldOpts []field.Option
	if opts.Rand != nil {
		fieldOpts = append(fieldOpts, field.WithRand(opts.Rand))
	}
	d := &Driver{
		field:        field.New(width, height, fieldOpts...),
		sched:        timer.New(opts.Clock()),
		audio:        audio,
		opts:         opts,
		log:          opts.Logger.With("component", "driver"),
		width:        width,
		height:       height,
		soundEnabled: opts.SoundEnabled,
	}
	d.machine = gesture.New(d.sched, effects{d}, opts.Logger)
	if audio != nil {
		audio.SetAmbienceEnabled(opts.SoundEnabled)
	}
	return d
}

// Start seeds the ambient field and binds the surface every later Tick
// renders to. Without a surface the driver stays idle.
func (d *Driver) Start(surface field.Surface) error {
	if d.closed {
		return nil
	}
	if surface == nil {
		d.log.Error("driver not started", "err", ErrNoSurface)
		return ErrNoSurface
	}
	d.surface = surface
	if !d.started {
		d.field.Initialize(d.width, d.height)
		d.started = true
		d.log.Info("driver started", "width", d.width, "height", d.height)
	}
	return nil
}

// Tick fires due timers, advances the field one frame and renders it.
func (d *Driver) Tick(now time.Time) {
	if !d.started || d.closed {
		return
	}
	d.sched.Advance(now)
	d.field.Advance()
	d.field.Render(d.surface)
}

// Now returns the driver's frame clock reading.
func (d *Driver) Now() time.Time {
	return d.opts.Clock()
}

// Resize updates the field bounds. Particles keep their positions.
func (d *Driver) Resize(width, height int) {
	if d.closed || width <= 0 || height <= 0 {
		return
	}
	d.width, d.height = width, height
	d.field.Resize(width, height)
	d.log.Debug("resized", "width", width, "height", height)
}

// Close cancels all pending work and releases the audio output. Later
// calls to any method are no-ops.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.machine.Teardown()
	d.sched.CancelAll()
	d.closed = true
	d.surface = nil
	d.log.Info("driver closed")
	if d.audio != nil {
		return d.audio.Close()
	}
	return nil
}

// Machine returns the interaction state machine fed by the input layer.
func (d *Driver) Machine() *gesture.Machine {
	return d.machine
}

// Field returns the particle field.
func (d *Driver) Field() *field.Field {
	return d.field
}

// SoundEnabled reports the sound toggle.
func (d *Driver) SoundEnabled() bool {
	return d.soundEnabled
}

// ToggleSound flips the sound toggle. The toggle is a user gesture, so it
// also prepares the audio output.
func (d *Driver) ToggleSound() bool {
	if d.closed {
		return d.soundEnabled
	}
	d.soundEnabled = !d.soundEnabled
	if d.audio != nil {
		_ = d.audio.EnsureReady()
		d.audio.SetAmbienceEnabled(d.soundEnabled)
	}
	d.log.Info("sound toggled", "enabled", d.soundEnabled)
	return d.soundEnabled
}

// Suspend ends any press and pauses audio, for example on focus loss.
func (d *Driver) Suspend() {
	if d.closed {
		return
	}
	d.machine.PressEnd()
	if d.audio != nil {
		d.audio.Suspend()
	}
}

// Level returns the recent audio output loudness in [0, 1].
func (d *Driver) Level() float64 {
	if d.audio == nil || d.closed {
		return 0
	}
	return d.audio.Level()
}

// Stats returns the current workload.
func (d *Driver) Stats() Stats {
	s := Stats{
		Bursts:  d.field.LiveBursts(),
		Sparks:  d.field.LiveSparks(),
		Pending: d.sched.Pending(),
	}
	if d.audio != nil {
		s.Audio = d.audio.Stats()
	}
	return s
}

// effects adapts the driver to gesture.Effects.
type effects struct{ d *Driver }

func (e effects) EnsureAudio() {
	if e.d.audio != nil {
		_ = e.d.audio.EnsureReady()
	}
}

func (e effects) SpawnInBand(rain bool) {
	e.d.field.SpawnInBand(rain)
}

func (e effects) Play(sound synth.Sound) {
	if e.d.audio != nil {
		e.d.audio.Play(sound, e.d.soundEnabled)
	}
}

func (e effects) Vibrate(dur time.Duration) {
	if e.d.opts.Vibrate != nil {
		e.d.opts.Vibrate(dur)
	}
}

func (e effects) RevealCodeEntry() {
	if e.d.opts.Reveal != nil {
		e.d.opts.Reveal()
	} else {
		e.d.log.Info("code entry revealed")
	}
}
