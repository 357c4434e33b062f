// Package synth generates the firework sound effects procedurally.
//
// Every Play builds a new streamer graph from oscillators, noise buffers,
// filters and gain envelopes (see Build) and hands it to the Output, which
// mixes it with whatever is already playing and drops it once drained.
// Nothing is shared between graphs, so overlapping effects are independent.
package synth

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/faiface/beep"
)

// ErrUnavailable means the platform has no usable audio output. A Synth in
// this state silently ignores every play request.
var ErrUnavailable = errors.New("audio output unavailable")

// Options configures a Synth.
type Options struct {
	SampleRate     int
	Buffer         time.Duration
	Volume         float64
	Ambience       string
	AmbienceVolume float64
	Logger         *slog.Logger
	Rand           *rand.Rand
}

// Stats counts play requests.
type Stats struct {
	Played  uint64
	Skipped uint64
}

// Synth owns the lazily created audio output. It is used from the engine's
// update goroutine only.
type Synth struct {
	out  Output
	opts Options
	rate beep.SampleRate
	rng  *rand.Rand
	log  *slog.Logger

	opened      bool
	unavailable bool
	closed      bool

	amb       *ambience
	ambPaused bool

	stats Stats
}

// New returns a Synth that will open out on the first EnsureReady.
func New(out Output, opts Options) *Synth {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 50 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Synth{
		out:  out,
		opts: opts,
		rate: beep.SampleRate(opts.SampleRate),
		rng:  opts.Rand,
		log:  opts.Logger.With("component", "synth"),
	}
}

// SampleRate returns the output sample rate.
func (s *Synth) SampleRate() beep.SampleRate {
	return s.rate
}

// EnsureReady opens the output if it has not been opened yet and resumes it
// if it is paused. It is idempotent and cheap once the output is running.
func (s *Synth) EnsureReady() error {
	if s.closed || s.unavailable || s.out == nil {
		return ErrUnavailable
	}
	if !s.opened {
		if err := s.out.Open(s.rate, s.opts.Buffer); err != nil {
			s.unavailable = true
			s.log.Warn("audio disabled", "err", err)
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		s.opened = true
		s.log.Debug("audio output opened", "rate", int(s.rate), "buffer", s.opts.Buffer)
		s.startAmbience()
	}
	if s.out.Paused() {
		s.out.SetPaused(false)
	}
	return nil
}

// Play starts sound unless enabled is false or no output is available. It
// never blocks and never fails.
func (s *Synth) Play(sound Sound, enabled bool) {
	if !enabled {
		s.stats.Skipped++
		return
	}
	if err := s.EnsureReady(); err != nil {
		s.stats.Skipped++
		return
	}
	g := Build(sound, s.rate, s.rng)
	if g == nil {
		s.stats.Skipped++
		return
	}
	s.out.Play(newVolume(g, s.opts.Volume))
	s.stats.Played++
}

// Suspend pauses the output, for example while the window is unfocused.
// The next EnsureReady resumes it.
func (s *Synth) Suspend() {
	if s.opened && !s.closed {
		s.out.SetPaused(true)
	}
}

// SetAmbienceEnabled pauses or resumes the ambience loop.
func (s *Synth) SetAmbienceEnabled(enabled bool) {
	s.ambPaused = !enabled
	if s.amb == nil || !s.opened {
		return
	}
	s.out.Locked(func() { s.amb.ctrl.Paused = !enabled })
}

func (s *Synth) startAmbience() {
	if s.opts.Ambience == "" {
		return
	}
	amb, err := openAmbience(s.opts.Ambience, s.rate, s.opts.AmbienceVolume)
	if err != nil {
		s.log.Warn("ambience not loaded", "path", s.opts.Ambience, "err", err)
		return
	}
	amb.ctrl.Paused = s.ambPaused
	s.amb = amb
	s.out.Play(amb.out)
	s.log.Info("ambience loop started", "path", s.opts.Ambience)
}

// Level returns the recent output loudness in [0, 1].
func (s *Synth) Level() float64 {
	if !s.opened || s.closed {
		return 0
	}
	return s.out.Level()
}

// Stats returns play counters.
func (s *Synth) Stats() Stats {
	return s.stats
}

// Available reports whether play requests can produce sound.
func (s *Synth) Available() bool {
	return s.opened && !s.unavailable && !s.closed
}

// Close releases the output. Later calls are no-ops.
func (s *Synth) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.opened {
		return nil
	}
	err := s.out.Close()
	if s.amb != nil {
		s.amb.close()
		s.amb = nil
	}
	return err
}

func seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
