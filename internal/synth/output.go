package synth

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is the audio context effect graphs are played on.
type Output interface {
	// Open creates the device. It is called at most once per Synth.
	Open(rate beep.SampleRate, buffer time.Duration) error
	// Play starts s; the output drops it once drained.
	Play(s beep.Streamer)
	SetPaused(paused bool)
	Paused() bool
	// Level reports the recent output RMS in [0, 1].
	Level() float64
	// Locked runs fn while the output is not streaming.
	Locked(fn func())
	Close() error
}

// SpeakerOutput plays through the beep speaker. Every graph is added to a
// single mixer, which removes graphs as they drain.
type SpeakerOutput struct {
	mixer *beep.Mixer
	ctrl  *beep.Ctrl
	tap   *levelTap
	open  bool
}

// NewSpeakerOutput returns an unopened speaker output.
func NewSpeakerOutput() *SpeakerOutput {
	return &SpeakerOutput{}
}

func (o *SpeakerOutput) Open(rate beep.SampleRate, buffer time.Duration) error {
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return err
	}
	o.mixer = &beep.Mixer{}
	o.tap = newLevelTap(o.mixer, levelRingSize)
	o.ctrl = &beep.Ctrl{Streamer: o.tap}
	o.open = true
	speaker.Play(o.ctrl)
	return nil
}

func (o *SpeakerOutput) Play(s beep.Streamer) {
	if !o.open {
		return
	}
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
}

func (o *SpeakerOutput) SetPaused(paused bool) {
	if !o.open {
		return
	}
	speaker.Lock()
	o.ctrl.Paused = paused
	speaker.Unlock()
}

func (o *SpeakerOutput) Paused() bool {
	if !o.open {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return o.ctrl.Paused
}

func (o *SpeakerOutput) Locked(fn func()) {
	speaker.Lock()
	defer speaker.Unlock()
	fn()
}

func (o *SpeakerOutput) Level() float64 {
	if !o.open {
		return 0
	}
	return o.tap.level()
}

func (o *SpeakerOutput) Close() error {
	if !o.open {
		return nil
	}
	o.open = false
	speaker.Lock()
	speaker.Clear()
	speaker.Unlock()
	speaker.Close()
	return nil
}

const (
	levelRingSize  = 4096
	levelWindow    = 2048
	levelSmoothing = 0.6
)

// levelTap wraps a beep.Streamer and records the last N samples into a ring
// buffer so the HUD can show how loud the output currently is.
type levelTap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	smoothed  float64
	mu        sync.Mutex
}

func newLevelTap(src beep.Streamer, ringSize int) *levelTap {
	return &levelTap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *levelTap) Stream(samples [][2]float64) (int, bool) {
	// The source is a beep.Mixer, which fills samples with silence when empty.
	n, ok := t.Source.Stream(samples)
	t.mu.Lock()
	for i := 0; i < n; i++ {
		t.buffer[t.nextIndex] = samples[i]
		t.nextIndex++
		if t.nextIndex >= len(t.buffer) {
			t.nextIndex = 0
		}
	}
	t.mu.Unlock()
	return n, ok
}

func (t *levelTap) Err() error { return t.Source.Err() }

// level returns the smoothed RMS of the most recent levelWindow samples.
func (t *levelTap) level() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := min(levelWindow, len(t.buffer))
	idx := t.nextIndex - 1
	var sumSquares float64
	for i := 0; i < n; i++ {
		if idx < 0 {
			idx = len(t.buffer) - 1
		}
		mono := (t.buffer[idx][0] + t.buffer[idx][1]) * 0.5
		sumSquares += mono * mono
		idx--
	}
	rms := math.Sqrt(sumSquares / float64(n))
	t.smoothed = levelSmoothing*t.smoothed + (1-levelSmoothing)*math.Min(1, rms)
	return t.smoothed
}
