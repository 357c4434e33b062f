package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	WindowWidth  = 960
	WindowHeight = 640

	// Ambient field
	AmbientCount      = 50
	FlowerProbability = 0.2

	// Bursts
	BurstParticles = 50
	RainParticles  = 20
	SparkGravity   = 0.05
	SparkDamping   = 0.96
	SparkRadius    = 2

	// Press control
	ButtonRadius     = 40
	ButtonRingRadius = 46
	ButtonMarginY    = 110

	// Interaction timing
	ProgressInterval = 45 * time.Millisecond
	ProgressStep     = 1.5
	ProgressMax      = 100
	FlashStep        = 0.01
	FlashMax         = 0.8
	RainInterval     = 120 * time.Millisecond
	LongPressDelay   = 3000 * time.Millisecond
	ExplosionDelay   = 200 * time.Millisecond
	RevealDelay      = 300 * time.Millisecond
	DoubleTapWindow  = 500 * time.Millisecond
	HapticDuration   = 200 * time.Millisecond

	// Spawn band, as fractions of the field height
	BandTop    = 0.2
	BandHeight = 0.4

	// Audio
	DefaultSampleRate  = 44100
	DefaultAudioBuffer = 50 * time.Millisecond
)

// Config is the runtime configuration assembled from command-line flags.
type Config struct {
	Width      int
	Height     int
	Fullscreen bool
	VSyncTicks bool

	SoundEnabled   bool
	Volume         float64
	SampleRate     int
	AudioBuffer    time.Duration
	Ambience       string
	AmbienceVolume float64

	UnlockCode string

	Debug    bool
	LogLevel slog.Level
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Width:          WindowWidth,
		Height:         WindowHeight,
		VSyncTicks:     true,
		SoundEnabled:   true,
		Volume:         1,
		SampleRate:     DefaultSampleRate,
		AudioBuffer:    DefaultAudioBuffer,
		AmbienceVolume: 0.35,
		UnlockCode:     "3479",
		LogLevel:       slog.LevelInfo,
	}
}

// Parse builds a Config from args (without the program name).
func Parse(name string, args []string) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.IntVar(&cfg.Width, "width", cfg.Width, "initial window width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "initial window height in pixels")
	fs.BoolVar(&cfg.Fullscreen, "fullscreen", cfg.Fullscreen, "start in fullscreen mode")
	fs.BoolVar(&cfg.VSyncTicks, "vsync-ticks", cfg.VSyncTicks, "advance the simulation once per display refresh instead of at a fixed 60 TPS")
	fs.BoolVar(&cfg.SoundEnabled, "sound", cfg.SoundEnabled, "start with sound effects enabled")
	fs.Float64Var(&cfg.Volume, "volume", cfg.Volume, "master volume for sound effects (0-1)")
	fs.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "audio output sample rate in Hz")
	fs.DurationVar(&cfg.AudioBuffer, "audio-buffer", cfg.AudioBuffer, "speaker buffer length")
	fs.StringVar(&cfg.Ambience, "ambience", cfg.Ambience, "optional wav/mp3/flac file looped under the effects")
	fs.Float64Var(&cfg.AmbienceVolume, "ambience-volume", cfg.AmbienceVolume, "volume of the ambience loop (0-1)")
	fs.StringVar(&cfg.UnlockCode, "unlock-code", cfg.UnlockCode, "code accepted by the code entry dialog")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "show FPS and particle counts overlay")
	level := fs.String("log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToLower(*level))); err != nil {
		return Config{}, fmt.Errorf("log-level %q: %w", *level, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Volume < 0 || c.Volume > 1:
		return fmt.Errorf("%w: volume %.2f outside 0-1", ErrInvalid, c.Volume)
	case c.AmbienceVolume < 0 || c.AmbienceVolume > 1:
		return fmt.Errorf("%w: ambience volume %.2f outside 0-1", ErrInvalid, c.AmbienceVolume)
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, c.SampleRate)
	case c.AudioBuffer <= 0:
		return fmt.Errorf("%w: audio buffer %s", ErrInvalid, c.AudioBuffer)
	case c.UnlockCode == "":
		return fmt.Errorf("%w: empty unlock code", ErrInvalid)
	}
	return nil
}
