// Command sfxdump renders the firework sound effects to WAV files.
//
// Usage:
//
//	sfxdump [-out dir] [-rate hz] [-volume v] [-seed n] [sound ...]
//
// With no sound names every effect is written.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/faiface/beep"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/fireworks/internal/config"
	"github.com/iburimskiy/fireworks/internal/synth"
)

func main() {
	fs := flag.NewFlagSet("sfxdump", flag.ContinueOnError)
	out := fs.String("out", ".", "directory the WAV files are written to")
	rate := fs.Int("rate", config.DefaultSampleRate, "sample rate in Hz")
	volume := fs.Float64("volume", 1, "output gain (0-1)")
	seed := fs.Uint64("seed", 0, "noise seed; 0 picks a random one")
	dialog := fs.Bool("dialog", false, "report failures in a dialog as well as on stderr")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := run(*out, beep.SampleRate(*rate), *volume, *seed, fs.Args()); err != nil {
		slog.Error("sfxdump failed", "err", err)
		if *dialog {
			_ = zenity.Error(err.Error(), zenity.Title("sfxdump"), zenity.ErrorIcon)
		}
		os.Exit(1)
	}
}

func run(dir string, rate beep.SampleRate, volume float64, seed uint64, names []string) error {
	if rate < 8000 || rate > 192000 {
		return fmt.Errorf("%w: sample rate %d", config.ErrInvalid, rate)
	}
	if volume < 0 || volume > 1 {
		return fmt.Errorf("%w: volume %.2f outside 0-1", config.ErrInvalid, volume)
	}

	sounds := synth.Sounds
	if len(names) > 0 {
		sounds = make([]synth.Sound, 0, len(names))
		for _, n := range names {
			s, err := synth.ParseSound(n)
			if err != nil {
				return err
			}
			sounds = append(sounds, s)
		}
	}

	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, s := range sounds {
		path := filepath.Join(dir, s.String()+".wav")
		if err := write(path, s, rate, volume, rng); err != nil {
			return err
		}
		slog.Info("wrote effect", "sound", s, "path", path, "seconds", synth.Duration(s))
	}
	return nil
}

func write(path string, s synth.Sound, rate beep.SampleRate, volume float64, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := synth.Export(f, s, rate, volume, rng); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
