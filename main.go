package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/fireworks/internal/config"
	"github.com/iburimskiy/fireworks/internal/game"
	"github.com/iburimskiy/fireworks/internal/synth"
)

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Fireworks - hold the button, tap to launch, Esc/Q: Quit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)
	if cfg.VSyncTicks {
		// One simulation step per displayed frame.
		ebiten.SetTPS(ebiten.SyncWithFPS)
	}

	audio := synth.New(synth.NewSpeakerOutput(), synth.Options{
		SampleRate:     cfg.SampleRate,
		Buffer:         cfg.AudioBuffer,
		Volume:         cfg.Volume,
		Ambience:       cfg.Ambience,
		AmbienceVolume: cfg.AmbienceVolume,
		Logger:         logger,
	})
	g := game.New(cfg, audio, logger)

	slog.Info("starting", "width", cfg.Width, "height", cfg.Height, "sound", cfg.SoundEnabled)
	err = ebiten.RunGame(g)
	if cerr := g.Close(); cerr != nil {
		slog.Warn("shutdown", "err", cerr)
	}
	if err != nil && !errors.Is(err, ebiten.Termination) {
		panic(err)
	}
}
