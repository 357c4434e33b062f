// Package game runs the firework engine inside an ebiten window.
//
// Driver is the engine context: it owns the particle field, the timer
// scheduler, the interaction machine and the audio sink, and steps them once
// per tick. Game adapts the driver to ebiten.Game, turning mouse and touch
// input into press events and drawing the HUD over the field.
package game

import (
	"log/slog"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/fireworks/internal/config"
)

// Game implements ebiten.Game.
type Game struct {
	cfg    config.Config
	driver *Driver
	hud    *hud
	entry  *codeEntry
	canvas *canvas
	ctl    controls
	log    *slog.Logger

	width, height int
	layoutW       int
	layoutH       int
	started       time.Time
	lastUpdate    time.Time
	focused       bool

	// input
	hovered       bool
	mousePressing bool
	touchPressing bool
	touchID       ebiten.TouchID
	touchX        int
	touchY        int
	touches       []ebiten.TouchID
	prevTouches   []ebiten.TouchID
}

// New creates the game. audio may be nil to run silently.
func New(cfg config.Config, audio Audio, log *slog.Logger) *Game {
	if log == nil {
		log = slog.Default()
	}
	g := &Game{
		cfg:     cfg,
		hud:     newHUD(),
		log:     log.With("component", "game"),
		width:   cfg.Width,
		height:  cfg.Height,
		layoutW: cfg.Width,
		layoutH: cfg.Height,
		focused: true,
	}
	g.entry = newCodeEntry(cfg.UnlockCode, log)
	g.driver = NewDriver(cfg.Width, cfg.Height, audio, DriverOptions{
		Vibrate:      vibrate,
		Reveal:       g.entry.reveal,
		SoundEnabled: cfg.SoundEnabled,
		Logger:       log,
	})
	g.ctl = layoutControls(cfg.Width, cfg.Height)
	g.started = g.driver.Now()
	return g
}

func vibrate(d time.Duration) {
	ebiten.Vibrate(&ebiten.VibrateOptions{Duration: d, Magnitude: 1})
}

// Driver returns the engine driver.
func (g *Game) Driver() *Driver {
	return g.driver
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if g.canvas == nil || g.layoutW != g.width || g.layoutH != g.height {
		g.resize(g.layoutW, g.layoutH)
	}

	now := g.driver.Now()
	dt := float32(1.0 / 60)
	if !g.lastUpdate.IsZero() {
		dt = float32(now.Sub(g.lastUpdate).Seconds())
	}
	g.lastUpdate = now

	focused := ebiten.IsFocused()
	if g.focused && !focused {
		g.mousePressing, g.touchPressing = false, false
		g.driver.Suspend()
		g.log.Debug("focus lost, audio suspended")
	}
	g.focused = focused

	// Tick first so timers started by this frame's input count from now.
	g.driver.Tick(now)

	switch g.entry.poll() {
	case entryAccepted:
		g.hud.showBanner("Code accepted, editor unlocked")
	case entryRejected:
		g.hud.startShake()
	}

	g.handleMouse()
	g.handleTouches()
	g.hud.update(dt, g.driver.Machine().Unlocked())
	return nil
}

func (g *Game) handleMouse() {
	m := g.driver.Machine()
	x, y := ebiten.CursorPosition()
	g.hovered = g.ctl.onButton(x, y)

	// Only the primary button presses the control.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case g.ctl.onToggle(x, y):
			g.driver.ToggleSound()
		case g.hovered && !g.touchPressing:
			g.mousePressing = true
			m.PressStart()
		}
	}
	if !g.mousePressing {
		return
	}
	if !g.hovered {
		// Leaving the control ends the press without a tap.
		g.mousePressing = false
		m.PressEnd()
		return
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.mousePressing = false
		m.Release(true)
	}
}

func (g *Game) handleTouches() {
	m := g.driver.Machine()
	g.touches = ebiten.AppendTouchIDs(g.touches[:0])

	if g.touchPressing {
		if slices.Contains(g.touches, g.touchID) {
			g.touchX, g.touchY = ebiten.TouchPosition(g.touchID)
		} else {
			g.touchPressing = false
			m.Release(g.ctl.onButton(g.touchX, g.touchY))
		}
	}

	for _, id := range g.touches {
		if slices.Contains(g.prevTouches, id) {
			continue
		}
		x, y := ebiten.TouchPosition(id)
		switch {
		case g.ctl.onToggle(x, y):
			g.driver.ToggleSound()
		case !g.touchPressing && !g.mousePressing && g.ctl.onButton(x, y):
			g.touchPressing = true
			g.touchID = id
			g.touchX, g.touchY = x, y
			m.PressStart()
		}
	}
	g.prevTouches = append(g.prevTouches[:0], g.touches...)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas != nil {
		screen.DrawImage(g.canvas.img, nil)
	}
	state := hudState{
		snap:    g.driver.Machine().Snapshot(),
		soundOn: g.driver.SoundEnabled(),
		level:   g.driver.Level(),
		hovered: g.hovered,
	}
	if g.cfg.Debug {
		state.debug = debugLine(ebiten.ActualFPS(), ebiten.ActualTPS(),
			g.driver.Now().Sub(g.started), g.driver.Stats())
	}
	g.hud.draw(screen, g.ctl, state)
}

// Layout follows the window size. The new size is applied by the next
// Update, which resizes the canvas and the field.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.layoutW, g.layoutH = outsideWidth, outsideHeight
	}
	return g.layoutW, g.layoutH
}

func (g *Game) resize(width, height int) {
	g.width, g.height = width, height
	g.ctl = layoutControls(width, height)
	g.driver.Resize(width, height)
	if g.canvas != nil {
		g.canvas.resize(width, height)
		return
	}
	g.canvas = newCanvas(width, height)
	if err := g.driver.Start(g.canvas); err != nil {
		g.log.Error("engine not started", "err", err)
	}
}

// Close tears the engine down.
func (g *Game) Close() error {
	return g.driver.Close()
}
