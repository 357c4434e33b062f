package game

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/iburimskiy/fireworks/internal/config"
	"github.com/iburimskiy/fireworks/internal/gesture"
)

const (
	toggleSize   = 40
	toggleMargin = 16

	// Unlocked control pulse
	pulsePeriod = 0.6
	pulseScale  = 1.12

	// Wrong-code shake
	shakeDuration  = 0.4
	shakeAmplitude = 8
	shakeFrequency = 50

	bannerDuration = 3

	glyphWidth = 6
	arcDetail  = 64
)

var (
	gold        = color.NRGBA{R: 255, G: 215, B: 0, A: 255}
	ringTrack   = color.NRGBA{R: 255, G: 215, B: 0, A: 40}
	buttonIdle  = color.NRGBA{R: 120, G: 12, B: 12, A: 230}
	buttonHover = color.NRGBA{R: 150, G: 20, B: 16, A: 240}
	buttonHeld  = color.NRGBA{R: 190, G: 30, B: 20, A: 255}
	flashTint   = color.NRGBA{R: 254, G: 249, B: 195}
	bannerBack  = color.NRGBA{R: 0, G: 0, B: 0, A: 180}
)

// controls is the on-screen placement of the press control and the sound
// toggle for a given window size.
type controls struct {
	cx, cy float32
	toggle image.Rectangle
}

func layoutControls(width, height int) controls {
	cy := max(height-config.ButtonMarginY, height/2)
	return controls{
		cx: float32(width) / 2,
		cy: float32(cy),
		toggle: image.Rect(
			width-toggleMargin-toggleSize, toggleMargin,
			width-toggleMargin, toggleMargin+toggleSize,
		),
	}
}

func (c controls) onButton(x, y int) bool {
	dx, dy := float32(x)-c.cx, float32(y)-c.cy
	return dx*dx+dy*dy <= config.ButtonRadius*config.ButtonRadius
}

func (c controls) onToggle(x, y int) bool {
	return image.Pt(x, y).In(c.toggle)
}

// hudState is what the HUD shows in one frame.
type hudState struct {
	snap    gesture.Snapshot
	soundOn bool
	level   float64
	hovered bool
	debug   string
}

// hud draws the press control, its progress ring, the flash overlay and the
// sound toggle on top of the field. Its animations are gween tweens stepped
// by update.
type hud struct {
	pulse   *gween.Tween
	pulseUp bool
	scale   float32

	shake     *gween.Tween
	shakeAmp  float32
	shakeTime float32

	banner      string
	bannerFade  *gween.Tween
	bannerAlpha float32
}

func newHUD() *hud {
	return &hud{scale: 1}
}

// update steps the animations by dt seconds.
func (h *hud) update(dt float32, unlocked bool) {
	if unlocked {
		if h.pulse == nil {
			h.pulseUp = true
			h.pulse = gween.New(1, pulseScale, pulsePeriod, ease.InOutSine)
		}
		v, done := h.pulse.Update(dt)
		h.scale = v
		if done {
			h.pulseUp = !h.pulseUp
			to := float32(1)
			if h.pulseUp {
				to = pulseScale
			}
			h.pulse = gween.New(h.scale, to, pulsePeriod, ease.InOutSine)
		}
	} else {
		h.pulse = nil
		h.scale = 1
	}

	if h.shake != nil {
		h.shakeTime += dt
		v, done := h.shake.Update(dt)
		h.shakeAmp = v
		if done {
			h.shake = nil
			h.shakeAmp = 0
		}
	}

	if h.bannerFade != nil {
		v, done := h.bannerFade.Update(dt)
		h.bannerAlpha = v
		if done {
			h.bannerFade = nil
			h.banner = ""
		}
	}
}

func (h *hud) startShake() {
	h.shake = gween.New(shakeAmplitude, 0, shakeDuration, ease.OutCubic)
	h.shakeAmp = shakeAmplitude
	h.shakeTime = 0
}

func (h *hud) showBanner(msg string) {
	h.banner = msg
	h.bannerAlpha = 1
	h.bannerFade = gween.New(1, 0, bannerDuration, ease.InQuad)
}

func (h *hud) shakeOffset() float32 {
	return h.shakeAmp * float32(math.Sin(float64(h.shakeTime)*shakeFrequency))
}

func (h *hud) draw(screen *ebiten.Image, c controls, s hudState) {
	bounds := screen.Bounds()
	w, ht := float32(bounds.Dx()), float32(bounds.Dy())

	if s.snap.Flash > 0 {
		tint := flashTint
		tint.A = uint8(math.Min(1, s.snap.Flash)*255 + 0.5)
		vector.DrawFilledRect(screen, 0, 0, w, ht, tint, false)
	}

	h.drawControl(screen, c, s)
	h.drawToggle(screen, c, s)

	if h.banner != "" && h.bannerAlpha > 0 {
		bw := float32(len(h.banner)*glyphWidth + 24)
		back := bannerBack
		back.A = uint8(float32(back.A) * h.bannerAlpha)
		vector.DrawFilledRect(screen, (w-bw)/2, 24, bw, 28, back, false)
		vector.StrokeRect(screen, (w-bw)/2, 24, bw, 28, 1, gold, false)
		ebitenutil.DebugPrintAt(screen, h.banner, int((w-bw)/2)+12, 30)
	}

	if s.debug != "" {
		ebitenutil.DebugPrintAt(screen, s.debug, 8, 8)
	}
}

func (h *hud) drawControl(screen *ebiten.Image, c controls, s hudState) {
	cx, cy := c.cx+h.shakeOffset(), c.cy

	if s.snap.Unlocked {
		glow := gold
		glow.A = 50
		vector.DrawFilledCircle(screen, cx, cy, config.ButtonRingRadius*h.scale*1.25, glow, true)
	}

	vector.StrokeCircle(screen, cx, cy, config.ButtonRingRadius, 3, ringTrack, true)
	drawArc(screen, cx, cy, config.ButtonRingRadius, s.snap.Progress/config.ProgressMax, 3, gold)

	fill := buttonIdle
	switch {
	case s.snap.State != gesture.Idle:
		fill = buttonHeld
	case s.hovered:
		fill = buttonHover
	}
	r := config.ButtonRadius * h.scale
	vector.DrawFilledCircle(screen, cx, cy, r, fill, true)
	vector.StrokeCircle(screen, cx, cy, r, 2, gold, true)

	label := "HOLD"
	if s.snap.Unlocked {
		label = "TAP"
	}
	ebitenutil.DebugPrintAt(screen, label, int(cx)-len(label)*glyphWidth/2, int(cy)-8)

	if s.snap.Unlocked {
		hint := "double tap to enter the code"
		ebitenutil.DebugPrintAt(screen, hint, int(cx)-len(hint)*glyphWidth/2, int(cy)-config.ButtonRingRadius-28)
	}
}

func (h *hud) drawToggle(screen *ebiten.Image, c controls, s hudState) {
	x, y := float32(c.toggle.Min.X), float32(c.toggle.Min.Y)
	sz := float32(c.toggle.Dx())
	vector.DrawFilledRect(screen, x, y, sz, sz, bannerBack, false)
	vector.StrokeRect(screen, x, y, sz, sz, 1, gold, false)

	if !s.soundOn {
		vector.StrokeLine(screen, x+10, y+10, x+sz-10, y+sz-10, 2, gold, true)
		vector.StrokeLine(screen, x+sz-10, y+10, x+10, y+sz-10, 2, gold, true)
		return
	}
	// Three bars that follow the output level.
	level := float32(math.Pow(clamp01(s.level), 0.3))
	for i := 0; i < 3; i++ {
		bh := 6 + (sz-16)*level*float32(i+1)/3
		bx := x + 8 + float32(i)*9
		vector.DrawFilledRect(screen, bx, y+sz-8-bh, 6, bh, gold, false)
	}
}

// drawArc strokes the clockwise part frac of a circle, starting at the top.
func drawArc(dst *ebiten.Image, cx, cy, r float32, frac float64, width float32, clr color.Color) {
	frac = clamp01(frac)
	if frac == 0 {
		return
	}
	segments := int(arcDetail*frac) + 1
	start := -math.Pi / 2
	step := 2 * math.Pi * frac / float64(segments)
	for i := 0; i < segments; i++ {
		a0 := start + float64(i)*step
		a1 := a0 + step
		x0 := cx + r*float32(math.Cos(a0))
		y0 := cy + r*float32(math.Sin(a0))
		x1 := cx + r*float32(math.Cos(a1))
		y1 := cy + r*float32(math.Sin(a1))
		vector.StrokeLine(dst, x0, y0, x1, y1, width, clr, true)
	}
}
