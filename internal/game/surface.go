package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// canvas is the persistent offscreen image the field is painted on. It is
// never cleared, so the field's translucent wash leaves trails.
type canvas struct {
	img *ebiten.Image
}

func newCanvas(width, height int) *canvas {
	img := ebiten.NewImage(width, height)
	img.Fill(color.Black)
	return &canvas{img: img}
}

// resize replaces the image, keeping the overlapping part of the old one.
func (c *canvas) resize(width, height int) {
	img := ebiten.NewImage(width, height)
	img.Fill(color.Black)
	if c.img != nil {
		img.DrawImage(c.img, nil)
		c.img.Deallocate()
	}
	c.img = img
}

func (c *canvas) FillRect(x, y, w, h float32, clr color.Color) {
	vector.DrawFilledRect(c.img, x, y, w, h, clr, false)
}

func (c *canvas) FillCircle(cx, cy, r float32, clr color.Color) {
	vector.DrawFilledCircle(c.img, cx, cy, r, clr, true)
}
