package field

import (
	"image/color"

	"github.com/iburimskiy/fireworks/internal/config"
)

// Surface is the drawing target the field paints on.
type Surface interface {
	FillRect(x, y, w, h float32, c color.Color)
	FillCircle(cx, cy, r float32, c color.Color)
}

var (
	washColor   = color.NRGBA{R: 58, G: 0, B: 0, A: 51}
	flowerColor = color.NRGBA{R: 255, G: 223, B: 0}
	dustColor   = color.NRGBA{R: 255, G: 215, B: 0}
)

// Render paints a translucent wash over the whole field, leaving trails of
// the previous frames, then every ambient particle and every live spark.
func (f *Field) Render(s Surface) {
	if s == nil {
		return
	}
	s.FillRect(0, 0, float32(f.width), float32(f.height), washColor)

	for i := range f.ambient {
		p := &f.ambient[i]
		c, r := dustColor, p.Radius
		if p.Kind == Flower {
			c, r = flowerColor, p.Radius*1.5
		}
		c.A = alphaByte(p.Opacity)
		s.FillCircle(float32(p.X), float32(p.Y), float32(r), c)
	}

	for _, b := range f.bursts {
		for i := range b.Sparks {
			sp := &b.Sparks[i]
			if sp.Inert() {
				continue
			}
			c := color.NRGBA{R: sp.Color.R, G: sp.Color.G, B: sp.Color.B, A: alphaByte(sp.Alpha)}
			s.FillCircle(float32(sp.X), float32(sp.Y), config.SparkRadius, c)
		}
	}
}

func alphaByte(a float64) uint8 {
	return uint8(max(0, min(1, a))*255 + 0.5)
}
