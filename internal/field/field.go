// Package field simulates the ambient particle pool and firework bursts.
//
// The field is advanced once per frame with no time step: velocities are in
// pixels per frame, the way the effect was tuned. It is not safe for
// concurrent use; the render loop owns it.
package field

import (
	"image/color"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/iburimskiy/fireworks/internal/config"
)

// Kind distinguishes the two ambient particle looks.
type Kind uint8

const (
	Dust Kind = iota
	Flower
)

func (k Kind) String() string {
	if k == Flower {
		return "flower"
	}
	return "dust"
}

// Particle is an ambient particle. It lives for the whole life of the field.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Radius  float64
	Opacity float64
	Kind    Kind
}

// Spark is one particle of a burst.
type Spark struct {
	X, Y    float64
	VX, VY  float64
	Alpha   float64
	Decay   float64
	Gravity float64
	Color   color.RGBA
}

// Inert reports whether the spark has faded out.
func (s *Spark) Inert() bool { return s.Alpha <= 0 }

// Burst is the set of sparks created by one spawn call.
type Burst struct {
	Sparks []Spark
	Rain   bool
}

// Live reports whether any spark is still visible.
func (b *Burst) Live() bool {
	for i := range b.Sparks {
		if !b.Sparks[i].Inert() {
			return true
		}
	}
	return false
}

// Palette holds the burst colors.
var Palette = [5]color.RGBA{
	{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF},
	{R: 0xFF, G: 0x45, B: 0x00, A: 0xFF},
	{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	{R: 0xFF, G: 0xA5, B: 0x00, A: 0xFF},
	{R: 0xF0, G: 0xE6, B: 0x8C, A: 0xFF},
}

// Field owns both particle populations.
type Field struct {
	width, height float64
	ambient       []Particle
	bursts        []*Burst
	rng           *rand.Rand
}

// Option configures a Field.
type Option func(*Field)

// WithRand makes the field draw from r instead of a randomly seeded source.
func WithRand(r *rand.Rand) Option {
	return func(f *Field) { f.rng = r }
}

// New creates a field and initializes it to width x height.
func New(width, height int, opts ...Option) *Field {
	f := &Field{}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	f.Initialize(width, height)
	return f
}

// Initialize refills the ambient pool and drops every burst.
func (f *Field) Initialize(width, height int) {
	f.width, f.height = float64(width), float64(height)
	if cap(f.ambient) < config.AmbientCount {
		f.ambient = make([]Particle, config.AmbientCount)
	}
	f.ambient = f.ambient[:config.AmbientCount]
	for i := range f.ambient {
		f.ambient[i] = f.newAmbient()
	}
	clear(f.bursts)
	f.bursts = f.bursts[:0]
}

func (f *Field) newAmbient() Particle {
	p := Particle{
		X:       f.rng.Float64() * f.width,
		Y:       f.rng.Float64() * f.height,
		Radius:  f.rng.Float64()*3 + 1,
		VY:      f.rng.Float64()*0.5 + 0.2,
		VX:      (f.rng.Float64() - 0.5) * 0.5,
		Opacity: f.rng.Float64()*0.5 + 0.3,
		Kind:    Dust,
	}
	if f.rng.Float64() > 1-config.FlowerProbability {
		p.Kind = Flower
	}
	return p
}

// Resize changes the wrap bounds. Existing particles keep their positions.
func (f *Field) Resize(width, height int) {
	f.width, f.height = float64(width), float64(height)
}

// Bounds returns the current field size.
func (f *Field) Bounds() (width, height float64) {
	return f.width, f.height
}

// SpawnBurst adds a burst centered at (x, y). Rain bursts are smaller.
func (f *Field) SpawnBurst(x, y float64, rain bool) {
	n := config.BurstParticles
	if rain {
		n = config.RainParticles
	}
	c := Palette[f.rng.IntN(len(Palette))]
	b := &Burst{Sparks: make([]Spark, n), Rain: rain}
	for i := range b.Sparks {
		angle := f.rng.Float64() * 2 * math.Pi
		speed := f.rng.Float64()*3 + 2
		b.Sparks[i] = Spark{
			X:       x,
			Y:       y,
			VX:      math.Cos(angle) * speed,
			VY:      math.Sin(angle) * speed,
			Alpha:   1,
			Decay:   f.rng.Float64()*0.015 + 0.01,
			Gravity: config.SparkGravity,
			Color:   c,
		}
	}
	f.bursts = append(f.bursts, b)
}

// SpawnInBand spawns a burst at a random point of the upper-middle band:
// anywhere horizontally, between 20% and 60% of the height vertically.
func (f *Field) SpawnInBand(rain bool) (x, y float64) {
	x = f.rng.Float64() * f.width
	y = f.height*config.BandTop + f.rng.Float64()*f.height*config.BandHeight
	f.SpawnBurst(x, y, rain)
	return x, y
}

// Advance moves every particle by one frame and drops bursts that have
// fully faded.
func (f *Field) Advance() {
	for i := range f.ambient {
		p := &f.ambient[i]
		p.Y += p.VY
		p.X += p.VX
		if p.Y > f.height {
			p.Y = 0
		}
		if p.X > f.width {
			p.X = 0
		}
		if p.X < 0 {
			p.X = f.width
		}
	}

	live := f.bursts[:0]
	for _, b := range f.bursts {
		alive := false
		for i := range b.Sparks {
			s := &b.Sparks[i]
			if s.Inert() {
				continue
			}
			s.X += s.VX
			s.Y += s.VY
			s.VY += s.Gravity
			s.VX *= config.SparkDamping
			s.VY *= config.SparkDamping
			s.Alpha -= s.Decay
			if !s.Inert() {
				alive = true
			}
		}
		if alive {
			live = append(live, b)
		}
	}
	clear(f.bursts[len(live):])
	f.bursts = live
}

// Ambient returns a copy of the ambient pool.
func (f *Field) Ambient() []Particle {
	return slices.Clone(f.ambient)
}

// Bursts returns a copy of the live bursts.
func (f *Field) Bursts() []Burst {
	out := make([]Burst, len(f.bursts))
	for i, b := range f.bursts {
		out[i] = Burst{Sparks: slices.Clone(b.Sparks), Rain: b.Rain}
	}
	return out
}

// LiveBursts returns the number of bursts still on screen.
func (f *Field) LiveBursts() int {
	return len(f.bursts)
}

// LiveSparks counts sparks that are still visible.
func (f *Field) LiveSparks() int {
	n := 0
	for _, b := range f.bursts {
		for i := range b.Sparks {
			if !b.Sparks[i].Inert() {
				n++
			}
		}
	}
	return n
}
