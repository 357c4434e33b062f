package field

import (
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/fireworks/internal/config"
)

func newTestField(t *testing.T) *Field {
	t.Helper()
	return New(800, 600, WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestInitializeFillsAmbientPool(t *testing.T) {
	f := newTestField(t)
	amb := f.Ambient()
	require.Len(t, amb, config.AmbientCount)
	for _, p := range amb {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.LessOrEqual(t, p.X, 800.0)
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Y, 600.0)
		assert.GreaterOrEqual(t, p.Radius, 1.0)
		assert.Less(t, p.Radius, 4.0)
		assert.GreaterOrEqual(t, p.Opacity, 0.3)
		assert.Less(t, p.Opacity, 0.8)
		assert.Greater(t, p.VY, 0.0)
	}
	assert.Zero(t, f.LiveBursts())
}

func TestInitializeClearsBursts(t *testing.T) {
	f := newTestField(t)
	f.SpawnBurst(10, 10, false)
	f.Initialize(400, 300)
	assert.Zero(t, f.LiveBursts())
	w, h := f.Bounds()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 300.0, h)
}

func TestSpawnBurstParticleCounts(t *testing.T) {
	f := newTestField(t)
	for i := 0; i < 20; i++ {
		f.SpawnBurst(100, 100, i%2 == 0)
	}
	for _, b := range f.Bursts() {
		if b.Rain {
			assert.Len(t, b.Sparks, config.RainParticles)
		} else {
			assert.Len(t, b.Sparks, config.BurstParticles)
		}
	}
}

func TestSpawnBurstSparkRanges(t *testing.T) {
	f := newTestField(t)
	f.SpawnBurst(300, 200, false)
	bursts := f.Bursts()
	require.Len(t, bursts, 1)

	first := bursts[0].Sparks[0].Color
	assert.Contains(t, Palette[:], first)
	for _, s := range bursts[0].Sparks {
		assert.Equal(t, 300.0, s.X)
		assert.Equal(t, 200.0, s.Y)
		speed := math.Hypot(s.VX, s.VY)
		assert.GreaterOrEqual(t, speed, 2.0-1e-9)
		assert.LessOrEqual(t, speed, 5.0+1e-9)
		assert.GreaterOrEqual(t, s.Decay, 0.01)
		assert.LessOrEqual(t, s.Decay, 0.025)
		assert.Equal(t, 1.0, s.Alpha)
		assert.Equal(t, config.SparkGravity, s.Gravity)
		assert.Equal(t, first, s.Color)
	}
}

func TestBurstsDoNotShareStorage(t *testing.T) {
	f := newTestField(t)
	f.SpawnBurst(0, 0, true)
	f.SpawnBurst(0, 0, true)
	a, b := f.bursts[0], f.bursts[1]
	a.Sparks[0].X = 999
	assert.NotEqual(t, 999.0, b.Sparks[0].X)
}

func TestAlphaNonIncreasingAndRemoval(t *testing.T) {
	f := newTestField(t)
	f.SpawnBurst(400, 300, false)
	b := f.bursts[0]

	prev := make([]float64, len(b.Sparks))
	for i := range b.Sparks {
		prev[i] = b.Sparks[i].Alpha
	}

	for frame := 0; frame < 200; frame++ {
		allInertBefore := !b.Live()
		f.Advance()
		for i := range b.Sparks {
			assert.LessOrEqual(t, b.Sparks[i].Alpha, prev[i])
			prev[i] = b.Sparks[i].Alpha
		}
		if !b.Live() {
			assert.Zero(t, f.LiveBursts(), "burst must be swept in the frame its last spark went inert")
			assert.False(t, allInertBefore)
			return
		}
		assert.Equal(t, 1, f.LiveBursts(), "burst removed while sparks were alive")
	}
	t.Fatal("burst never faded")
}

func TestInertSparksStopMoving(t *testing.T) {
	f := newTestField(t)
	f.SpawnBurst(0, 0, true)
	f.SpawnBurst(0, 0, true)
	b := f.bursts[0]
	s := &b.Sparks[0]
	s.Alpha = 0
	x, y := s.X, s.Y
	f.Advance()
	assert.Equal(t, x, s.X)
	assert.Equal(t, y, s.Y)
	assert.Equal(t, 0.0, s.Alpha)
}

func TestSparkPhysicsOneFrame(t *testing.T) {
	f := newTestField(t)
	f.SpawnBurst(0, 0, true)
	s := &f.bursts[0].Sparks[0]
	s.VX, s.VY, s.Decay = 2, -3, 0.02

	f.Advance()
	assert.InDelta(t, 2.0, s.X, 1e-9)
	assert.InDelta(t, -3.0, s.Y, 1e-9)
	assert.InDelta(t, 2*0.96, s.VX, 1e-9)
	assert.InDelta(t, (-3+0.05)*0.96, s.VY, 1e-9)
	assert.InDelta(t, 0.98, s.Alpha, 1e-9)
}

func TestAmbientWrap(t *testing.T) {
	f := newTestField(t)
	p := &f.ambient[0]

	p.X, p.Y, p.VX, p.VY = 800, 10, 0.1, 0.2
	f.Advance()
	assert.Equal(t, 0.0, p.X)

	p.X, p.Y, p.VX, p.VY = 0, 599.9, 0, 0.5
	f.Advance()
	assert.Equal(t, 0.0, p.Y)

	p.X, p.Y, p.VX, p.VY = 0.05, 10, -0.1, 0.2
	f.Advance()
	assert.Equal(t, 800.0, p.X)
}

func TestResizeKeepsParticles(t *testing.T) {
	f := newTestField(t)
	before := f.Ambient()
	f.SpawnBurst(10, 10, false)
	f.Resize(200, 100)

	assert.Equal(t, before, f.Ambient())
	assert.Equal(t, 1, f.LiveBursts())

	p := &f.ambient[0]
	p.X, p.VX = 199.9, 0.2
	f.Advance()
	assert.Equal(t, 0.0, p.X)
}

func TestSustainedRainStaysBounded(t *testing.T) {
	f := newTestField(t)
	maxLive := 0
	// One rain burst every 7 frames (~120ms at 60fps) for a minute.
	for frame := 0; frame < 3600; frame++ {
		if frame%7 == 0 {
			f.SpawnInBand(true)
		}
		f.Advance()
		maxLive = max(maxLive, f.LiveBursts())
	}
	// Slowest decay is 0.01 per frame, so a burst lives about 100 frames.
	assert.LessOrEqual(t, maxLive, 100/7+2)
}

func TestSpawnInBand(t *testing.T) {
	f := newTestField(t)
	for i := 0; i < 100; i++ {
		x, y := f.SpawnInBand(false)
		assert.GreaterOrEqual(t, x, 0.0)
		assert.Less(t, x, 800.0)
		assert.GreaterOrEqual(t, y, 120.0)
		assert.Less(t, y, 360.0)
	}
}

type recordingSurface struct {
	rects   int
	circles []circle
}

type circle struct {
	x, y, r float32
	c       color.NRGBA
}

func (s *recordingSurface) FillRect(x, y, w, h float32, c color.Color) { s.rects++ }

func (s *recordingSurface) FillCircle(cx, cy, r float32, c color.Color) {
	s.circles = append(s.circles, circle{cx, cy, r, color.NRGBAModel.Convert(c).(color.NRGBA)})
}

func TestRenderDrawsWashThenParticles(t *testing.T) {
	f := newTestField(t)
	f.SpawnBurst(50, 50, true)
	f.bursts[0].Sparks[0].Alpha = -0.01

	s := &recordingSurface{}
	f.Render(s)
	assert.Equal(t, 1, s.rects)
	assert.Len(t, s.circles, config.AmbientCount+config.RainParticles-1)

	for i, p := range f.ambient {
		want := float32(p.Radius)
		if p.Kind == Flower {
			want = float32(p.Radius * 1.5)
		}
		assert.InDelta(t, want, s.circles[i].r, 1e-4)
	}
	for _, c := range s.circles[config.AmbientCount:] {
		assert.Equal(t, float32(config.SparkRadius), c.r)
		assert.Equal(t, uint8(255), c.c.A)
	}
}

func TestAlphaByteClamps(t *testing.T) {
	assert.Equal(t, uint8(0), alphaByte(-0.5))
	assert.Equal(t, uint8(128), alphaByte(0.5))
	assert.Equal(t, uint8(255), alphaByte(1.7))
}

func TestRenderNilSurface(t *testing.T) {
	f := newTestField(t)
	assert.NotPanics(t, func() { f.Render(nil) })
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "dust", Dust.String())
	assert.Equal(t, "flower", Flower.String())
}
