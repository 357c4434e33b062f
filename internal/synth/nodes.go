package synth

import (
	"math"
	"math/rand/v2"

	"github.com/faiface/beep"
)

// All nodes are mono: both channels carry the same value.

// sine is an oscillator whose frequency follows a param.
type sine struct {
	freq   *param
	rate   float64
	phase  float64
	pos    int
	length int
}

func newSine(freq *param, rate beep.SampleRate, seconds float64) *sine {
	return &sine{freq: freq, rate: float64(rate), length: int(seconds * float64(rate))}
}

func (o *sine) Stream(samples [][2]float64) (int, bool) {
	if o.pos >= o.length {
		return 0, false
	}
	n := min(len(samples), o.length-o.pos)
	for i := 0; i < n; i++ {
		v := math.Sin(2 * math.Pi * o.phase)
		samples[i][0], samples[i][1] = v, v
		o.phase += o.freq.valueAt(float64(o.pos)/o.rate) / o.rate
		o.phase -= math.Floor(o.phase)
		o.pos++
	}
	return n, true
}

func (o *sine) Err() error { return nil }

// noise plays a prefilled buffer of uniform samples in [-1, 1].
type noise struct {
	buf []float64
	pos int
}

func newNoise(rng *rand.Rand, rate beep.SampleRate, seconds float64) *noise {
	buf := make([]float64, int(seconds*float64(rate)))
	for i := range buf {
		buf[i] = rng.Float64()*2 - 1
	}
	return &noise{buf: buf}
}

func (n *noise) Stream(samples [][2]float64) (int, bool) {
	if n.pos >= len(n.buf) {
		return 0, false
	}
	c := copyMono(samples, n.buf[n.pos:])
	n.pos += c
	return c, true
}

func (n *noise) Err() error { return nil }

func copyMono(dst [][2]float64, src []float64) int {
	c := min(len(dst), len(src))
	for i := 0; i < c; i++ {
		dst[i][0], dst[i][1] = src[i], src[i]
	}
	return c
}

// lowpass is a biquad low-pass filter whose cutoff follows a param.
type lowpass struct {
	src    beep.Streamer
	cutoff *param
	q      float64
	rate   float64
	pos    int

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// Coefficients are refreshed every coeffStride samples.
const coeffStride = 16

func newLowpass(src beep.Streamer, cutoff *param, rate beep.SampleRate) *lowpass {
	return &lowpass{src: src, cutoff: cutoff, q: math.Sqrt2 / 2, rate: float64(rate)}
}

func (f *lowpass) updateCoefficients(fc float64) {
	fc = math.Min(math.Max(fc, 10), f.rate*0.45)
	w0 := 2 * math.Pi * fc / f.rate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * f.q)
	a0 := 1 + alpha
	f.b0 = (1 - cosw) / 2 / a0
	f.b1 = (1 - cosw) / a0
	f.b2 = f.b0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
}

func (f *lowpass) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.src.Stream(samples)
	for i := 0; i < n; i++ {
		if f.pos%coeffStride == 0 {
			f.updateCoefficients(f.cutoff.valueAt(float64(f.pos) / f.rate))
		}
		x := samples[i][0]
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y
		samples[i][0], samples[i][1] = y, y
		f.pos++
	}
	return n, ok
}

func (f *lowpass) Err() error { return f.src.Err() }

// gain scales its source by a param.
type gain struct {
	src  beep.Streamer
	g    *param
	rate float64
	pos  int
}

func newGain(src beep.Streamer, g *param, rate beep.SampleRate) *gain {
	return &gain{src: src, g: g, rate: float64(rate)}
}

func (a *gain) Stream(samples [][2]float64) (int, bool) {
	n, ok := a.src.Stream(samples)
	for i := 0; i < n; i++ {
		v := a.g.valueAt(float64(a.pos) / a.rate)
		samples[i][0] *= v
		samples[i][1] *= v
		a.pos++
	}
	return n, ok
}

func (a *gain) Err() error { return a.src.Err() }
