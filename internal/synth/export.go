package synth

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// Export renders sound offline at rate and writes it to w as 16-bit stereo
// WAV, scaled by volume.
func Export(w io.WriteSeeker, sound Sound, rate beep.SampleRate, volume float64, rng *rand.Rand) error {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g := Build(sound, rate, rng)
	if g == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSound, sound)
	}
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, newVolume(g, volume), format); err != nil {
		return fmt.Errorf("encoding %s: %w", sound, err)
	}
	return nil
}
