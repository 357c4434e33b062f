package synth

import (
	"math"
	"math/rand/v2"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// Effect tuning. Times are in seconds from the start of the effect.
const (
	silentGain = 0.001

	launchDuration = 0.5
	launchAttack   = 0.1
	launchPeak     = 0.1
	launchFreqFrom = 150.0
	launchFreqTo   = 600.0

	explosionNoise      = 2.0
	explosionSweep      = 1.0
	explosionDecay      = 1.2
	explosionGain       = 0.8
	explosionCutoffFrom = 800.0
	explosionCutoffTo   = 100.0
	subDuration         = 0.5
	subGain             = 0.6
	subFreqFrom         = 60.0
	subFreqTo           = 30.0

	rapidRateMin    = 0.9
	rapidRateSpread = 0.4
	whistleDuration = 0.15
	whistleGain     = 0.08
	whistleFreqFrom = 300.0
	whistleFreqTo   = 900.0
	boomOffset      = 0.1
	boomDuration    = 0.4
	boomGain        = 0.6
	boomCutoffFrom  = 1000.0
	boomCutoffTo    = 50.0
)

// Build returns a fresh, self-terminating streamer for sound at rate. The
// returned graph shares nothing with other graphs and is drained once the
// effect has decayed.
func Build(sound Sound, rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	switch sound {
	case Launch:
		return buildLaunch(rate)
	case Explosion:
		return buildExplosion(rate, rng)
	case RapidBurst:
		return buildRapidBurst(rate, rng)
	default:
		return nil
	}
}

// Duration returns how long the graph for sound plays.
func Duration(sound Sound) float64 {
	switch sound {
	case Launch:
		return launchDuration
	case Explosion:
		return math.Max(explosionNoise, subDuration)
	case RapidBurst:
		return math.Max(whistleDuration, boomOffset+boomDuration)
	default:
		return 0
	}
}

func buildLaunch(rate beep.SampleRate) beep.Streamer {
	freq := newParam(launchFreqFrom).expTo(launchFreqTo, launchDuration)
	env := newParam(0).
		linearTo(launchPeak, launchAttack).
		expTo(silentGain, launchDuration)
	return newGain(newSine(freq, rate, launchDuration), env, rate)
}

func buildExplosion(rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	cutoff := newParam(explosionCutoffFrom).expTo(explosionCutoffTo, explosionSweep)
	env := newParam(explosionGain).expTo(silentGain, explosionDecay)
	boom := newGain(newLowpass(newNoise(rng, rate, explosionNoise), cutoff, rate), env, rate)

	subFreq := newParam(subFreqFrom).expTo(subFreqTo, subDuration)
	subEnv := newParam(subGain).expTo(silentGain, subDuration)
	sub := newGain(newSine(subFreq, rate, subDuration), subEnv, rate)

	return beep.Mix(boom, sub)
}

// buildRapidBurst layers a short whistle with an explosion that starts
// before the whistle has ended.
func buildRapidBurst(rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	factor := rapidRateMin + rng.Float64()*rapidRateSpread

	freq := newParam(whistleFreqFrom*factor).expTo(whistleFreqTo*factor, whistleDuration)
	env := newParam(whistleGain).expTo(silentGain, whistleDuration)
	whistle := newGain(newSine(freq, rate, whistleDuration), env, rate)

	cutoff := newParam(boomCutoffFrom).expTo(boomCutoffTo, boomDuration)
	boomEnv := newParam(boomGain).expTo(silentGain, boomDuration)
	boom := newGain(newLowpass(newNoise(rng, rate, boomDuration), cutoff, rate), boomEnv, rate)

	return beep.Mix(whistle, beep.Seq(beep.Silence(rate.N(seconds(boomOffset))), boom))
}

// newVolume scales s linearly by vol. effects.Volume works in log2 steps,
// so zero volume maps to a silent stage.
func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
