package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/iburimskiy/fireworks/internal/config"
	"github.com/iburimskiy/fireworks/internal/synth"
	"github.com/iburimskiy/fireworks/internal/timer"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type spawn struct {
	at   time.Duration
	rain bool
}

type played struct {
	at    time.Duration
	sound synth.Sound
}

type fakeEffects struct {
	sched    *timer.Scheduler
	ensures  int
	spawns   []spawn
	sounds   []played
	vibrates []time.Duration
	reveals  []time.Duration
}

func (f *fakeEffects) since() time.Duration { return f.sched.Now().Sub(epoch) }

func (f *fakeEffects) EnsureAudio() { f.ensures++ }
func (f *fakeEffects) SpawnInBand(rain bool) {
	f.spawns = append(f.spawns, spawn{f.since(), rain})
}
func (f *fakeEffects) Play(s synth.Sound) {
	f.sounds = append(f.sounds, played{f.since(), s})
}
func (f *fakeEffects) Vibrate(d time.Duration) { f.vibrates = append(f.vibrates, d) }
func (f *fakeEffects) RevealCodeEntry()        { f.reveals = append(f.reveals, f.since()) }

func (f *fakeEffects) count(s synth.Sound) int {
	n := 0
	for _, p := range f.sounds {
		if p.sound == s {
			n++
		}
	}
	return n
}

type MachineSuite struct {
	suite.Suite
	sched *timer.Scheduler
	fx    *fakeEffects
	m     *Machine
}

func (s *MachineSuite) SetupTest() {
	s.sched = timer.New(epoch)
	s.fx = &fakeEffects{sched: s.sched}
	s.m = New(s.sched, s.fx, nil)
}

func (s *MachineSuite) at(ms int) {
	s.sched.Advance(epoch.Add(time.Duration(ms) * time.Millisecond))
}

// frames advances the clock to ms in 16ms frames.
func (s *MachineSuite) frames(ms int) {
	for t := s.sched.Now().Sub(epoch) + 16*time.Millisecond; t < time.Duration(ms)*time.Millisecond; t += 16 * time.Millisecond {
		s.sched.Advance(epoch.Add(t))
	}
	s.at(ms)
}

// unlock holds the control past the long-press delay and releases it.
func (s *MachineSuite) unlock() {
	s.m.PressStart()
	s.at(3000)
	s.m.Release(true)
	s.Require().True(s.m.Unlocked())
}

func (s *MachineSuite) TestLongPressUnlocks() {
	s.m.PressStart()
	s.at(2999)
	s.False(s.m.Unlocked())
	s.Equal(Pressing, s.m.State())

	s.at(3000)
	s.True(s.m.Unlocked())
	s.Equal(LongPressReached, s.m.State())
	s.Equal([]time.Duration{config.HapticDuration}, s.fx.vibrates)
}

func (s *MachineSuite) TestEarlyReleaseNeverUnlocks() {
	s.m.PressStart()
	s.at(2999)
	s.m.Release(true)
	s.at(10000)
	s.False(s.m.Unlocked())
	s.Empty(s.fx.vibrates)
	s.Equal(Idle, s.m.State())
}

func (s *MachineSuite) TestProgressCapsAndResets() {
	s.m.PressStart()
	s.at(450)
	s.InDelta(15.0, s.m.Progress(), 1e-9)
	s.InDelta(0.10, s.m.FlashIntensity(), 1e-9)

	s.at(3014)
	s.Less(s.m.Progress(), float64(config.ProgressMax))
	s.at(3015)
	s.Equal(float64(config.ProgressMax), s.m.Progress())
	s.InDelta(0.67, s.m.FlashIntensity(), 1e-9)

	// The ticker stops at the cap, so the flash stops with it.
	s.at(6000)
	s.Equal(float64(config.ProgressMax), s.m.Progress())
	s.InDelta(0.67, s.m.FlashIntensity(), 1e-9)
	s.LessOrEqual(s.m.FlashIntensity(), config.FlashMax)

	s.m.PressEnd()
	s.Zero(s.m.Progress())
	s.Zero(s.m.FlashIntensity())
}

func (s *MachineSuite) TestRainDuringHold() {
	s.m.PressStart()
	s.frames(500)

	s.Require().Len(s.fx.spawns, 4)
	for i, sp := range s.fx.spawns {
		s.True(sp.rain)
		s.Equal(time.Duration(i+1)*config.RainInterval, sp.at)
	}
	s.Equal(4, s.fx.count(synth.RapidBurst))
	s.Equal(1, s.fx.ensures)
}

func (s *MachineSuite) TestStalledFrameRainsOnce() {
	s.m.PressStart()
	s.frames(130)
	s.at(1000)

	s.Require().Len(s.fx.spawns, 2)
	s.Equal(960*time.Millisecond, s.fx.spawns[1].at)
	s.Equal(2, s.fx.count(synth.RapidBurst))
	s.InDelta(33.0, s.m.Progress(), 1e-9, "progress still counts every missed tick")

	s.frames(1100)
	s.Len(s.fx.spawns, 3)
}

func (s *MachineSuite) TestReleaseStopsRain() {
	s.m.PressStart()
	s.frames(250)
	s.m.PressEnd()
	s.at(5000)
	s.Len(s.fx.spawns, 2)
	s.Zero(s.sched.Pending())
}

func (s *MachineSuite) TestTapLaunchesAndExplodes() {
	s.m.Tap()
	s.Require().Len(s.fx.spawns, 1)
	s.False(s.fx.spawns[0].rain)
	s.Equal([]played{{0, synth.Launch}}, s.fx.sounds)

	s.at(199)
	s.Zero(s.fx.count(synth.Explosion))
	s.at(200)
	s.Equal(played{config.ExplosionDelay, synth.Explosion}, s.fx.sounds[1])
}

func (s *MachineSuite) TestShortReleaseIsTap() {
	s.m.PressStart()
	s.at(100)
	s.m.Release(true)
	s.Equal(1, s.fx.count(synth.Launch))
}

func (s *MachineSuite) TestLongReleaseIsNotTap() {
	s.unlock()
	s.Zero(s.fx.count(synth.Launch))
}

func (s *MachineSuite) TestReleaseOutsideIsNotTap() {
	s.m.PressStart()
	s.at(100)
	s.m.Release(false)
	s.Zero(s.fx.count(synth.Launch))
	s.Equal(Idle, s.m.State())
}

func (s *MachineSuite) TestDoubleTapRevealsOnce() {
	s.unlock()
	s.at(4000)
	s.m.Tap()
	s.at(4100)
	s.m.Tap()
	s.False(s.m.Unlocked(), "the unlock is consumed by the double tap")

	s.at(4399)
	s.Empty(s.fx.reveals)
	s.at(4400)
	s.Equal([]time.Duration{4400 * time.Millisecond}, s.fx.reveals)

	s.m.Tap()
	s.at(9000)
	s.Len(s.fx.reveals, 1)
}

func (s *MachineSuite) TestSlowSecondTapDoesNotReveal() {
	s.unlock()
	s.at(4000)
	s.m.Tap()
	s.at(4600)
	s.m.Tap()
	s.at(9000)
	s.Empty(s.fx.reveals)
	s.True(s.m.Unlocked())
}

func (s *MachineSuite) TestDoubleTapNeedsUnlock() {
	s.m.Tap()
	s.at(100)
	s.m.Tap()
	s.at(1000)
	s.Empty(s.fx.reveals)
}

func (s *MachineSuite) TestSecondPressIgnored() {
	s.m.PressStart()
	s.at(1000)
	s.m.PressStart()
	s.at(3000)
	s.True(s.m.Unlocked(), "a repeated press must not restart the long-press timer")
}

func (s *MachineSuite) TestStaleTimersFromEarlierPress() {
	s.m.PressStart()
	s.at(2000)
	s.m.PressEnd()
	s.m.PressStart()
	s.at(4000)
	s.False(s.m.Unlocked(), "only the second press counts")
	s.at(5000)
	s.True(s.m.Unlocked())
}

func (s *MachineSuite) TestTeardownCancelsEverything() {
	s.unlock()
	s.at(4000)
	s.m.Tap()
	s.at(4100)
	s.m.Tap()
	s.m.PressStart()

	s.m.Teardown()
	s.Zero(s.sched.Pending())
	before := len(s.fx.sounds)
	s.at(10000)
	s.Len(s.fx.sounds, before)
	s.Empty(s.fx.reveals)

	s.m.PressStart()
	s.m.Tap()
	s.Equal(Idle, s.m.State())
	s.Len(s.fx.sounds, before)
	s.NotPanics(s.m.Teardown)
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func TestSnapshot(t *testing.T) {
	sched := timer.New(epoch)
	m := New(sched, &fakeEffects{sched: sched}, nil)
	m.PressStart()
	sched.Advance(epoch.Add(90 * time.Millisecond))

	snap := m.Snapshot()
	require.Equal(t, Pressing, snap.State)
	assert.InDelta(t, 3.0, snap.Progress, 1e-9)
	assert.InDelta(t, 0.02, snap.Flash, 1e-9)
	assert.False(t, snap.Unlocked)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "pressing", Pressing.String())
	assert.Equal(t, "long-press", LongPressReached.String())
	assert.Equal(t, "unknown", State(9).String())
}
