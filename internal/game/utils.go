package game

import (
	"fmt"
	"time"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// debugLine renders the overlay shown with -debug.
func debugLine(fps, tps float64, uptime time.Duration, s Stats) string {
	return fmt.Sprintf("FPS %.0f  TPS %.0f  up %s\nbursts %d  sparks %d  timers %d\nsounds %d played, %d skipped",
		fps, tps, formatDuration(uptime),
		s.Bursts, s.Sparks, s.Pending,
		s.Audio.Played, s.Audio.Skipped)
}
