package core

import "time"

// FrameDelay returns how long to wait after a frame that began at start so the
// loop holds a steady wall-clock rate. Frames that overran return zero.
func FrameDelay(interval time.Duration, start, now time.Time) time.Duration {
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}
