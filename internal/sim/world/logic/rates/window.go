package rates

import "time"

// Allow counts one event in a fixed window starting at start. It returns the
// updated window and, when the event is over max, how long until the window
// resets. A zero window or non-positive max allows everything.
func Allow(now, start time.Time, count int, window time.Duration, max int) (newStart time.Time, newCount int, ok bool, cooldown time.Duration) {
	newStart = start
	newCount = count
	if window <= 0 || max <= 0 {
		return newStart, newCount, true, 0
	}

	if now.Sub(newStart) >= window {
		newStart = now
		newCount = 0
	}
	newCount++
	if newCount <= max {
		return newStart, newCount, true, 0
	}
	return newStart, newCount, false, newStart.Add(window).Sub(now)
}

// Window is Allow with its state kept. Not safe for concurrent use.
type Window struct {
	Size time.Duration
	Max  int

	start time.Time
	count int
}

func (w *Window) Allow(now time.Time) (bool, time.Duration) {
	var ok bool
	var cooldown time.Duration
	w.start, w.count, ok, cooldown = Allow(now, w.start, w.count, w.Size, w.Max)
	return ok, cooldown
}
