package mpd

import "time"

// Clock abstracts wall-clock reads so manifest timestamps are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}
