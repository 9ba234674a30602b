package modem

import "time"

// Clock is the scheduling primitive used for settle delays and response
// deadlines. Deadlines are always measured from the moment a wait begins.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
