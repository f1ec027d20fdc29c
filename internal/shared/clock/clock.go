package clock

import "time"

// Clock abstracts the wall clock so services depending on "today" stay
// deterministic under test. All times are UTC.
type Clock interface {
	Now() time.Time
	// Today is Now truncated to a calendar day.
	Today() time.Time
}

type systemClock struct{}

func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	return Midnight(time.Now().UTC())
}

// Fixed returns a clock pinned to t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t.UTC()}
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time {
	return f.t
}

func (f fixedClock) Today() time.Time {
	return Midnight(f.t)
}

// Midnight truncates t to its UTC calendar day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
