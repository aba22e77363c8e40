package quiz

import "time"

// Timer is the part of *time.Timer a session uses.
type Timer interface {
	Stop() bool
}

// Clock provides the time source and countdowns of sessions.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
