package engine

import "time"

// Timer is a pending callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks. The engine never sleeps; it only asks the
// clock to run a function later.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules callbacks with time.AfterFunc
type RealClock struct{}

// AfterFunc runs f in its own goroutine after d
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
