package clock

import "time"

// Clock returns the current time. Override in tests for determinism.
type Clock interface {
	Now() time.Time
}

// Func adapts a function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// System is the wall clock in UTC.
var System Clock = Func(func() time.Time { return time.Now().UTC() })
