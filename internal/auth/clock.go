package auth

import "time"

// Clock supplies the current time for expiry comparisons. Tests substitute
// a fixed clock to exercise expiry edges deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }
