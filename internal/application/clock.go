package application

import "time"

// Clock abstracts the current-time source so expiry, cooldown, and lockout
// logic are testable with a fixed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall-clock Clock used in production.
func SystemClock() Clock { return systemClock{} }
