package task

import "time"

// Clock supplies "today" to the engine. Injecting it keeps deadline
// computation deterministic given its inputs; tests use a fixed clock.
type Clock interface {
	Today() Date
}

type systemClock struct{}

func (systemClock) Today() Date { return DateOf(time.Now()) }

// SystemClock returns a Clock backed by the local wall clock.
func SystemClock() Clock { return systemClock{} }
