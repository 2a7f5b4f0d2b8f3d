// Package clock provides the injected time capability for Kuiper's sole
// nondeterministic builtin, now(). Per spec.md §9 DESIGN NOTES, routing
// wall-clock access through a capability lets tests pin time and makes
// "determinism modulo now()" (Testable Property 1) checkable directly.
package clock

import "time"

// Clock returns the current time in milliseconds since the Unix epoch.
type Clock interface {
	NowMillis() int64
}

type systemClock struct{}

func (systemClock) NowMillis() int64 { return time.Now().UnixMilli() }

// System is the default wall-clock implementation.
var System Clock = systemClock{}

// Frozen returns a Clock that always reports the same instant, for tests.
func Frozen(millis int64) Clock { return frozenClock{millis} }

type frozenClock struct{ millis int64 }

func (f frozenClock) NowMillis() int64 { return f.millis }
