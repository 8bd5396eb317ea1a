package clock

import "fmt"

// RepeatPolicy controls how many full loops an animation plays before it
// finishes. The zero value plays forever.
type RepeatPolicy int

const (
	// RepeatInfinite loops the animation until it is disposed.
	RepeatInfinite RepeatPolicy = 0

	// RepeatOnce plays the animation a single time. Equivalent to
	// RepeatCount(1).
	RepeatOnce RepeatPolicy = 1
)

// RepeatCount plays the animation exactly n times. Values below 1 are
// treated as RepeatOnce.
func RepeatCount(n int) RepeatPolicy {
	if n < 1 {
		n = 1
	}
	return RepeatPolicy(n)
}

// Satisfied reports whether completedLoops meets the policy's threshold.
// An infinite policy is never satisfied.
func (p RepeatPolicy) Satisfied(completedLoops int) bool {
	return p > 0 && completedLoops >= int(p)
}

// String describes the policy for logging.
func (p RepeatPolicy) String() string {
	switch {
	case p <= RepeatInfinite:
		return "infinite"
	case p == RepeatOnce:
		return "once"
	default:
		return fmt.Sprintf("finite(%d)", int(p))
	}
}
