package domain

import "github.com/jonboulle/clockwork"

// clock is the time source for SynthesizeNow so tools can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used by SynthesizeNow. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
