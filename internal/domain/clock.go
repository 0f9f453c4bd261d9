package domain

import "github.com/jonboulle/clockwork"

// clock is the package-level time source for generated_at stamps.
// Tests freeze it via SetClock so payloads and their digests are reproducible.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for payload stamps. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
