package sim

import (
	"log"
	"math"
)

// VTimeInSec defines simulated time in seconds.
type VTimeInSec float64

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Seconds converts a cycle count into simulated time.
func (f Freq) Seconds(cycles VTimeInCycle) VTimeInSec {
	return VTimeInSec(float64(cycles)) * f.Period()
}

// Cycles converts simulated time into the number of whole cycles that fit
// in it.
func (f Freq) Cycles(t VTimeInSec) VTimeInCycle {
	if math.IsNaN(float64(t)) || t < 0 {
		log.Panic("invalid time")
	}

	return VTimeInCycle(math.Floor(float64(t)*float64(f) + 1e-9))
}

// Rate converts a per-cycle ratio, such as transfers per cycle, into a
// per-second rate.
func (f Freq) Rate(perCycle float64) float64 {
	return perCycle * float64(f)
}
