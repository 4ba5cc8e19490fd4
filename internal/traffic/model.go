// Package traffic maps an instant to a relative load multiplier. The
// model is a pure function of the timestamp so historical and real-time
// runs produce statistically identical shapes and any run is
// reproducible from its time range alone.
package traffic

import (
	"time"
	_ "time/tzdata" // traffic shape is defined in Americas local time
)

const (
	peakFactor      = 1.0
	offPeakFactor   = 0.3
	overnightFactor = 0.2
	weekendFactor   = 0.6

	// Floor keeps intensity strictly positive so downstream generators
	// always produce a nonzero baseline.
	Floor = 0.05
)

var easternTime = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// tzdata is linked in, so this only trips on a corrupt build.
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// Intensity returns the traffic multiplier for ts, always in (0, 1].
// No randomness, no state: equal timestamps give equal intensities.
func Intensity(ts time.Time) float64 {
	local := ts.In(easternTime)
	hour := local.Hour()

	factor := offPeakFactor
	switch {
	case isPeakHour(hour):
		factor = peakFactor
	case hour <= 6:
		// Overnight trough, strictly below generic off-peak.
		factor = overnightFactor
	}

	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		factor *= weekendFactor
	}

	if factor < Floor {
		factor = Floor
	}
	if factor > 1.0 {
		factor = 1.0
	}
	return factor
}

// Peak windows: 9-12, 14-17 and 19-21 local time.
func isPeakHour(hour int) bool {
	return (hour >= 9 && hour <= 12) || (hour >= 14 && hour <= 17) || (hour >= 19 && hour <= 21)
}
