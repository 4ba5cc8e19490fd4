package traffic

import (
	"testing"
	"time"
)

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestIntensityAlwaysInUnitInterval(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14*24; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		got := Intensity(ts)
		if got <= 0 || got > 1 {
			t.Fatalf("intensity(%s) = %v, want in (0, 1]", ts, got)
		}
	}
}

func TestIntensityIsDeterministic(t *testing.T) {
	ts := time.Date(2024, time.March, 6, 15, 30, 0, 0, time.UTC)
	if Intensity(ts) != Intensity(ts) {
		t.Fatalf("intensity must be a pure function of the timestamp")
	}
}

func TestPeakExceedsOvernightSameDay(t *testing.T) {
	loc := eastern(t)
	// Wednesday 2024-01-10.
	peak := time.Date(2024, time.January, 10, 10, 0, 0, 0, loc)
	overnight := time.Date(2024, time.January, 10, 3, 0, 0, 0, loc)

	if Intensity(peak) <= Intensity(overnight) {
		t.Fatalf("peak intensity %v should exceed overnight %v",
			Intensity(peak), Intensity(overnight))
	}
}

func TestOvernightBelowGenericOffPeak(t *testing.T) {
	loc := eastern(t)
	overnight := time.Date(2024, time.January, 10, 3, 0, 0, 0, loc)
	offPeak := time.Date(2024, time.January, 10, 13, 0, 0, 0, loc)

	if Intensity(overnight) >= Intensity(offPeak) {
		t.Fatalf("overnight %v should be strictly below off-peak %v",
			Intensity(overnight), Intensity(offPeak))
	}
}

func TestWeekendDampensWeekday(t *testing.T) {
	loc := eastern(t)
	// Same peak hour, Wednesday vs Saturday.
	wednesday := time.Date(2024, time.January, 10, 10, 0, 0, 0, loc)
	saturday := time.Date(2024, time.January, 13, 10, 0, 0, 0, loc)

	if Intensity(saturday) >= Intensity(wednesday) {
		t.Fatalf("weekend %v should be below weekday %v",
			Intensity(saturday), Intensity(wednesday))
	}
}
