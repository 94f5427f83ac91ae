// Package timeutil converts the julian year-day timestamps used by cast file
// headers into UTC time.
package timeutil

import (
	"fmt"
	"math"
	"time"
)

// JulianDayTime converts a julian year/day-of-year plus clock time into a UTC
// time.Time. Seconds may carry a fractional part.
func JulianDayTime(year, yday, hour, min int, sec float64) (time.Time, error) {
	if yday < 1 || yday > 366 {
		return time.Time{}, fmt.Errorf("julian day %d out of range", yday)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec >= 60 {
		return time.Time{}, fmt.Errorf("clock time %02d:%02d:%v out of range", hour, min, sec)
	}

	whole, frac := math.Modf(sec)
	t := time.Date(year, time.January, 1, hour, min, int(whole), int(frac*float64(time.Second)), time.UTC)
	t = t.AddDate(0, 0, yday-1)
	if t.Year() != year {
		// day 366 of a non-leap year rolls into the next year
		return time.Time{}, fmt.Errorf("julian day %d not valid in year %d", yday, year)
	}
	return t, nil
}

// JulianDayTimestamp is JulianDayTime expressed as UTC seconds since the Unix
// epoch, the time coordinate used throughout the processing pipeline.
func JulianDayTimestamp(year, yday, hour, min int, sec float64) (float64, error) {
	t, err := JulianDayTime(year, yday, hour, min, sec)
	if err != nil {
		return 0, err
	}
	return float64(t.UnixNano()) / float64(time.Second), nil
}

// DayOfYear returns the julian day number of t in its own location.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}
