package dateutil

import "time"

// Clock abstracts time.Now so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the local system clock.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// IsSameDay reports whether two instants fall on the same calendar day,
// each read in its own location.
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// IsLeapYear applies the Gregorian rule: divisible by 4, and not by 100 unless also by 400.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// Today returns today's date according to the clock.
// A nil clock falls back to the system clock.
func Today(clock Clock) Date {
	if clock == nil {
		clock = RealClock{}
	}
	return FromTime(clock.Now())
}
