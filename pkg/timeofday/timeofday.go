// Package timeofday converts wall-clock times ("HH:MM" or "HH:MM:SS") to and
// from seconds elapsed since midnight.
package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SecondsPerDay bounds the valid range of elapsed seconds.
const SecondsPerDay = 24 * 60 * 60

var ErrBadFormat = errors.New("time must be in HH:MM or HH:MM:SS format")

// ParseError reports a time string that could not be converted.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse time %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Clock is satisfied by dateutil.RealClock and test clocks.
type Clock interface {
	Now() time.Time
}

// Time is a time of day with second precision.
type Time struct {
	seconds int
}

// Parse reads "H:MM" or "H:MM:SS".
func Parse(s string) (Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Time{}, &ParseError{Input: s, Err: ErrBadFormat}
	}

	limits := []int{24, 60, 60}
	values := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n >= limits[i] {
			return Time{}, &ParseError{Input: s, Err: ErrBadFormat}
		}
		values[i] = n
	}

	return Time{seconds: values[0]*3600 + values[1]*60 + values[2]}, nil
}

// FromSeconds builds a Time from seconds since midnight.
func FromSeconds(seconds int) (Time, error) {
	if seconds < 0 || seconds >= SecondsPerDay {
		return Time{}, fmt.Errorf("seconds %d out of range [0, %d)", seconds, SecondsPerDay)
	}
	return Time{seconds: seconds}, nil
}

// Now returns the clock's current time of day.
func Now(clock Clock) Time {
	now := clock.Now()
	return Time{seconds: now.Hour()*3600 + now.Minute()*60 + now.Second()}
}

// Seconds returns the seconds elapsed since midnight.
func (t Time) Seconds() int {
	return t.seconds
}

func (t Time) Hour() int   { return t.seconds / 3600 }
func (t Time) Minute() int { return t.seconds % 3600 / 60 }
func (t Time) Second() int { return t.seconds % 60 }

// String renders "HH:MM".
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// StringWithSeconds renders "HH:MM:SS".
func (t Time) StringWithSeconds() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t Time) Before(other Time) bool { return t.seconds < other.seconds }

func (t Time) After(other Time) bool { return t.seconds > other.seconds }
