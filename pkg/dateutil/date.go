package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// UnixEpochOffset is the day offset of 1 January 1970.
	UnixEpochOffset = 25569

	// MaxYear is the last year the offset scale covers.
	MaxYear = 9999

	// MaxOffset is the day offset of 31.12.9999.
	MaxOffset = 2958465

	dayMilliseconds = 86_400_000
)

// Epoch is day zero of the offset scale (the spreadsheet serial-date origin).
var Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	// ErrBadFormat is returned when input does not match day.month.year.
	ErrBadFormat = errors.New("date must be in day.month.year format")

	// ErrBeforeEpoch is returned for dates or offsets earlier than 30.12.1899.
	ErrBeforeEpoch = errors.New("date is before 30.12.1899")

	// ErrOutOfRange is returned for dates or offsets later than 31.12.9999.
	ErrOutOfRange = errors.New("date is after 31.12.9999")
)

// ParseError reports a date string that could not be converted.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// cumulative day count at the end of each month in a common year
var monthEnds = [12]int{31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// Date is a Gregorian calendar date on or after Epoch.
type Date struct {
	Day   int
	Month int
	Year  int
}

// Parse converts "d.m.yyyy" (digits only, leading zeros allowed) into a Date.
// Years after MaxYear fail with ErrOutOfRange.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Date{}, &ParseError{Input: s, Err: ErrBadFormat}
	}

	var fields [3]int
	for i, p := range parts {
		if !isDigits(p) {
			return Date{}, &ParseError{Input: s, Err: ErrBadFormat}
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, &ParseError{Input: s, Err: ErrBadFormat}
		}
		fields[i] = n
	}

	d := Date{Day: fields[0], Month: fields[1], Year: fields[2]}
	if d.Year > MaxYear {
		return Date{}, &ParseError{Input: s, Err: ErrOutOfRange}
	}
	if !d.valid() {
		return Date{}, &ParseError{Input: s, Err: ErrBadFormat}
	}
	if d.Before(Date{Day: 30, Month: 12, Year: 1899}) {
		return Date{}, &ParseError{Input: s, Err: ErrBeforeEpoch}
	}
	return d, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// OffsetOf parses s and returns its day offset.
func OffsetOf(s string) (int, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return d.Offset(), nil
}

// FromTime takes the calendar date of t in its own location.
func FromTime(t time.Time) Date {
	return Date{Day: t.Day(), Month: int(t.Month()), Year: t.Year()}
}

// FromOffset converts a day offset back into a calendar date.
func FromOffset(offset int) (Date, error) {
	switch {
	case offset < 0:
		return Date{}, fmt.Errorf("offset %d: %w", offset, ErrBeforeEpoch)
	case offset > MaxOffset:
		return Date{}, fmt.Errorf("offset %d: %w", offset, ErrOutOfRange)
	case offset == 0:
		return Date{Day: 30, Month: 12, Year: 1899}, nil
	case offset == 1:
		return Date{Day: 31, Month: 12, Year: 1899}, nil
	}

	// offset 2 is the first day of 1900
	year := 1900
	remaining := offset - 1
	for remaining > DaysInYear(year) {
		remaining -= DaysInYear(year)
		year++
	}

	leap := IsLeapYear(year)
	prevEnd := 0
	for i, end := range monthEnds {
		if leap && i >= 1 {
			end++
		}
		if remaining <= end {
			return Date{Day: remaining - prevEnd, Month: i + 1, Year: year}, nil
		}
		prevEnd = end
	}

	// unreachable: remaining never exceeds DaysInYear(year)
	return Date{}, fmt.Errorf("offset %d: day %d overflows year %d", offset, remaining, year)
}

// Offset returns the number of days elapsed since Epoch.
func (d Date) Offset() int {
	switch d {
	case Date{Day: 30, Month: 12, Year: 1899}:
		return 0
	case Date{Day: 31, Month: 12, Year: 1899}:
		return 1
	}
	ms := d.Time().UnixMilli() - Epoch.UnixMilli()
	return int(ms / dayMilliseconds)
}

// UnixDays returns the number of days since 1 January 1970.
func (d Date) UnixDays() int {
	return d.Offset() - UnixEpochOffset
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// String renders the date as d.m.yyyy without zero padding.
func (d Date) String() string {
	return fmt.Sprintf("%d.%d.%d", d.Day, d.Month, d.Year)
}

// WeekdayIndex returns the Monday-based weekday index (0 = Monday) of the date.
func (d Date) WeekdayIndex() int {
	return WeekdayIndex(d.Offset())
}

// Weekday returns the date's weekday as time.Weekday.
func (d Date) Weekday() time.Weekday {
	return time.Weekday((d.WeekdayIndex() + 1) % 7)
}

func (d Date) Before(other Date) bool { return d.compare(other) < 0 }

func (d Date) After(other Date) bool { return d.compare(other) > 0 }

func (d Date) Equal(other Date) bool { return d == other }

// IsToday reports whether d is the clock's current date.
func (d Date) IsToday(clock Clock) bool {
	if clock == nil {
		clock = RealClock{}
	}
	return IsSameDay(d.Time(), clock.Now())
}

// IsAfterToday reports whether d lies strictly in the future.
func (d Date) IsAfterToday(clock Clock) bool {
	return d.After(Today(clock))
}

// DaysBetween returns offset(a) - offset(b); negative when a precedes b.
func DaysBetween(a, b Date) int {
	return a.Offset() - b.Offset()
}

// WeekdayIndex maps a day offset to a Monday-based weekday index.
// 30.12.1899 (offset 0) was a Saturday.
func WeekdayIndex(offset int) int {
	if offset < 0 {
		switch offset % 7 {
		case -1:
			return 4
		case -2:
			return 3
		case -3:
			return 2
		case -4:
			return 1
		case -5:
			return 0
		case -6:
			return 6
		default:
			return 5
		}
	}
	switch offset % 7 {
	case 1:
		return 6
	case 2:
		return 0
	case 3:
		return 1
	case 4:
		return 2
	case 5:
		return 3
	case 6:
		return 4
	default:
		return 5
	}
}

func (d Date) valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Year < 1 {
		return false
	}
	t := d.Time()
	return t.Day() == d.Day && int(t.Month()) == d.Month && t.Year() == d.Year
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (d Date) compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return d.Year - other.Year
	case d.Month != other.Month:
		return d.Month - other.Month
	default:
		return d.Day - other.Day
	}
}
