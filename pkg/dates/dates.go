package dates

import "time"

const Layout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD date.
func Parse(value string) (time.Time, error) {
	return time.ParseInLocation(Layout, value, time.UTC)
}

// MustParse is Parse for fixtures.
func MustParse(value string) time.Time {
	t, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return t
}

// Nights counts the nights between two days. It is negative when to precedes from.
func Nights(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// AddDays shifts a day by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// Each calls fn for every day in [from, to).
func Each(from, to time.Time, fn func(time.Time)) {
	for d := Day(from); d.Before(Day(to)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Overlaps reports whether the half-open ranges [aFrom, aTo) and [bFrom, bTo) intersect.
// Zero-night ranges are treated as a single day.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	aFrom, aTo, bFrom, bTo = Day(aFrom), Day(aTo), Day(bFrom), Day(bTo)
	if !aTo.After(aFrom) {
		aTo = aFrom.AddDate(0, 0, 1)
	}
	if !bTo.After(bFrom) {
		bTo = bFrom.AddDate(0, 0, 1)
	}
	return aFrom.Before(bTo) && bFrom.Before(aTo)
}

// Contains reports whether day lies in the closed window [from, to].
func Contains(from, to, day time.Time) bool {
	day = Day(day)
	return !day.Before(Day(from)) && !day.After(Day(to))
}
