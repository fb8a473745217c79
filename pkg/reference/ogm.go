// Package reference builds and checks Belgian structured payment references
// (OGM/VCS): ten digits followed by a two-digit modulo 97 check.
package reference

import (
	"fmt"
	"strings"
)

// Structured returns the formatted reference +++xxx/xxxx/xxxxx+++ for base,
// which is reduced to its last ten digits.
func Structured(base uint64) string {
	base %= 10_000_000_000
	digits := fmt.Sprintf("%010d%02d", base, checksum(base))
	return fmt.Sprintf("+++%s/%s/%s+++", digits[0:3], digits[3:7], digits[7:12])
}

// ForBooking derives the reference of the nth funding of a booking number.
func ForBooking(bookingNumber int64, position int) string {
	return Structured(uint64(bookingNumber)*100 + uint64(position%100))
}

// Normalize strips every non digit so that formatted and raw references compare equal.
func Normalize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders a twelve digit reference in its +++xxx/xxxx/xxxxx+++ form.
// The second result is false when value does not hold a valid reference.
func Format(value string) (string, bool) {
	if !Valid(value) {
		return "", false
	}
	digits := Normalize(value)
	return fmt.Sprintf("+++%s/%s/%s+++", digits[0:3], digits[3:7], digits[7:12]), true
}

// Valid reports whether value holds twelve digits with a matching check.
func Valid(value string) bool {
	digits := Normalize(value)
	if len(digits) != 12 {
		return false
	}
	var base uint64
	for _, r := range digits[:10] {
		base = base*10 + uint64(r-'0')
	}
	return fmt.Sprintf("%02d", checksum(base)) == digits[10:]
}

func checksum(base uint64) uint64 {
	c := base % 97
	if c == 0 {
		return 97
	}
	return c
}
