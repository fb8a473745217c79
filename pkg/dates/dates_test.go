package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNights(t *testing.T) {
	require.Equal(t, 14, Nights(MustParse("2023-01-01"), MustParse("2023-01-15")))
	require.Equal(t, 0, Nights(MustParse("2023-01-01"), MustParse("2023-01-01")))
	require.Equal(t, -1, Nights(MustParse("2023-01-02"), MustParse("2023-01-01")))
}

func TestDayTruncates(t *testing.T) {
	ts := time.Date(2023, 3, 26, 23, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	require.Equal(t, MustParse("2023-03-26"), Day(ts))
}

func TestEach(t *testing.T) {
	var got []string
	Each(MustParse("2023-01-30"), MustParse("2023-02-02"), func(d time.Time) {
		got = append(got, d.Format(Layout))
	})
	require.Equal(t, []string{"2023-01-30", "2023-01-31", "2023-02-01"}, got)
}

func TestOverlaps(t *testing.T) {
	a, b := MustParse("2023-01-01"), MustParse("2023-01-03")
	require.True(t, Overlaps(a, b, MustParse("2023-01-02"), MustParse("2023-01-05")))
	require.False(t, Overlaps(a, b, b, MustParse("2023-01-05")))
	require.True(t, Overlaps(a, a, a, b))
}

func TestContains(t *testing.T) {
	require.True(t, Contains(MustParse("2023-01-01"), MustParse("2023-12-31"), MustParse("2023-12-31")))
	require.False(t, Contains(MustParse("2023-01-01"), MustParse("2023-12-31"), MustParse("2024-01-01")))
}
