package daterange

import (
	"errors"
	"testing"
	"time"
)

func mayDay(d int) time.Time {
	return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedAndEmptyRanges(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"inverted", mayDay(5), mayDay(1)},
		{"empty", mayDay(3), mayDay(3)},
		{"zero start", time.Time{}, mayDay(3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.start, tc.end); !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestDaysRoundsUpPartialDays(t *testing.T) {
	cases := []struct {
		name string
		r    DateRange
		want int
	}{
		{"three whole days", DateRange{Start: mayDay(1), End: mayDay(4)}, 3},
		{"one hour", DateRange{Start: mayDay(1), End: mayDay(1).Add(time.Hour)}, 1},
		{"twenty five hours", DateRange{Start: mayDay(1), End: mayDay(2).Add(time.Hour)}, 2},
	}
	for _, tc := range cases {
		if got := tc.r.Days(); got != tc.want {
			t.Errorf("%s: Days() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := DateRange{Start: mayDay(1), End: mayDay(5)}
	touching := DateRange{Start: mayDay(5), End: mayDay(8)}
	inside := DateRange{Start: mayDay(2), End: mayDay(3)}
	straddling := DateRange{Start: mayDay(4), End: mayDay(6)}

	if a.Overlaps(touching) || touching.Overlaps(a) {
		t.Fatal("ranges that only touch must not overlap")
	}
	if !a.Overlaps(inside) || !a.Overlaps(straddling) {
		t.Fatal("expected overlap")
	}
}
