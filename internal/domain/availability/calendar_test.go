package availability

import (
	"testing"
	"time"

	"campusconnect/internal/domain/shared/daterange"
)

func rng(from, to int) daterange.DateRange {
	return daterange.DateRange{
		Start: time.Date(2024, time.May, from, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.May, to, 0, 0, 0, 0, time.UTC),
	}
}

func TestCalendarBlockAndConflict(t *testing.T) {
	var cal Calendar
	now := time.Now()
	cal.Block(rng(1, 5), "b1", now)
	cal.Block(rng(10, 12), "b2", now)

	cases := []struct {
		name string
		r    daterange.DateRange
		want bool
	}{
		{"inside first", rng(2, 3), true},
		{"touching end", rng(5, 10), false},
		{"straddles second", rng(11, 14), true},
		{"before all", rng(1, 1), false},
	}
	for _, tc := range cases {
		if got := cal.HasConflict(tc.r); got != tc.want {
			t.Errorf("%s: HasConflict = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCalendarUnblockIsIdempotent(t *testing.T) {
	var cal Calendar
	now := time.Now()
	cal.Block(rng(1, 5), "b1", now)
	cal.Block(rng(6, 8), "b2", now)

	if !cal.Unblock("b1") {
		t.Fatal("expected b1 to be removed")
	}
	if cal.Unblock("b1") {
		t.Fatal("second unblock must report nothing removed")
	}
	if cal.HasConflict(rng(1, 5)) {
		t.Fatal("range should be free after unblock")
	}
	if len(cal.Intervals) != 1 || cal.Intervals[0].BookingID != "b2" {
		t.Fatalf("unexpected intervals: %+v", cal.Intervals)
	}
}

func TestCalendarCopyIsIndependent(t *testing.T) {
	var cal Calendar
	cal.Block(rng(1, 2), "b1", time.Now())
	cp := cal.Copy()
	cp.Block(rng(3, 4), "b2", time.Now())
	if len(cal.Intervals) != 1 {
		t.Fatalf("copy mutated original: %+v", cal.Intervals)
	}
}
