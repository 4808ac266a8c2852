package reviews

import (
	"errors"
	"testing"
	"time"
)

func TestSubmitValidatesRating(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		if _, err := Submit(SubmitParams{ID: "r", Rating: rating, CreatedAt: time.Now()}); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: got %v, want ErrInvalidRating", rating, err)
		}
	}
	r, err := Submit(SubmitParams{ID: "r", BookingID: "b", ReviewerID: "a", RevieweeID: "c", Rating: 5, Comment: "  great  ", CreatedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if r.Comment != "great" {
		t.Fatalf("comment not trimmed: %q", r.Comment)
	}
	if evs := r.PendingEvents(); len(evs) != 1 || evs[0].EventName() != "review.submitted" {
		t.Fatalf("unexpected events: %+v", evs)
	}
}

func TestAggregate(t *testing.T) {
	mk := func(ratings ...int) []*Review {
		out := make([]*Review, 0, len(ratings))
		for _, r := range ratings {
			out = append(out, &Review{Rating: r})
		}
		return out
	}
	cases := []struct {
		name  string
		in    []*Review
		mean  float64
		count int
	}{
		{"none", nil, 0, 0},
		{"single", mk(5), 5, 1},
		{"mixed", mk(4, 5, 3), 4, 3},
		{"rounds to one decimal", mk(5, 4, 4), 4.3, 3},
		{"half point kept", mk(4, 5), 4.5, 2},
	}
	for _, tc := range cases {
		mean, count := Aggregate(tc.in)
		if mean != tc.mean || count != tc.count {
			t.Errorf("%s: got (%v, %d), want (%v, %d)", tc.name, mean, count, tc.mean, tc.count)
		}
	}
}
