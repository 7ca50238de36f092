package domain

import (
	"errors"
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestNewInterval_RejectsNonPositiveDuration(t *testing.T) {
	if _, err := NewInterval(at(10, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidInterval)
	}
	if _, err := NewInterval(at(11, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidInterval)
	}
	if _, err := NewInterval(at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}

func TestInterval_Overlaps_HalfOpen(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", Interval{at(9, 0), at(10, 0)}, Interval{at(11, 0), at(12, 0)}, false},
		{"touching is not overlap", Interval{at(10, 0), at(11, 0)}, Interval{at(11, 0), at(12, 0)}, false},
		{"one minute overlap", Interval{at(10, 0), at(11, 0)}, Interval{at(10, 59), at(11, 1)}, true},
		{"contained", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("b.Overlaps(a) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInterval_Clip(t *testing.T) {
	window := Interval{at(9, 0), at(17, 0)}

	t.Run("inside window unchanged", func(t *testing.T) {
		got, ok := Interval{at(10, 0), at(11, 0)}.Clip(window)
		if !ok {
			t.Fatalf("expected clip")
		}
		if !got.Start.Equal(at(10, 0)) || !got.End.Equal(at(11, 0)) {
			t.Fatalf("clip = %v", got)
		}
	})

	t.Run("straddling start is trimmed", func(t *testing.T) {
		got, ok := Interval{at(8, 0), at(10, 0)}.Clip(window)
		if !ok {
			t.Fatalf("expected clip")
		}
		if !got.Start.Equal(at(9, 0)) || !got.End.Equal(at(10, 0)) {
			t.Fatalf("clip = %v", got)
		}
	})

	t.Run("disjoint yields none", func(t *testing.T) {
		if _, ok := (Interval{at(7, 0), at(8, 0)}).Clip(window); ok {
			t.Fatalf("expected no clip")
		}
	})

	t.Run("touching window edge yields none", func(t *testing.T) {
		if _, ok := (Interval{at(17, 0), at(18, 0)}).Clip(window); ok {
			t.Fatalf("expected no clip")
		}
	})
}

func TestMergeSorted(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := MergeSorted(nil); got != nil {
			t.Fatalf("MergeSorted(nil) = %v, want nil", got)
		}
	})

	t.Run("adjacent coalesce", func(t *testing.T) {
		got := MergeSorted([]Interval{
			{at(9, 0), at(10, 0)},
			{at(10, 0), at(11, 0)},
			{at(12, 0), at(13, 0)},
		})
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if !got[0].Start.Equal(at(9, 0)) || !got[0].End.Equal(at(11, 0)) {
			t.Fatalf("got[0] = %v", got[0])
		}
	})

	t.Run("overlapping coalesce keeps max end", func(t *testing.T) {
		got := MergeSorted([]Interval{
			{at(9, 0), at(12, 0)},
			{at(10, 0), at(11, 0)},
		})
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if !got[0].End.Equal(at(12, 0)) {
			t.Fatalf("end = %v, want %v", got[0].End, at(12, 0))
		}
	})
}

func TestFreeSlots(t *testing.T) {
	window := Interval{at(9, 0), at(17, 0)}

	t.Run("no bookings yields whole window", func(t *testing.T) {
		got := FreeSlots(window, nil)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0] != window {
			t.Fatalf("slot = %v, want %v", got[0], window)
		}
	})

	t.Run("back to back bookings cover window", func(t *testing.T) {
		got := FreeSlots(Interval{at(9, 0), at(11, 0)}, []Interval{
			{at(9, 0), at(10, 0)},
			{at(10, 0), at(11, 0)},
		})
		if len(got) != 0 {
			t.Fatalf("len = %d, want 0", len(got))
		}
	})

	t.Run("gaps before between and after", func(t *testing.T) {
		got := FreeSlots(window, []Interval{
			{at(10, 0), at(11, 0)},
			{at(13, 0), at(14, 0)},
		})
		want := []Interval{
			{at(9, 0), at(10, 0)},
			{at(11, 0), at(13, 0)},
			{at(14, 0), at(17, 0)},
		}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("slot[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("busy outside window ignored", func(t *testing.T) {
		got := FreeSlots(window, []Interval{{at(7, 0), at(8, 0)}})
		if len(got) != 1 || got[0] != window {
			t.Fatalf("slots = %v, want [%v]", got, window)
		}
	})

	t.Run("unsorted overlapping busy handled", func(t *testing.T) {
		got := FreeSlots(window, []Interval{
			{at(13, 0), at(14, 0)},
			{at(8, 0), at(10, 0)},
			{at(9, 30), at(10, 30)},
		})
		want := []Interval{
			{at(10, 30), at(13, 0)},
			{at(14, 0), at(17, 0)},
		}
		if len(got) != len(want) {
			t.Fatalf("slots = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("slot[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("complement law", func(t *testing.T) {
		busy := []Interval{
			{at(9, 30), at(10, 15)},
			{at(12, 0), at(13, 45)},
			{at(16, 0), at(18, 0)},
		}
		free := FreeSlots(window, busy)

		// Free and clipped-busy intervals together must tile the window
		// exactly, with no overlap between the two sets.
		all := make([]Interval, 0, len(free)+len(busy))
		for _, b := range busy {
			if c, ok := b.Clip(window); ok {
				all = append(all, c)
			}
		}
		all = append(all, free...)
		for i, a := range all {
			for j, b := range all {
				if i != j && a.Overlaps(b) {
					t.Fatalf("intervals %v and %v overlap", a, b)
				}
			}
		}
		var total time.Duration
		for _, iv := range all {
			total += iv.End.Sub(iv.Start)
		}
		if total != window.End.Sub(window.Start) {
			t.Fatalf("covered %v of window %v", total, window.End.Sub(window.Start))
		}
	})
}
