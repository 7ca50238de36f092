package domain

import (
	"errors"
	"sort"
	"time"
)

var ErrInvalidInterval = errors.New("interval end must be after start")

// Interval is a half-open time span [Start, End): Start is included,
// End is excluded. A span ending exactly when another starts does not
// overlap it, which makes back-to-back bookings unambiguous.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	start = start.UTC()
	end = end.UTC()
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Clip intersects iv with window. The second return is false when the
// two are disjoint (including when they merely touch).
func (iv Interval) Clip(window Interval) (Interval, bool) {
	start := iv.Start
	if window.Start.After(start) {
		start = window.Start
	}
	end := iv.End
	if window.End.Before(end) {
		end = window.End
	}
	if !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// MergeSorted coalesces intervals sorted by start into maximal runs,
// joining any that overlap or touch. Active bookings never overlap,
// but back-to-back bookings are legal and adjacent, so merging is
// still required before computing gaps.
func MergeSorted(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	out := make([]Interval, 0, len(ivs))
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if !iv.Start.After(cur.End) {
			if iv.End.After(cur.End) {
				cur.End = iv.End
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	return append(out, cur)
}

// FreeSlots returns the complement of busy within window: the ordered,
// disjoint sub-intervals of window not covered by any busy interval.
// Busy intervals need not be sorted or disjoint; they are clipped to
// the window, sorted and merged first.
func FreeSlots(window Interval, busy []Interval) []Interval {
	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if c, ok := b.Clip(window); ok {
			clipped = append(clipped, c)
		}
	}
	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})
	merged := MergeSorted(clipped)

	free := make([]Interval, 0, len(merged)+1)
	cursor := window.Start
	for _, b := range merged {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if window.End.After(cursor) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}
