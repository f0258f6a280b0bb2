package shared

import "time"

// DateRange is an optional inclusive date window. Nil bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window, comparing calendar days.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	if r.Start != nil && day.Before(truncateDay(*r.Start)) {
		return false
	}
	if r.End != nil && day.After(truncateDay(*r.End)) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set
func (r DateRange) IsOpen() bool {
	return r.Start == nil && r.End == nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
