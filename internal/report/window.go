package report

import (
	"fmt"
	"time"
)

// Window is the calendar month a report covers. It is validated once
// at request entry and never mutated.
type Window struct {
	Year  int
	Month int
}

// Validate rejects impossible months and years outside a sane bound.
// It must pass before any upstream call is made.
func (w Window) Validate() error {
	if w.Month < 1 || w.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", w.Month)
	}
	if w.Year < 2000 || w.Year > 2100 {
		return fmt.Errorf("year must be between 2000 and 2100, got %d", w.Year)
	}
	return nil
}

// EpochRange returns the inclusive UTC range of the month in epoch
// milliseconds: first instant of the month through the last whole
// second before the next month.
func (w Window) EpochRange() (startMS, endMS int64) {
	start := time.Date(w.Year, time.Month(w.Month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start.UnixMilli(), end.UnixMilli()
}
