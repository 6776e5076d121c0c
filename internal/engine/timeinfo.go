package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrCalendarGap is returned when neighboring guide-series timestamps
// skip more than one month or year boundary. That means the guide series
// was built wrong, and silently deriving flags from it would misfire the
// month/year business events.
var ErrCalendarGap = errors.New("calendar neighbors skip a period boundary")

// TimeInfo holds the day-boundary facts for one guide-series timestamp,
// derived from the timestamp and its neighbors. A zero prev marks the
// first day of the run, a zero next the last; both force the
// corresponding first/last flags on.
type TimeInfo struct {
	Time time.Time

	FirstDayOfWeek  bool
	LastDayOfWeek   bool
	FirstDayOfMonth bool
	LastDayOfMonth  bool
	FirstDayOfYear  bool
	LastDayOfYear   bool
	BusinessDay     bool
}

func NewTimeInfo(prev, cur, next time.Time) (TimeInfo, error) {
	ti := TimeInfo{
		Time:        cur,
		BusinessDay: isBusinessDay(cur),
	}

	if prev.IsZero() {
		ti.FirstDayOfWeek = true
		ti.FirstDayOfMonth = true
		ti.FirstDayOfYear = true
	} else {
		if err := checkNeighbors(prev, cur); err != nil {
			return TimeInfo{}, err
		}
		py, pw := prev.ISOWeek()
		cy, cw := cur.ISOWeek()
		ti.FirstDayOfWeek = py != cy || pw != cw
		ti.FirstDayOfMonth = prev.Month() != cur.Month() || prev.Year() != cur.Year()
		ti.FirstDayOfYear = prev.Year() != cur.Year()
	}

	if next.IsZero() {
		ti.LastDayOfWeek = true
		ti.LastDayOfMonth = true
		ti.LastDayOfYear = true
	} else {
		if err := checkNeighbors(cur, next); err != nil {
			return TimeInfo{}, err
		}
		cy, cw := cur.ISOWeek()
		ny, nw := next.ISOWeek()
		ti.LastDayOfWeek = cy != ny || cw != nw
		ti.LastDayOfMonth = cur.Month() != next.Month() || cur.Year() != next.Year()
		ti.LastDayOfYear = cur.Year() != next.Year()
	}

	return ti, nil
}

// checkNeighbors enforces that b follows a by at most one month
// boundary. Trading calendars have gaps (weekends, holidays) but never
// skip a whole month.
func checkNeighbors(a, b time.Time) error {
	if !b.After(a) {
		return fmt.Errorf("%w: %s does not advance past %s",
			ErrCalendarGap, b.Format("2006-01-02"), a.Format("2006-01-02"))
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months > 1 {
		return fmt.Errorf("%w: %s to %s skips %d month boundaries",
			ErrCalendarGap, a.Format("2006-01-02"), b.Format("2006-01-02"), months)
	}
	return nil
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
