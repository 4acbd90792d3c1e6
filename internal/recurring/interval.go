package recurring

import "time"

// step advances a run date by one interval. Month and year steps use
// time.AddDate, which normalizes overflow: Jan 31 + one month lands on
// Mar 2/3 rather than failing. Day-of-month drift after a short month is
// accepted behavior.
func step(from time.Time, interval string) time.Time {
	switch interval {
	case IntervalDaily:
		return from.AddDate(0, 0, 1)
	case IntervalWeekly:
		return from.AddDate(0, 0, 7)
	case IntervalMonthly:
		return from.AddDate(0, 1, 0)
	case IntervalYearly:
		return from.AddDate(1, 0, 0)
	}
	return from
}
