package engine

import "time"

// eventTime turns an SDL event timestamp into wall time. Both tick values
// are nanoseconds since SDL init; now is the wall time read at nowTicks. A
// missing or future stamp yields now.
func eventTime(now time.Time, nowTicks, evTicks uint64) time.Time {
	if evTicks == 0 || evTicks > nowTicks {
		return now
	}
	return now.Add(-time.Duration(nowTicks - evTicks))
}
