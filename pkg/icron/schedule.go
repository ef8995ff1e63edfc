package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// TriggerInfo describes where a cron expression sits relative to a
// reference time.
type TriggerInfo struct {
	Next       time.Time
	Last       time.Time
	Expression string

	TimeSinceLast time.Duration
	TimeUntilNext time.Duration
}

// GetTriggerInfo computes the next and most recent trigger times for a
// standard cron expression. The previous trigger is found by probing
// backwards hour by hour (robfig/cron only exposes Next), capped at one
// year.
func GetTriggerInfo(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	info := &TriggerInfo{
		Expression: cronExpr,
		Next:       schedule.Next(refTime),
	}
	info.TimeUntilNext = info.Next.Sub(refTime)

	searchStart := refTime.Add(-time.Minute)
	for i := 0; i < 366*24; i++ {
		probe := searchStart.Add(-time.Duration(i) * time.Hour)
		candidate := schedule.Next(probe)
		if !candidate.After(refTime) {
			info.Last = candidate
			info.TimeSinceLast = refTime.Sub(candidate)
			break
		}
	}

	return info, nil
}
