package utils

import "time"

// -----------------------------------------------------------------------------

// Defaults shared by config loading and the components that read it.
const (
	DefaultRetentionDays       = 7
	DefaultRecentRefreshes     = 20
	DefaultRefreshInterval     = 30 * time.Second
	DefaultRefreshIntervalSecs = 30
)

// Timeframe buckets and the synthetic history length each maps to.
const (
	TimeframeDaily  = "daily"
	TimeframeWeekly = "weekly"
	TimeframeYearly = "yearly"
)

var timeframeDays = map[string]int{
	TimeframeDaily:  30,
	TimeframeWeekly: 90,
	TimeframeYearly: 365,
}

// -----------------------------------------------------------------------------

// TimeframeDays maps a timeframe bucket to a day count. Unknown buckets map
// to the daily count.
func TimeframeDays(timeframe string) int {
	if d, ok := timeframeDays[timeframe]; ok {
		return d
	}
	return timeframeDays[TimeframeDaily]
}

// -----------------------------------------------------------------------------

// IsTimeframe reports whether timeframe is a known bucket.
func IsTimeframe(timeframe string) bool {
	_, ok := timeframeDays[timeframe]
	return ok
}
