package analytics

import (
	"errors"
	"time"
)

// ErrNotFound is returned when the requested post or author does not exist.
var ErrNotFound = errors.New("entity not found")

// TrendPoint is one calendar day of engagement counts for an entity.
// Days without engagements produce no point, so a series is sparse.
type TrendPoint struct {
	Date     time.Time
	Views    int64
	Likes    int64
	Comments int64
	Shares   int64
	Total    int64
}

// TrendReport compares two adjacent equal-length windows of daily
// engagement for a single post or author.
type TrendReport struct {
	EntityID       int64
	EntityName     string
	CurrentPeriod  []TrendPoint
	PreviousPeriod []TrendPoint
	ChangePercent  float64
}

// Summary holds cross-entity totals for posts published in a trailing
// window.
type Summary struct {
	TotalAuthors         int64
	TotalPosts           int64
	TotalEngagements     int64
	TotalViews           int64
	TotalLikes           int64
	TotalComments        int64
	TotalShares          int64
	AvgEngagementPerPost float64
}

// Window is a contiguous half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}
