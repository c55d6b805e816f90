package api

// TrendPointDTO is one day of engagement counts in a trend response.
type TrendPointDTO struct {
	Date     string `json:"date"`
	Views    int64  `json:"views"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
	Shares   int64  `json:"shares"`
	Total    int64  `json:"total"`
}

type PostTrendsResponse struct {
	PostID         int64           `json:"post_id"`
	PostTitle      string          `json:"post_title"`
	CurrentPeriod  []TrendPointDTO `json:"current_period"`
	PreviousPeriod []TrendPointDTO `json:"previous_period"`
	ChangePercent  float64         `json:"change_percent"`
}

type AuthorTrendsResponse struct {
	AuthorID       int64           `json:"author_id"`
	AuthorName     string          `json:"author_name"`
	CurrentPeriod  []TrendPointDTO `json:"current_period"`
	PreviousPeriod []TrendPointDTO `json:"previous_period"`
	ChangePercent  float64         `json:"change_percent"`
}

type SummaryResponse struct {
	TotalAuthors         int64   `json:"total_authors"`
	TotalPosts           int64   `json:"total_posts"`
	TotalEngagements     int64   `json:"total_engagements"`
	TotalViews           int64   `json:"total_views"`
	TotalLikes           int64   `json:"total_likes"`
	TotalComments        int64   `json:"total_comments"`
	TotalShares          int64   `json:"total_shares"`
	AvgEngagementPerPost float64 `json:"avg_engagement_per_post"`
}

type RootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
