package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Runner replays the fixed analytical query set against the engagement
// schema and renders the results as charts in the output directory.
type Runner struct {
	db         *sql.DB
	logger     *zap.SugaredLogger
	outDir     string
	windowDays int
}

func NewRunner(db *sql.DB, logger *zap.SugaredLogger, outDir string, windowDays int) *Runner {
	return &Runner{
		db:         db,
		logger:     logger,
		outDir:     outDir,
		windowDays: windowDays,
	}
}

type authorStat struct {
	AuthorID         int64
	Name             string
	Category         string
	TotalViews       int64
	TotalLikes       int64
	TotalComments    int64
	TotalShares      int64
	TotalEngagements int64
}

type hourCount struct {
	Hour  int
	Count int64
}

type heatCell struct {
	Day   int
	Hour  int
	Count int64
}

type authorOpportunity struct {
	Name                 string
	TotalPosts           int64
	AvgEngagementPerPost float64
	OverallAvg           float64
}

func (r *Runner) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	since := time.Now().AddDate(0, 0, -r.windowDays)

	if err := r.logExecutiveSummary(ctx, since); err != nil {
		return err
	}

	authors, err := r.topAuthors(ctx, since)
	if err != nil {
		return err
	}
	if len(authors) > 0 {
		if err := r.renderTopAuthors(authors); err != nil {
			return err
		}
	}

	hours, err := r.engagementsByHour(ctx)
	if err != nil {
		return err
	}
	if len(hours) > 0 {
		if err := r.renderHourly(hours); err != nil {
			return err
		}
	}

	cells, err := r.engagementHeatmap(ctx)
	if err != nil {
		return err
	}
	if len(cells) > 0 {
		if err := r.renderHeatmap(cells); err != nil {
			return err
		}
	}

	opportunities, err := r.opportunityAnalysis(ctx, since)
	if err != nil {
		return err
	}
	if len(opportunities) > 0 {
		if err := r.renderOpportunities(opportunities); err != nil {
			return err
		}
	}

	r.logger.Infow("Analysis complete", "output_dir", r.outDir)
	if len(authors) > 0 {
		r.logger.Infow("Top author",
			"name", authors[0].Name,
			"total_engagements", authors[0].TotalEngagements,
		)
	}
	if peak, ok := peakHour(hours); ok {
		r.logger.Infow("Peak engagement hour", "hour", peak)
	}

	return nil
}

func (r *Runner) logExecutiveSummary(ctx context.Context, since time.Time) error {
	query := `
		SELECT
			COUNT(DISTINCT a.author_id) AS total_authors,
			COUNT(DISTINCT p.post_id) AS total_posts,
			COUNT(e.engagement_id) AS total_engagements,
			COUNT(*) FILTER (WHERE e.type = 'view') AS total_views,
			COUNT(*) FILTER (WHERE e.type = 'like') AS total_likes,
			COUNT(*) FILTER (WHERE e.type = 'comment') AS total_comments,
			COUNT(*) FILTER (WHERE e.type = 'share') AS total_shares,
			ROUND(COUNT(e.engagement_id)::NUMERIC / NULLIF(COUNT(DISTINCT p.post_id), 0), 2) AS avg_engagement_per_post
		FROM authors a
		LEFT JOIN posts p ON a.author_id = p.author_id
		LEFT JOIN engagements e ON p.post_id = e.post_id
		WHERE p.publish_timestamp >= $1
	`

	var (
		totalAuthors, totalPosts, totalEngagements         int64
		totalViews, totalLikes, totalComments, totalShares int64
		avg                                                decimal.NullDecimal
	)
	err := r.db.QueryRowContext(ctx, query, since).Scan(
		&totalAuthors, &totalPosts, &totalEngagements,
		&totalViews, &totalLikes, &totalComments, &totalShares,
		&avg,
	)
	if err != nil {
		return fmt.Errorf("failed to query executive summary: %w", err)
	}

	r.logger.Infow("Executive summary",
		"window_days", r.windowDays,
		"total_authors", totalAuthors,
		"total_posts", totalPosts,
		"total_engagements", totalEngagements,
		"total_views", totalViews,
		"total_likes", totalLikes,
		"total_comments", totalComments,
		"total_shares", totalShares,
		"avg_engagement_per_post", avg.Decimal.InexactFloat64(),
	)

	return nil
}

func (r *Runner) topAuthors(ctx context.Context, since time.Time) ([]authorStat, error) {
	query := `
		SELECT
			a.author_id,
			a.name,
			a.author_category,
			COUNT(*) FILTER (WHERE e.type = 'view') AS total_views,
			COUNT(*) FILTER (WHERE e.type = 'like') AS total_likes,
			COUNT(*) FILTER (WHERE e.type = 'comment') AS total_comments,
			COUNT(*) FILTER (WHERE e.type = 'share') AS total_shares,
			COUNT(*) AS total_engagements
		FROM authors a
		JOIN posts p ON a.author_id = p.author_id
		JOIN engagements e ON p.post_id = e.post_id
		WHERE e.engaged_timestamp >= $1
		GROUP BY a.author_id, a.name, a.author_category
		ORDER BY total_engagements DESC
		LIMIT 20
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query top authors: %w", err)
	}
	defer rows.Close()

	var stats []authorStat
	for rows.Next() {
		var s authorStat
		err := rows.Scan(&s.AuthorID, &s.Name, &s.Category,
			&s.TotalViews, &s.TotalLikes, &s.TotalComments, &s.TotalShares,
			&s.TotalEngagements)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	r.logger.Infow("Analyzed top authors", "count", len(stats))
	return stats, nil
}

func (r *Runner) engagementsByHour(ctx context.Context) ([]hourCount, error) {
	query := `
		SELECT
			EXTRACT(HOUR FROM engaged_timestamp)::int AS hour_of_day,
			COUNT(*) AS total_engagements
		FROM engagements
		GROUP BY EXTRACT(HOUR FROM engaged_timestamp)
		ORDER BY hour_of_day
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly engagements: %w", err)
	}
	defer rows.Close()

	var hours []hourCount
	for rows.Next() {
		var h hourCount
		if err := rows.Scan(&h.Hour, &h.Count); err != nil {
			return nil, fmt.Errorf("failed to scan hour count: %w", err)
		}
		hours = append(hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	r.logger.Infow("Analyzed time patterns", "hours", len(hours))
	return hours, nil
}

func (r *Runner) engagementHeatmap(ctx context.Context) ([]heatCell, error) {
	query := `
		SELECT
			EXTRACT(DOW FROM engaged_timestamp)::int AS day_of_week,
			EXTRACT(HOUR FROM engaged_timestamp)::int AS hour_of_day,
			COUNT(*) AS engagement_count
		FROM engagements
		GROUP BY EXTRACT(DOW FROM engaged_timestamp), EXTRACT(HOUR FROM engaged_timestamp)
		ORDER BY day_of_week, hour_of_day
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement heatmap: %w", err)
	}
	defer rows.Close()

	var cells []heatCell
	for rows.Next() {
		var c heatCell
		if err := rows.Scan(&c.Day, &c.Hour, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan heat cell: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return cells, nil
}

func (r *Runner) opportunityAnalysis(ctx context.Context, since time.Time) ([]authorOpportunity, error) {
	query := `
		WITH author_stats AS (
			SELECT
				a.author_id,
				a.name,
				COUNT(DISTINCT p.post_id) AS total_posts,
				ROUND(COUNT(e.engagement_id)::NUMERIC / NULLIF(COUNT(DISTINCT p.post_id), 0), 2) AS avg_engagement_per_post
			FROM authors a
			LEFT JOIN posts p ON a.author_id = p.author_id
			LEFT JOIN engagements e ON p.post_id = e.post_id
			WHERE p.publish_timestamp >= $1
			GROUP BY a.author_id, a.name
		),
		overall_avg AS (
			SELECT AVG(avg_engagement_per_post) AS overall_avg_engagement
			FROM author_stats
			WHERE total_posts > 0
		)
		SELECT
			author_stats.name,
			author_stats.total_posts,
			author_stats.avg_engagement_per_post,
			oa.overall_avg_engagement
		FROM author_stats
		CROSS JOIN overall_avg oa
		WHERE author_stats.total_posts > 0
		ORDER BY author_stats.total_posts DESC, author_stats.avg_engagement_per_post ASC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunity analysis: %w", err)
	}
	defer rows.Close()

	var opportunities []authorOpportunity
	for rows.Next() {
		var (
			o          authorOpportunity
			avg        decimal.NullDecimal
			overallAvg decimal.NullDecimal
		)
		if err := rows.Scan(&o.Name, &o.TotalPosts, &avg, &overallAvg); err != nil {
			return nil, fmt.Errorf("failed to scan author opportunity: %w", err)
		}
		o.AvgEngagementPerPost = avg.Decimal.InexactFloat64()
		o.OverallAvg = overallAvg.Decimal.InexactFloat64()
		opportunities = append(opportunities, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	r.logger.Infow("Analyzed opportunities", "authors", len(opportunities))
	return opportunities, nil
}

func peakHour(hours []hourCount) (int, bool) {
	if len(hours) == 0 {
		return 0, false
	}

	peak := hours[0]
	for _, h := range hours[1:] {
		if h.Count > peak.Count {
			peak = h
		}
	}
	return peak.Hour, true
}
