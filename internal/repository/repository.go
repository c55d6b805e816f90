package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jumpermedia/analytics-backend/internal/analytics"
	"github.com/jumpermedia/analytics-backend/internal/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository struct {
	db      *sql.DB
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewRepository(db *sql.DB, logger *zap.SugaredLogger, metrics *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		logger:  logger,
		metrics: metrics,
	}
}

const postTrendQuery = `
	SELECT
		DATE(engaged_timestamp) AS date,
		COUNT(*) FILTER (WHERE type = 'view') AS views,
		COUNT(*) FILTER (WHERE type = 'like') AS likes,
		COUNT(*) FILTER (WHERE type = 'comment') AS comments,
		COUNT(*) FILTER (WHERE type = 'share') AS shares,
		COUNT(*) AS total
	FROM engagements
	WHERE post_id = $1
	  AND engaged_timestamp >= $2
	  AND engaged_timestamp < $3
	GROUP BY DATE(engaged_timestamp)
	ORDER BY date
`

const authorTrendQuery = `
	SELECT
		DATE(e.engaged_timestamp) AS date,
		COUNT(*) FILTER (WHERE e.type = 'view') AS views,
		COUNT(*) FILTER (WHERE e.type = 'like') AS likes,
		COUNT(*) FILTER (WHERE e.type = 'comment') AS comments,
		COUNT(*) FILTER (WHERE e.type = 'share') AS shares,
		COUNT(*) AS total
	FROM engagements e
	JOIN posts p ON e.post_id = p.post_id
	WHERE p.author_id = $1
	  AND e.engaged_timestamp >= $2
	  AND e.engaged_timestamp < $3
	GROUP BY DATE(e.engaged_timestamp)
	ORDER BY date
`

const summaryQuery = `
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
	WHERE p.publish_timestamp >= $1 OR p.publish_timestamp IS NULL
`

func (r *Repository) PostTitle(ctx context.Context, postID int64) (string, error) {
	start := time.Now()

	var title string
	err := r.db.QueryRowContext(ctx, `SELECT title FROM posts WHERE post_id = $1`, postID).Scan(&title)
	r.record(ctx, "post_title", start, err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("post %d: %w", postID, analytics.ErrNotFound)
		}
		return "", fmt.Errorf("failed to query post title: %w", err)
	}

	return title, nil
}

func (r *Repository) AuthorName(ctx context.Context, authorID int64) (string, error) {
	start := time.Now()

	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM authors WHERE author_id = $1`, authorID).Scan(&name)
	r.record(ctx, "author_name", start, err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("author %d: %w", authorID, analytics.ErrNotFound)
		}
		return "", fmt.Errorf("failed to query author name: %w", err)
	}

	return name, nil
}

// PostTrendSeries returns per-day engagement counts for a post inside
// the window. Days without engagements yield no row.
func (r *Repository) PostTrendSeries(ctx context.Context, postID int64, w analytics.Window) ([]analytics.TrendPoint, error) {
	start := time.Now()

	rows, err := r.db.QueryContext(ctx, postTrendQuery, postID, w.From, w.To)
	r.record(ctx, "post_trend_series", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query post trend series: %w", err)
	}
	defer rows.Close()

	return scanTrendPoints(rows)
}

// AuthorTrendSeries returns per-day engagement counts across all posts
// by an author inside the window.
func (r *Repository) AuthorTrendSeries(ctx context.Context, authorID int64, w analytics.Window) ([]analytics.TrendPoint, error) {
	start := time.Now()

	rows, err := r.db.QueryContext(ctx, authorTrendQuery, authorID, w.From, w.To)
	r.record(ctx, "author_trend_series", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query author trend series: %w", err)
	}
	defer rows.Close()

	return scanTrendPoints(rows)
}

// Summary aggregates totals over posts published since the given time.
// The LEFT JOIN chain keeps zero-engagement authors and posts in the
// entity counts.
func (r *Repository) Summary(ctx context.Context, since time.Time) (analytics.Summary, error) {
	start := time.Now()

	var (
		summary analytics.Summary
		avg     decimal.NullDecimal
	)
	err := r.db.QueryRowContext(ctx, summaryQuery, since).Scan(
		&summary.TotalAuthors,
		&summary.TotalPosts,
		&summary.TotalEngagements,
		&summary.TotalViews,
		&summary.TotalLikes,
		&summary.TotalComments,
		&summary.TotalShares,
		&avg,
	)
	r.record(ctx, "summary", start, err)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("failed to query summary: %w", err)
	}

	summary.AvgEngagementPerPost = avgPerPost(avg)

	return summary, nil
}

// avgPerPost decodes the NUMERIC average, which is NULL when the window
// contains no posts.
func avgPerPost(avg decimal.NullDecimal) float64 {
	if !avg.Valid {
		return 0
	}
	return avg.Decimal.InexactFloat64()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanTrendPoints(rows *sql.Rows) ([]analytics.TrendPoint, error) {
	var points []analytics.TrendPoint

	for rows.Next() {
		var p analytics.TrendPoint
		if err := rows.Scan(&p.Date, &p.Views, &p.Likes, &p.Comments, &p.Shares, &p.Total); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return points, nil
}

func (r *Repository) record(ctx context.Context, query string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		err = nil // an empty result is not a query failure
	}
	r.metrics.RecordDBQuery(ctx, query, err, time.Since(start))
}
