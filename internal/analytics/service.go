package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the query surface the service needs from the database layer.
type Store interface {
	PostTitle(ctx context.Context, postID int64) (string, error)
	AuthorName(ctx context.Context, authorID int64) (string, error)
	PostTrendSeries(ctx context.Context, postID int64, w Window) ([]TrendPoint, error)
	AuthorTrendSeries(ctx context.Context, authorID int64, w Window) ([]TrendPoint, error)
	Summary(ctx context.Context, since time.Time) (Summary, error)
}

type Service struct {
	store  Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewService(store Store, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// PostTrends compares the last N days of engagement on a post against
// the N days before that.
func (s *Service) PostTrends(ctx context.Context, postID int64, days int) (*TrendReport, error) {
	title, err := s.store.PostTitle(ctx, postID)
	if err != nil {
		return nil, err
	}

	current, previous := Windows(s.now(), days)

	currentSeries, err := s.store.PostTrendSeries(ctx, postID, current)
	if err != nil {
		return nil, fmt.Errorf("current period query failed: %w", err)
	}
	previousSeries, err := s.store.PostTrendSeries(ctx, postID, previous)
	if err != nil {
		return nil, fmt.Errorf("previous period query failed: %w", err)
	}

	return &TrendReport{
		EntityID:       postID,
		EntityName:     title,
		CurrentPeriod:  currentSeries,
		PreviousPeriod: previousSeries,
		ChangePercent:  ChangePercent(seriesTotal(currentSeries), seriesTotal(previousSeries)),
	}, nil
}

// AuthorTrends compares the last N days of engagement across all of an
// author's posts against the N days before that.
func (s *Service) AuthorTrends(ctx context.Context, authorID int64, days int) (*TrendReport, error) {
	name, err := s.store.AuthorName(ctx, authorID)
	if err != nil {
		return nil, err
	}

	current, previous := Windows(s.now(), days)

	currentSeries, err := s.store.AuthorTrendSeries(ctx, authorID, current)
	if err != nil {
		return nil, fmt.Errorf("current period query failed: %w", err)
	}
	previousSeries, err := s.store.AuthorTrendSeries(ctx, authorID, previous)
	if err != nil {
		return nil, fmt.Errorf("previous period query failed: %w", err)
	}

	return &TrendReport{
		EntityID:       authorID,
		EntityName:     name,
		CurrentPeriod:  currentSeries,
		PreviousPeriod: previousSeries,
		ChangePercent:  ChangePercent(seriesTotal(currentSeries), seriesTotal(previousSeries)),
	}, nil
}

// Summary aggregates totals over posts published within the trailing
// N-day window.
func (s *Service) Summary(ctx context.Context, days int) (*Summary, error) {
	since := s.now().AddDate(0, 0, -days)

	summary, err := s.store.Summary(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("summary query failed: %w", err)
	}

	return &summary, nil
}

// Windows partitions time into two adjacent half-open N-day windows:
// current = [now-N, now), previous = [now-2N, now-N).
func Windows(now time.Time, days int) (current, previous Window) {
	span := time.Duration(days) * 24 * time.Hour
	current = Window{From: now.Add(-span), To: now}
	previous = Window{From: now.Add(-2 * span), To: current.From}
	return current, previous
}

// ChangePercent reports the percent change from previous to current,
// rounded to two decimals. A zero previous total yields 0.0.
func ChangePercent(current, previous int64) float64 {
	if previous == 0 {
		return 0.0
	}

	change := decimal.NewFromInt(current - previous).
		Div(decimal.NewFromInt(previous)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return change.InexactFloat64()
}

func seriesTotal(points []TrendPoint) int64 {
	var total int64
	for _, p := range points {
		total += p.Total
	}
	return total
}
