package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jumpermedia/analytics-backend/internal/analytics"
	"go.uber.org/zap"
)

const apiVersion = "1.0.0"

// MetricsInterface defines the interface for metrics recording
type MetricsInterface interface {
	RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration)
}

// TrendsService is the analytics surface the handlers depend on.
type TrendsService interface {
	PostTrends(ctx context.Context, postID int64, days int) (*analytics.TrendReport, error)
	AuthorTrends(ctx context.Context, authorID int64, days int) (*analytics.TrendReport, error)
	Summary(ctx context.Context, days int) (*analytics.Summary, error)
}

// Pinger reports database reachability for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc    TrendsService
	db     Pinger
	logger *zap.SugaredLogger
}

func NewHandler(svc TrendsService, db Pinger, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		svc:    svc,
		db:     db,
		logger: logger,
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, RootResponse{
		Message: "Jumper Media Analytics API",
		Version: apiVersion,
		Endpoints: map[string]string{
			"post_trends":   "/api/engagement/trends/post/{post_id}",
			"author_trends": "/api/engagement/trends/author/{author_id}",
			"summary":       "/api/analytics/summary",
		},
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

// GetPostTrends compares the last N days of engagement on a post
// against the previous N days. N defaults to 7.
func (h *Handler) GetPostTrends(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "post_id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_POST_ID", "post_id must be an integer")
		return
	}

	days, err := parseDays(r, 7)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_DAYS", err.Error())
		return
	}

	report, err := h.svc.PostTrends(r.Context(), postID, days)
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "TRENDS_QUERY_ERROR", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, PostTrendsResponse{
		PostID:         report.EntityID,
		PostTitle:      report.EntityName,
		CurrentPeriod:  toTrendPointDTOs(report.CurrentPeriod),
		PreviousPeriod: toTrendPointDTOs(report.PreviousPeriod),
		ChangePercent:  report.ChangePercent,
	})
}

// GetAuthorTrends compares the last N days of engagement across an
// author's posts against the previous N days. N defaults to 7.
func (h *Handler) GetAuthorTrends(w http.ResponseWriter, r *http.Request) {
	authorID, err := strconv.ParseInt(chi.URLParam(r, "author_id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_AUTHOR_ID", "author_id must be an integer")
		return
	}

	days, err := parseDays(r, 7)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_DAYS", err.Error())
		return
	}

	report, err := h.svc.AuthorTrends(r.Context(), authorID, days)
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "AUTHOR_NOT_FOUND", "Author not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "TRENDS_QUERY_ERROR", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, AuthorTrendsResponse{
		AuthorID:       report.EntityID,
		AuthorName:     report.EntityName,
		CurrentPeriod:  toTrendPointDTOs(report.CurrentPeriod),
		PreviousPeriod: toTrendPointDTOs(report.PreviousPeriod),
		ChangePercent:  report.ChangePercent,
	})
}

// GetSummary reports cross-entity totals for posts published in the
// trailing N days. N defaults to 30.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r, 30)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_DAYS", err.Error())
		return
	}

	summary, err := h.svc.Summary(r.Context(), days)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "SUMMARY_QUERY_ERROR", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, SummaryResponse{
		TotalAuthors:         summary.TotalAuthors,
		TotalPosts:           summary.TotalPosts,
		TotalEngagements:     summary.TotalEngagements,
		TotalViews:           summary.TotalViews,
		TotalLikes:           summary.TotalLikes,
		TotalComments:        summary.TotalComments,
		TotalShares:          summary.TotalShares,
		AvgEngagementPerPost: summary.AvgEngagementPerPost,
	})
}

func parseDays(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("days must be an integer")
	}
	if days <= 0 {
		return 0, fmt.Errorf("days must be positive")
	}

	return days, nil
}

func toTrendPointDTOs(points []analytics.TrendPoint) []TrendPointDTO {
	dtos := make([]TrendPointDTO, 0, len(points))
	for _, p := range points {
		dtos = append(dtos, TrendPointDTO{
			Date:     p.Date.Format("2006-01-02"),
			Views:    p.Views,
			Likes:    p.Likes,
			Comments: p.Comments,
			Shares:   p.Shares,
			Total:    p.Total,
		})
	}
	return dtos
}

// Utility methods
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.logger.Errorw("API error", "code", code, "message", message, "status", status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := ErrorResponse{
		Code:    code,
		Message: message,
	}
	json.NewEncoder(w).Encode(err)
}
