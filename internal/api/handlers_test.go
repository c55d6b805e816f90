package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jumpermedia/analytics-backend/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock trends service for testing
type MockTrendsService struct {
	mock.Mock
}

func (m *MockTrendsService) PostTrends(ctx context.Context, postID int64, days int) (*analytics.TrendReport, error) {
	args := m.Called(ctx, postID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.TrendReport), args.Error(1)
}

func (m *MockTrendsService) AuthorTrends(ctx context.Context, authorID int64, days int) (*analytics.TrendReport, error) {
	args := m.Called(ctx, authorID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.TrendReport), args.Error(1)
}

func (m *MockTrendsService) Summary(ctx context.Context, days int) (*analytics.Summary, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Summary), args.Error(1)
}

// Ensure MockTrendsService implements the interface
var _ TrendsService = (*MockTrendsService)(nil)

// Mock metrics for testing
type MockMetrics struct{}

func (m *MockMetrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
}

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func createTestRouter(pingErr error) (http.Handler, *MockTrendsService) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()

	mockSvc := &MockTrendsService{}
	handler := NewHandler(mockSvc, &stubPinger{err: pingErr}, sugar)
	middleware := NewMiddleware(sugar, &MockMetrics{})

	return handler.Routes(middleware, nil, 600), mockSvc
}

func sampleReport() *analytics.TrendReport {
	return &analytics.TrendReport{
		EntityID:   42,
		EntityName: "Introduction to Analytics",
		CurrentPeriod: []analytics.TrendPoint{
			{Date: time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), Views: 80, Likes: 15, Comments: 4, Shares: 1, Total: 100},
			{Date: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), Views: 40, Likes: 8, Comments: 2, Shares: 0, Total: 50},
		},
		PreviousPeriod: []analytics.TrendPoint{
			{Date: time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), Views: 90, Likes: 7, Comments: 2, Shares: 1, Total: 100},
		},
		ChangePercent: 50.0,
	}
}

func TestGetPostTrends_Success(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("PostTrends", mock.Anything, int64(42), 7).Return(sampleReport(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/engagement/trends/post/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response PostTrendsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, int64(42), response.PostID)
	assert.Equal(t, "Introduction to Analytics", response.PostTitle)
	assert.Equal(t, 50.0, response.ChangePercent)
	require.Len(t, response.CurrentPeriod, 2)
	assert.Equal(t, "2024-06-13", response.CurrentPeriod[0].Date)
	assert.Equal(t, int64(100), response.CurrentPeriod[0].Total)
	require.Len(t, response.PreviousPeriod, 1)

	mockSvc.AssertExpectations(t)
}

func TestGetPostTrends_DaysParam(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("PostTrends", mock.Anything, int64(42), 14).Return(sampleReport(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/engagement/trends/post/42?days=14", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestGetPostTrends_EmptyWindowsSerializeAsArrays(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("PostTrends", mock.Anything, int64(7), 7).Return(&analytics.TrendReport{
		EntityID:   7,
		EntityName: "Quiet Post",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/engagement/trends/post/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Sparse windows must come back as [] rather than null.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.JSONEq(t, "[]", string(raw["current_period"]))
	assert.JSONEq(t, "[]", string(raw["previous_period"]))
}

func TestGetPostTrends_NotFound(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("PostTrends", mock.Anything, int64(9999), 7).Return(nil, analytics.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/engagement/trends/post/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var errorResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResp))
	assert.Equal(t, "POST_NOT_FOUND", errorResp.Code)

	mockSvc.AssertExpectations(t)
}

func TestGetPostTrends_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name         string
		url          string
		expectedCode string
	}{
		{"non-numeric post id", "/api/engagement/trends/post/abc", "INVALID_POST_ID"},
		{"non-numeric days", "/api/engagement/trends/post/42?days=week", "INVALID_DAYS"},
		{"zero days", "/api/engagement/trends/post/42?days=0", "INVALID_DAYS"},
		{"negative days", "/api/engagement/trends/post/42?days=-7", "INVALID_DAYS"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := createTestRouter(nil)

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var errorResp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResp))
			assert.Equal(t, tc.expectedCode, errorResp.Code)
		})
	}
}

func TestGetPostTrends_QueryError(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("PostTrends", mock.Anything, int64(42), 7).Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/api/engagement/trends/post/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var errorResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResp))
	assert.Equal(t, "TRENDS_QUERY_ERROR", errorResp.Code)
}

func TestGetAuthorTrends_Success(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	report := sampleReport()
	report.EntityID = 3
	report.EntityName = "Jane Smith"
	mockSvc.On("AuthorTrends", mock.Anything, int64(3), 7).Return(report, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/engagement/trends/author/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response AuthorTrendsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(3), response.AuthorID)
	assert.Equal(t, "Jane Smith", response.AuthorName)

	mockSvc.AssertExpectations(t)
}

func TestGetAuthorTrends_NotFound(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("AuthorTrends", mock.Anything, int64(123), 7).Return(nil, analytics.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/engagement/trends/author/123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var errorResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResp))
	assert.Equal(t, "AUTHOR_NOT_FOUND", errorResp.Code)
}

func TestGetSummary_DefaultDays(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("Summary", mock.Anything, 30).Return(&analytics.Summary{
		TotalAuthors:         5,
		TotalPosts:           20,
		TotalEngagements:     300,
		TotalViews:           210,
		TotalLikes:           60,
		TotalComments:        21,
		TotalShares:          9,
		AvgEngagementPerPost: 15.0,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(300), response.TotalEngagements)
	assert.Equal(t, 15.0, response.AvgEngagementPerPost)

	mockSvc.AssertExpectations(t)
}

func TestGetSummary_CustomDays(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("Summary", mock.Anything, 90).Return(&analytics.Summary{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary?days=90", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestGetSummary_QueryError(t *testing.T) {
	router, mockSvc := createTestRouter(nil)

	mockSvc.On("Summary", mock.Anything, 30).Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var errorResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResp))
	assert.Equal(t, "SUMMARY_QUERY_ERROR", errorResp.Code)
}

func TestRoot(t *testing.T) {
	router, _ := createTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response RootResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Jumper Media Analytics API", response.Message)
	assert.Contains(t, response.Endpoints, "post_trends")
	assert.Contains(t, response.Endpoints, "author_trends")
	assert.Contains(t, response.Endpoints, "summary")
}

func TestHealthz(t *testing.T) {
	router, _ := createTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		router, _ := createTestRouter(nil)

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("database down", func(t *testing.T) {
		router, _ := createTestRouter(assert.AnError)

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var errorResp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResp))
		assert.Equal(t, "DB_UNAVAILABLE", errorResp.Code)
	})
}
