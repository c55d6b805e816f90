package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatmapSeries(t *testing.T) {
	cells := []heatCell{
		{Day: 0, Hour: 9, Count: 120},
		{Day: 3, Hour: 18, Count: 450},
		{Day: 6, Hour: 23, Count: 30},
	}

	data, max := heatmapSeries(cells)

	require.Len(t, data, 3)
	assert.Equal(t, int64(450), max)
	assert.Equal(t, [3]interface{}{18, 3, int64(450)}, data[1].Value)
	assert.Equal(t, "Wednesday 18:00", data[1].Name)
}

func TestHeatmapSeriesSkipsOutOfRangeCells(t *testing.T) {
	cells := []heatCell{
		{Day: 7, Hour: 0, Count: 10},
		{Day: 0, Hour: 24, Count: 10},
		{Day: -1, Hour: 5, Count: 10},
		{Day: 2, Hour: 5, Count: 7},
	}

	data, max := heatmapSeries(cells)

	require.Len(t, data, 1)
	assert.Equal(t, int64(7), max)
}

func TestHeatmapSeriesEmpty(t *testing.T) {
	data, max := heatmapSeries(nil)
	assert.Empty(t, data)
	assert.Zero(t, max)
}

func TestSplitByAverage(t *testing.T) {
	opportunities := []authorOpportunity{
		{Name: "prolific but flat", TotalPosts: 200, AvgEngagementPerPost: 3.1, OverallAvg: 8.0},
		{Name: "star", TotalPosts: 40, AvgEngagementPerPost: 21.5, OverallAvg: 8.0},
		{Name: "exactly average", TotalPosts: 10, AvgEngagementPerPost: 8.0, OverallAvg: 8.0},
	}

	above, below := splitByAverage(opportunities)

	require.Len(t, above, 2)
	require.Len(t, below, 1)
	assert.Equal(t, "prolific but flat", below[0].Name)
	assert.Equal(t, []interface{}{int64(40), 21.5}, above[0].Value)
}

func TestPeakHour(t *testing.T) {
	t.Run("picks highest count", func(t *testing.T) {
		hours := []hourCount{
			{Hour: 9, Count: 100},
			{Hour: 19, Count: 340},
			{Hour: 23, Count: 12},
		}
		peak, ok := peakHour(hours)
		require.True(t, ok)
		assert.Equal(t, 19, peak)
	})

	t.Run("empty input", func(t *testing.T) {
		_, ok := peakHour(nil)
		assert.False(t, ok)
	})
}
