package generator

import (
	"math/rand"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededGenerator(seed int64) *Generator {
	return New(nil, zap.NewNop().Sugar(), Config{
		Authors:     10,
		Users:       10,
		Posts:       10,
		Engagements: 10,
		BatchSize:   5,
		RandSeed:    seed,
	})
}

func TestWeightedIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("stays in range", func(t *testing.T) {
		weights := []int{1, 2, 3}
		for i := 0; i < 1000; i++ {
			idx := weightedIndex(rng, weights)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, len(weights))
		}
	})

	t.Run("never picks zero weight", func(t *testing.T) {
		weights := []int{0, 1, 0}
		for i := 0; i < 1000; i++ {
			assert.Equal(t, 1, weightedIndex(rng, weights))
		}
	})

	t.Run("respects proportions", func(t *testing.T) {
		weights := []int{1, 9}
		counts := make([]int, 2)
		for i := 0; i < 10000; i++ {
			counts[weightedIndex(rng, weights)]++
		}
		assert.Greater(t, counts[1], counts[0]*5)
	})
}

func TestPublishHourSkewsTowardBusinessHours(t *testing.T) {
	g := seededGenerator(42)

	counts := make([]int, 24)
	for i := 0; i < 20000; i++ {
		hour := g.publishHour()
		require.GreaterOrEqual(t, hour, 0)
		require.Less(t, hour, 24)
		counts[hour]++
	}

	// Hour 10 carries weight 8 against weight 1 overnight.
	assert.Greater(t, counts[10], counts[2]*3)
	assert.Greater(t, counts[10], counts[22]*3)
}

func TestEngagementDelayBounds(t *testing.T) {
	g := seededGenerator(42)

	var capped int
	for i := 0; i < 20000; i++ {
		delay := g.engagementDelay()
		require.GreaterOrEqual(t, delay, time.Duration(0))
		require.LessOrEqual(t, delay, maxEngagementLag)
		if delay == maxEngagementLag {
			capped++
		}
	}

	// The cap should bite only on the far tail (P(X > 720h) = e^-72).
	assert.Less(t, capped, 10)
}

func TestEngagementDelayMeanNearTenHours(t *testing.T) {
	g := seededGenerator(7)

	var total time.Duration
	const n = 50000
	for i := 0; i < n; i++ {
		total += g.engagementDelay()
	}

	mean := total / n
	assert.InDelta(t, float64(10*time.Hour), float64(mean), float64(time.Hour))
}

func TestPeakAdjustmentRange(t *testing.T) {
	g := seededGenerator(42)

	counts := make(map[int]int)
	for i := 0; i < 10000; i++ {
		adj := g.peakAdjustment()
		require.GreaterOrEqual(t, adj, -3)
		require.LessOrEqual(t, adj, 3)
		counts[adj]++
	}

	// Center weight 4 against edge weight 1.
	assert.Greater(t, counts[0], counts[-3]*2)
	assert.Greater(t, counts[0], counts[3]*2)
}

func TestEngagementTypeDistribution(t *testing.T) {
	g := seededGenerator(42)

	counts := make(map[string]int)
	for i := 0; i < 20000; i++ {
		counts[g.engagementType()]++
	}

	assert.Greater(t, counts["view"], counts["like"])
	assert.Greater(t, counts["like"], counts["comment"])
	assert.Greater(t, counts["comment"], counts["share"])
	assert.Positive(t, counts["share"])
}

func TestAnonymousRate(t *testing.T) {
	g := seededGenerator(42)

	var anonymous int
	const n = 50000
	for i := 0; i < n; i++ {
		if g.anonymous() {
			anonymous++
		}
	}

	assert.InDelta(t, 0.1, float64(anonymous)/n, 0.01)
}

func TestPostCategoryDrift(t *testing.T) {
	g := seededGenerator(42)

	var matched int
	const n = 20000
	for i := 0; i < n; i++ {
		if g.postCategory("Tech") == "Tech" {
			matched++
		}
	}

	// 80% keep the author's category, plus drift that happens to land
	// on it again.
	ratio := float64(matched) / n
	assert.Greater(t, ratio, 0.75)
	assert.Less(t, ratio, 0.92)
}

func TestPublishTimeWithinHistory(t *testing.T) {
	g := seededGenerator(42)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		published := g.publishTime(start)
		require.False(t, published.Before(start))
		require.True(t, published.Before(start.AddDate(0, 0, postHistoryDays+1)))
	}
}

func TestTags(t *testing.T) {
	g := seededGenerator(42)

	for i := 0; i < 100; i++ {
		tags := g.tags()
		require.GreaterOrEqual(t, len(tags), 1)
		require.LessOrEqual(t, len(tags), 4)
		for _, tag := range tags {
			require.NotEmpty(t, tag)
			assert.True(t, unicode.IsUpper(rune(tag[0])), "tags are capitalized")
		}
	}
}

func TestSeededRunsAreDeterministic(t *testing.T) {
	a := seededGenerator(99)
	b := seededGenerator(99)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.publishHour(), b.publishHour())
		assert.Equal(t, a.engagementType(), b.engagementType())
		assert.Equal(t, a.engagementDelay(), b.engagementDelay())
	}
}
