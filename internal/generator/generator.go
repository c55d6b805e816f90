package generator

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
)

// Engagement delay follows an exponential distribution with a 10 hour
// mean, capped so nothing lands more than 30 days after publish.
const (
	engagementDecayRate = 0.1
	maxEngagementLag    = 720 * time.Hour
	postHistoryDays     = 180
	anonymousRate       = 0.1
	categoryDriftRate   = 0.2
	mediaRate           = 0.6
	promotedRate        = 0.15
)

var (
	categories       = []string{"Tech", "Lifestyle", "Business", "Health", "Entertainment", "Education"}
	authorCategories = []string{"Tech", "Lifestyle", "Business", "Health", "Entertainment"}
	countries        = []string{"US", "UK", "CA", "AU", "DE", "FR", "JP", "BR", "IN", "MX"}
	userSegments     = []string{"free", "subscriber", "trial", "premium"}

	// Publishes skew toward business hours, engagements toward evening peaks.
	publishHourWeights    = []int{1, 1, 1, 1, 2, 3, 4, 5, 6, 7, 8, 7, 6, 5, 4, 3, 2, 2, 1, 1, 1, 1, 1, 1}
	peakAdjustmentWeights = []int{1, 2, 3, 4, 3, 2, 1} // hours -3..+3

	engagementTypes       = []string{"view", "like", "comment", "share"}
	engagementTypeWeights = []int{70, 20, 7, 3}
)

type Config struct {
	Authors     int
	Users       int
	Posts       int
	Engagements int
	BatchSize   int
	RandSeed    int64
}

type Generator struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	cfg    Config
	rng    *rand.Rand
	faker  *gofakeit.Faker
}

type postRecord struct {
	id          int64
	publishedAt time.Time
}

func New(db *sql.DB, logger *zap.SugaredLogger, cfg Config) *Generator {
	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		db:     db,
		logger: logger,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		faker:  gofakeit.New(uint64(seed)),
	}
}

// Run populates all tables in dependency order and refreshes the daily
// engagement views afterwards.
func (g *Generator) Run(ctx context.Context) error {
	g.logger.Infow("Starting dataset generation",
		"authors", g.cfg.Authors,
		"users", g.cfg.Users,
		"posts", g.cfg.Posts,
		"engagements", g.cfg.Engagements,
	)

	authorCategoryByID, err := g.generateAuthors(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate authors: %w", err)
	}

	userIDs, err := g.generateUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate users: %w", err)
	}

	posts, err := g.generatePosts(ctx, authorCategoryByID)
	if err != nil {
		return fmt.Errorf("failed to generate posts: %w", err)
	}

	if err := g.generateEngagements(ctx, posts, userIDs); err != nil {
		return fmt.Errorf("failed to generate engagements: %w", err)
	}

	if err := g.refreshViews(ctx); err != nil {
		return fmt.Errorf("failed to refresh materialized views: %w", err)
	}

	g.logger.Infow("Dataset generation complete")
	return nil
}

func (g *Generator) generateAuthors(ctx context.Context) (map[int64]string, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	categoryByID := make(map[int64]string, g.cfg.Authors)

	for i := 0; i < g.cfg.Authors; i++ {
		category := authorCategories[g.rng.Intn(len(authorCategories))]
		joined := g.faker.DateRange(now.AddDate(-5, 0, 0), now)

		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO authors (name, joined_date, author_category) VALUES ($1, $2, $3) RETURNING author_id`,
			g.faker.Name(), joined, category,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert author: %w", err)
		}

		categoryByID[id] = category
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit authors: %w", err)
	}

	g.logger.Infow("Generated authors", "count", g.cfg.Authors)
	return categoryByID, nil
}

func (g *Generator) generateUsers(ctx context.Context) ([]int64, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	userIDs := make([]int64, 0, g.cfg.Users)

	for i := 0; i < g.cfg.Users; i++ {
		signup := g.faker.DateRange(now.AddDate(-2, 0, 0), now)
		country := countries[g.rng.Intn(len(countries))]
		segment := userSegments[g.rng.Intn(len(userSegments))]

		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO users (signup_date, country, user_segment) VALUES ($1, $2, $3) RETURNING user_id`,
			signup, country, segment,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert user: %w", err)
		}

		userIDs = append(userIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit users: %w", err)
	}

	g.logger.Infow("Generated users", "count", g.cfg.Users)
	return userIDs, nil
}

func (g *Generator) generatePosts(ctx context.Context, authorCategoryByID map[int64]string) ([]postRecord, error) {
	authorIDs := make([]int64, 0, len(authorCategoryByID))
	for id := range authorCategoryByID {
		authorIDs = append(authorIDs, id)
	}
	if len(authorIDs) == 0 {
		return nil, fmt.Errorf("no authors to attach posts to")
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	start := time.Now().AddDate(0, 0, -postHistoryDays)
	posts := make([]postRecord, 0, g.cfg.Posts)

	for i := 0; i < g.cfg.Posts; i++ {
		authorID := authorIDs[g.rng.Intn(len(authorIDs))]
		category := g.postCategory(authorCategoryByID[authorID])
		published := g.publishTime(start)
		title := strings.TrimSuffix(g.faker.Sentence(6), ".")
		contentLength := 500 + g.rng.Intn(2501)
		hasMedia := g.rng.Float64() < mediaRate

		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO posts (author_id, category, publish_timestamp, title, content_length, has_media)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING post_id`,
			authorID, category, published, title, contentLength, hasMedia,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert post: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO post_metadata (post_id, tags, is_promoted, language) VALUES ($1, $2, $3, $4)`,
			id, g.tags(), g.rng.Float64() < promotedRate, "en",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert post metadata: %w", err)
		}

		posts = append(posts, postRecord{id: id, publishedAt: published})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit posts: %w", err)
	}

	g.logger.Infow("Generated posts", "count", g.cfg.Posts)
	return posts, nil
}

func (g *Generator) generateEngagements(ctx context.Context, posts []postRecord, userIDs []int64) error {
	if len(posts) == 0 {
		return fmt.Errorf("no posts to attach engagements to")
	}

	remaining := g.cfg.Engagements
	generated := 0

	for remaining > 0 {
		batch := g.cfg.BatchSize
		if batch > remaining {
			batch = remaining
		}

		if err := g.insertEngagementBatch(ctx, posts, userIDs, batch); err != nil {
			return err
		}

		remaining -= batch
		generated += batch
		g.logger.Infow("Generated engagements", "count", generated)
	}

	return nil
}

func (g *Generator) insertEngagementBatch(ctx context.Context, posts []postRecord, userIDs []int64, batch int) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO engagements (post_id, type, user_id, engaged_timestamp) VALUES ($1, $2, $3, $4)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < batch; i++ {
		post := posts[g.rng.Intn(len(posts))]

		var userID sql.NullInt64
		if len(userIDs) > 0 && !g.anonymous() {
			userID = sql.NullInt64{Int64: userIDs[g.rng.Intn(len(userIDs))], Valid: true}
		}

		engaged := post.publishedAt.Add(g.engagementDelay())
		engaged = engaged.Add(time.Duration(g.peakAdjustment()) * time.Hour)

		if _, err := stmt.ExecContext(ctx, post.id, g.engagementType(), userID, engaged); err != nil {
			return fmt.Errorf("failed to insert engagement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit engagements: %w", err)
	}

	return nil
}

func (g *Generator) refreshViews(ctx context.Context) error {
	for _, view := range []string{"daily_post_engagement", "daily_author_engagement"} {
		if _, err := g.db.ExecContext(ctx, "REFRESH MATERIALIZED VIEW "+view); err != nil {
			return fmt.Errorf("failed to refresh %s: %w", view, err)
		}
	}

	g.logger.Infow("Refreshed materialized views")
	return nil
}

// postCategory follows the author's category most of the time, with
// occasional drift into another one.
func (g *Generator) postCategory(authorCategory string) string {
	if g.rng.Float64() < categoryDriftRate {
		return categories[g.rng.Intn(len(categories))]
	}
	return authorCategory
}

func (g *Generator) publishTime(start time.Time) time.Time {
	return start.AddDate(0, 0, g.rng.Intn(postHistoryDays+1)).
		Truncate(24 * time.Hour).
		Add(time.Duration(g.publishHour())*time.Hour + time.Duration(g.rng.Intn(60))*time.Minute)
}

func (g *Generator) publishHour() int {
	return weightedIndex(g.rng, publishHourWeights)
}

func (g *Generator) engagementDelay() time.Duration {
	hours := g.rng.ExpFloat64() / engagementDecayRate
	delay := time.Duration(hours * float64(time.Hour))
	if delay > maxEngagementLag {
		delay = maxEngagementLag
	}
	return delay
}

func (g *Generator) peakAdjustment() int {
	return weightedIndex(g.rng, peakAdjustmentWeights) - 3
}

func (g *Generator) engagementType() string {
	return engagementTypes[weightedIndex(g.rng, engagementTypeWeights)]
}

// anonymous decides whether an engagement carries no user_id.
func (g *Generator) anonymous() bool {
	return g.rng.Float64() < anonymousRate
}

func (g *Generator) tags() []string {
	n := 1 + g.rng.Intn(4)
	tags := make([]string, 0, n)
	for i := 0; i < n; i++ {
		word := g.faker.Word()
		tags = append(tags, strings.ToUpper(word[:1])+word[1:])
	}
	return tags
}

// weightedIndex picks an index with probability proportional to its
// weight. Weights must be non-negative and sum to a positive value.
func weightedIndex(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}

	pick := rng.Intn(total)
	for i, w := range weights {
		pick -= w
		if pick < 0 {
			return i
		}
	}
	return len(weights) - 1
}
