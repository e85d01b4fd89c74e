// internal/recommend/engine.go
package recommend

import (
	"context"
	"errors"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Config controls the engine's ranking and artifact loading.
type Config struct {
	// ArtifactsDir holds the vocabulary files and the trained model.
	// Empty, or a directory with nothing usable in it, puts the engine
	// into permanent degraded mode.
	ArtifactsDir string

	// ModelFile is the model artifact name inside ArtifactsDir.
	ModelFile string

	// TopN is the recommendation list length, SimilarTopN the
	// similar-books list length.
	TopN        int
	SimilarTopN int

	// PopularMinRatings is the rating-count floor for the popularity
	// fallback.
	PopularMinRatings int
}

func (c *Config) applyDefaults() {
	if c.ModelFile == "" {
		c.ModelFile = "affinity_model.gob"
	}
	if c.TopN <= 0 {
		c.TopN = 24
	}
	if c.SimilarTopN <= 0 {
		c.SimilarTopN = 6
	}
	if c.PopularMinRatings <= 0 {
		c.PopularMinRatings = 5
	}
}

// Engine is the recommendation orchestrator. It is the only type the
// rest of the application talks to for recommendations and similarity.
//
// The engine never returns an error to its callers: every internal
// failure degrades to the next fallback stage, bottoming out at the
// popularity ranking and, past that, an empty list (only possible with
// an empty catalog).
type Engine struct {
	store   Store
	encoder *Encoder
	scorer  Scorer

	// modelLoaded selects between the personalized path and the
	// collaborative/metadata fallbacks. Fixed at construction; there is
	// no hot reload.
	modelLoaded bool

	cfg    Config
	cache  *resultCache
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewEngine builds the engine, loading the optional vocabulary and model
// artifacts. Absence of either artifact is not an error; it is logged and
// the engine starts degraded.
func NewEngine(store Store, cfg Config, logger zerolog.Logger) *Engine {
	cfg.applyDefaults()
	logger = logger.With().Str("component", "recommend").Logger()

	vocabs, err := LoadVocabularies(cfg.ArtifactsDir)
	if err != nil {
		logger.Warn().Err(err).Msg("no vocabularies loaded, encoder will emit default codes")
	}

	var scorer Scorer = NeutralScorer{}
	modelLoaded := false
	if cfg.ArtifactsDir != "" {
		model, err := LoadModel(filepath.Join(cfg.ArtifactsDir, cfg.ModelFile))
		if err != nil {
			logger.Warn().Err(err).Msg("model unavailable, scoring in degraded mode")
		} else {
			scorer = NewModelScorer(model)
			modelLoaded = true
			logger.Info().Msg("affinity model loaded")
		}
	} else {
		logger.Warn().Msg("no artifacts directory configured, scoring in degraded mode")
	}

	return &Engine{
		store:       store,
		encoder:     NewEncoder(vocabs),
		scorer:      scorer,
		modelLoaded: modelLoaded,
		cfg:         cfg,
		cache:       newResultCache(),
		logger:      logger,
		tracer:      otel.Tracer("booklovers/recommend"),
	}
}

// RecommendForUser returns up to TopN ISBNs for the user, best match
// first. Results are cached per user until invalidated.
func (e *Engine) RecommendForUser(ctx context.Context, userID int) []string {
	ctx, span := e.tracer.Start(ctx, "recommend.for_user",
		trace.WithAttributes(attribute.Int("user.id", userID)),
	)
	defer span.End()

	if recs, ok := e.cache.getUserRecs(userID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return recs
	}

	if !e.modelLoaded {
		return e.recommendCollaborative(ctx, userID)
	}

	recs, err := e.recommendPersonalized(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.logger.Error().Err(err).Int("user_id", userID).Msg("personalized recommendation failed, using popular books")
		}
		return e.popularBooks(ctx, e.cfg.TopN)
	}
	return recs
}

// recommendPersonalized scores every unrated book for the user with the
// trained model. ErrNotFound and an empty candidate set are normal
// branches that bubble up as the popularity fallback.
func (e *Engine) recommendPersonalized(ctx context.Context, userID int) ([]string, error) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ratings, err := e.store.UserRatings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return e.popularBooks(ctx, e.cfg.TopN), nil
	}
	rated := ratedSet(ratings)

	books, err := e.store.AllBooks(ctx)
	if err != nil {
		return nil, err
	}

	userFeatures := e.encoder.UserFeatures(user)

	type scored struct {
		isbn  string
		score float64
	}
	candidates := make([]scored, 0, len(books))
	for i := range books {
		book := &books[i]
		if _, ok := rated[book.ISBN]; ok {
			continue
		}
		score := e.scorer.Score(Features{
			User: userFeatures,
			Book: e.bookFeatures(book),
		})
		candidates = append(candidates, scored{isbn: book.ISBN, score: score})
	}
	if len(candidates) == 0 {
		return e.popularBooks(ctx, e.cfg.TopN), nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	recs := make([]string, 0, e.cfg.TopN)
	for _, c := range candidates {
		if len(recs) == e.cfg.TopN {
			break
		}
		recs = append(recs, c.isbn)
	}

	e.cache.putUserRecs(userID, recs)
	return recs, nil
}

// recommendCollaborative is the no-model fallback: books rated >=7 by
// users whose ratings sit within ±1 of this user's, ranked by how many
// such endorsements each book collected.
func (e *Engine) recommendCollaborative(ctx context.Context, userID int) []string {
	ctx, span := e.tracer.Start(ctx, "recommend.collaborative")
	defer span.End()

	ratings, err := e.store.UserRatings(ctx, userID)
	if err != nil || len(ratings) == 0 {
		if err != nil {
			e.logger.Error().Err(err).Int("user_id", userID).Msg("collaborative fallback failed, using popular books")
		}
		return e.popularBooks(ctx, e.cfg.TopN)
	}

	seen := make(map[int]struct{})
	var similarUsers []int
	for _, r := range ratings {
		near, err := e.store.RatingsNear(ctx, r.ISBN, r.Value, userID)
		if err != nil {
			e.logger.Error().Err(err).Int("user_id", userID).Msg("collaborative fallback failed, using popular books")
			return e.popularBooks(ctx, e.cfg.TopN)
		}
		for _, n := range near {
			if _, ok := seen[n.UserID]; !ok {
				seen[n.UserID] = struct{}{}
				similarUsers = append(similarUsers, n.UserID)
			}
		}
	}
	if len(similarUsers) == 0 {
		return e.popularBooks(ctx, e.cfg.TopN)
	}

	rated := ratedSet(ratings)
	ratedISBNs := make([]string, 0, len(rated))
	for _, r := range ratings {
		ratedISBNs = append(ratedISBNs, r.ISBN)
	}

	endorsements, err := e.store.HighRatingsByUsers(ctx, similarUsers, ratedISBNs, 7)
	if err != nil {
		e.logger.Error().Err(err).Int("user_id", userID).Msg("collaborative fallback failed, using popular books")
		return e.popularBooks(ctx, e.cfg.TopN)
	}

	counts := make(map[string]int)
	var order []string
	for _, r := range endorsements {
		if _, ok := rated[r.ISBN]; ok {
			continue
		}
		if _, ok := counts[r.ISBN]; !ok {
			order = append(order, r.ISBN)
		}
		counts[r.ISBN]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > e.cfg.TopN {
		order = order[:e.cfg.TopN]
	}

	// Pad with popular books when similar users did not endorse enough.
	if len(order) < e.cfg.TopN {
		present := make(map[string]struct{}, len(order))
		for _, isbn := range order {
			present[isbn] = struct{}{}
		}
		for _, isbn := range e.popularBooks(ctx, e.cfg.TopN) {
			if len(order) == e.cfg.TopN {
				break
			}
			if _, ok := present[isbn]; ok {
				continue
			}
			order = append(order, isbn)
		}
	}
	return order
}

// SimilarBooks returns up to SimilarTopN ISBNs most similar to the given
// book. The queried ISBN is never part of the result. Results are cached
// per ISBN until invalidated.
func (e *Engine) SimilarBooks(ctx context.Context, isbn string) []string {
	ctx, span := e.tracer.Start(ctx, "recommend.similar",
		trace.WithAttributes(attribute.String("book.isbn", isbn)),
	)
	defer span.End()

	if similar, ok := e.cache.getSimilar(isbn); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return similar
	}

	book, err := e.store.GetBook(ctx, isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		e.logger.Error().Err(err).Str("isbn", isbn).Msg("book lookup failed, using metadata fallback")
		return e.similarByMetadata(ctx, nil, isbn)
	}

	if !e.modelLoaded {
		return e.similarByMetadata(ctx, book, isbn)
	}

	similar, err := e.similarByFeatures(ctx, book)
	if err != nil {
		e.logger.Error().Err(err).Str("isbn", isbn).Msg("feature similarity failed, using metadata fallback")
		return e.similarByMetadata(ctx, book, isbn)
	}
	return similar
}

func (e *Engine) similarByFeatures(ctx context.Context, target *Book) ([]string, error) {
	books, err := e.store.AllBooks(ctx)
	if err != nil {
		return nil, err
	}

	targetFeatures := e.bookFeatures(target)

	type scored struct {
		isbn string
		sim  float64
	}
	candidates := make([]scored, 0, len(books))
	for i := range books {
		book := &books[i]
		if book.ISBN == target.ISBN {
			continue
		}
		candidates = append(candidates, scored{
			isbn: book.ISBN,
			sim:  Similarity(targetFeatures, e.bookFeatures(book)),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})

	similar := make([]string, 0, e.cfg.SimilarTopN)
	for _, c := range candidates {
		if len(similar) == e.cfg.SimilarTopN {
			break
		}
		similar = append(similar, c.isbn)
	}

	e.cache.putSimilar(target.ISBN, similar)
	return similar, nil
}

// similarByMetadata builds the result list stage by stage: same author,
// same publisher, same year, then anything else, each stage ordered by
// average rating and only filling the remaining slots. target may be nil
// when the book row itself could not be loaded, in which case only the
// final stage applies.
func (e *Engine) similarByMetadata(ctx context.Context, target *Book, isbn string) []string {
	ctx, span := e.tracer.Start(ctx, "recommend.similar_metadata")
	defer span.End()

	topN := e.cfg.SimilarTopN
	similar := make([]string, 0, topN)
	exclude := []string{isbn}

	type stage func(context.Context, []string, int) ([]Book, error)
	var stages []stage
	if target != nil {
		stages = []stage{
			func(ctx context.Context, excl []string, n int) ([]Book, error) {
				return e.store.BooksByAuthor(ctx, target.Author, excl, n)
			},
			func(ctx context.Context, excl []string, n int) ([]Book, error) {
				return e.store.BooksByPublisher(ctx, target.Publisher, excl, n)
			},
			func(ctx context.Context, excl []string, n int) ([]Book, error) {
				return e.store.BooksByYear(ctx, target.Year, excl, n)
			},
		}
	}
	stages = append(stages, func(ctx context.Context, excl []string, n int) ([]Book, error) {
		return e.store.TopRatedBooks(ctx, excl, n)
	})

	for _, next := range stages {
		if len(similar) == topN {
			break
		}
		books, err := next(ctx, exclude, topN-len(similar))
		if err != nil {
			e.logger.Error().Err(err).Str("isbn", isbn).Msg("metadata similarity stage failed")
			continue
		}
		for i := range books {
			similar = append(similar, books[i].ISBN)
			exclude = append(exclude, books[i].ISBN)
		}
	}
	return similar
}

// popularBooks is the terminal fallback: best-rated books with enough
// ratings to trust the average. On store failure it degrades once more
// to a plain top-rated scan before giving up with an empty list.
func (e *Engine) popularBooks(ctx context.Context, limit int) []string {
	books, err := e.store.PopularBooks(ctx, e.cfg.PopularMinRatings, limit)
	if err != nil {
		e.logger.Error().Err(err).Msg("popularity query failed")
		books, err = e.store.TopRatedBooks(ctx, nil, limit)
		if err != nil {
			e.logger.Error().Err(err).Msg("top-rated query failed, returning nothing")
			return nil
		}
	}

	isbns := make([]string, 0, len(books))
	for i := range books {
		isbns = append(isbns, books[i].ISBN)
	}
	return isbns
}

// bookFeatures encodes a book, memoizing the result per ISBN.
func (e *Engine) bookFeatures(book *Book) BookFeatures {
	if f, ok := e.cache.getFeatures(book.ISBN); ok {
		return f
	}
	f := e.encoder.BookFeatures(book)
	e.cache.putFeatures(book.ISBN, f)
	return f
}

// InvalidateUser drops the cached recommendations for one user. The
// ratings service calls this after a rating write so the next request
// reflects it; without the hook, cached lists would live until restart.
func (e *Engine) InvalidateUser(userID int) {
	e.cache.invalidateUser(userID)
}

// InvalidateBook drops the cached similar-books list and encoded
// features for one ISBN.
func (e *Engine) InvalidateBook(isbn string) {
	e.cache.invalidateBook(isbn)
}

// ModelLoaded reports whether the trained model is active, for the
// health/status surface.
func (e *Engine) ModelLoaded() bool {
	return e.modelLoaded
}

func ratedSet(ratings []Rating) map[string]struct{} {
	rated := make(map[string]struct{}, len(ratings))
	for _, r := range ratings {
		rated[r.ISBN] = struct{}{}
	}
	return rated
}
