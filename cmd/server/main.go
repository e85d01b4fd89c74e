// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"booklovers/internal/catalog"
	"booklovers/internal/config"
	"booklovers/internal/library"
	"booklovers/internal/membership"
	"booklovers/internal/ratings"
	"booklovers/internal/recommend"
	"booklovers/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, "booklovers")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("trace shutdown failed")
		}
	}()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("database unreachable")
	}

	engine := recommend.NewEngine(recommend.NewPostgresStore(db), recommend.Config{
		ArtifactsDir:      cfg.Recommend.ArtifactsDir,
		ModelFile:         cfg.Recommend.ModelFile,
		TopN:              cfg.Recommend.TopN,
		SimilarTopN:       cfg.Recommend.SimilarTopN,
		PopularMinRatings: cfg.Recommend.PopularMinRatings,
	}, logger)

	sessions := membership.NewSessionStore()

	catalogHandler := catalog.NewHandler(catalog.NewService(db), engine)
	membershipHandler := membership.NewHandler(membership.NewService(db), sessions)
	ratingsHandler := ratings.NewHandler(ratings.NewService(db, engine))
	libraryHandler := library.NewHandler(library.NewService(db))
	recommendHandler := recommend.NewHandler(engine)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(sessions.WithUser)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	catalogHandler.Routes(r)
	membershipHandler.Routes(r)
	ratingsHandler.Routes(r)
	libraryHandler.Routes(r)
	recommendHandler.Routes(r)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// requestLogger logs each request at debug with method, path, and
// duration.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
