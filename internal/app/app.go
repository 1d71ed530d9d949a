package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/lapollita/polla-api/external/openligadb"
	"github.com/lapollita/polla-api/internal/config"
	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/domain/score"
	"github.com/lapollita/polla-api/internal/infrastructure/account"
	"github.com/lapollita/polla-api/internal/infrastructure/jobqueue"
	"github.com/lapollita/polla-api/internal/infrastructure/repository/memory"
	"github.com/lapollita/polla-api/internal/infrastructure/repository/postgres"
	"github.com/lapollita/polla-api/internal/interfaces/httpapi"
	"github.com/lapollita/polla-api/internal/platform/cache"
	idgen "github.com/lapollita/polla-api/internal/platform/id"
	"github.com/lapollita/polla-api/internal/platform/logging"
	"github.com/lapollita/polla-api/internal/platform/resilience"
	"github.com/lapollita/polla-api/internal/usecase"
)

// NewHTTPServer assembles the whole service: repositories, the match feed,
// the account client, the use case layer, and the HTTP router. The returned
// cleanup func releases worker pools and the database handle; call it after
// the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	var closers []func() error
	cleanup := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	poolRepo, predictionRepo, scoreRepo, dbCloser, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if dbCloser != nil {
		closers = append(closers, dbCloser)
	}

	feed := openligadb.NewClient(openligadb.ClientConfig{
		BaseURL:    cfg.FeedBaseURL,
		Timeout:    cfg.FeedTimeout,
		MaxRetries: cfg.FeedMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
		},
	})

	accountClient := account.NewClient(
		&http.Client{Timeout: cfg.AccountTimeout},
		account.ClientConfig{
			BaseURL:        cfg.AccountBaseURL,
			IntrospectPath: cfg.AccountIntrospectPath,
			UsersPath:      cfg.AccountUsersPath,
			Timeout:        cfg.AccountTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AccountCircuitEnabled,
				FailureThreshold: cfg.AccountCircuitFailureCount,
				OpenTimeout:      cfg.AccountCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
			},
		},
		logger,
	)

	var jobs usecase.JobPublisher
	if cfg.QStashEnabled {
		jobs = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			Timeout:          cfg.QStashTimeout,
		}, logger)
	}

	matchService := usecase.NewMatchService(feed, cache.NewStore(cfg.CacheTTL))
	scoreService := usecase.NewScoreService(scoreRepo, predictionRepo)
	closers = append(closers, func() error {
		scoreService.Close()
		return nil
	})

	poolService := usecase.NewPoolService(poolRepo, scoreService, matchService, idgen.NewRandomGenerator(), logger)
	predictionService := usecase.NewPredictionService(poolRepo, predictionRepo, matchService, scoreService)
	rankingService := usecase.NewRankingService(poolRepo, scoreRepo, accountClient, logger)

	sessionService, err := usecase.NewSessionService(poolRepo, predictionRepo, matchService, scoreService, cfg.SessionWorkers, logger)
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("build session service: %w", err)
	}
	closers = append(closers, func() error {
		sessionService.Close()
		return nil
	})

	rescoreService := usecase.NewRescoreService(poolRepo, predictionRepo, matchService, scoreService, jobs, logger)

	handler := httpapi.NewHandler(
		matchService,
		poolService,
		predictionService,
		rankingService,
		sessionService,
		rescoreService,
		logger,
	)
	router := httpapi.NewRouter(handler, accountClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, cleanup, nil
}

// buildRepositories picks the storage backend: postgres when DB_URL is set,
// otherwise seeded in-memory repositories for local development.
func buildRepositories(cfg config.Config, logger *logging.Logger) (pool.Repository, prediction.Repository, score.Repository, func() error, error) {
	if cfg.DBURL == "" {
		poolRepo := memory.NewPoolRepository()
		seeded := memory.SeedPools()
		seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, p := range seeded {
			if err := poolRepo.Create(seedCtx, p); err != nil {
				return nil, nil, nil, nil, fmt.Errorf("seed demo pool %s: %w", p.ID, err)
			}
		}
		logger.Info("storage backend ready", "backend", "memory", "seeded_pools", len(seeded))

		return poolRepo, memory.NewPredictionRepository(), memory.NewScoreRepository(), nil, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	tuneDBPool(db)
	logger.Info("storage backend ready", "backend", "postgres", "database", dbNameFromURL(dbURL))

	ids := idgen.NewRandomGenerator()

	return postgres.NewPoolRepository(db),
		postgres.NewPredictionRepository(db, ids),
		postgres.NewScoreRepository(db, ids),
		db.Close,
		nil
}

func tuneDBPool(db *sqlx.DB) {
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}
