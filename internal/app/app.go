package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/config"
	"github.com/matchday-io/matchday/internal/domain/aggregation"
	"github.com/matchday-io/matchday/internal/domain/bet"
	"github.com/matchday-io/matchday/internal/domain/lineup"
	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/domain/matchevent"
	"github.com/matchday-io/matchday/internal/domain/playerstats"
	"github.com/matchday-io/matchday/internal/domain/snapshot"
	"github.com/matchday-io/matchday/internal/domain/wallet"
	"github.com/matchday-io/matchday/internal/infrastructure/broadcast/webhook"
	"github.com/matchday-io/matchday/internal/infrastructure/broadcast/ws"
	"github.com/matchday-io/matchday/internal/infrastructure/repository/memory"
	"github.com/matchday-io/matchday/internal/infrastructure/repository/postgres"
	"github.com/matchday-io/matchday/internal/interfaces/httpapi"
	"github.com/matchday-io/matchday/internal/notify"
	"github.com/matchday-io/matchday/internal/platform/cache"
	"github.com/matchday-io/matchday/internal/platform/logging"
	"github.com/matchday-io/matchday/internal/platform/resilience"
	"github.com/matchday-io/matchday/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"
)

type repositories struct {
	matches   match.Repository
	events    matchevent.Repository
	lineups   lineup.Repository
	bets      bet.Repository
	wallets   wallet.Repository
	agg       aggregation.Repository
	stats     playerstats.Repository
	snapshots snapshot.Store
}

// App bundles everything main needs to run and shut the service down.
type App struct {
	Server *http.Server
	Hub    *ws.Hub
	DB     *sqlx.DB
	Warmup *usecase.WarmupService

	notifier *notify.Debouncer
	logger   *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	var caches *cache.Store
	if cfg.CacheEnabled {
		caches = cache.NewStore(cfg.CacheTTL)
	}

	hub := ws.NewHub(logger)
	go hub.Run()
	notifier := notify.NewDebouncer(hub, cfg.NotifyDebounceWindow, logger)

	var integrator usecase.StatsIntegrator
	if cfg.WebhookEnabled {
		integrator = webhook.NewEmitter(webhook.Config{
			URL:     cfg.WebhookURL,
			Token:   cfg.WebhookToken,
			Timeout: cfg.WebhookTimeout,
			Retries: cfg.WebhookRetries,
			Circuit: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMaxRq,
			},
		}, logger)
	}

	outcomeSvc := usecase.NewOutcomeService(repos.matches, repos.events, logger)
	settlementSvc := usecase.NewSettlementService(repos.bets, outcomeSvc, cfg.MatchDuration, logger)
	aggSvc := usecase.NewAggregationService(
		repos.agg, repos.lineups, repos.events, repos.stats, repos.matches, repos.snapshots, logger,
	)
	aggSvc.SetBoardSize(cfg.ScorerBoardSize)
	tableSvc := usecase.NewTableService(repos.matches, outcomeSvc, repos.snapshots, logger)
	finalizationSvc := usecase.NewFinalizationService(
		repos.matches, outcomeSvc, settlementSvc, aggSvc, tableSvc,
		integrator, caches, notifier, logger,
	)
	backlogSvc := usecase.NewBacklogService(repos.matches, repos.agg, finalizationSvc, logger)
	backlogSvc.SetWorkers(cfg.BacklogWorkers)
	warmupSvc := usecase.NewWarmupService(tableSvc, aggSvc, logger)

	handler := httpapi.NewHandler(
		finalizationSvc, settlementSvc, backlogSvc,
		repos.snapshots, repos.wallets, repos.stats, caches, logger,
	)
	router := httpapi.NewRouter(handler, hub, logger, cfg.CORSAllowedOrigins, cfg.AdminToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:   server,
		Hub:      hub,
		DB:       db,
		Warmup:   warmupSvc,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Close flushes pending notifications and releases resources. The HTTP
// server is shut down by the caller first.
func (a *App) Close() error {
	a.notifier.Close()
	a.Hub.Close()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// buildRepositories wires postgres-backed stores when DB_URL is set
// and falls back to the in-memory stores for local development.
func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	if cfg.DBURL == "" {
		logger.Info("DB_URL not set, using seeded in-memory repositories")
		matchRepo := memory.NewMatchRepository(memory.SeedMatches())
		betRepo := memory.NewBetRepository(matchRepo, memory.SeedBets())
		statsRepo := memory.NewPlayerStatsRepository()
		return repositories{
			matches:   matchRepo,
			events:    memory.NewEventRepository(memory.SeedEvents()),
			lineups:   memory.NewLineupRepository(memory.SeedLineups()),
			bets:      betRepo,
			wallets:   memory.NewWalletRepository(betRepo),
			agg:       memory.NewAggregationRepository(statsRepo),
			stats:     statsRepo,
			snapshots: memory.NewSnapshotRepository(),
		}, nil, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("open database: %w", err)
	}

	betRepo := postgres.NewBetRepository(db)
	return repositories{
		matches:   postgres.NewMatchRepository(db),
		events:    postgres.NewEventRepository(db),
		lineups:   postgres.NewLineupRepository(db),
		bets:      betRepo,
		wallets:   postgres.NewWalletRepository(db),
		agg:       postgres.NewAggregationRepository(db),
		stats:     postgres.NewPlayerStatsRepository(db),
		snapshots: postgres.NewSnapshotRepository(db),
	}, db, nil
}
