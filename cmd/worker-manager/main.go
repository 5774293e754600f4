// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"talent-matching-workers/internal/common/aws"
	"talent-matching-workers/internal/common/camunda"
	"talent-matching-workers/internal/common/config"
	"talent-matching-workers/internal/common/database"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/common/observability"
	"talent-matching-workers/internal/compliance"
	"talent-matching-workers/internal/matching"
	"talent-matching-workers/internal/rateintel"

	// Matching
	fm "talent-matching-workers/internal/workers/matching/find-matches"

	// Compliance
	ce "talent-matching-workers/internal/workers/compliance/check-eligibility"
	ga "talent-matching-workers/internal/workers/compliance/gap-analysis"

	// Rate intelligence
	bc "talent-matching-workers/internal/workers/rate-intelligence/bid-comparison"
	br "talent-matching-workers/internal/workers/rate-intelligence/budget-recommendation"
	gmr "talent-matching-workers/internal/workers/rate-intelligence/get-market-rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	log := logger.NewForService(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.App.Name, cfg.App.Environment)
	zapLog := logger.Zap(log)
	defer zapLog.Sync()

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs, err := observability.NewWithConfig(cfg.Observability)
	if err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
		obs = observability.New(cfg.Observability.ServiceName)
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:    cfg.Camunda.BrokerAddress,
		Plaintext:         !cfg.Camunda.TLS,
		ConnectionTimeout: config.GetDuration(cfg.Camunda.RequestTimeout),
		Retry:             camunda.RetryConfig{MaxRetries: 10, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second},
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}

	// --- Init PostgreSQL with retry ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres config invalid", zap.Error(err))
	}
	if err := database.Connect(ctx, log, "postgres", 15, 2*time.Second, pg.Ping); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Database.Postgres.MigrateOnStart {
		version, err := pg.Migrate(log)
		if err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("schema up to date", zap.Uint("version", version))
	}

	// --- Init Redis with retry ---
	redis, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis config invalid", zap.Error(err))
	}
	if err := database.Connect(ctx, log, "redis", 10, 2*time.Second, redis.Ping); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()

	// --- Candidate store ---
	var store matching.CandidateStore
	switch cfg.Matching.CandidateStore {
	case config.CandidateStoreElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch config invalid", zap.Error(err))
		}
		if err := database.Connect(ctx, log, "elasticsearch", 15, 2*time.Second, es.Ping); err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if created, err := es.EnsureIndex(ctx, cfg.Matching.CandidateIndex, database.CandidateIndexMapping); err != nil {
			zapLog.Warn("candidate index check failed", zap.Error(err))
		} else if created {
			zapLog.Info("candidate index created", zap.String("index", cfg.Matching.CandidateIndex))
		}
		store = matching.NewElasticsearchCandidateStore(es.Client(), cfg.Matching.CandidateIndex, log)
	default:
		store = matching.NewPostgresCandidateStore(pg.DB(), log)
	}

	// --- Rate intelligence ---
	rateStore := rateintel.NewPostgresStore(pg.DB())
	supplier := rateintel.NewSupplier(rateStore, rateintel.NewRedisSegmentCache(redis.Client()), rateintel.Config{
		MinSampleSize:     cfg.RateIntelligence.MinSampleSize,
		CacheTTL:          time.Duration(cfg.RateIntelligence.CacheTTL) * time.Second,
		ObservationWindow: config.Days(cfg.RateIntelligence.ObservationWindowDays),
	}, log)

	warmer := rateintel.NewWarmer(supplier, rateStore, rateintel.WarmerConfig{
		Schedule:    cfg.RateIntelligence.WarmSchedule,
		HotSegments: cfg.RateIntelligence.HotSegments,
		TopN:        cfg.RateIntelligence.WarmTopN,
		Timeout:     time.Duration(cfg.RateIntelligence.WarmTimeout) * time.Millisecond,
	}, log)
	if err := warmer.Start(); err != nil {
		zapLog.Error("rate cache warmer not started", zap.Error(err))
	} else {
		defer warmer.Stop()
	}

	// --- Matching service ---
	opts := []matching.Option{
		matching.WithSkillGraph(matching.NewPostgresSkillGraph(pg.DB())),
		matching.WithMarketRates(supplier),
		matching.WithProfileCache(matching.NewRedisProfileCache(redis.Client(), time.Duration(cfg.Matching.ProfileCacheTTL)*time.Second)),
		matching.WithTracer(obs.Tracer()),
		matching.WithRecorder(obs),
	}
	if sns := cfg.Integrations.AWS.SNS; sns.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		opts = append(opts, matching.WithPublisher(aws.NewMatchRunPublisher(snsClient, sns.MatchRunTopicARN)))
		zapLog.Info("Match run events enabled", zap.String("topic", sns.MatchRunTopicARN))
	}

	matcher := matching.NewService(store, matching.Config{
		PoolSize:       cfg.Matching.PoolSize,
		MaxCandidates:  cfg.Matching.MaxCandidates,
		Timeout:        time.Duration(cfg.Matching.Timeout) * time.Millisecond,
		ExpiringWindow: config.Days(cfg.Matching.ExpiringWindowDays),
		Retry: matching.RetryConfig{
			MaxRetries: cfg.Matching.Retry.MaxRetries,
			BaseDelay:  time.Duration(cfg.Matching.Retry.BaseDelay) * time.Millisecond,
			MaxDelay:   time.Duration(cfg.Matching.Retry.MaxDelay) * time.Millisecond,
		},
		Tuning: cfg.Matching.Tuning,
	}, log, opts...)

	checker := compliance.NewChecker(nil, log)

	// --- Register workers ---
	var workers []*camunda.CamundaWorker
	start := func(taskType string, handler camunda.JobHandler) {
		wcfg, ok := cfg.Workers[taskType]
		if !ok || !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.NewWorker(zeebe.Zeebe(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
		}, handler, log))
	}

	findCfg := fm.LoadConfig()
	findCfg.Timeout = jobTimeout(cfg.Workers[fm.TaskType], findCfg.Timeout)
	start(fm.TaskType, fm.NewHandler(findCfg, matcher, log))

	eligCfg := ce.LoadConfig()
	eligCfg.Timeout = jobTimeout(cfg.Workers[ce.TaskType], eligCfg.Timeout)
	start(ce.TaskType, ce.NewHandler(eligCfg, matcher, checker, log))

	gapCfg := ga.LoadConfig()
	gapCfg.Timeout = jobTimeout(cfg.Workers[ga.TaskType], gapCfg.Timeout)
	start(ga.TaskType, ga.NewHandler(gapCfg, matcher, checker, log))

	rateCfg := gmr.LoadConfig()
	rateCfg.Timeout = jobTimeout(cfg.Workers[gmr.TaskType], rateCfg.Timeout)
	start(gmr.TaskType, gmr.NewHandler(rateCfg, supplier, log))

	budgetCfg := br.LoadConfig()
	budgetCfg.Timeout = jobTimeout(cfg.Workers[br.TaskType], budgetCfg.Timeout)
	start(br.TaskType, br.NewHandler(budgetCfg, supplier, log))

	bidCfg := bc.LoadConfig()
	bidCfg.Timeout = jobTimeout(cfg.Workers[bc.TaskType], bidCfg.Timeout)
	start(bc.TaskType, bc.NewHandler(bidCfg, supplier, log))

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ready", "time": time.Now().Format(time.RFC3339)}
		code := http.StatusOK
		if err := pg.Ping(pingCtx); err != nil {
			status["status"], status["postgres"], code = "not ready", err.Error(), http.StatusServiceUnavailable
		}
		if err := redis.Ping(pingCtx); err != nil {
			status["status"], status["redis"], code = "not ready", err.Error(), http.StatusServiceUnavailable
		}
		if err := zeebe.HealthCheck(pingCtx); err != nil {
			status["status"], status["zeebe"], code = "not ready", err.Error(), http.StatusServiceUnavailable
		}
		writeStatus(w, code, status)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Health.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// jobTimeout prefers the configured worker timeout over the handler default.
func jobTimeout(wcfg config.WorkerConfig, fallback time.Duration) time.Duration {
	if wcfg.Timeout > 0 {
		return time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return fallback
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
