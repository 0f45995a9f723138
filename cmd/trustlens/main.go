package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/trustlens-engine/internal/analyzer"
	"github.com/xela07ax/trustlens-engine/internal/audit"
	"github.com/xela07ax/trustlens-engine/internal/cache"
	"github.com/xela07ax/trustlens-engine/internal/infra"
	"github.com/xela07ax/trustlens-engine/internal/infra/auth"
	"github.com/xela07ax/trustlens-engine/internal/orchestrator"
	"github.com/xela07ax/trustlens-engine/internal/repository/postgres"
	"github.com/xela07ax/trustlens-engine/internal/server"
	"github.com/xela07ax/trustlens-engine/internal/source"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Инфраструктура: Redis опционален — без него движок живет
	// на in-memory кэше и без стрима событий
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, degrading to in-memory cache", zap.Error(err))
			rdb = nil
		}
		cancel()
	}

	// 3. Data-Source порт: провайдеры под обвязкой надежности.
	// Симулятор здесь — до подключения боевых клиентов (их ключи и
	// адреса придут этим же конфигом).
	relOpts := source.ReliabilityOptions{
		Attempts:    cfg.Engine.SourceAttempts,
		CallTimeout: cfg.Engine.SourceCallTimeout,
		RPS:         cfg.Engine.SourceRPS,
		Burst:       cfg.Engine.SourceBurst,
	}
	agg := source.NewAggregator(logger,
		source.NewReliableProvider(source.NewSimulatedProvider(), relOpts),
	)

	// 4. Доменные анализаторы
	walletA := analyzer.NewWalletAnalyzer(agg, logger)
	contractA := analyzer.NewContractAnalyzer(agg, logger)
	socialA := analyzer.NewSocialAnalyzer(agg, logger)
	graphA := analyzer.NewGraphAnalyzer(logger)

	// 5. Кэш результатов
	var resultCache cache.ResultCache
	if rdb != nil {
		resultCache = cache.NewRedisCache(rdb, cfg.Engine.CacheTTL, logger)
	} else {
		resultCache = cache.NewMemoryCache(cfg.Engine.CacheTTL)
	}

	// 6. Аудит: выбор стока конфигом
	auditor, stopAudit := buildAuditSink(cfg, rdb, logger)
	defer stopAudit()

	// 7. Метрики
	reg := prometheus.NewRegistry()
	metrics := orchestrator.NewMetrics(reg)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		logger.Info("metrics endpoint started", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics endpoint failed", zap.Error(err))
		}
	}()

	// 8. Ядро
	core := orchestrator.New(
		walletA, contractA, socialA, graphA,
		agg,
		resultCache,
		auditor,
		metrics,
		logger,
		orchestrator.Options{
			AnalyzerTimeout: cfg.Engine.AnalyzerTimeout,
			Weights:         cfg.Engine.Weights.Map(),
		},
	)

	// 9. HTTP API (токен — только если сконфигурирован ключ)
	var validator auth.TokenValidator
	if len(cfg.Auth.PublicKey) > 0 {
		pubKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
		if err != nil {
			logger.Fatal("failed to parse auth public key", zap.Error(err))
		}
		validator = auth.NewBaseValidator(pubKey)
	} else {
		logger.Warn("auth public key not configured, API is open")
	}

	api := server.New(core, validator, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("TrustLens engine started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("TrustLens engine stopping...")

	// Даем 5 секунд на завершение запросов; аудит-буфер дольется
	// в defer-цепочке после остановки HTTP
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("TrustLens engine exited properly")
}

// buildAuditSink собирает сток аудита по конфигу. Возвращенный stop
// обязателен к вызову: он доливает буфер (Drain Pattern).
func buildAuditSink(cfg *infra.Config, rdb *redis.Client, logger *zap.Logger) (audit.Appender, func()) {
	opts := audit.Options{
		BufferSize:    cfg.Audit.BufferSize,
		FlushInterval: cfg.Audit.FlushInterval,
		BatchSize:     cfg.Audit.BatchSize,
	}

	switch cfg.Audit.Sink {
	case "postgres":
		repo, err := postgres.NewAuditRepo(cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			logger.Fatal("failed to init postgres audit storage", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			logger.Fatal("audit database unreachable", zap.Error(err))
		}
		sink := audit.NewSink(repo, logger, opts)
		sink.Start()
		return sink, func() { sink.Stop(); repo.Close() }

	case "redis":
		if rdb == nil {
			logger.Warn("audit sink 'redis' requested but redis is unavailable, events will be dropped")
			return audit.NopAppender{}, func() {}
		}
		sink := audit.NewSink(audit.NewRedisStream(rdb), logger, opts)
		sink.Start()
		return sink, func() { sink.Stop() }

	default:
		return audit.NopAppender{}, func() {}
	}
}
