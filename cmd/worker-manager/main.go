// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"skinadvisor-workers/internal/common/config"
	"skinadvisor-workers/internal/common/database"
	"skinadvisor-workers/internal/common/logger"
	"skinadvisor-workers/internal/common/observability"

	// Scan pipeline workers
	as "skinadvisor-workers/internal/workers/scan/analyze-skin"
	bsr "skinadvisor-workers/internal/workers/scan/build-scan-response"
	css "skinadvisor-workers/internal/workers/scan/calculate-skin-score"
	gdp "skinadvisor-workers/internal/workers/scan/generate-diet-plan"
	gr "skinadvisor-workers/internal/workers/scan/generate-routine"
	na "skinadvisor-workers/internal/workers/scan/normalize-analysis"
	ps "skinadvisor-workers/internal/workers/scan/persist-scan"

	// Subscription workers
	vs "skinadvisor-workers/internal/workers/subscription/validate-subscription"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- START: Register ALL 8 Workers ---

	// --- 1. Subscription Workers (1) ---
	if cfg.Workers[vs.TaskType].Enabled {
		vsCfg := vs.LoadConfig()
		vsCfg.Timeout = time.Duration(cfg.Workers[vs.TaskType].Timeout) * time.Millisecond
		vsCfg.FreeScanLimit = cfg.Plans.FreeScanLimit
		handler := vs.NewHandler(vsCfg, pg.DB, redisClient.Client, log)
		startWorker(zeebeClient, vs.TaskType, cfg.Workers[vs.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Scan Pipeline Workers (7) ---
	if cfg.Workers[as.TaskType].Enabled {
		handler, err := as.NewHandler(as.LoadConfig(cfg.Vision), log)
		if err != nil {
			zapLog.Fatal("failed to create analyze-skin handler", zap.Error(err))
		}
		startWorker(zeebeClient, as.TaskType, cfg.Workers[as.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[na.TaskType].Enabled {
		handler, err := na.NewHandler(na.LoadConfig(), log)
		if err != nil {
			zapLog.Fatal("failed to create normalize-analysis handler", zap.Error(err))
		}
		startWorker(zeebeClient, na.TaskType, cfg.Workers[na.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[css.TaskType].Enabled {
		handler, err := css.NewHandler(css.LoadConfig(), log)
		if err != nil {
			zapLog.Fatal("failed to create calculate-skin-score handler", zap.Error(err))
		}
		startWorker(zeebeClient, css.TaskType, cfg.Workers[css.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[gdp.TaskType].Enabled {
		handler, err := gdp.NewHandler(gdp.LoadConfig(), log)
		if err != nil {
			zapLog.Fatal("failed to create generate-diet-plan handler", zap.Error(err))
		}
		startWorker(zeebeClient, gdp.TaskType, cfg.Workers[gdp.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[gr.TaskType].Enabled {
		handler, err := gr.NewHandler(gr.LoadConfig(), log)
		if err != nil {
			zapLog.Fatal("failed to create generate-routine handler", zap.Error(err))
		}
		startWorker(zeebeClient, gr.TaskType, cfg.Workers[gr.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ps.TaskType].Enabled {
		psCfg := ps.LoadConfig()
		psCfg.Timeout = time.Duration(cfg.Workers[ps.TaskType].Timeout) * time.Millisecond
		if cfg.Database.Elasticsearch.ScanIndex != "" {
			psCfg.ScanIndex = cfg.Database.Elasticsearch.ScanIndex
		}
		handler, err := ps.NewHandler(psCfg, pg.DB, redisClient.Client, esClient.Client, log)
		if err != nil {
			zapLog.Fatal("failed to create persist-scan handler", zap.Error(err))
		}
		startWorker(zeebeClient, ps.TaskType, cfg.Workers[ps.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[bsr.TaskType].Enabled {
		handler, err := bsr.NewHandler(bsr.LoadConfig(), log)
		if err != nil {
			zapLog.Fatal("failed to create build-scan-response handler", zap.Error(err))
		}
		startWorker(zeebeClient, bsr.TaskType, cfg.Workers[bsr.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 8 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
