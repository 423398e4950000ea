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

	commonaws "lending-workers/internal/common/aws"
	"lending-workers/internal/common/config"
	"lending-workers/internal/common/database"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/credit/audit"
	"lending-workers/internal/credit/bureau"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/lenders"

	// Application Workers (4)
	etl "lending-workers/internal/workers/application/export-to-lender"
	pd "lending-workers/internal/workers/application/persist-decision"
	ua "lending-workers/internal/workers/application/update-application"
	va "lending-workers/internal/workers/application/validate-application"

	// Credit Workers (3)
	ee "lending-workers/internal/workers/credit/evaluate-eligibility"
	ml "lending-workers/internal/workers/credit/match-lenders"
	pcr "lending-workers/internal/workers/credit/pull-credit-report"

	// Data Access Workers (1)
	qad "lending-workers/internal/workers/data-access/query-application-data"

	// Inventory Workers (1)
	sv "lending-workers/internal/workers/inventory/search-vehicles"

	// Notification Workers (1)
	sdn "lending-workers/internal/workers/notification/send-decision-notification"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

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

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

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

	// --- Domain services ---

	// config.Load has already rejected synthetic fallback in production,
	// so whatever bureau.New composes here is safe to run.
	inquirer := bureau.New(cfg.Bureau, log)

	directory := lenders.NewCachedSource(
		lenders.NewFileSource(cfg.Lenders.DirectoryPath),
		redis.Client,
		time.Duration(cfg.Lenders.CacheTTLSec)*time.Second,
		log,
	)

	store := lifecycle.NewStore(pg.DB, log)

	emitter := audit.NewEmitter(audit.NewPostgresSink(pg.DB), 0, log)
	defer emitter.Close()

	var sesClient *commonaws.SESClient
	var snsClient *commonaws.SNSClient
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sesClient, err = commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		snsClient, err = commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
	}

	zapLog.Info("All domain services initialized")

	// --- START: Register ALL 10 Workers ---

	// --- 1. Application Workers (4) ---
	if cfg.Workers[va.TaskType].Enabled {
		handler := va.NewHandler(
			&va.Config{
				Timeout: time.Duration(cfg.Workers[va.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, va.TaskType, cfg.Workers[va.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[pd.TaskType].Enabled {
		handler := pd.NewHandler(
			&pd.Config{
				Timeout: time.Duration(cfg.Workers[pd.TaskType].Timeout) * time.Millisecond,
			},
			store, emitter, log,
		)
		startWorker(zeebeClient, pd.TaskType, cfg.Workers[pd.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ua.TaskType].Enabled {
		handler := ua.NewHandler(
			&ua.Config{
				Timeout: time.Duration(cfg.Workers[ua.TaskType].Timeout) * time.Millisecond,
			},
			store, emitter, log,
		)
		startWorker(zeebeClient, ua.TaskType, cfg.Workers[ua.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[etl.TaskType].Enabled {
		handler := etl.NewHandler(
			&etl.Config{
				Timeout:      time.Duration(cfg.Workers[etl.TaskType].Timeout) * time.Millisecond,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				EmailEnabled: cfg.Notifications.Email.Enabled,
			},
			directory, store, emitter, sesClient, log,
		)
		startWorker(zeebeClient, etl.TaskType, cfg.Workers[etl.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Credit Workers (3) ---
	if cfg.Workers[pcr.TaskType].Enabled {
		handler := pcr.NewHandler(
			&pcr.Config{
				Timeout: time.Duration(cfg.Workers[pcr.TaskType].Timeout) * time.Millisecond,
			},
			inquirer, log,
		)
		startWorker(zeebeClient, pcr.TaskType, cfg.Workers[pcr.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ee.TaskType].Enabled {
		handler := ee.NewHandler(
			&ee.Config{
				Timeout: time.Duration(cfg.Workers[ee.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, ee.TaskType, cfg.Workers[ee.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ml.TaskType].Enabled {
		handler := ml.NewHandler(
			&ml.Config{
				Timeout: time.Duration(cfg.Workers[ml.TaskType].Timeout) * time.Millisecond,
			},
			directory, log,
		)
		startWorker(zeebeClient, ml.TaskType, cfg.Workers[ml.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Data Access Workers (1) ---
	if cfg.Workers[qad.TaskType].Enabled {
		handler := qad.NewHandler(
			&qad.Config{
				Timeout: time.Duration(cfg.Workers[qad.TaskType].Timeout) * time.Millisecond,
			},
			store, log,
		)
		startWorker(zeebeClient, qad.TaskType, cfg.Workers[qad.TaskType], handler.Handle, zapLog)
	}

	// --- 4. Inventory Workers (1) ---
	if cfg.Workers[sv.TaskType].Enabled {
		handler := sv.NewHandler(
			&sv.Config{
				Timeout:   time.Duration(cfg.Workers[sv.TaskType].Timeout) * time.Millisecond,
				IndexName: "vehicles",
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, sv.TaskType, cfg.Workers[sv.TaskType], handler.Handle, zapLog)
	}

	// --- 5. Notification Workers (1) ---
	if cfg.Workers[sdn.TaskType].Enabled {
		handler := sdn.NewHandler(
			&sdn.Config{
				Timeout:      time.Duration(cfg.Workers[sdn.TaskType].Timeout) * time.Millisecond,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
			},
			sesClient, snsClient, log,
		)
		startWorker(zeebeClient, sdn.TaskType, cfg.Workers[sdn.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 10 workers registered successfully")

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

	// emitter.Close (deferred) flushes pending audit events before the
	// postgres pool goes away.
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
