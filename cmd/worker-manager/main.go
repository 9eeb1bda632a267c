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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"assessment-workers/internal/common/aws"
	"assessment-workers/internal/common/camunda"
	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/database"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/observability"
	"assessment-workers/internal/common/store"
	"assessment-workers/pkg/catalog"

	// Assessment Workers (2)
	cm "assessment-workers/internal/workers/assessment/compute-maturity"
	vuc "assessment-workers/internal/workers/assessment/validate-use-cases"

	// Reporting Worker (1)
	brd "assessment-workers/internal/workers/reporting/build-report-data"

	// Activity Worker (1)
	ga "assessment-workers/internal/workers/activity/generate-activities"

	// Communication Worker (1)
	san "assessment-workers/internal/workers/communication/send-assessment-notification"
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

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Recreate the logger with the configured level/format now that we
	// know them.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	// Fail fast on a broken catalog; workers read selections from the
	// database but consultants seed them from this file.
	if cat, err := catalog.Load(cfg.Catalog.Path); err != nil {
		zapLog.Warn("use-case catalog not loadable", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	} else if errs := cat.Validate(); len(errs) > 0 {
		zapLog.Fatal("use-case catalog invalid", zap.String("path", cfg.Catalog.Path), zap.Errors("problems", errs))
	} else {
		zapLog.Info("use-case catalog loaded", zap.Int("useCases", len(cat.UseCases)))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if endpoint := os.Getenv("JAEGER_COLLECTOR_ENDPOINT"); endpoint != "" {
		if err := obs.EnableTracing(cfg.App.Name, endpoint); err != nil {
			zapLog.Warn("tracing setup failed, continuing without traces", zap.Error(err))
		}
	}

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
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
		// Test the connection with context
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
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS clients (only when notifications are on) ---
	var sesClient *aws.SESClient
	var snsClient *aws.SNSClient

	if cfg.Notifications.Email.Enabled {
		sesClient, err = aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err = aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
	}

	zapLog.Info("All external service clients initialized")

	// --- Shared assessment store ---
	st := store.New(pg.DB)

	// --- START: Register ALL 5 Workers ---
	var workers []*camunda.CamundaWorker

	// --- 1. Assessment Workers (2) ---
	if wcfg := config.GetWorkerConfig(cfg, cm.TaskType); wcfg.Enabled {
		handler := cm.NewHandler(
			&cm.Config{
				Timeout:  config.GetDuration(wcfg.Timeout),
				CacheTTL: time.Duration(cfg.Reporting.CacheTTL) * time.Second,
			},
			st, redis.Client, log,
		)
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), cm.TaskType, wcfg.MaxJobsActive, handler, zapLog,
		))
	}

	if wcfg := config.GetWorkerConfig(cfg, vuc.TaskType); wcfg.Enabled {
		handler := vuc.NewHandler(
			&vuc.Config{
				Timeout:  config.GetDuration(wcfg.Timeout),
				CacheTTL: time.Duration(cfg.Reporting.CacheTTL) * time.Second,
			},
			st, redis.Client, log,
		)
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), vuc.TaskType, wcfg.MaxJobsActive, handler, zapLog,
		))
	}

	// --- 2. Reporting Worker (1) ---
	if wcfg := config.GetWorkerConfig(cfg, brd.TaskType); wcfg.Enabled {
		handler, err := brd.NewHandler(
			&brd.Config{
				Timeout:      config.GetDuration(wcfg.Timeout),
				Index:        cfg.Reporting.Index,
				SchemaStrict: cfg.Reporting.SchemaStrict,
			},
			st, esClient.Client, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create build-report-data handler", zap.Error(err))
		}
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), brd.TaskType, wcfg.MaxJobsActive, handler, zapLog,
		))
	}

	// --- 3. Activity Worker (1) ---
	if wcfg := config.GetWorkerConfig(cfg, ga.TaskType); wcfg.Enabled {
		handler := ga.NewHandler(
			&ga.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			pg.DB, log,
		)
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), ga.TaskType, wcfg.MaxJobsActive, handler, zapLog,
		))
	}

	// --- 4. Communication Worker (1) ---
	if wcfg := config.GetWorkerConfig(cfg, san.TaskType); wcfg.Enabled {
		handlerCfg := &san.Config{
			Timeout:          config.GetDuration(wcfg.Timeout),
			EmailEnabled:     cfg.Notifications.Email.Enabled,
			SMSEnabled:       cfg.Notifications.SMS.Enabled,
			FromEmail:        cfg.Notifications.Email.FromEmail,
			EscalateOnStatus: cfg.Notifications.SMS.EscalateOnStatus,
		}

		var email san.EmailSender
		var sms san.SMSSender
		if sesClient != nil {
			email = sesClient
		}
		if snsClient != nil {
			sms = snsClient
		}

		handler := san.NewHandler(handlerCfg, st, email, sms, log)
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), san.TaskType, wcfg.MaxJobsActive, handler, zapLog,
		))
	}

	for _, w := range workers {
		w.Start()
	}
	zapLog.Info("All 5 workers registered successfully")

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
			status := "ready"
			code := http.StatusOK
			if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				status = "not ready"
				code = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
